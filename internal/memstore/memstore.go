// Package memstore keeps every collection in process memory. Each store guards
// its map with its own mutex; ids come from one sequence shared by all stores
// of a DB, so an id is unique across collections.
package memstore

import (
	"sync/atomic"
	"time"

	"github.com/dukerupert/lovejourney/internal/model"
)

type sequence struct {
	n atomic.Int64
}

func (s *sequence) next() int64 {
	return s.n.Add(1)
}

// DB groups the stores that share one id sequence.
type DB struct {
	Users         *UserStore
	Relationships *RelationshipStore
	Questions     *QuestionStore
	Memories      *MemoryStore
	Sessions      *SessionStore
}

func New() *DB {
	seq := &sequence{}
	return &DB{
		Users:         &UserStore{seq: seq, byID: make(map[int64]model.User)},
		Relationships: &RelationshipStore{seq: seq, byID: make(map[int64]model.Relationship)},
		Questions:     &QuestionStore{seq: seq, byID: make(map[int64]model.DailyQuestion)},
		Memories:      &MemoryStore{seq: seq, byID: make(map[int64]model.Memory)},
		Sessions:      NewSessionStore(30 * 24 * time.Hour),
	}
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyInt64(n *int64) *int64 {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
