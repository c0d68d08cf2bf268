package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/dukerupert/lovejourney/internal/model"
)

type MemoryStore struct {
	mu   sync.RWMutex
	seq  *sequence
	byID map[int64]model.Memory
}

func (s *MemoryStore) Create(ctx context.Context, relationshipID int64, in model.NewMemory) (*model.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := model.Memory{
		ID:             s.seq.next(),
		RelationshipID: relationshipID,
		Title:          in.Title,
		Description:    copyString(in.Description),
		ImageURL:       in.ImageURL,
		Date:           in.Date,
	}
	s.byID[m.ID] = m
	out := m
	out.Description = copyString(m.Description)
	return &out, nil
}

// List orders by date descending. Ids grow with insertion, so ties fall back
// to ascending id.
func (s *MemoryStore) List(ctx context.Context, relationshipID int64) ([]model.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Memory
	for _, m := range s.byID {
		if m.RelationshipID == relationshipID {
			m.Description = copyString(m.Description)
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, relationshipID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.byID[id]; ok && m.RelationshipID == relationshipID {
		delete(s.byID, id)
	}
	return nil
}
