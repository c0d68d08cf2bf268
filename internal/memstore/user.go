package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/dukerupert/lovejourney/internal/couple"
	"github.com/dukerupert/lovejourney/internal/model"
)

type UserStore struct {
	mu   sync.RWMutex
	seq  *sequence
	byID map[int64]model.User
}

func (s *UserStore) Create(ctx context.Context, username, passwordHash string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.byID {
		if u.Username == username {
			return nil, couple.ErrUsernameTaken
		}
	}
	u := model.User{
		ID:           s.seq.next(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.byID[u.ID] = u
	return &u, nil
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.byID {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}
