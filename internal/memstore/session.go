package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/dukerupert/lovejourney/internal/auth"
	"github.com/dukerupert/lovejourney/internal/model"
)

type SessionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	byToken map[string]model.Session
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{ttl: ttl, byToken: make(map[string]model.Session)}
}

// SetTTL changes the lifetime of sessions created afterwards.
func (s *SessionStore) SetTTL(ttl time.Duration) {
	s.mu.Lock()
	s.ttl = ttl
	s.mu.Unlock()
}

func (s *SessionStore) Create(ctx context.Context, userID int64) (*model.Session, error) {
	token, err := auth.NewToken()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	sess := model.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	s.byToken[token] = sess
	return &sess, nil
}

// GetByToken returns nil for unknown or expired tokens.
func (s *SessionStore) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byToken[token]
	if !ok || !time.Now().Before(sess.ExpiresAt) {
		return nil, nil
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.byToken, token)
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var n int64
	for token, sess := range s.byToken {
		if !now.Before(sess.ExpiresAt) {
			delete(s.byToken, token)
			n++
		}
	}
	return n, nil
}
