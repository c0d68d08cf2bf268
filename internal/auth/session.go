package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/dukerupert/lovejourney/internal/model"
)

const SessionCookieName = "lovejourney_session"

// SessionStore persists login sessions. GetByToken returns (nil, nil) for
// unknown or expired tokens.
type SessionStore interface {
	Create(ctx context.Context, userID int64) (*model.Session, error)
	GetByToken(ctx context.Context, token string) (*model.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// NewToken returns 32 crypto-random bytes, hex encoded.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
