package couple

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/lovejourney/internal/model"
)

const (
	partnerCodeBytes    = 4
	maxPartnerCodeTries = 8
)

// Registry owns relationship creation and linking. Its mutex makes each
// check-then-write sequence atomic with respect to other registry calls.
type Registry struct {
	mu      sync.Mutex
	repo    RelationshipRepository
	newCode func() (string, error)
}

func NewRegistry(repo RelationshipRepository) *Registry {
	return &Registry{repo: repo, newCode: GeneratePartnerCode}
}

// GeneratePartnerCode renders 4 random bytes as 8 uppercase hex characters.
func GeneratePartnerCode() (string, error) {
	b := make([]byte, partnerCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate partner code: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// NormalizePartnerCode trims and upper-cases a code typed by a user.
func NormalizePartnerCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *Registry) CreateRelationship(ctx context.Context, userID int64, in model.NewRelationship) (*model.Relationship, error) {
	in.PartnerName = strings.TrimSpace(in.PartnerName)
	if in.PartnerName == "" {
		return nil, Invalid("partner name is required")
	}
	day, err := ParseDay(in.Anniversary)
	if err != nil {
		return nil, Invalid("anniversary must be a YYYY-MM-DD date")
	}
	in.Anniversary = day
	if in.Description != nil && strings.TrimSpace(*in.Description) == "" {
		in.Description = nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyInRelationship
	}

	code, err := r.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}
	return r.repo.Create(ctx, userID, code, in)
}

// uniqueCode draws codes until one is unused. Callers hold r.mu.
func (r *Registry) uniqueCode(ctx context.Context) (string, error) {
	for range maxPartnerCodeTries {
		code, err := r.newCode()
		if err != nil {
			return "", err
		}
		taken, err := r.repo.GetByPartnerCode(ctx, code)
		if err != nil {
			return "", err
		}
		if taken == nil {
			return code, nil
		}
	}
	return "", fmt.Errorf("no unused partner code after %d attempts", maxPartnerCodeTries)
}

func (r *Registry) FindByUser(ctx context.Context, userID int64) (*model.Relationship, error) {
	return r.repo.GetByUser(ctx, userID)
}

func (r *Registry) FindByPartnerCode(ctx context.Context, code string) (*model.Relationship, error) {
	code = NormalizePartnerCode(code)
	if code == "" {
		return nil, nil
	}
	return r.repo.GetByPartnerCode(ctx, code)
}

// LinkPartner fills the partner slot of relationshipID with candidateUserID.
// The slot is write-once.
func (r *Registry) LinkPartner(ctx context.Context, relationshipID, candidateUserID int64) (*model.Relationship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rel, err := r.repo.GetByID(ctx, relationshipID)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, ErrRelationshipNotFound
	}
	if rel.PartnerUserID != nil {
		return nil, ErrAlreadyLinked
	}
	if rel.UserID == candidateUserID {
		return nil, ErrSelfLink
	}

	existing, err := r.repo.GetByUser(ctx, candidateUserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyInRelationship
	}

	return r.repo.SetPartner(ctx, relationshipID, candidateUserID)
}

// ParseDay validates a YYYY-MM-DD string, or an RFC 3339 timestamp whose date
// part is kept, and returns the canonical day.
func ParseDay(s string) (string, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.Format(time.DateOnly), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return "", err
	}
	return t.Format(time.DateOnly), nil
}
