package couple

import (
	"context"
	"strings"

	"github.com/dukerupert/lovejourney/internal/model"
)

type MemoryLedger struct {
	repo MemoryRepository
}

func NewMemoryLedger(repo MemoryRepository) *MemoryLedger {
	return &MemoryLedger{repo: repo}
}

func (l *MemoryLedger) Create(ctx context.Context, relationshipID int64, m model.NewMemory) (*model.Memory, error) {
	m.Title = strings.TrimSpace(m.Title)
	m.ImageURL = strings.TrimSpace(m.ImageURL)
	if m.Title == "" {
		return nil, Invalid("title is required")
	}
	if m.ImageURL == "" {
		return nil, Invalid("image url is required")
	}
	if m.Date.IsZero() {
		return nil, Invalid("date is required")
	}
	if m.Description != nil && strings.TrimSpace(*m.Description) == "" {
		m.Description = nil
	}
	return l.repo.Create(ctx, relationshipID, m)
}

func (l *MemoryLedger) List(ctx context.Context, relationshipID int64) ([]model.Memory, error) {
	return l.repo.List(ctx, relationshipID)
}

func (l *MemoryLedger) Delete(ctx context.Context, relationshipID, id int64) error {
	return l.repo.Delete(ctx, relationshipID, id)
}
