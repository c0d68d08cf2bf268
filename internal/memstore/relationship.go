package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/dukerupert/lovejourney/internal/couple"
	"github.com/dukerupert/lovejourney/internal/model"
)

type RelationshipStore struct {
	mu   sync.RWMutex
	seq  *sequence
	byID map[int64]model.Relationship
}

func cloneRelationship(r model.Relationship) *model.Relationship {
	r.PartnerUserID = copyInt64(r.PartnerUserID)
	r.Description = copyString(r.Description)
	r.Status = r.State()
	return &r
}

func (s *RelationshipStore) Create(ctx context.Context, userID int64, code string, in model.NewRelationship) (*model.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.byID {
		if r.PartnerCode == code {
			return nil, &couple.Error{Kind: couple.ErrConflict, Msg: "partner code already in use"}
		}
	}
	r := model.Relationship{
		ID:          s.seq.next(),
		UserID:      userID,
		PartnerName: in.PartnerName,
		PartnerCode: code,
		Anniversary: in.Anniversary,
		Description: copyString(in.Description),
		CreatedAt:   time.Now().UTC(),
	}
	s.byID[r.ID] = r
	return cloneRelationship(r), nil
}

func (s *RelationshipStore) GetByID(ctx context.Context, id int64) (*model.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneRelationship(r), nil
}

func (s *RelationshipStore) GetByUser(ctx context.Context, userID int64) (*model.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.byID {
		if r.HasMember(userID) {
			return cloneRelationship(r), nil
		}
	}
	return nil, nil
}

func (s *RelationshipStore) GetByPartnerCode(ctx context.Context, code string) (*model.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.byID {
		if r.PartnerCode == code {
			return cloneRelationship(r), nil
		}
	}
	return nil, nil
}

func (s *RelationshipStore) SetPartner(ctx context.Context, id, partnerUserID int64) (*model.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok {
		return nil, couple.ErrRelationshipNotFound
	}
	if r.PartnerUserID != nil {
		return nil, couple.ErrAlreadyLinked
	}
	r.PartnerUserID = &partnerUserID
	s.byID[id] = r
	return cloneRelationship(r), nil
}
