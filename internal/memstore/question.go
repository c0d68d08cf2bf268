package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/dukerupert/lovejourney/internal/couple"
	"github.com/dukerupert/lovejourney/internal/model"
)

type QuestionStore struct {
	mu   sync.RWMutex
	seq  *sequence
	byID map[int64]model.DailyQuestion
}

func cloneQuestion(q model.DailyQuestion) *model.DailyQuestion {
	q.UserAnswer = copyString(q.UserAnswer)
	q.PartnerAnswer = copyString(q.PartnerAnswer)
	return &q
}

func (s *QuestionStore) Create(ctx context.Context, relationshipID int64, question, date string) (*model.DailyQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := model.DailyQuestion{
		ID:             s.seq.next(),
		RelationshipID: relationshipID,
		Question:       question,
		Date:           date,
	}
	s.byID[q.ID] = q
	return cloneQuestion(q), nil
}

func (s *QuestionStore) GetByID(ctx context.Context, id int64) (*model.DailyQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneQuestion(q), nil
}

func (s *QuestionStore) ListForDate(ctx context.Context, relationshipID int64, date string) ([]model.DailyQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.DailyQuestion
	for _, q := range s.byID {
		if q.RelationshipID == relationshipID && q.Date == date {
			out = append(out, *cloneQuestion(q))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *QuestionStore) CountForRelationship(ctx context.Context, relationshipID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, q := range s.byID {
		if q.RelationshipID == relationshipID {
			n++
		}
	}
	return n, nil
}

func (s *QuestionStore) SetAnswer(ctx context.Context, id int64, role model.AnswerRole, answer string) (*model.DailyQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.byID[id]
	if !ok {
		return nil, couple.ErrQuestionNotFound
	}
	if q.IsAnswered {
		return nil, couple.ErrAlreadyAnswered
	}

	switch role {
	case model.RoleSelf:
		q.UserAnswer = &answer
	case model.RolePartner:
		q.PartnerAnswer = &answer
	default:
		return nil, couple.Invalid("unknown answer role %q", role)
	}
	q.IsAnswered = q.BothAnswered()
	s.byID[id] = q
	return cloneQuestion(q), nil
}
