package couple

import (
	"context"
	"strings"

	"github.com/dukerupert/lovejourney/internal/model"
)

// Outcome reports what a recorded answer did to its question.
type Outcome string

const (
	PartiallyAnswered Outcome = "partially_answered"
	FullyAnswered     Outcome = "fully_answered"
)

type QuestionLedger struct {
	repo QuestionRepository
}

func NewQuestionLedger(repo QuestionRepository) *QuestionLedger {
	return &QuestionLedger{repo: repo}
}

func (l *QuestionLedger) ListForDate(ctx context.Context, relationshipID int64, date string) ([]model.DailyQuestion, error) {
	day, err := ParseDay(date)
	if err != nil {
		return nil, Invalid("date must be a YYYY-MM-DD date")
	}
	return l.repo.ListForDate(ctx, relationshipID, day)
}

func (l *QuestionLedger) Create(ctx context.Context, relationshipID int64, question, date string) (*model.DailyQuestion, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, Invalid("question is required")
	}
	day, err := ParseDay(date)
	if err != nil {
		return nil, Invalid("date must be a YYYY-MM-DD date")
	}
	return l.repo.Create(ctx, relationshipID, question, day)
}

func (l *QuestionLedger) Count(ctx context.Context, relationshipID int64) (int, error) {
	return l.repo.CountForRelationship(ctx, relationshipID)
}

func (l *QuestionLedger) Get(ctx context.Context, id int64) (*model.DailyQuestion, error) {
	return l.repo.GetByID(ctx, id)
}

// RecordAnswer writes answer into the slot for role. FullyAnswered is returned
// only by the call that fills the second slot; after that the question is
// terminal and further answers fail with ErrAlreadyAnswered.
func (l *QuestionLedger) RecordAnswer(ctx context.Context, id int64, role model.AnswerRole, answer string) (*model.DailyQuestion, Outcome, error) {
	if !role.Valid() {
		return nil, "", Invalid("role must be %q or %q", model.RoleSelf, model.RolePartner)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, "", Invalid("answer is required")
	}

	q, err := l.repo.SetAnswer(ctx, id, role, answer)
	if err != nil {
		return nil, "", err
	}
	if q.IsAnswered {
		return q, FullyAnswered, nil
	}
	return q, PartiallyAnswered, nil
}
