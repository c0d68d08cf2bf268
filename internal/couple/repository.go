package couple

import (
	"context"

	"github.com/dukerupert/lovejourney/internal/model"
)

// The repositories below are implemented by the SQLite store and the in-memory
// store. Lookups return (nil, nil) when nothing matches.

type UserRepository interface {
	Create(ctx context.Context, username, passwordHash string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

type RelationshipRepository interface {
	Create(ctx context.Context, userID int64, code string, rel model.NewRelationship) (*model.Relationship, error)
	GetByID(ctx context.Context, id int64) (*model.Relationship, error)
	GetByUser(ctx context.Context, userID int64) (*model.Relationship, error)
	GetByPartnerCode(ctx context.Context, code string) (*model.Relationship, error)
	// SetPartner fills the partner slot. It fails with ErrAlreadyLinked when the
	// slot is already set and ErrRelationshipNotFound for an unknown id.
	SetPartner(ctx context.Context, id, partnerUserID int64) (*model.Relationship, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, relationshipID int64, question, date string) (*model.DailyQuestion, error)
	GetByID(ctx context.Context, id int64) (*model.DailyQuestion, error)
	ListForDate(ctx context.Context, relationshipID int64, date string) ([]model.DailyQuestion, error)
	CountForRelationship(ctx context.Context, relationshipID int64) (int, error)
	// SetAnswer writes one slot and recomputes is_answered in a single step.
	// It fails with ErrAlreadyAnswered once both slots are filled and with
	// ErrQuestionNotFound for an unknown id.
	SetAnswer(ctx context.Context, id int64, role model.AnswerRole, answer string) (*model.DailyQuestion, error)
}

type MemoryRepository interface {
	Create(ctx context.Context, relationshipID int64, m model.NewMemory) (*model.Memory, error)
	// List returns the relationship's memories by date descending, ties in
	// insertion order.
	List(ctx context.Context, relationshipID int64) ([]model.Memory, error)
	// Delete removes the memory if it belongs to the relationship. Unknown ids
	// are not an error.
	Delete(ctx context.Context, relationshipID, id int64) error
}
