package couple

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dukerupert/lovejourney/internal/model"
)

// Prompter supplies the text of automatically created questions.
type Prompter interface {
	Pick() string
}

// Service is the contract the HTTP layer talks to. It resolves the caller's
// relationship, enforces who may write what, and reacts to ledger outcomes.
type Service struct {
	Registry  *Registry
	Questions *QuestionLedger
	Memories  *MemoryLedger

	prompts Prompter
	now     func() time.Time
	seedMu  sync.Mutex
}

type Option func(*Service)

// WithClock overrides the clock used to date chained questions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPartnerCodes overrides partner code generation.
func WithPartnerCodes(gen func() (string, error)) Option {
	return func(s *Service) { s.Registry.newCode = gen }
}

func NewService(rels RelationshipRepository, questions QuestionRepository, memories MemoryRepository, prompts Prompter, opts ...Option) *Service {
	s := &Service{
		Registry:  NewRegistry(rels),
		Questions: NewQuestionLedger(questions),
		Memories:  NewMemoryLedger(memories),
		prompts:   prompts,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the service clock's current calendar day.
func (s *Service) Today() string {
	return s.now().Format(time.DateOnly)
}

// Relationship returns the caller's relationship, or nil if they have none.
func (s *Service) Relationship(ctx context.Context, userID int64) (*model.Relationship, error) {
	return s.Registry.FindByUser(ctx, userID)
}

func (s *Service) CreateRelationship(ctx context.Context, userID int64, in model.NewRelationship) (*model.Relationship, error) {
	return s.Registry.CreateRelationship(ctx, userID, in)
}

// LinkByCode joins the caller to the relationship that owns code.
func (s *Service) LinkByCode(ctx context.Context, userID int64, code string) (*model.Relationship, error) {
	if NormalizePartnerCode(code) == "" {
		return nil, Invalid("partner code is required")
	}
	rel, err := s.Registry.FindByPartnerCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, ErrInvalidPartnerCode
	}
	return s.Registry.LinkPartner(ctx, rel.ID, userID)
}

// LinkedRelationship returns the caller's relationship once it has both
// members.
func (s *Service) LinkedRelationship(ctx context.Context, userID int64) (*model.Relationship, error) {
	rel, err := s.Registry.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, ErrRelationshipNotFound
	}
	if rel.State() != model.Linked {
		return nil, ErrPartnerRequired
	}
	return rel, nil
}

// RoleOf returns the answer slot userID writes on rel's questions.
func RoleOf(rel *model.Relationship, userID int64) model.AnswerRole {
	if rel.UserID == userID {
		return model.RoleSelf
	}
	return model.RolePartner
}

// QuestionsForDate lists the caller's questions for date. A relationship with
// no questions at all gets its first one seeded for that date.
func (s *Service) QuestionsForDate(ctx context.Context, userID int64, date string) ([]model.DailyQuestion, error) {
	day, err := ParseDay(date)
	if err != nil {
		return nil, Invalid("date must be a YYYY-MM-DD date")
	}
	rel, err := s.LinkedRelationship(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.seed(ctx, rel.ID, day); err != nil {
		return nil, err
	}
	return s.Questions.ListForDate(ctx, rel.ID, day)
}

func (s *Service) seed(ctx context.Context, relationshipID int64, date string) error {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	n, err := s.Questions.Count(ctx, relationshipID)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := s.Questions.Create(ctx, relationshipID, s.prompts.Pick(), date); err != nil {
		return fmt.Errorf("seed question: %w", err)
	}
	return nil
}

func (s *Service) CreateQuestion(ctx context.Context, userID int64, question, date string) (*model.DailyQuestion, error) {
	rel, err := s.LinkedRelationship(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Questions.Create(ctx, rel.ID, question, date)
}

// AnswerResult is the effect of one answer: the updated question, its outcome,
// and the successor question when the answer completed it.
type AnswerResult struct {
	Question *model.DailyQuestion `json:"question"`
	Outcome  Outcome              `json:"outcome"`
	Next     *model.DailyQuestion `json:"next,omitempty"`
}

// Answer records the caller's answer. requested may be empty, in which case
// the slot follows from the caller's role; naming the other role's slot is
// forbidden.
func (s *Service) Answer(ctx context.Context, userID, questionID int64, requested model.AnswerRole, answer string) (*AnswerResult, error) {
	rel, err := s.LinkedRelationship(ctx, userID)
	if err != nil {
		return nil, err
	}

	role := RoleOf(rel, userID)
	if requested != "" && requested != role {
		if !requested.Valid() {
			return nil, Invalid("role must be %q or %q", model.RoleSelf, model.RolePartner)
		}
		return nil, ErrWrongAnswerSlot
	}

	q, err := s.Questions.Get(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q == nil || q.RelationshipID != rel.ID {
		return nil, ErrQuestionNotFound
	}

	updated, outcome, err := s.Questions.RecordAnswer(ctx, questionID, role, answer)
	if err != nil {
		return nil, err
	}
	res := &AnswerResult{Question: updated, Outcome: outcome}
	if outcome != FullyAnswered {
		return res, nil
	}

	next, err := s.Questions.Create(ctx, rel.ID, s.prompts.Pick(), s.Today())
	if err != nil {
		return nil, fmt.Errorf("create next question: %w", err)
	}
	res.Next = next
	return res, nil
}

func (s *Service) ListMemories(ctx context.Context, userID int64) ([]model.Memory, error) {
	rel, err := s.LinkedRelationship(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Memories.List(ctx, rel.ID)
}

func (s *Service) CreateMemory(ctx context.Context, userID int64, m model.NewMemory) (*model.Memory, error) {
	rel, err := s.LinkedRelationship(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Memories.Create(ctx, rel.ID, m)
}

// DeleteMemory removes a memory from the caller's relationship and returns the
// relationship id. Deleting an unknown memory succeeds.
func (s *Service) DeleteMemory(ctx context.Context, userID, id int64) (int64, error) {
	rel, err := s.Registry.FindByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if rel == nil {
		return 0, ErrRelationshipNotFound
	}
	return rel.ID, s.Memories.Delete(ctx, rel.ID, id)
}
