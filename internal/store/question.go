package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/lovejourney/internal/couple"
	"github.com/dukerupert/lovejourney/internal/model"
)

type QuestionStore struct {
	db *sql.DB
}

func NewQuestionStore(db *sql.DB) *QuestionStore {
	return &QuestionStore{db: db}
}

func scanQuestion(scanner interface{ Scan(...any) error }) (*model.DailyQuestion, error) {
	var q model.DailyQuestion
	var userAnswer, partnerAnswer sql.NullString
	var answered int

	err := scanner.Scan(
		&q.ID, &q.RelationshipID, &q.Question, &userAnswer, &partnerAnswer,
		&q.Date, &answered,
	)
	if err != nil {
		return nil, err
	}

	q.IsAnswered = answered != 0
	if userAnswer.Valid {
		q.UserAnswer = &userAnswer.String
	}
	if partnerAnswer.Valid {
		q.PartnerAnswer = &partnerAnswer.String
	}
	return &q, nil
}

const questionCols = `id, relationship_id, question, user_answer, partner_answer, date, is_answered`

func (s *QuestionStore) Create(ctx context.Context, relationshipID int64, question, date string) (*model.DailyQuestion, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_questions (relationship_id, question, date) VALUES (?, ?, ?)`,
		relationshipID, question, date,
	)
	if err != nil {
		return nil, fmt.Errorf("insert question: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *QuestionStore) GetByID(ctx context.Context, id int64) (*model.DailyQuestion, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+questionCols+` FROM daily_questions WHERE id = ?`, id)
	q, err := scanQuestion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	return q, nil
}

func (s *QuestionStore) ListForDate(ctx context.Context, relationshipID int64, date string) ([]model.DailyQuestion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+questionCols+` FROM daily_questions WHERE relationship_id = ? AND date = ? ORDER BY id ASC`,
		relationshipID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []model.DailyQuestion
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

func (s *QuestionStore) CountForRelationship(ctx context.Context, relationshipID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM daily_questions WHERE relationship_id = ?`, relationshipID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

// SetAnswer writes one slot and recomputes is_answered in a single UPDATE that
// only matches unanswered rows, so the transition to answered happens once.
func (s *QuestionStore) SetAnswer(ctx context.Context, id int64, role model.AnswerRole, answer string) (*model.DailyQuestion, error) {
	var query string
	switch role {
	case model.RoleSelf:
		query = `UPDATE daily_questions SET user_answer = ?,
		   is_answered = CASE WHEN ? <> '' AND partner_answer IS NOT NULL AND partner_answer <> '' THEN 1 ELSE 0 END
		 WHERE id = ? AND is_answered = 0`
	case model.RolePartner:
		query = `UPDATE daily_questions SET partner_answer = ?,
		   is_answered = CASE WHEN ? <> '' AND user_answer IS NOT NULL AND user_answer <> '' THEN 1 ELSE 0 END
		 WHERE id = ? AND is_answered = 0`
	default:
		return nil, couple.Invalid("unknown answer role %q", role)
	}

	result, err := s.db.ExecContext(ctx, query, answer, answer, id)
	if err != nil {
		return nil, fmt.Errorf("set answer: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}

	q, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, couple.ErrQuestionNotFound
	}
	if n == 0 {
		return nil, couple.ErrAlreadyAnswered
	}
	return q, nil
}
