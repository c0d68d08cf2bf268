package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/lovejourney/internal/couple"
	"github.com/dukerupert/lovejourney/internal/model"
)

type RelationshipStore struct {
	db *sql.DB
}

func NewRelationshipStore(db *sql.DB) *RelationshipStore {
	return &RelationshipStore{db: db}
}

func scanRelationship(scanner interface{ Scan(...any) error }) (*model.Relationship, error) {
	var r model.Relationship
	var partnerUserID sql.NullInt64
	var description sql.NullString

	err := scanner.Scan(
		&r.ID, &r.UserID, &partnerUserID, &r.PartnerName, &r.PartnerCode,
		&r.Anniversary, &description, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if partnerUserID.Valid {
		r.PartnerUserID = &partnerUserID.Int64
	}
	if description.Valid {
		r.Description = &description.String
	}
	r.Status = r.State()
	return &r, nil
}

const relationshipCols = `id, user_id, partner_user_id, partner_name, partner_code, anniversary, description, created_at`

func (s *RelationshipStore) Create(ctx context.Context, userID int64, code string, in model.NewRelationship) (*model.Relationship, error) {
	var desc sql.NullString
	if in.Description != nil {
		desc = sql.NullString{String: *in.Description, Valid: true}
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO relationships (user_id, partner_name, partner_code, anniversary, description) VALUES (?, ?, ?, ?, ?)`,
		userID, in.PartnerName, code, in.Anniversary, desc,
	)
	if isUniqueViolation(err, "relationships.user_id") {
		return nil, couple.ErrAlreadyInRelationship
	}
	if isUniqueViolation(err, "relationships.partner_code") {
		return nil, &couple.Error{Kind: couple.ErrConflict, Msg: "partner code already in use"}
	}
	if err != nil {
		return nil, fmt.Errorf("insert relationship: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *RelationshipStore) GetByID(ctx context.Context, id int64) (*model.Relationship, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+relationshipCols+` FROM relationships WHERE id = ?`, id)
	r, err := scanRelationship(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get relationship: %w", err)
	}
	return r, nil
}

// GetByUser finds the relationship the user created or joined.
func (s *RelationshipStore) GetByUser(ctx context.Context, userID int64) (*model.Relationship, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+relationshipCols+` FROM relationships WHERE user_id = ? OR partner_user_id = ? LIMIT 1`,
		userID, userID,
	)
	r, err := scanRelationship(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get relationship by user: %w", err)
	}
	return r, nil
}

func (s *RelationshipStore) GetByPartnerCode(ctx context.Context, code string) (*model.Relationship, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+relationshipCols+` FROM relationships WHERE partner_code = ?`, code)
	r, err := scanRelationship(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get relationship by code: %w", err)
	}
	return r, nil
}

// SetPartner fills partner_user_id only while it is still NULL.
func (s *RelationshipStore) SetPartner(ctx context.Context, id, partnerUserID int64) (*model.Relationship, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE relationships SET partner_user_id = ? WHERE id = ? AND partner_user_id IS NULL`,
		partnerUserID, id,
	)
	if isUniqueViolation(err, "relationships.partner_user_id") {
		return nil, couple.ErrAlreadyInRelationship
	}
	if err != nil {
		return nil, fmt.Errorf("set partner: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}

	r, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, couple.ErrRelationshipNotFound
	}
	if n == 0 {
		return nil, couple.ErrAlreadyLinked
	}
	return r, nil
}
