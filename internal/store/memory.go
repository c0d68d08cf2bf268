package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/lovejourney/internal/model"
)

type MemoryStore struct {
	db *sql.DB
}

func NewMemoryStore(db *sql.DB) *MemoryStore {
	return &MemoryStore{db: db}
}

func scanMemory(scanner interface{ Scan(...any) error }) (*model.Memory, error) {
	var m model.Memory
	var description sql.NullString
	var date string

	err := scanner.Scan(&m.ID, &m.RelationshipID, &m.Title, &description, &m.ImageURL, &date)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		m.Description = &description.String
	}
	if m.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	return &m, nil
}

const memoryCols = `id, relationship_id, title, description, image_url, date`

func (s *MemoryStore) Create(ctx context.Context, relationshipID int64, in model.NewMemory) (*model.Memory, error) {
	var desc sql.NullString
	if in.Description != nil {
		desc = sql.NullString{String: *in.Description, Valid: true}
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO memories (relationship_id, title, description, image_url, date) VALUES (?, ?, ?, ?, ?)`,
		relationshipID, in.Title, desc, in.ImageURL, formatTime(in.Date),
	)
	if err != nil {
		return nil, fmt.Errorf("insert memory: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *MemoryStore) GetByID(ctx context.Context, id int64) (*model.Memory, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+memoryCols+` FROM memories WHERE id = ?`, id)
	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get memory: %w", err)
	}
	return m, nil
}

// List returns memories newest first; equal dates keep insertion order.
func (s *MemoryStore) List(ctx context.Context, relationshipID int64) ([]model.Memory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+memoryCols+` FROM memories WHERE relationship_id = ? ORDER BY date DESC, id ASC`,
		relationshipID,
	)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	defer rows.Close()

	var memories []model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		memories = append(memories, *m)
	}
	return memories, rows.Err()
}

func (s *MemoryStore) Delete(ctx context.Context, relationshipID, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ? AND relationship_id = ?`, id, relationshipID)
	if err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	return nil
}
