package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindCategory(ctx context.Context, description string) (string, error) {
	query := `
		SELECT category
		FROM regras_categoria
		WHERE $1 ILIKE '%' || pattern || '%'
		ORDER BY LENGTH(pattern) DESC, created_at DESC
		LIMIT 1
	`

	var category string

	err := s.db.QueryRowContext(ctx, query, description).Scan(&category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding category rule: %w", err)
	}

	return category, nil
}

func (s *Store) CreateRule(ctx context.Context, pattern, category string) error {
	query := `
		INSERT INTO regras_categoria (pattern, category, created_at)
		VALUES ($1, $2, NOW())
	`

	if _, err := s.db.ExecContext(ctx, query, pattern, category); err != nil {
		return fmt.Errorf("creating category rule: %w", err)
	}

	return nil
}
