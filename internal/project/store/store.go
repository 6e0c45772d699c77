package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/gestobra/internal/database"
	"github.com/MrJamesThe3rd/gestobra/internal/project"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, name, status, budget, progress, address, created_at, updated_at
func scanProject(s scanner) (*project.Project, error) {
	var p project.Project

	var status string

	if err := s.Scan(
		&p.ID, &p.Name, &status, &p.Budget, &p.Progress, &p.Address, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Status = project.Status(status)

	return &p, nil
}

const selectProjectColumns = `id, name, status, budget, progress, address, created_at, updated_at`

func (s *Store) CreateProject(ctx context.Context, p *project.Project) error {
	query := `
		INSERT INTO obras (name, status, budget, progress, address, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.Name,
		p.Status,
		p.Budget,
		p.Progress,
		p.Address,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating project: %w", err)
	}

	return nil
}

func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	query := `SELECT ` + selectProjectColumns + ` FROM obras WHERE id = $1`

	p, err := scanProject(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, project.ErrNotFound
		}

		return nil, fmt.Errorf("getting project: %w", err)
	}

	return p, nil
}

func (s *Store) ListProjects(ctx context.Context, filter project.ListFilter) ([]*project.Project, error) {
	query := `SELECT ` + selectProjectColumns + ` FROM obras WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(" AND name ILIKE $%d", argIdx)

		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*project.Project

	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}

		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}

	return projects, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *project.Project) error {
	query := `
		UPDATE obras
		SET name = $1, status = $2, budget = $3, progress = $4, address = $5, updated_at = NOW()
		WHERE id = $6
	`

	res, err := s.db.ExecContext(ctx, query,
		p.Name,
		p.Status,
		p.Budget,
		p.Progress,
		p.Address,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}

	return requireAffected(res, project.ErrNotFound)
}

func (s *Store) DeleteProject(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM obras WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return project.ErrInUse
		}

		return fmt.Errorf("deleting project: %w", err)
	}

	return requireAffected(res, project.ErrNotFound)
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return notFound
	}

	return nil
}
