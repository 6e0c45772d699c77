package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/gestobra/internal/database"
	"github.com/MrJamesThe3rd/gestobra/internal/document"
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

// Expected column order: id, project_id, title, description, type, file_url, file_name, owner, created_at, updated_at
func scanDocument(s scanner) (*document.Document, error) {
	var d document.Document

	if err := s.Scan(
		&d.ID, &d.ProjectID, &d.Title, &d.Description, &d.Type, &d.FileURL, &d.FileName, &d.Owner,
		&d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &d, nil
}

const selectDocumentColumns = `id, project_id, title, description, type, file_url, file_name, owner, created_at, updated_at`

func (s *Store) CreateDocument(ctx context.Context, d *document.Document) error {
	query := `
		INSERT INTO documentos (project_id, title, description, type, file_url, file_name, owner, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		d.ProjectID,
		d.Title,
		d.Description,
		d.Type,
		d.FileURL,
		d.FileName,
		d.Owner,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return document.ErrProjectNotFound
		}

		return fmt.Errorf("creating document: %w", err)
	}

	return nil
}

func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	query := `SELECT ` + selectDocumentColumns + ` FROM documentos WHERE id = $1`

	d, err := scanDocument(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, document.ErrNotFound
		}

		return nil, fmt.Errorf("getting document: %w", err)
	}

	return d, nil
}

func (s *Store) ListDocuments(ctx context.Context, filter document.ListFilter) ([]*document.Document, error) {
	query := `SELECT ` + selectDocumentColumns + ` FROM documentos WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.ProjectID != nil {
		query += fmt.Sprintf(" AND project_id = $%d", argIdx)

		args = append(args, *filter.ProjectID)
		argIdx++
	}

	if filter.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []*document.Document

	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

func (s *Store) UpdateDocument(ctx context.Context, d *document.Document) error {
	query := `
		UPDATE documentos
		SET title = $1, description = $2, type = $3, updated_at = NOW()
		WHERE id = $4
	`

	res, err := s.db.ExecContext(ctx, query, d.Title, d.Description, d.Type, d.ID)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}

	return requireAffected(res)
}

func (s *Store) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documentos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return document.ErrNotFound
	}

	return nil
}
