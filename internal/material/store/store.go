package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MrJamesThe3rd/gestobra/internal/database"
	"github.com/MrJamesThe3rd/gestobra/internal/material"
	"github.com/MrJamesThe3rd/gestobra/internal/schema"
)

// tableResolver names the movement table, which exists under one of two names depending on
// which migrations the database has seen.
type tableResolver interface {
	Resolve(ctx context.Context) (schema.Resolution, error)
	Invalidate()
}

type Store struct {
	db        *sql.DB
	movements tableResolver
}

func New(db *sql.DB, movements tableResolver) *Store {
	return &Store{db: db, movements: movements}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, name, unit, unit_price, category, min_stock, max_stock, created_at, updated_at
func scanMaterial(s scanner) (*material.Material, error) {
	var m material.Material

	if err := s.Scan(
		&m.ID, &m.Name, &m.Unit, &m.UnitPrice, &m.Category, &m.MinStock, &m.MaxStock, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// Expected column order: id, material_id, project_id, date, quantity, direction, unit_value, responsible, note, created_at
func scanMovement(s scanner) (*material.Movement, error) {
	var mv material.Movement

	var direction string

	if err := s.Scan(
		&mv.ID, &mv.MaterialID, &mv.ProjectID, &mv.Date, &mv.Quantity, &direction, &mv.UnitValue,
		&mv.Responsible, &mv.Note, &mv.CreatedAt,
	); err != nil {
		return nil, err
	}

	mv.Direction = material.Direction(direction)

	return &mv, nil
}

const selectMaterialColumns = `id, name, unit, unit_price, category, min_stock, max_stock, created_at, updated_at`

const selectMovementColumns = `id, material_id, project_id, date, quantity, direction, unit_value, responsible, note, created_at`

func (s *Store) CreateMaterial(ctx context.Context, m *material.Material) error {
	query := `
		INSERT INTO materiais (name, unit, unit_price, category, min_stock, max_stock, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		m.Name,
		m.Unit,
		m.UnitPrice,
		m.Category,
		m.MinStock,
		m.MaxStock,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating material: %w", err)
	}

	return nil
}

func (s *Store) GetMaterial(ctx context.Context, id uuid.UUID) (*material.Material, error) {
	query := `SELECT ` + selectMaterialColumns + ` FROM materiais WHERE id = $1`

	m, err := scanMaterial(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, material.ErrNotFound
		}

		return nil, fmt.Errorf("getting material: %w", err)
	}

	return m, nil
}

func (s *Store) ListMaterials(ctx context.Context, filter material.ListFilter) ([]*material.Material, error) {
	query := `SELECT ` + selectMaterialColumns + ` FROM materiais WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Category != nil {
		query += fmt.Sprintf(" AND category = $%d", argIdx)

		args = append(args, *filter.Category)
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
		return nil, fmt.Errorf("listing materials: %w", err)
	}
	defer rows.Close()

	var materials []*material.Material

	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning material: %w", err)
		}

		materials = append(materials, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating materials: %w", err)
	}

	return materials, nil
}

func (s *Store) UpdateMaterial(ctx context.Context, m *material.Material) error {
	query := `
		UPDATE materiais
		SET name = $1, unit = $2, unit_price = $3, category = $4, min_stock = $5, max_stock = $6, updated_at = NOW()
		WHERE id = $7
	`

	res, err := s.db.ExecContext(ctx, query,
		m.Name,
		m.Unit,
		m.UnitPrice,
		m.Category,
		m.MinStock,
		m.MaxStock,
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("updating material: %w", err)
	}

	return requireAffected(res, material.ErrNotFound)
}

func (s *Store) DeleteMaterial(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM materiais WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return material.ErrInUse
		}

		return fmt.Errorf("deleting material: %w", err)
	}

	return requireAffected(res, material.ErrNotFound)
}

// movementTable returns the quoted name of the movement table.
func (s *Store) movementTable(ctx context.Context) (string, error) {
	res, err := s.movements.Resolve(ctx)
	if err != nil {
		return "", fmt.Errorf("resolving movement table: %w", err)
	}

	if !res.Exists {
		slog.Warn("material movement table missing", "reason", res.Reason)
		return "", material.ErrMovementsUnavailable
	}

	return pgx.Identifier{res.Table}.Sanitize(), nil
}

// withMovementTable runs fn against the movement table. A resolved table that has since been
// renamed fails with an undefined-table error; the resolution is then dropped and fn runs once
// more against the freshly resolved name.
func (s *Store) withMovementTable(ctx context.Context, fn func(table string) error) error {
	table, err := s.movementTable(ctx)
	if err != nil {
		return err
	}

	err = fn(table)
	if err == nil || !database.IsUndefinedTable(err) {
		return err
	}

	slog.Warn("movement table disappeared, resolving again", "table", table, "error", err)
	s.movements.Invalidate()

	table, err = s.movementTable(ctx)
	if err != nil {
		return err
	}

	return fn(table)
}

func (s *Store) CreateMovement(ctx context.Context, mv *material.Movement) error {
	return s.withMovementTable(ctx, func(table string) error {
		query := `
			INSERT INTO ` + table + ` (material_id, project_id, date, quantity, direction, unit_value, responsible, note, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
			RETURNING id, created_at
		`

		err := s.db.QueryRowContext(ctx, query,
			mv.MaterialID,
			mv.ProjectID,
			mv.Date,
			mv.Quantity,
			mv.Direction,
			mv.UnitValue,
			mv.Responsible,
			mv.Note,
		).Scan(&mv.ID, &mv.CreatedAt)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return material.ErrUnknownReference
			}

			return fmt.Errorf("creating movement: %w", err)
		}

		return nil
	})
}

func (s *Store) ListMovements(ctx context.Context, filter material.MovementFilter) ([]*material.Movement, error) {
	var movements []*material.Movement

	err := s.withMovementTable(ctx, func(table string) error {
		movements = nil

		query := `SELECT ` + selectMovementColumns + ` FROM ` + table + ` WHERE TRUE`

		var args []any

		argIdx := 1

		if filter.MaterialID != nil {
			query += fmt.Sprintf(" AND material_id = $%d", argIdx)

			args = append(args, *filter.MaterialID)
			argIdx++
		}

		if filter.ProjectID != nil {
			query += fmt.Sprintf(" AND project_id = $%d", argIdx)

			args = append(args, *filter.ProjectID)
			argIdx++
		}

		if filter.StartDate != nil {
			query += fmt.Sprintf(" AND date >= $%d", argIdx)

			args = append(args, *filter.StartDate)
			argIdx++
		}

		if filter.EndDate != nil {
			query += fmt.Sprintf(" AND date <= $%d", argIdx)

			args = append(args, *filter.EndDate)
		}

		query += " ORDER BY date ASC, created_at ASC"

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("listing movements: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			mv, err := scanMovement(rows)
			if err != nil {
				return fmt.Errorf("scanning movement: %w", err)
			}

			movements = append(movements, mv)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating movements: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return movements, nil
}

func (s *Store) DeleteMovement(ctx context.Context, id uuid.UUID) error {
	return s.withMovementTable(ctx, func(table string) error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("deleting movement: %w", err)
		}

		return requireAffected(res, material.ErrMovementNotFound)
	})
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
