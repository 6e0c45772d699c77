package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/gestobra/internal/database"
	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
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

// Expected column order: id, project_id, date, value, type, category, description, payment_status,
// material_id, stage_id, created_at, updated_at
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var typeStr, statusStr string

	if err := s.Scan(
		&tx.ID, &tx.ProjectID, &tx.Date, &tx.Value, &typeStr, &tx.Category, &tx.Description, &statusStr,
		&tx.MaterialID, &tx.StageID, &tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = transaction.Type(typeStr)
	tx.PaymentStatus = transaction.PaymentStatus(statusStr)

	return &tx, nil
}

const selectTransactionColumns = `
	t.id, t.project_id, t.date, t.value, t.type, t.category, t.description, t.payment_status,
	t.material_id, t.stage_id, t.created_at, t.updated_at
`

const insertTransaction = `
	INSERT INTO transacoes (project_id, date, value, type, category, description, payment_status, material_id, stage_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	RETURNING id, created_at
`

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insert(ctx context.Context, q queryRower, tx *transaction.Transaction) error {
	err := q.QueryRowContext(ctx, insertTransaction,
		tx.ProjectID,
		tx.Date,
		tx.Value,
		tx.Type,
		tx.Category,
		tx.Description,
		tx.PaymentStatus,
		tx.MaterialID,
		tx.StageID,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return transaction.ErrProjectNotFound
		}

		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	return insert(ctx, s.db, tx)
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transacoes t WHERE t.id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transacoes t WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.ProjectID != nil {
		query += fmt.Sprintf(" AND t.project_id = $%d", argIdx)

		args = append(args, *filter.ProjectID)
		argIdx++
	}

	if filter.Type != nil {
		query += fmt.Sprintf(" AND t.type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	if filter.Category != nil {
		query += fmt.Sprintf(" AND t.category = $%d", argIdx)

		args = append(args, *filter.Category)
		argIdx++
	}

	if filter.PaymentStatus != nil {
		query += fmt.Sprintf(" AND t.payment_status = $%d", argIdx)

		args = append(args, *filter.PaymentStatus)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY t.date ASC, t.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM transacoes WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []string

	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	return categories, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		UPDATE transacoes
		SET project_id = $1, date = $2, value = $3, type = $4, category = $5, description = $6,
			payment_status = $7, material_id = $8, stage_id = $9, updated_at = NOW()
		WHERE id = $10
	`

	res, err := s.db.ExecContext(ctx, query,
		tx.ProjectID,
		tx.Date,
		tx.Value,
		tx.Type,
		tx.Category,
		tx.Description,
		tx.PaymentStatus,
		tx.MaterialID,
		tx.StageID,
		tx.ID,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return transaction.ErrProjectNotFound
		}

		return fmt.Errorf("updating transaction: %w", err)
	}

	return requireAffected(res)
}

func (s *Store) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status transaction.PaymentStatus) error {
	query := `
		UPDATE transacoes
		SET payment_status = $1, updated_at = NOW()
		WHERE id = $2
	`

	res, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating payment status: %w", err)
	}

	return requireAffected(res)
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transacoes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

func importLockKey(minDate, maxDate time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(minDate.Format(time.DateOnly)))
	h.Write([]byte{0})
	h.Write([]byte(maxDate.Format(time.DateOnly)))

	return int64(h.Sum64())
}

type importTx struct {
	tx *sql.Tx
}

// BeginImport opens a transaction holding an advisory lock on the date range, so two imports of
// overlapping statements cannot both pass duplicate detection.
func (s *Store) BeginImport(ctx context.Context, minDate, maxDate time.Time) (transaction.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	lockKey := importLockKey(minDate, maxDate)
	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) FindDuplicates(ctx context.Context, params []transaction.CreateParams) ([]*transaction.Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	minDate := params[0].Date
	maxDate := params[0].Date
	keySet := make(map[transaction.ImportKey]struct{}, len(params))

	for _, p := range params {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}

		keySet[transaction.NewImportKey(p.Date, p.Value, p.Type, p.Description)] = struct{}{}
	}

	query := `SELECT ` + selectTransactionColumns + `
		FROM transacoes t
		WHERE t.date >= $1 AND t.date <= $2
		ORDER BY t.date ASC`

	rows, err := itx.tx.QueryContext(ctx, query, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		if _, found := keySet[transaction.NewImportKey(tx.Date, tx.Value, tx.Type, tx.Description)]; !found {
			continue
		}

		duplicates = append(duplicates, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

func (itx *importTx) CreateTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	for _, tx := range txs {
		if err := insert(ctx, itx.tx, tx); err != nil {
			return err
		}
	}

	return nil
}
