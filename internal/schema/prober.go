// Package schema resolves tables whose name changed across schema migrations.
package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/MrJamesThe3rd/gestobra/internal/database"
	"github.com/MrJamesThe3rd/gestobra/internal/metrics"
)

// MovementTables lists the names the material movement log has had, probed in this order.
var MovementTables = []string{"movimentacao_materiais", "movimentacoes_materiais"}

var ErrNoCandidates = errors.New("no candidate tables given")

// Resolution is the outcome of probing a set of candidate table names.
type Resolution struct {
	Exists bool
	Table  string
	// Reason explains why no candidate resolved; empty when Exists is true.
	Reason string
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Prober checks table existence with zero-row queries.
type Prober struct {
	db      execer
	metrics *metrics.Reports
}

func NewProber(db execer, m *metrics.Reports) *Prober {
	return &Prober{db: db, metrics: m}
}

// Resolve returns the first candidate whose probe does not fail with an undefined-table error.
// Any other database error aborts the resolution.
func (p *Prober) Resolve(ctx context.Context, candidates ...string) (Resolution, error) {
	if len(candidates) == 0 {
		return Resolution{}, ErrNoCandidates
	}

	reasons := make([]string, 0, len(candidates))

	for _, name := range candidates {
		query := fmt.Sprintf("SELECT count(*) FROM %s WHERE false", pgx.Identifier{name}.Sanitize())

		_, err := p.db.ExecContext(ctx, query)
		if err == nil {
			p.metrics.ObserveProbe(name, metrics.ProbeFound)
			slog.Debug("table resolved", "table", name)

			return Resolution{Exists: true, Table: name}, nil
		}

		if !database.IsUndefinedTable(err) {
			p.metrics.ObserveProbe(name, metrics.ProbeError)
			return Resolution{}, fmt.Errorf("probing table %s: %w", name, err)
		}

		p.metrics.ObserveProbe(name, metrics.ProbeMissing)
		reasons = append(reasons, fmt.Sprintf("%s: %v", name, err))
	}

	return Resolution{Reason: strings.Join(reasons, "; ")}, nil
}

// Resolver memoizes a successful resolution so the same names are not probed again.
// Misses are not cached: the table may be created by a later migration. A cached hit goes
// stale when a migration renames the table; callers drop it with Invalidate.
type Resolver struct {
	prober     *Prober
	candidates []string

	mu       sync.Mutex
	resolved *Resolution
}

func NewResolver(p *Prober, candidates ...string) *Resolver {
	return &Resolver{prober: p, candidates: candidates}
}

func (r *Resolver) Resolve(ctx context.Context) (Resolution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved != nil {
		return *r.resolved, nil
	}

	res, err := r.prober.Resolve(ctx, r.candidates...)
	if err != nil {
		return Resolution{}, err
	}

	if res.Exists {
		r.resolved = &res
	}

	return res, nil
}

// Invalidate forgets the cached resolution so the next Resolve probes again.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved != nil {
		slog.Info("table resolution invalidated", "table", r.resolved.Table)
	}

	r.resolved = nil
}
