// Package report aggregates projects, transactions and material movements into renderer-ready models.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownKind   = errors.New("unknown report kind")
	ErrUnknownFormat = errors.New("unknown report format")
	ErrInvalidPeriod = errors.New("report start date is after end date")
)

// Kind selects which aggregation a report runs.
type Kind string

const (
	KindProjects    Kind = "obras"
	KindFinancial   Kind = "financeiro"
	KindMaterials   Kind = "materiais"
	KindPerformance Kind = "desempenho"
	KindMovements   Kind = "movimentacoes"
)

var Kinds = []Kind{KindProjects, KindFinancial, KindMaterials, KindPerformance, KindMovements}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) Title() string {
	switch k {
	case KindProjects:
		return "Relatório de Obras"
	case KindFinancial:
		return "Relatório Financeiro"
	case KindMaterials:
		return "Relatório de Materiais"
	case KindPerformance:
		return "Relatório de Desempenho"
	case KindMovements:
		return "Relatório de Movimentações de Materiais"
	}

	return "Relatório"
}

type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"
	FormatCSV   Format = "csv"
)

var Formats = []Format{FormatPDF, FormatExcel, FormatCSV}

func ParseFormat(s string) (Format, error) {
	switch s {
	case "pdf":
		return FormatPDF, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	case "csv":
		return FormatCSV, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Request describes one report generation. Nil bounds leave that side of the period open.
type Request struct {
	Kind      Kind
	Format    Format
	Start     *time.Time
	End       *time.Time
	ProjectID *uuid.UUID
	Category  string
}

// Period is an inclusive date range. End is the last instant of its day.
type Period struct {
	Start time.Time
	End   time.Time
}

var (
	defaultStart = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	defaultEnd   = time.Date(2100, 12, 31, 0, 0, 0, 0, time.UTC)
)

// NewPeriod fills missing bounds with 1900-01-01 and 2100-12-31 and stretches the end to end of day.
func NewPeriod(start, end *time.Time) (Period, error) {
	p := Period{Start: defaultStart, End: defaultEnd}

	if start != nil {
		p.Start = startOfDay(*start)
	}

	if end != nil {
		p.End = startOfDay(*end)
	}

	p.End = p.End.Add(24*time.Hour - time.Nanosecond)

	if p.Start.After(p.End) {
		return Period{}, ErrInvalidPeriod
	}

	return p, nil
}

// Unbounded reports whether both sides of the period are the defaults.
func (p Period) Unbounded() bool {
	return p.Start.Equal(defaultStart) && startOfDay(p.End).Equal(defaultEnd)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ColumnKind tells renderers how to present a cell.
type ColumnKind int

const (
	ColText ColumnKind = iota
	ColInteger
	ColNumber
	ColCurrency
	ColPercent
	ColDate
)

type Column struct {
	Title string
	Kind  ColumnKind
}

// Section is one table of a report. Cells hold string, int, decimal.Decimal or time.Time values
// matching the column kind.
type Section struct {
	Title   string
	Columns []Column
	Rows    [][]any
}

// Metric is a single labelled figure of the report summary.
type Metric struct {
	Label string
	Value any
	Kind  ColumnKind
}

// Model is the flat, format-independent content of a report. Renderers must not modify it.
type Model struct {
	Kind        Kind
	Title       string
	Context     string
	Period      Period
	GeneratedAt time.Time
	Summary     []Metric
	Sections    []Section
}
