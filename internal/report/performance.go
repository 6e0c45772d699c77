package report

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/gestobra/internal/project"
	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

const (
	SituationCompleted = "Concluída"
	SituationExceeded  = "Excedido"
	SituationAhead     = "Adiantada"
	SituationBehind    = "Atrasada"
)

type PerformanceRow struct {
	Project     *project.Project
	Expenses    decimal.Decimal
	Utilisation decimal.Decimal
	// CPI compares physical progress with budget consumption; above 1 means progress outpaces spending.
	CPI       decimal.Decimal
	Situation string
}

type PerformanceReport struct {
	Rows               []PerformanceRow
	AverageProgress    decimal.Decimal
	AverageUtilisation decimal.Decimal
	Completed          int
	OverBudget         int
}

func AggregatePerformance(projects []*project.Project, txs []*transaction.Transaction) *PerformanceReport {
	totals := totalsByProject(txs)

	r := &PerformanceReport{Rows: make([]PerformanceRow, 0, len(projects))}

	var progressSum, utilisationSum decimal.Decimal

	for _, p := range projects {
		row := PerformanceRow{Project: p}

		if t, ok := totals[p.ID]; ok {
			row.Expenses = t.expenses
		}

		row.Utilisation = percent(row.Expenses, p.Budget)
		progress := decimal.NewFromInt(int64(p.Progress))
		row.CPI = ratio(progress, row.Utilisation)

		overBudget := row.Expenses.GreaterThan(p.Budget)

		switch {
		case p.Status == project.StatusCompleted:
			row.Situation = SituationCompleted
		case overBudget:
			row.Situation = SituationExceeded
		case progress.GreaterThanOrEqual(row.Utilisation):
			row.Situation = SituationAhead
		default:
			row.Situation = SituationBehind
		}

		if p.Status == project.StatusCompleted {
			r.Completed++
		}

		if overBudget {
			r.OverBudget++
		}

		progressSum = progressSum.Add(progress)
		utilisationSum = utilisationSum.Add(row.Utilisation)
		r.Rows = append(r.Rows, row)
	}

	count := decimal.NewFromInt(int64(len(r.Rows)))
	r.AverageProgress = ratio(progressSum, count)
	r.AverageUtilisation = ratio(utilisationSum, count)

	return r
}

func (r *PerformanceReport) Model() *Model {
	rows := make([][]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, []any{
			row.Project.Name,
			row.Project.Status.Label(),
			row.Project.Progress,
			row.Project.Budget,
			row.Expenses,
			row.Utilisation,
			row.CPI,
			row.Situation,
		})
	}

	return &Model{
		Kind:  KindPerformance,
		Title: KindPerformance.Title(),
		Summary: []Metric{
			{Label: "Obras avaliadas", Value: len(r.Rows), Kind: ColInteger},
			{Label: "Progresso médio", Value: r.AverageProgress, Kind: ColPercent},
			{Label: "Utilização média do orçamento", Value: r.AverageUtilisation, Kind: ColPercent},
			{Label: "Obras concluídas", Value: r.Completed, Kind: ColInteger},
			{Label: "Obras com orçamento excedido", Value: r.OverBudget, Kind: ColInteger},
		},
		Sections: []Section{
			{
				Title: "Desempenho por obra",
				Columns: []Column{
					{Title: "Obra", Kind: ColText},
					{Title: "Status", Kind: ColText},
					{Title: "Progresso", Kind: ColPercent},
					{Title: "Orçamento", Kind: ColCurrency},
					{Title: "Despesas", Kind: ColCurrency},
					{Title: "Utilização", Kind: ColPercent},
					{Title: "Índice de desempenho", Kind: ColNumber},
					{Title: "Situação", Kind: ColText},
				},
				Rows: rows,
			},
		},
	}
}
