package report

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/gestobra/internal/project"
	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

const (
	BudgetExceeded = "Excedido"
	BudgetWithin   = "Dentro do orçamento"
)

type ProjectRow struct {
	Project      *project.Project
	Expenses     decimal.Decimal
	Income       decimal.Decimal
	Remaining    decimal.Decimal // never negative; see Overrun
	Overrun      decimal.Decimal
	Utilisation  decimal.Decimal // expenses as a percentage of budget
	BudgetStatus string
}

type ProjectsReport struct {
	Rows          []ProjectRow
	ByStatus      map[project.Status]int
	OverBudget    int
	TotalBudget   decimal.Decimal
	TotalExpenses decimal.Decimal
	TotalIncome   decimal.Decimal
}

// AggregateProjects computes the budget position of each project from the period's transactions.
func AggregateProjects(projects []*project.Project, txs []*transaction.Transaction) *ProjectsReport {
	totals := totalsByProject(txs)

	r := &ProjectsReport{
		Rows:     make([]ProjectRow, 0, len(projects)),
		ByStatus: make(map[project.Status]int, len(project.Statuses)),
	}

	for _, p := range projects {
		row := ProjectRow{Project: p}

		if t, ok := totals[p.ID]; ok {
			row.Expenses = t.expenses
			row.Income = t.income
		}

		row.Utilisation = percent(row.Expenses, p.Budget)

		diff := p.Budget.Sub(row.Expenses)
		if diff.IsNegative() {
			row.Overrun = diff.Neg()
			row.BudgetStatus = BudgetExceeded
			r.OverBudget++
		} else {
			row.Remaining = diff
			row.BudgetStatus = BudgetWithin
		}

		r.Rows = append(r.Rows, row)
		r.ByStatus[p.Status]++
		r.TotalBudget = r.TotalBudget.Add(p.Budget)
		r.TotalExpenses = r.TotalExpenses.Add(row.Expenses)
		r.TotalIncome = r.TotalIncome.Add(row.Income)
	}

	return r
}

func (r *ProjectsReport) Model() *Model {
	rows := make([][]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, []any{
			row.Project.Name,
			row.Project.Status.Label(),
			row.Project.Budget,
			row.Project.Progress,
			row.Expenses,
			row.Income,
			row.Remaining,
			row.Overrun,
			row.Utilisation,
			row.BudgetStatus,
		})
	}

	statusRows := make([][]any, 0, len(project.Statuses))
	for _, s := range project.Statuses {
		statusRows = append(statusRows, []any{s.Label(), r.ByStatus[s]})
	}

	return &Model{
		Kind:  KindProjects,
		Title: KindProjects.Title(),
		Summary: []Metric{
			{Label: "Total de obras", Value: len(r.Rows), Kind: ColInteger},
			{Label: "Orçamento total", Value: r.TotalBudget, Kind: ColCurrency},
			{Label: "Despesas no período", Value: r.TotalExpenses, Kind: ColCurrency},
			{Label: "Receitas no período", Value: r.TotalIncome, Kind: ColCurrency},
			{Label: "Obras com orçamento excedido", Value: r.OverBudget, Kind: ColInteger},
		},
		Sections: []Section{
			{
				Title: "Obras",
				Columns: []Column{
					{Title: "Obra", Kind: ColText},
					{Title: "Status", Kind: ColText},
					{Title: "Orçamento", Kind: ColCurrency},
					{Title: "Progresso", Kind: ColPercent},
					{Title: "Despesas", Kind: ColCurrency},
					{Title: "Receitas", Kind: ColCurrency},
					{Title: "Orçamento restante", Kind: ColCurrency},
					{Title: "Excesso", Kind: ColCurrency},
					{Title: "Utilizado", Kind: ColPercent},
					{Title: "Situação do orçamento", Kind: ColText},
				},
				Rows: rows,
			},
			{
				Title: "Obras por status",
				Columns: []Column{
					{Title: "Status", Kind: ColText},
					{Title: "Quantidade", Kind: ColInteger},
				},
				Rows: statusRows,
			},
		},
	}
}
