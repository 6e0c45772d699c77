package report

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/gestobra/internal/project"
	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

const uncategorised = "Sem categoria"

type CategoryRow struct {
	Category string
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Balance  decimal.Decimal
	// Share is this category's expenses as a percentage of all expenses.
	Share decimal.Decimal
}

type FinancialReport struct {
	Categories    []CategoryRow
	Transactions  []*transaction.Transaction
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Balance       decimal.Decimal
	// Settlement totals are kept per type so receivables and payables never net out.
	PendingIncome   decimal.Decimal
	PendingExpenses decimal.Decimal
	PaidIncome      decimal.Decimal
	PaidExpenses    decimal.Decimal

	projectNames map[uuid.UUID]string
}

// AggregateFinancial groups the period's transactions by category. projects resolves project names
// for the detail rows and may be nil.
func AggregateFinancial(txs []*transaction.Transaction, projects map[uuid.UUID]*project.Project) *FinancialReport {
	r := &FinancialReport{
		Transactions: txs,
		projectNames: make(map[uuid.UUID]string, len(projects)),
	}

	for id, p := range projects {
		r.projectNames[id] = p.Name
	}

	buckets := make(map[string]*CategoryRow)

	var order []string

	for _, tx := range txs {
		name := tx.Category
		if name == "" {
			name = uncategorised
		}

		b, ok := buckets[name]
		if !ok {
			b = &CategoryRow{Category: name}
			buckets[name] = b
			order = append(order, name)
		}

		paid := tx.PaymentStatus == transaction.PaymentPaid

		switch tx.Type {
		case transaction.TypeIncome:
			b.Income = b.Income.Add(tx.Value)
			r.TotalIncome = r.TotalIncome.Add(tx.Value)

			if paid {
				r.PaidIncome = r.PaidIncome.Add(tx.Value)
			} else {
				r.PendingIncome = r.PendingIncome.Add(tx.Value)
			}
		case transaction.TypeExpense:
			b.Expenses = b.Expenses.Add(tx.Value)
			r.TotalExpenses = r.TotalExpenses.Add(tx.Value)

			if paid {
				r.PaidExpenses = r.PaidExpenses.Add(tx.Value)
			} else {
				r.PendingExpenses = r.PendingExpenses.Add(tx.Value)
			}
		}
	}

	sort.Strings(order)

	r.Categories = make([]CategoryRow, 0, len(order))
	for _, name := range order {
		b := buckets[name]
		b.Balance = b.Income.Sub(b.Expenses)
		b.Share = percent(b.Expenses, r.TotalExpenses)
		r.Categories = append(r.Categories, *b)
	}

	r.Balance = r.TotalIncome.Sub(r.TotalExpenses)

	return r
}

func (r *FinancialReport) projectName(id *uuid.UUID) string {
	if id == nil {
		return "-"
	}

	if name, ok := r.projectNames[*id]; ok {
		return name
	}

	return "-"
}

func (r *FinancialReport) Model() *Model {
	categoryRows := make([][]any, 0, len(r.Categories))
	for _, c := range r.Categories {
		categoryRows = append(categoryRows, []any{c.Category, c.Income, c.Expenses, c.Balance, c.Share})
	}

	detailRows := make([][]any, 0, len(r.Transactions))
	for _, tx := range r.Transactions {
		category := tx.Category
		if category == "" {
			category = uncategorised
		}

		detailRows = append(detailRows, []any{
			tx.Date,
			tx.Description,
			category,
			r.projectName(tx.ProjectID),
			tx.Type.Label(),
			tx.PaymentStatus.Label(),
			tx.Signed(),
		})
	}

	return &Model{
		Kind:  KindFinancial,
		Title: KindFinancial.Title(),
		Summary: []Metric{
			{Label: "Total de entradas", Value: r.TotalIncome, Kind: ColCurrency},
			{Label: "Total de saídas", Value: r.TotalExpenses, Kind: ColCurrency},
			{Label: "Saldo", Value: r.Balance, Kind: ColCurrency},
			{Label: "Entradas recebidas", Value: r.PaidIncome, Kind: ColCurrency},
			{Label: "Entradas a receber", Value: r.PendingIncome, Kind: ColCurrency},
			{Label: "Saídas pagas", Value: r.PaidExpenses, Kind: ColCurrency},
			{Label: "Saídas a pagar", Value: r.PendingExpenses, Kind: ColCurrency},
			{Label: "Transações", Value: len(r.Transactions), Kind: ColInteger},
		},
		Sections: []Section{
			{
				Title: "Resumo por categoria",
				Columns: []Column{
					{Title: "Categoria", Kind: ColText},
					{Title: "Receitas", Kind: ColCurrency},
					{Title: "Despesas", Kind: ColCurrency},
					{Title: "Saldo", Kind: ColCurrency},
					{Title: "% das despesas", Kind: ColPercent},
				},
				Rows: categoryRows,
			},
			{
				Title: "Transações",
				Columns: []Column{
					{Title: "Data", Kind: ColDate},
					{Title: "Descrição", Kind: ColText},
					{Title: "Categoria", Kind: ColText},
					{Title: "Obra", Kind: ColText},
					{Title: "Tipo", Kind: ColText},
					{Title: "Pagamento", Kind: ColText},
					{Title: "Valor", Kind: ColCurrency},
				},
				Rows: detailRows,
			},
		},
	}
}
