package report

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

var hundred = decimal.NewFromInt(100)

// percent returns part/whole*100 rounded to two places, or 0 when whole is 0.
func percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}

	return part.Div(whole).Mul(hundred).Round(2)
}

// ratio returns a/b rounded to two places, or 0 when b is 0.
func ratio(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}

	return a.Div(b).Round(2)
}

type projectTotals struct {
	expenses decimal.Decimal
	income   decimal.Decimal
}

// totalsByProject sums income and expenses per project in one pass. Transactions without a
// project are skipped.
func totalsByProject(txs []*transaction.Transaction) map[uuid.UUID]*projectTotals {
	totals := make(map[uuid.UUID]*projectTotals)

	for _, tx := range txs {
		if tx.ProjectID == nil {
			continue
		}

		t, ok := totals[*tx.ProjectID]
		if !ok {
			t = &projectTotals{}
			totals[*tx.ProjectID] = t
		}

		switch tx.Type {
		case transaction.TypeExpense:
			t.expenses = t.expenses.Add(tx.Value)
		case transaction.TypeIncome:
			t.income = t.income.Add(tx.Value)
		}
	}

	return totals
}
