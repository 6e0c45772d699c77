package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/gestobra/internal/report"
)

const dbTimeout = 5 * time.Second

// FormatMoney renders a value the way reports do, e.g. "R$ 1.234,56".
func FormatMoney(d decimal.Decimal) string {
	return report.FormatCurrency(d)
}

// FormatDate renders a date as DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return report.FormatDate(t)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func errorStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(s)
}

func successStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(s)
}
