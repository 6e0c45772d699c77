package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MrJamesThe3rd/gestobra/internal/slug"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// FormatCurrency renders an amount as Brazilian reais, e.g. "R$ 1.234,50".
func FormatCurrency(d decimal.Decimal) string {
	s := printer.Sprintf("%.2f", d.Abs().Round(2).InexactFloat64())
	if d.Round(2).IsNegative() {
		return "-R$ " + s
	}

	return "R$ " + s
}

func FormatPercent(d decimal.Decimal) string {
	return printer.Sprintf("%.2f", d.Round(2).InexactFloat64()) + "%"
}

func FormatNumber(d decimal.Decimal) string {
	return printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func FormatDateTime(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}

// FormatPeriod renders the period banner shown under report titles.
func FormatPeriod(p Period) string {
	if p.Unbounded() {
		return "Período: todo o histórico"
	}

	return fmt.Sprintf("Período: %s a %s", FormatDate(p.Start), FormatDate(p.End))
}

// FormatCell renders a cell value as display text according to its column kind.
func FormatCell(v any, kind ColumnKind) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case decimal.Decimal:
		switch kind {
		case ColCurrency:
			return FormatCurrency(val)
		case ColPercent:
			return FormatPercent(val)
		case ColInteger:
			return printer.Sprintf("%d", val.IntPart())
		}

		return FormatNumber(val)
	case int:
		if kind == ColPercent {
			return printer.Sprintf("%d", val) + "%"
		}

		return printer.Sprintf("%d", val)
	case time.Time:
		if kind == ColDate {
			return FormatDate(val)
		}

		return FormatDateTime(val)
	case bool:
		if val {
			return "Sim"
		}

		return "Não"
	}

	return fmt.Sprint(v)
}

// FileName builds relatorio_<kind>_<context>_<YYYY-MM-DD>.<ext>.
func FileName(kind Kind, context string, date time.Time, ext string) string {
	return fmt.Sprintf("relatorio_%s_%s_%s.%s", kind, slug.Make(context, "geral"), date.Format(time.DateOnly), ext)
}
