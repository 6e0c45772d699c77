// Package render serialises report models to PDF, Excel and CSV.
package render

import (
	"fmt"

	"github.com/MrJamesThe3rd/gestobra/internal/report"
)

// Registry returns one renderer per supported format.
func Registry() map[report.Format]report.Renderer {
	return map[report.Format]report.Renderer{
		report.FormatPDF:   PDF{},
		report.FormatExcel: Excel{},
		report.FormatCSV:   CSV{},
	}
}

// recoverError turns a panic raised by a rendering library into an error on *err.
func recoverError(format string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s renderer: %v", format, r)
	}
}

// summarySection flattens the summary metrics into a two-column table.
func summarySection(m *report.Model) (report.Section, []report.ColumnKind) {
	s := report.Section{
		Title: "Resumo",
		Columns: []report.Column{
			{Title: "Indicador", Kind: report.ColText},
			{Title: "Valor", Kind: report.ColText},
		},
		Rows: make([][]any, 0, len(m.Summary)),
	}

	kinds := make([]report.ColumnKind, 0, len(m.Summary))

	for _, metric := range m.Summary {
		s.Rows = append(s.Rows, []any{metric.Label, metric.Value})
		kinds = append(kinds, metric.Kind)
	}

	return s, kinds
}

func isNumeric(kind report.ColumnKind) bool {
	switch kind {
	case report.ColInteger, report.ColNumber, report.ColCurrency, report.ColPercent:
		return true
	}

	return false
}
