package render

import (
	"bytes"
	"encoding/csv"

	"github.com/MrJamesThe3rd/gestobra/internal/report"
)

const utf8BOM = "\ufeff"

// CSV writes every section as a titled block separated by a blank line. The byte-order mark keeps
// spreadsheet programs from misreading accents.
type CSV struct{}

func (CSV) ContentType() string { return "text/csv;charset=utf-8" }

func (CSV) Extension() string { return "csv" }

func (CSV) Render(m *report.Model) (data []byte, err error) {
	defer recoverError("csv", &err)

	var buf bytes.Buffer

	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)

	banner := [][]string{
		{m.Title},
		{m.Context},
		{report.FormatPeriod(m.Period)},
		{"Gerado em", report.FormatDateTime(m.GeneratedAt)},
	}
	if err := w.WriteAll(banner); err != nil {
		return nil, err
	}

	summary, kinds := summarySection(m)

	blank(&buf)

	if err := writeBlock(w, summary, func(row, _ int) report.ColumnKind { return kinds[row] }); err != nil {
		return nil, err
	}

	for _, s := range m.Sections {
		blank(&buf)

		if err := writeBlock(w, s, func(_, col int) report.ColumnKind { return s.Columns[col].Kind }); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func blank(buf *bytes.Buffer) {
	buf.WriteByte('\n')
}

// writeBlock writes a section and flushes it so the caller can append raw separators.
func writeBlock(w *csv.Writer, s report.Section, kindOf func(row, col int) report.ColumnKind) error {
	headers := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		headers[i] = c.Title
	}

	records := make([][]string, 0, len(s.Rows)+2)
	records = append(records, []string{s.Title}, headers)

	for r, row := range s.Rows {
		record := make([]string, len(row))
		for c, v := range row {
			record[c] = report.FormatCell(v, kindOf(r, c))
		}

		records = append(records, record)
	}

	// WriteAll flushes.
	return w.WriteAll(records)
}
