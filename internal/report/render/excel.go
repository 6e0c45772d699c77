package render

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/gestobra/internal/report"
)

const (
	excelHeaderRow = 3
	maxSheetName   = 31
	minColWidth    = 10
	maxColWidth    = 60
)

// Excel writes one worksheet per section, with the summary first.
type Excel struct{}

func (Excel) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (Excel) Extension() string { return "xlsx" }

type excelStyles struct {
	title    int
	banner   int
	header   int
	currency int
	percent  int
	number   int
	integer  int
	date     int
}

func (s excelStyles) forKind(kind report.ColumnKind) int {
	switch kind {
	case report.ColCurrency:
		return s.currency
	case report.ColPercent:
		return s.percent
	case report.ColNumber:
		return s.number
	case report.ColInteger:
		return s.integer
	case report.ColDate:
		return s.date
	}

	return 0
}

func (Excel) Render(m *report.Model) (data []byte, err error) {
	defer recoverError("excel", &err)

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newExcelStyles(f)
	if err != nil {
		return nil, fmt.Errorf("creating styles: %w", err)
	}

	summary, kinds := summarySection(m)

	first := f.GetSheetName(f.GetActiveSheetIndex())
	used := map[string]bool{}

	summaryName := sheetName(summary.Title, used)
	if err := f.SetSheetName(first, summaryName); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	if err := writeSheet(f, summaryName, m, summary, styles, func(row, _ int) report.ColumnKind { return kinds[row] }); err != nil {
		return nil, err
	}

	for _, s := range m.Sections {
		name := sheetName(s.Title, used)
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("creating sheet %s: %w", name, err)
		}

		if err := writeSheet(f, name, m, s, styles, func(_, col int) report.ColumnKind { return s.Columns[col].Kind }); err != nil {
			return nil, err
		}
	}

	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func newExcelStyles(f *excelize.File) (excelStyles, error) {
	var s excelStyles

	currencyFmt := `"R$" #,##0.00`
	percentFmt := `0.00"%"`
	numberFmt := `#,##0.00`
	integerFmt := `#,##0`
	dateFmt := `dd/mm/yyyy`

	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}},
		{&s.banner, &excelize.Style{Font: &excelize.Font{Italic: true, Color: "595959"}}},
		{&s.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E79"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		}},
		{&s.currency, &excelize.Style{CustomNumFmt: &currencyFmt}},
		{&s.percent, &excelize.Style{CustomNumFmt: &percentFmt}},
		{&s.number, &excelize.Style{CustomNumFmt: &numberFmt}},
		{&s.integer, &excelize.Style{CustomNumFmt: &integerFmt}},
		{&s.date, &excelize.Style{CustomNumFmt: &dateFmt}},
	}

	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return s, err
		}

		*d.dst = id
	}

	return s, nil
}

func writeSheet(
	f *excelize.File,
	sheet string,
	m *report.Model,
	s report.Section,
	styles excelStyles,
	kindOf func(row, col int) report.ColumnKind,
) error {
	if err := f.SetCellValue(sheet, "A1", m.Title+" - "+s.Title); err != nil {
		return err
	}

	if err := f.SetCellStyle(sheet, "A1", "A1", styles.title); err != nil {
		return err
	}

	banner := fmt.Sprintf("%s | %s | Gerado em %s", m.Context, report.FormatPeriod(m.Period), report.FormatDateTime(m.GeneratedAt))
	if err := f.SetCellValue(sheet, "A2", banner); err != nil {
		return err
	}

	if err := f.SetCellStyle(sheet, "A2", "A2", styles.banner); err != nil {
		return err
	}

	widths := make([]int, len(s.Columns))

	headers := make([]any, len(s.Columns))
	for i, c := range s.Columns {
		headers[i] = c.Title
		widths[i] = utf8.RuneCountInString(c.Title)
	}

	headerCell, err := excelize.CoordinatesToCellName(1, excelHeaderRow)
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, headerCell, &headers); err != nil {
		return err
	}

	lastHeader, err := excelize.CoordinatesToCellName(len(s.Columns), excelHeaderRow)
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheet, headerCell, lastHeader, styles.header); err != nil {
		return err
	}

	for r, row := range s.Rows {
		rowNum := excelHeaderRow + 1 + r

		values := make([]any, len(row))
		for c, v := range row {
			values[c] = excelValue(v)

			if n := utf8.RuneCountInString(report.FormatCell(v, kindOf(r, c))); c < len(widths) && n > widths[c] {
				widths[c] = n
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}

		for c := range row {
			style := styles.forKind(kindOf(r, c))
			if style == 0 {
				continue
			}

			ref, err := excelize.CoordinatesToCellName(c+1, rowNum)
			if err != nil {
				return err
			}

			if err := f.SetCellStyle(sheet, ref, ref, style); err != nil {
				return err
			}
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}

		if err := f.SetColWidth(sheet, col, col, float64(clamp(w+2, minColWidth, maxColWidth))); err != nil {
			return err
		}
	}

	return nil
}

// excelValue converts a model cell into a value excelize stores natively.
func excelValue(v any) any {
	switch val := v.(type) {
	case decimal.Decimal:
		return val.InexactFloat64()
	case time.Time:
		return val
	case bool:
		if val {
			return "Sim"
		}

		return "Não"
	}

	return v
}

var sheetNameReplacer = strings.NewReplacer(
	":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")",
)

// sheetName cleans title into a valid, unique worksheet name.
func sheetName(title string, used map[string]bool) string {
	name := strings.TrimSpace(sheetNameReplacer.Replace(title))
	if name == "" {
		name = "Planilha"
	}

	name = truncateRunes(name, maxSheetName)

	candidate := name
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = truncateRunes(name, maxSheetName-len(suffix)) + suffix
	}

	used[strings.ToLower(candidate)] = true

	return candidate
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	return string([]rune(s)[:n])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
