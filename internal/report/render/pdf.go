package render

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jung-kurt/gofpdf"

	"github.com/MrJamesThe3rd/gestobra/internal/report"
)

const (
	pdfMargin     = 10.0
	pdfBottom     = 15.0
	pdfRowHeight  = 6.0
	pdfFontFamily = "Arial"
	pdfWideTable  = 7 // tables with more columns switch the document to landscape
)

type rgb struct{ r, g, b int }

var (
	pdfHeaderFill = rgb{31, 78, 121}
	pdfZebraFill  = rgb{235, 241, 247}
	pdfBandText   = rgb{255, 255, 255}
	pdfBodyText   = rgb{33, 33, 33}
)

// PDF lays the report out as paginated tables under a title band.
type PDF struct{}

func (PDF) ContentType() string { return "application/pdf" }

func (PDF) Extension() string { return "pdf" }

func (p PDF) Render(m *report.Model) (data []byte, err error) {
	defer recoverError("pdf", &err)

	doc := p.build(m)
	if err := doc.Error(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

type pdfWriter struct {
	doc *gofpdf.Fpdf
	tr  func(string) string
}

func (PDF) build(m *report.Model) *gofpdf.Fpdf {
	orientation := "P"

	for _, s := range m.Sections {
		if len(s.Columns) > pdfWideTable {
			orientation = "L"
			break
		}
	}

	doc := gofpdf.New(orientation, "mm", "A4", "")
	doc.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	doc.SetAutoPageBreak(false, pdfBottom)
	doc.AliasNbPages("")
	doc.SetTitle(m.Title, true)

	w := &pdfWriter{doc: doc, tr: doc.UnicodeTranslatorFromDescriptor("")}

	generated := report.FormatDateTime(m.GeneratedAt)
	doc.SetFooterFunc(func() {
		doc.SetY(-12)
		doc.SetFont(pdfFontFamily, "I", 8)
		doc.SetTextColor(110, 110, 110)
		doc.CellFormat(0, 8, w.tr(fmt.Sprintf("Gerado em %s - Página %d de {nb}", generated, doc.PageNo())), "", 0, "C", false, 0, "")
	})

	doc.AddPage()
	w.band(m)

	summary, kinds := summarySection(m)
	w.table(summary, func(row, _ int) report.ColumnKind { return kinds[row] })

	for _, s := range m.Sections {
		w.table(s, func(_, col int) report.ColumnKind { return s.Columns[col].Kind })
	}

	return doc
}

func (w *pdfWriter) band(m *report.Model) {
	doc := w.doc
	pageW, _ := doc.GetPageSize()

	doc.SetFillColor(pdfHeaderFill.r, pdfHeaderFill.g, pdfHeaderFill.b)
	doc.Rect(0, 0, pageW, 26, "F")

	doc.SetTextColor(pdfBandText.r, pdfBandText.g, pdfBandText.b)
	doc.SetXY(pdfMargin, 6)
	doc.SetFont(pdfFontFamily, "B", 16)
	doc.CellFormat(0, 8, w.tr(m.Title), "", 1, "L", false, 0, "")

	doc.SetX(pdfMargin)
	doc.SetFont(pdfFontFamily, "", 9)
	doc.CellFormat(0, 6, w.tr(m.Context+"  |  "+report.FormatPeriod(m.Period)), "", 1, "L", false, 0, "")

	doc.SetY(32)
}

func (w *pdfWriter) ensureSpace(h float64) bool {
	_, pageH := w.doc.GetPageSize()
	if w.doc.GetY()+h <= pageH-pdfBottom {
		return false
	}

	w.doc.AddPage()

	return true
}

func (w *pdfWriter) table(s report.Section, kindOf func(row, col int) report.ColumnKind) {
	doc := w.doc

	w.ensureSpace(pdfRowHeight * 3)

	doc.SetTextColor(pdfBodyText.r, pdfBodyText.g, pdfBodyText.b)
	doc.SetFont(pdfFontFamily, "B", 11)
	doc.CellFormat(0, 8, w.tr(s.Title), "", 1, "L", false, 0, "")

	widths := w.columnWidths(s, kindOf)
	w.header(s, widths)

	if len(s.Rows) == 0 {
		doc.SetFont(pdfFontFamily, "I", 8)
		doc.CellFormat(0, pdfRowHeight, w.tr("Nenhum registro no período."), "", 1, "L", false, 0, "")
	}

	for r, row := range s.Rows {
		if w.ensureSpace(pdfRowHeight) {
			w.header(s, widths)
		}

		fill := r%2 == 1
		if fill {
			doc.SetFillColor(pdfZebraFill.r, pdfZebraFill.g, pdfZebraFill.b)
		}

		doc.SetFont(pdfFontFamily, "", 8)
		doc.SetTextColor(pdfBodyText.r, pdfBodyText.g, pdfBodyText.b)

		for c, v := range row {
			if c >= len(widths) {
				break
			}

			kind := kindOf(r, c)
			align := "L"

			if isNumeric(kind) {
				align = "R"
			}

			text := w.fit(w.tr(report.FormatCell(v, kind)), widths[c]-2)
			doc.CellFormat(widths[c], pdfRowHeight, text, "", 0, align, fill, 0, "")
		}

		doc.Ln(-1)
	}

	doc.Ln(4)
}

func (w *pdfWriter) header(s report.Section, widths []float64) {
	doc := w.doc

	doc.SetFillColor(pdfHeaderFill.r, pdfHeaderFill.g, pdfHeaderFill.b)
	doc.SetTextColor(pdfBandText.r, pdfBandText.g, pdfBandText.b)
	doc.SetFont(pdfFontFamily, "B", 8)

	for i, c := range s.Columns {
		doc.CellFormat(widths[i], pdfRowHeight+1, w.fit(w.tr(c.Title), widths[i]-2), "", 0, "C", true, 0, "")
	}

	doc.Ln(-1)
	doc.SetTextColor(pdfBodyText.r, pdfBodyText.g, pdfBodyText.b)
}

// columnWidths splits the printable width in proportion to each column's longest text.
func (w *pdfWriter) columnWidths(s report.Section, kindOf func(row, col int) report.ColumnKind) []float64 {
	pageW, _ := w.doc.GetPageSize()
	available := pageW - 2*pdfMargin

	weights := make([]float64, len(s.Columns))
	for i, c := range s.Columns {
		weights[i] = float64(utf8.RuneCountInString(c.Title))
	}

	for r, row := range s.Rows {
		for c, v := range row {
			if c >= len(weights) {
				break
			}

			if n := float64(utf8.RuneCountInString(report.FormatCell(v, kindOf(r, c)))); n > weights[c] {
				weights[c] = n
			}
		}
	}

	var total float64

	for i := range weights {
		if weights[i] < 6 {
			weights[i] = 6
		}

		if weights[i] > 45 {
			weights[i] = 45
		}

		total += weights[i]
	}

	widths := make([]float64, len(weights))
	for i := range weights {
		widths[i] = available * weights[i] / total
	}

	return widths
}

// fit shortens already translated, single-byte text with an ellipsis until it fits in width.
func (w *pdfWriter) fit(text string, width float64) string {
	if w.doc.GetStringWidth(text) <= width {
		return text
	}

	b := []byte(text)
	for len(b) > 0 && w.doc.GetStringWidth(string(b)+"...") > width {
		b = b[:len(b)-1]
	}

	return strings.TrimSpace(string(b)) + "..."
}
