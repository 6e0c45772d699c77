package render

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/gestobra/internal/project"
	"github.com/MrJamesThe3rd/gestobra/internal/report"
	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

const trickyName = `Cimento "CP-II", saco 50kg`

func sampleModel(rows int) *report.Model {
	projects := make([]*project.Project, 0, rows)
	var txs []*transaction.Transaction

	for i := range rows {
		p := &project.Project{
			ID:       uuid.New(),
			Name:     fmt.Sprintf("Obra %03d", i),
			Status:   project.StatusInProgress,
			Budget:   decimal.NewFromInt(10000),
			Progress: 50,
		}
		if i == 0 {
			p.Name = trickyName
		}

		projects = append(projects, p)
		txs = append(txs, &transaction.Transaction{
			ProjectID: &p.ID,
			Value:     decimal.RequireFromString("1234.5"),
			Type:      transaction.TypeExpense,
		})
	}

	m := report.AggregateProjects(projects, txs).Model()
	m.Context = "Geral"
	m.Period, _ = report.NewPeriod(nil, nil)
	m.GeneratedAt = time.Date(2024, 6, 30, 18, 0, 0, 0, time.UTC)

	return m
}

func emptyMovementsModel() *report.Model {
	m := report.AggregateMovements(nil, nil, nil, "").Model()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	m.Period, _ = report.NewPeriod(&start, &end)
	m.Context = "Geral"

	return m
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()

	require.True(t, bytes.HasPrefix(data, []byte(utf8BOM)), "missing byte-order mark")

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte(utf8BOM))))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	require.NoError(t, err)

	return records
}

func TestCSV_RoundTripsQuotedFields(t *testing.T) {
	data, err := CSV{}.Render(sampleModel(3))
	require.NoError(t, err)

	records := readCSV(t, data)

	var found bool

	for _, rec := range records {
		if rec[0] == trickyName {
			found = true

			assert.Equal(t, "R$ 1.234,50", rec[4])
			assert.Equal(t, report.BudgetWithin, rec[9])
		}
	}

	assert.True(t, found, "row with quoted field not parsed back")
	assert.Contains(t, string(data), `"Cimento ""CP-II"", saco 50kg"`)
}

func TestCSV_SectionsSeparatedByBlankLine(t *testing.T) {
	data, err := CSV{}.Render(sampleModel(1))
	require.NoError(t, err)

	text := string(bytes.TrimPrefix(data, []byte(utf8BOM)))
	assert.Contains(t, text, "\n\nResumo\n")
	assert.Contains(t, text, "\n\nObras\n")
	assert.Contains(t, text, "\n\nObras por status\n")
}

func TestCSV_EmptyMovements(t *testing.T) {
	data, err := CSV{}.Render(emptyMovementsModel())
	require.NoError(t, err)

	records := readCSV(t, data)

	index := -1

	for i, rec := range records {
		if len(rec) == 1 && rec[0] == "Saldo por material" {
			index = i
		}
	}

	require.NotEqual(t, -1, index)
	// Title, header, then straight into the next block: no data rows.
	assert.Equal(t, []string{"Material", "Entradas", "Saídas", "Saldo"}, records[index+1])
	assert.Equal(t, index+2, len(records))

	assert.Contains(t, string(data), "Valor das entradas,\"R$ 0,00\"")
	assert.Contains(t, string(data), "Quantidade de saídas,\"0,00\"")
	assert.Contains(t, string(data), "Período: 01/01/2024 a 31/01/2024")
}

func TestExcel_Render(t *testing.T) {
	data, err := Excel{}.Render(sampleModel(5))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)

	defer f.Close()

	assert.Equal(t, []string{"Resumo", "Obras", "Obras por status"}, f.GetSheetList())

	title, err := f.GetCellValue("Obras", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Relatório de Obras - Obras", title)

	header, err := f.GetCellValue("Obras", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Obra", header)

	name, err := f.GetCellValue("Obras", "A4")
	require.NoError(t, err)
	assert.Equal(t, trickyName, name)

	expenses, err := f.GetCellValue("Obras", "E4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1234.5", expenses)

	rows, err := f.GetRows("Obras")
	require.NoError(t, err)
	assert.Len(t, rows, 3+5)

	width, err := f.GetColWidth("Obras", "A")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, width, float64(len(trickyName)))
}

func TestExcel_EmptySectionsStillHaveHeaders(t *testing.T) {
	data, err := Excel{}.Render(emptyMovementsModel())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)

	defer f.Close()

	rows, err := f.GetRows("Movimentações")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Data", rows[2][0])
}

func TestPDF_Render(t *testing.T) {
	data, err := PDF{}.Render(sampleModel(3))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestPDF_PaginatesLongTables(t *testing.T) {
	doc := PDF{}.build(sampleModel(120))
	require.NoError(t, doc.Error())
	assert.Greater(t, doc.PageCount(), 2)
}

func TestPDF_EmptyReport(t *testing.T) {
	doc := PDF{}.build(emptyMovementsModel())
	require.NoError(t, doc.Error())
	assert.Equal(t, 1, doc.PageCount())
}

func TestRenderers_DoNotModifyModel(t *testing.T) {
	for format, r := range Registry() {
		t.Run(string(format), func(t *testing.T) {
			m := sampleModel(4)
			want := sampleModel(4)

			_, err := r.Render(m)
			require.NoError(t, err)

			assert.Equal(t, want, m)
		})
	}
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{}

	assert.Equal(t, "Resumo", sheetName("Resumo", used))
	assert.Equal(t, "resumo (2)", sheetName("resumo", used))
	assert.Equal(t, "Resumo (3)", sheetName("Resumo", used))
	assert.Equal(t, "Entradas Saídas", sheetName("Entradas/Saídas", used))
	assert.Equal(t, 31, len([]rune(sheetName(strings.Repeat("x", 40), used))))
}

func TestRegistry_ContentTypes(t *testing.T) {
	reg := Registry()

	assert.Equal(t, "application/pdf", reg[report.FormatPDF].ContentType())
	assert.Equal(t, "xlsx", reg[report.FormatExcel].Extension())
	assert.Equal(t, "text/csv;charset=utf-8", reg[report.FormatCSV].ContentType())
}
