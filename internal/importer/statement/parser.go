// Package statement reads semicolon separated bank statements exported by Brazilian banks or kept
// as spreadsheets, and turns every dated line into a transaction.
package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/gestobra/internal/encoding"
	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

var dateLayouts = []string{"02/01/2006", "02/01/06", "2006-01-02"}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse returns one CreateParams per dated line. Negative amounts and debit columns become
// despesas, everything else receitas. Statement lines are already settled, so they are marked pago.
func (p *Parser) Parse(r io.Reader) ([]transaction.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching statement layout: expected Data;Descrição;Valor, Data;Histórico;Débito;Crédito or Data;Lançamento;Valor")
	}

	return parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
}

type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func parseRows(p *Profile, cols colIndex, rows [][]string, headerRow int) ([]transaction.CreateParams, error) {
	categoryIdx := -1
	if p.CategoryCol != "" {
		if idx, ok := cols[p.CategoryCol]; ok {
			categoryIdx = idx
		}
	}

	var txs []transaction.CreateParams

	for i, row := range rows {
		line := headerRow + i + 1

		date, ok := parseDate(cellValue(row, cols[p.DateCol]))
		if !ok {
			continue
		}

		desc := cellValue(row, cols[p.DescCol])
		if desc == "" {
			return nil, fmt.Errorf("line %d: missing description", line)
		}

		value, typ, err := lineAmount(p, cols, row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if value.IsZero() {
			continue
		}

		txs = append(txs, transaction.CreateParams{
			Date:          date,
			Value:         value,
			Type:          typ,
			Category:      cellValue(row, categoryIdx),
			Description:   desc,
			PaymentStatus: transaction.PaymentPaid,
		})
	}

	return txs, nil
}

// parseDate rejects blank and non-date cells, which is how footer and total rows are skipped.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func lineAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, transaction.Type, error) {
	switch p.AmountMode {
	case amountSingle:
		return signedAmount(cellValue(row, cols[p.AmountCol]))
	case amountSplit:
		if s := cellValue(row, cols[p.DebitCol]); s != "" {
			d, err := parseAmount(s)
			if err != nil {
				return decimal.Zero, "", fmt.Errorf("invalid debit %q", s)
			}

			if !d.IsZero() {
				return d.Abs(), transaction.TypeExpense, nil
			}
		}

		if s := cellValue(row, cols[p.CreditCol]); s != "" {
			d, err := parseAmount(s)
			if err != nil {
				return decimal.Zero, "", fmt.Errorf("invalid credit %q", s)
			}

			return d.Abs(), transaction.TypeIncome, nil
		}
	}

	return decimal.Zero, "", nil
}

func signedAmount(s string) (decimal.Decimal, transaction.Type, error) {
	if s == "" {
		return decimal.Zero, "", nil
	}

	d, err := parseAmount(s)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("invalid amount %q", s)
	}

	if d.IsNegative() {
		return d.Neg(), transaction.TypeExpense, nil
	}

	return d, transaction.TypeIncome, nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
