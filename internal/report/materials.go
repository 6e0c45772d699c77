package report

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/gestobra/internal/material"
)

type MaterialRow struct {
	Material   *material.Material
	In         decimal.Decimal
	Out        decimal.Decimal
	Balance    decimal.Decimal
	TotalValue decimal.Decimal // Balance × unit price
	BelowMin   bool
}

type MaterialCategoryRow struct {
	Category   string
	Count      int
	TotalValue decimal.Decimal
	Share      decimal.Decimal
}

type MaterialsReport struct {
	Rows          []MaterialRow
	Categories    []MaterialCategoryRow
	TotalIn       decimal.Decimal
	TotalOut      decimal.Decimal
	TotalValue    decimal.Decimal
	BelowMinCount int
}

type stockTotals struct {
	in  decimal.Decimal
	out decimal.Decimal
}

// stockByMaterial sums entries and exits per material in one pass.
func stockByMaterial(movements []*material.Movement) map[uuid.UUID]*stockTotals {
	totals := make(map[uuid.UUID]*stockTotals)

	for _, mv := range movements {
		t, ok := totals[mv.MaterialID]
		if !ok {
			t = &stockTotals{}
			totals[mv.MaterialID] = t
		}

		switch mv.Direction {
		case material.DirectionIn:
			t.in = t.in.Add(mv.Quantity)
		case material.DirectionOut:
			t.out = t.out.Add(mv.Quantity)
		}
	}

	return totals
}

// AggregateMaterials derives the stock position of every material. Movements of materials not in
// the list are ignored.
func AggregateMaterials(materials []*material.Material, movements []*material.Movement) *MaterialsReport {
	totals := stockByMaterial(movements)

	r := &MaterialsReport{Rows: make([]MaterialRow, 0, len(materials))}

	categories := make(map[string]*MaterialCategoryRow)

	var order []string

	for _, m := range materials {
		row := MaterialRow{Material: m}

		if t, ok := totals[m.ID]; ok {
			row.In = t.in
			row.Out = t.out
		}

		row.Balance = row.In.Sub(row.Out)
		row.TotalValue = row.Balance.Mul(m.UnitPrice)
		row.BelowMin = m.MinStock != nil && row.Balance.LessThan(*m.MinStock)

		if row.BelowMin {
			r.BelowMinCount++
		}

		r.Rows = append(r.Rows, row)
		r.TotalIn = r.TotalIn.Add(row.In)
		r.TotalOut = r.TotalOut.Add(row.Out)
		r.TotalValue = r.TotalValue.Add(row.TotalValue)

		name := m.Category
		if name == "" {
			name = uncategorised
		}

		c, ok := categories[name]
		if !ok {
			c = &MaterialCategoryRow{Category: name}
			categories[name] = c
			order = append(order, name)
		}

		c.Count++
		c.TotalValue = c.TotalValue.Add(row.TotalValue)
	}

	sort.Strings(order)

	r.Categories = make([]MaterialCategoryRow, 0, len(order))
	for _, name := range order {
		c := categories[name]
		c.Share = percent(c.TotalValue, r.TotalValue)
		r.Categories = append(r.Categories, *c)
	}

	return r
}

func minStockCell(m *material.Material) any {
	if m.MinStock == nil {
		return "-"
	}

	return *m.MinStock
}

func (r *MaterialsReport) Model() *Model {
	rows := make([][]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, []any{
			row.Material.Name,
			row.Material.Category,
			row.Material.Unit,
			row.Material.UnitPrice,
			row.In,
			row.Out,
			row.Balance,
			minStockCell(row.Material),
			row.TotalValue,
			row.BelowMin,
		})
	}

	categoryRows := make([][]any, 0, len(r.Categories))
	for _, c := range r.Categories {
		categoryRows = append(categoryRows, []any{c.Category, c.Count, c.TotalValue, c.Share})
	}

	return &Model{
		Kind:  KindMaterials,
		Title: KindMaterials.Title(),
		Summary: []Metric{
			{Label: "Materiais cadastrados", Value: len(r.Rows), Kind: ColInteger},
			{Label: "Quantidade de entradas", Value: r.TotalIn, Kind: ColNumber},
			{Label: "Quantidade de saídas", Value: r.TotalOut, Kind: ColNumber},
			{Label: "Valor total em estoque", Value: r.TotalValue, Kind: ColCurrency},
			{Label: "Abaixo do estoque mínimo", Value: r.BelowMinCount, Kind: ColInteger},
		},
		Sections: []Section{
			{
				Title: "Estoque por material",
				Columns: []Column{
					{Title: "Material", Kind: ColText},
					{Title: "Categoria", Kind: ColText},
					{Title: "Unidade", Kind: ColText},
					{Title: "Preço unitário", Kind: ColCurrency},
					{Title: "Entradas", Kind: ColNumber},
					{Title: "Saídas", Kind: ColNumber},
					{Title: "Saldo", Kind: ColNumber},
					{Title: "Estoque mínimo", Kind: ColNumber},
					{Title: "Valor total", Kind: ColCurrency},
					{Title: "Abaixo do mínimo", Kind: ColText},
				},
				Rows: rows,
			},
			{
				Title: "Resumo por categoria",
				Columns: []Column{
					{Title: "Categoria", Kind: ColText},
					{Title: "Materiais", Kind: ColInteger},
					{Title: "Valor total", Kind: ColCurrency},
					{Title: "% do valor", Kind: ColPercent},
				},
				Rows: categoryRows,
			},
		},
	}
}
