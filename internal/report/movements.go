package report

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/gestobra/internal/material"
	"github.com/MrJamesThe3rd/gestobra/internal/project"
)

type MovementBalance struct {
	Material string
	In       decimal.Decimal
	Out      decimal.Decimal
	Balance  decimal.Decimal
}

type MovementsReport struct {
	Movements []*material.Movement
	Balances  []MovementBalance
	InQty     decimal.Decimal
	OutQty    decimal.Decimal
	InValue   decimal.Decimal
	OutValue  decimal.Decimal

	materials map[uuid.UUID]*material.Material
	projects  map[uuid.UUID]*project.Project
}

// AggregateMovements summarises the movement log. When category is not empty only movements of
// materials in that category are kept; the category lives on the material, so this filter runs here.
func AggregateMovements(
	movements []*material.Movement,
	materials map[uuid.UUID]*material.Material,
	projects map[uuid.UUID]*project.Project,
	category string,
) *MovementsReport {
	r := &MovementsReport{materials: materials, projects: projects}

	balances := make(map[uuid.UUID]*MovementBalance)

	var order []uuid.UUID

	for _, mv := range movements {
		if category != "" {
			m, ok := materials[mv.MaterialID]
			if !ok || m.Category != category {
				continue
			}
		}

		r.Movements = append(r.Movements, mv)

		b, ok := balances[mv.MaterialID]
		if !ok {
			b = &MovementBalance{Material: r.materialName(mv.MaterialID)}
			balances[mv.MaterialID] = b
			order = append(order, mv.MaterialID)
		}

		switch mv.Direction {
		case material.DirectionIn:
			b.In = b.In.Add(mv.Quantity)
			r.InQty = r.InQty.Add(mv.Quantity)
			r.InValue = r.InValue.Add(mv.Total())
		case material.DirectionOut:
			b.Out = b.Out.Add(mv.Quantity)
			r.OutQty = r.OutQty.Add(mv.Quantity)
			r.OutValue = r.OutValue.Add(mv.Total())
		}
	}

	r.Balances = make([]MovementBalance, 0, len(order))
	for _, id := range order {
		b := balances[id]
		b.Balance = b.In.Sub(b.Out)
		r.Balances = append(r.Balances, *b)
	}

	return r
}

func (r *MovementsReport) materialName(id uuid.UUID) string {
	if m, ok := r.materials[id]; ok {
		return m.Name
	}

	return id.String()
}

func (r *MovementsReport) projectName(id *uuid.UUID) string {
	if id == nil {
		return "-"
	}

	if p, ok := r.projects[*id]; ok {
		return p.Name
	}

	return "-"
}

func (r *MovementsReport) Model() *Model {
	rows := make([][]any, 0, len(r.Movements))
	for _, mv := range r.Movements {
		rows = append(rows, []any{
			mv.Date,
			r.materialName(mv.MaterialID),
			r.projectName(mv.ProjectID),
			mv.Direction.Label(),
			mv.Quantity,
			mv.UnitValue,
			mv.Total(),
			mv.Responsible,
		})
	}

	balanceRows := make([][]any, 0, len(r.Balances))
	for _, b := range r.Balances {
		balanceRows = append(balanceRows, []any{b.Material, b.In, b.Out, b.Balance})
	}

	return &Model{
		Kind:  KindMovements,
		Title: KindMovements.Title(),
		Summary: []Metric{
			{Label: "Movimentações", Value: len(r.Movements), Kind: ColInteger},
			{Label: "Quantidade de entradas", Value: r.InQty, Kind: ColNumber},
			{Label: "Quantidade de saídas", Value: r.OutQty, Kind: ColNumber},
			{Label: "Valor das entradas", Value: r.InValue, Kind: ColCurrency},
			{Label: "Valor das saídas", Value: r.OutValue, Kind: ColCurrency},
		},
		Sections: []Section{
			{
				Title: "Movimentações",
				Columns: []Column{
					{Title: "Data", Kind: ColDate},
					{Title: "Material", Kind: ColText},
					{Title: "Obra", Kind: ColText},
					{Title: "Tipo", Kind: ColText},
					{Title: "Quantidade", Kind: ColNumber},
					{Title: "Valor unitário", Kind: ColCurrency},
					{Title: "Valor total", Kind: ColCurrency},
					{Title: "Responsável", Kind: ColText},
				},
				Rows: rows,
			},
			{
				Title: "Saldo por material",
				Columns: []Column{
					{Title: "Material", Kind: ColText},
					{Title: "Entradas", Kind: ColNumber},
					{Title: "Saídas", Kind: ColNumber},
					{Title: "Saldo", Kind: ColNumber},
				},
				Rows: balanceRows,
			},
		},
	}
}
