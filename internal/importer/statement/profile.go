package statement

type amountMode int

const (
	// amountSingle is one signed column, e.g. "Valor" with "-1.234,56".
	amountSingle amountMode = iota
	// amountSplit is a pair of unsigned "Débito"/"Crédito" columns.
	amountSplit
)

// Profile is the column layout of one statement export.
type Profile struct {
	Name        string
	DateCol     string
	DescCol     string
	CategoryCol string // optional
	AmountMode  amountMode
	AmountCol   string
	DebitCol    string
	CreditCol   string
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles are tried in order against every row until one header matches.
var profiles = []Profile{
	{
		Name:        "planilha",
		DateCol:     "Data",
		DescCol:     "Descrição",
		CategoryCol: "Categoria",
		AmountMode:  amountSingle,
		AmountCol:   "Valor",
	},
	{
		Name:       "extrato",
		DateCol:    "Data",
		DescCol:    "Histórico",
		AmountMode: amountSplit,
		DebitCol:   "Débito",
		CreditCol:  "Crédito",
	},
	{
		Name:       "lancamentos",
		DateCol:    "Data",
		DescCol:    "Lançamento",
		AmountMode: amountSingle,
		AmountCol:  "Valor",
	},
}
