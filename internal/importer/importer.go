package importer

import (
	"io"

	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

// Layout names a family of statement files.
type Layout string

const (
	// LayoutStatement is any semicolon separated bank statement or spreadsheet export.
	LayoutStatement Layout = "extrato"
)

type Importer interface {
	Parse(r io.Reader) ([]transaction.CreateParams, error)
}
