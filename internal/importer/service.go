package importer

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/gestobra/internal/importer/statement"
	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

type Service struct {
	importers map[Layout]Importer
}

func NewService() *Service {
	return &Service{
		importers: map[Layout]Importer{
			LayoutStatement: statement.NewParser(),
		},
	}
}

// Import parses the file with the importer registered for layout. An empty layout selects the
// statement parser. When projectID is set every line is attached to that project.
func (s *Service) Import(layout Layout, r io.Reader, projectID *uuid.UUID) ([]transaction.CreateParams, error) {
	if layout == "" {
		layout = LayoutStatement
	}

	importer, ok := s.importers[layout]
	if !ok {
		return nil, fmt.Errorf("unknown layout: %s", layout)
	}

	params, err := importer.Parse(r)
	if err != nil {
		return nil, err
	}

	if projectID != nil {
		for i := range params {
			params[i].ProjectID = projectID
		}
	}

	return params, nil
}
