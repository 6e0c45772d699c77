// Package matching remembers which category a statement description belongs to, so imported
// lines arrive already classified.
package matching

import (
	"context"
	"errors"
	"strings"

	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

var ErrEmptyRule = errors.New("pattern and category are required")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	FindCategory(ctx context.Context, description string) (string, error)
	CreateRule(ctx context.Context, pattern, category string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the category of the longest pattern contained in description, or "" when none matches.
func (s *Service) Suggest(ctx context.Context, description string) (string, error) {
	return s.repo.FindCategory(ctx, description)
}

// Learn stores a rule mapping descriptions containing pattern to category.
func (s *Service) Learn(ctx context.Context, pattern, category string) error {
	pattern = strings.TrimSpace(pattern)
	category = strings.TrimSpace(category)

	if pattern == "" || category == "" {
		return ErrEmptyRule
	}

	return s.repo.CreateRule(ctx, pattern, category)
}

// Classify fills the category of uncategorised lines. Lookup failures leave the line untouched.
func (s *Service) Classify(ctx context.Context, params []transaction.CreateParams) int {
	classified := 0

	for i := range params {
		if params[i].Category != "" {
			continue
		}

		category, err := s.repo.FindCategory(ctx, params[i].Description)
		if err != nil || category == "" {
			continue
		}

		params[i].Category = category
		classified++
	}

	return classified
}
