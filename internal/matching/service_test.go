package matching_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/gestobra/internal/matching"
	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

func TestService_Learn(t *testing.T) {
	type testCase struct {
		name      string
		pattern   string
		category  string
		setupMock func(m *matching.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:     "Trimmed",
			pattern:  "  DEPOSITO SAO JOSE ",
			category: " Materiais",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().CreateRule(gomock.Any(), "DEPOSITO SAO JOSE", "Materiais").Return(nil)
			},
		},
		{name: "EmptyPattern", pattern: " ", category: "Materiais", wantErr: matching.ErrEmptyRule},
		{name: "EmptyCategory", pattern: "PIX", category: "", wantErr: matching.ErrEmptyRule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := matching.NewMockRepository(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			err := matching.NewService(repo).Learn(context.Background(), tt.pattern, tt.category)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestService_Classify(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := matching.NewMockRepository(ctrl)

	params := []transaction.CreateParams{
		{Description: "PIX DEPOSITO SAO JOSE LTDA"},
		{Description: "TARIFA BANCARIA", Category: "Taxas"},
		{Description: "TED DESCONHECIDA"},
		{Description: "FALHA"},
	}

	repo.EXPECT().FindCategory(gomock.Any(), "PIX DEPOSITO SAO JOSE LTDA").Return("Materiais", nil)
	repo.EXPECT().FindCategory(gomock.Any(), "TED DESCONHECIDA").Return("", nil)
	repo.EXPECT().FindCategory(gomock.Any(), "FALHA").Return("", errors.New("db down"))

	n := matching.NewService(repo).Classify(context.Background(), params)

	assert.Equal(t, 1, n)
	assert.Equal(t, "Materiais", params[0].Category)
	assert.Equal(t, "Taxas", params[1].Category)
	assert.Empty(t, params[2].Category)
	assert.Empty(t, params[3].Category)
}
