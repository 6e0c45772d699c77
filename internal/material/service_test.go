package material_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/gestobra/internal/material"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    material.CreateParams
		setupMock func(m *material.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			params: material.CreateParams{
				Name:      " Cimento CP-II ",
				Unit:      "saco",
				UnitPrice: dec("32.90"),
				Category:  "Alvenaria",
				MinStock:  decPtr("10"),
				MaxStock:  decPtr("200"),
			},
			setupMock: func(m *material.MockRepository) {
				m.EXPECT().
					CreateMaterial(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, mat *material.Material) error {
						assert.Equal(t, "Cimento CP-II", mat.Name)
						mat.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name:    "MissingName",
			params:  material.CreateParams{Unit: "kg"},
			wantErr: material.ErrEmptyName,
		},
		{
			name:    "NegativePrice",
			params:  material.CreateParams{Name: "Areia", UnitPrice: dec("-1")},
			wantErr: material.ErrNegativePrice,
		},
		{
			name:    "MinAboveMax",
			params:  material.CreateParams{Name: "Areia", MinStock: decPtr("50"), MaxStock: decPtr("5")},
			wantErr: material.ErrInvalidStockRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := material.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := material.NewService(repo)
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func TestService_Update(t *testing.T) {
	type testCase struct {
		name      string
		material  *material.Material
		setupMock func(m *material.MockRepository)
		wantErr   error
	}

	id := uuid.New()

	tests := []testCase{
		{
			name:     "Success",
			material: &material.Material{ID: id, Name: "Areia média", Unit: "m3", UnitPrice: dec("120")},
			setupMock: func(m *material.MockRepository) {
				m.EXPECT().
					UpdateMaterial(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, mat *material.Material) error {
						assert.Equal(t, id, mat.ID)
						assert.Equal(t, "Areia média", mat.Name)
						return nil
					})
			},
		},
		{
			name:     "NotFound",
			material: &material.Material{ID: id, Name: "Areia média"},
			setupMock: func(m *material.MockRepository) {
				m.EXPECT().UpdateMaterial(gomock.Any(), gomock.Any()).Return(material.ErrNotFound)
			},
			wantErr: material.ErrNotFound,
		},
		{
			name:     "MissingName",
			material: &material.Material{ID: id},
			wantErr:  material.ErrEmptyName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := material.NewMockRepository(gomock.NewController(t))
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			err := material.NewService(repo).Update(context.Background(), tt.material)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestService_RecordMovement(t *testing.T) {
	materialID := uuid.New()
	date := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

	type testCase struct {
		name      string
		params    material.MovementParams
		setupMock func(m *material.MockRepository)
		wantErr   error
		anyErr    bool
		wantUnit  decimal.Decimal
	}

	tests := []testCase{
		{
			name: "DefaultsUnitValueToMaterialPrice",
			params: material.MovementParams{
				MaterialID: materialID,
				Date:       date,
				Quantity:   dec("10"),
				Direction:  material.DirectionIn,
			},
			setupMock: func(m *material.MockRepository) {
				m.EXPECT().GetMaterial(gomock.Any(), materialID).
					Return(&material.Material{ID: materialID, UnitPrice: dec("32.90")}, nil)
				m.EXPECT().CreateMovement(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantUnit: dec("32.90"),
		},
		{
			name: "ExplicitUnitValue",
			params: material.MovementParams{
				MaterialID: materialID,
				Date:       date,
				Quantity:   dec("3"),
				Direction:  material.DirectionOut,
				UnitValue:  decPtr("30"),
			},
			setupMock: func(m *material.MockRepository) {
				m.EXPECT().CreateMovement(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantUnit: dec("30"),
		},
		{
			name: "ZeroQuantity",
			params: material.MovementParams{
				MaterialID: materialID,
				Quantity:   decimal.Zero,
				Direction:  material.DirectionIn,
			},
			wantErr: material.ErrInvalidQuantity,
		},
		{
			name: "UnknownDirection",
			params: material.MovementParams{
				MaterialID: materialID,
				Quantity:   dec("1"),
				Direction:  "transferencia",
			},
			wantErr: material.ErrInvalidDirection,
		},
		{
			name: "MovementTableMissing",
			params: material.MovementParams{
				MaterialID: materialID,
				Quantity:   dec("1"),
				Direction:  material.DirectionIn,
				UnitValue:  decPtr("1"),
			},
			setupMock: func(m *material.MockRepository) {
				m.EXPECT().CreateMovement(gomock.Any(), gomock.Any()).Return(material.ErrMovementsUnavailable)
			},
			wantErr: material.ErrMovementsUnavailable,
		},
		{
			name: "MaterialLookupFails",
			params: material.MovementParams{
				MaterialID: materialID,
				Quantity:   dec("1"),
				Direction:  material.DirectionIn,
			},
			setupMock: func(m *material.MockRepository) {
				m.EXPECT().GetMaterial(gomock.Any(), materialID).Return(nil, errors.New("db error"))
			},
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := material.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := material.NewService(repo)
			got, err := svc.RecordMovement(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			if tt.anyErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.True(t, got.UnitValue.Equal(tt.wantUnit))
		})
	}
}

func TestMovement_SignedAndTotal(t *testing.T) {
	in := &material.Movement{Quantity: dec("4"), UnitValue: dec("2.5"), Direction: material.DirectionIn}
	out := &material.Movement{Quantity: dec("4"), UnitValue: dec("2.5"), Direction: material.DirectionOut}

	assert.True(t, in.Signed().Equal(dec("4")))
	assert.True(t, out.Signed().Equal(dec("-4")))
	assert.True(t, out.Total().Equal(dec("10")))
}

func TestService_Lookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := material.NewMockRepository(ctrl)
	svc := material.NewService(repo)

	a := &material.Material{ID: uuid.New(), Name: "Areia"}

	repo.EXPECT().ListMaterials(gomock.Any(), material.ListFilter{}).Return([]*material.Material{a}, nil)

	got, err := svc.Lookup(context.Background())
	require.NoError(t, err)
	assert.Same(t, a, got[a.ID])
}
