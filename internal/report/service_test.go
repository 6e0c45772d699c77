package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/gestobra/internal/material"
	"github.com/MrJamesThe3rd/gestobra/internal/metrics"
	"github.com/MrJamesThe3rd/gestobra/internal/project"
	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

type mocks struct {
	projects     *MockProjectSource
	transactions *MockTransactionSource
	materials    *MockMaterialSource
	renderer     *MockRenderer
}

func newTestService(t *testing.T, reg prometheus.Registerer) (*Service, mocks) {
	t.Helper()

	ctrl := gomock.NewController(t)

	m := mocks{
		projects:     NewMockProjectSource(ctrl),
		transactions: NewMockTransactionSource(ctrl),
		materials:    NewMockMaterialSource(ctrl),
		renderer:     NewMockRenderer(ctrl),
	}

	var rec *metrics.Reports
	if reg != nil {
		rec = metrics.New(reg)
	}

	svc := NewService(Sources{
		Projects:     m.projects,
		Transactions: m.transactions,
		Materials:    m.materials,
	}, map[Format]Renderer{FormatCSV: m.renderer}, rec, time.UTC)

	svc.now = func() time.Time { return time.Date(2024, 6, 30, 18, 0, 0, 0, time.UTC) }

	return svc, m
}

func expectCSV(m mocks) {
	m.renderer.EXPECT().Extension().Return("csv").AnyTimes()
	m.renderer.EXPECT().ContentType().Return("text/csv;charset=utf-8").AnyTimes()
}

func TestService_Generate_Projects(t *testing.T) {
	svc, m := newTestService(t, nil)
	expectCSV(m)

	p := newProject("Residencial Aurora", "10000", 30, project.StatusInProgress)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	m.projects.EXPECT().Get(gomock.Any(), p.ID).Return(p, nil)
	m.transactions.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f transaction.ListFilter) ([]*transaction.Transaction, error) {
			require.NotNil(t, f.ProjectID)
			assert.Equal(t, p.ID, *f.ProjectID)
			assert.Nil(t, f.Type)
			assert.Equal(t, start, *f.StartDate)
			assert.Equal(t, 30, f.EndDate.Day())
			assert.Equal(t, 23, f.EndDate.Hour())

			return []*transaction.Transaction{expense(p, "3000"), expense(p, "4000")}, nil
		})
	m.renderer.EXPECT().
		Render(gomock.Any()).
		DoAndReturn(func(model *Model) ([]byte, error) {
			assert.Equal(t, "Obra: Residencial Aurora", model.Context)
			require.Len(t, model.Sections[0].Rows, 1)

			row := model.Sections[0].Rows[0]
			assertDec(t, "7000", row[4].(decimal.Decimal))
			assertDec(t, "3000", row[6].(decimal.Decimal))
			assert.Equal(t, BudgetWithin, row[9])

			return []byte("ok"), nil
		})

	out, err := svc.Generate(context.Background(), Request{
		Kind:      KindProjects,
		Format:    FormatCSV,
		Start:     &start,
		End:       &end,
		ProjectID: &p.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "relatorio_obras_residencial_aurora_2024-06-30.csv", out.FileName)
	assert.Equal(t, "text/csv;charset=utf-8", out.ContentType)
	assert.Equal(t, []byte("ok"), out.Data)
}

func TestService_Generate_PerformanceQueriesExpensesOnly(t *testing.T) {
	svc, m := newTestService(t, nil)
	expectCSV(m)

	m.projects.EXPECT().List(gomock.Any(), project.ListFilter{}).Return(nil, nil)
	m.transactions.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f transaction.ListFilter) ([]*transaction.Transaction, error) {
			require.NotNil(t, f.Type)
			assert.Equal(t, transaction.TypeExpense, *f.Type)
			return nil, nil
		})
	m.renderer.EXPECT().Render(gomock.Any()).Return([]byte("x"), nil)

	out, err := svc.Generate(context.Background(), Request{Kind: KindPerformance, Format: FormatCSV})
	require.NoError(t, err)
	assert.Equal(t, "relatorio_desempenho_geral_2024-06-30.csv", out.FileName)
}

func TestService_Generate_FinancialCategoryContext(t *testing.T) {
	svc, m := newTestService(t, nil)
	expectCSV(m)

	m.transactions.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f transaction.ListFilter) ([]*transaction.Transaction, error) {
			require.NotNil(t, f.Category)
			assert.Equal(t, "Mão de obra", *f.Category)
			return nil, nil
		})
	m.projects.EXPECT().List(gomock.Any(), project.ListFilter{}).Return(nil, nil)
	m.renderer.EXPECT().Render(gomock.Any()).Return([]byte("x"), nil)

	out, err := svc.Generate(context.Background(), Request{Kind: KindFinancial, Format: FormatCSV, Category: "Mão de obra"})
	require.NoError(t, err)
	assert.Equal(t, "relatorio_financeiro_mao_de_obra_2024-06-30.csv", out.FileName)
	assert.Equal(t, "Categoria: Mão de obra", out.Model.Context)
}

func TestService_Generate_MovementsTableMissing(t *testing.T) {
	svc, m := newTestService(t, nil)
	expectCSV(m)

	m.materials.EXPECT().Movements(gomock.Any(), gomock.Any()).Return(nil, material.ErrMovementsUnavailable)
	m.materials.EXPECT().List(gomock.Any(), material.ListFilter{}).Return(nil, nil)
	m.projects.EXPECT().List(gomock.Any(), project.ListFilter{}).Return(nil, nil)
	m.renderer.EXPECT().
		Render(gomock.Any()).
		DoAndReturn(func(model *Model) ([]byte, error) {
			assert.Empty(t, model.Sections[0].Rows)
			assert.Empty(t, model.Sections[1].Rows)

			return []byte("empty"), nil
		})

	out, err := svc.Generate(context.Background(), Request{Kind: KindMovements, Format: FormatCSV})
	require.NoError(t, err)
	assert.Equal(t, []byte("empty"), out.Data)
}

func TestService_Generate_Errors(t *testing.T) {
	dbErr := errors.New("connection reset")

	type testCase struct {
		name    string
		req     Request
		setup   func(m mocks)
		wantErr error
	}

	tests := []testCase{
		{
			name:    "UnknownKind",
			req:     Request{Kind: "estoque", Format: FormatCSV},
			wantErr: ErrUnknownKind,
		},
		{
			name:    "FormatWithoutRenderer",
			req:     Request{Kind: KindProjects, Format: FormatPDF},
			wantErr: ErrUnknownFormat,
		},
		{
			name: "InvertedPeriod",
			req: Request{
				Kind:   KindProjects,
				Format: FormatCSV,
				Start:  timePtr(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
				End:    timePtr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			},
			wantErr: ErrInvalidPeriod,
		},
		{
			name: "ProjectNotFound",
			req:  Request{Kind: KindProjects, Format: FormatCSV, ProjectID: uuidPtr(uuid.New())},
			setup: func(m mocks) {
				m.projects.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, project.ErrNotFound)
			},
			wantErr: project.ErrNotFound,
		},
		{
			name: "RequiredQueryFails",
			req:  Request{Kind: KindFinancial, Format: FormatCSV},
			setup: func(m mocks) {
				m.transactions.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, dbErr)
			},
			wantErr: dbErr,
		},
		{
			name: "MovementQueryFails",
			req:  Request{Kind: KindMaterials, Format: FormatCSV},
			setup: func(m mocks) {
				m.materials.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil)
				m.materials.EXPECT().Movements(gomock.Any(), gomock.Any()).Return(nil, dbErr)
			},
			wantErr: dbErr,
		},
		{
			name: "RenderFails",
			req:  Request{Kind: KindMaterials, Format: FormatCSV},
			setup: func(m mocks) {
				m.materials.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil)
				m.materials.EXPECT().Movements(gomock.Any(), gomock.Any()).Return(nil, nil)
				m.renderer.EXPECT().Render(gomock.Any()).Return(nil, dbErr)
			},
			wantErr: dbErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService(t, nil)
			if tt.setup != nil {
				tt.setup(m)
			}

			out, err := svc.Generate(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, out)
		})
	}
}

func TestService_Generate_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc, m := newTestService(t, reg)
	expectCSV(m)

	m.materials.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
	m.materials.EXPECT().Movements(gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
	m.renderer.EXPECT().Render(gomock.Any()).Return([]byte("x"), nil)
	m.renderer.EXPECT().Render(gomock.Any()).Return(nil, errors.New("boom"))

	_, err := svc.Generate(context.Background(), Request{Kind: KindMaterials, Format: FormatCSV})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), Request{Kind: KindMaterials, Format: FormatCSV})
	require.Error(t, err)

	count, err := testutil.GatherAndCount(reg, "gestobra_reports_generated_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func timePtr(t time.Time) *time.Time { return &t }

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }
