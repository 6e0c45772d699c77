package transaction_test

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

	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

func TestService_Create(t *testing.T) {
	type args struct {
		params transaction.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository)
		wantErr   error
		anyErr    bool
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{
				params: transaction.CreateParams{
					Value:       decimal.NewFromInt(1000),
					Type:        transaction.TypeExpense,
					Category:    " Cimento ",
					Description: "Compra de cimento",
					Date:        time.Date(2023, 10, 27, 0, 0, 0, 0, time.UTC),
				},
			},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						assert.Equal(t, transaction.PaymentPending, tx.PaymentStatus)
						assert.Equal(t, "Cimento", tx.Category)
						tx.ID = uuid.New()
						tx.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name: "NegativeValue",
			args: args{
				params: transaction.CreateParams{
					Value: decimal.NewFromInt(-5),
					Type:  transaction.TypeIncome,
				},
			},
			wantErr: transaction.ErrNegativeValue,
		},
		{
			name: "UnknownType",
			args: args{
				params: transaction.CreateParams{
					Value: decimal.NewFromInt(5),
					Type:  "transferencia",
				},
			},
			wantErr: transaction.ErrInvalidType,
		},
		{
			name: "UnknownPaymentStatus",
			args: args{
				params: transaction.CreateParams{
					Value:         decimal.NewFromInt(5),
					Type:          transaction.TypeIncome,
					PaymentStatus: "atrasado",
				},
			},
			wantErr: transaction.ErrInvalidPaymentStatus,
		},
		{
			name: "RepoError",
			args: args{
				params: transaction.CreateParams{
					Value: decimal.NewFromInt(500),
					Type:  transaction.TypeIncome,
				},
			},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo)
			got, err := svc.Create(context.Background(), tt.args.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			if tt.anyErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, got)
			assert.NotEmpty(t, got.ID)
		})
	}
}

func TestService_List(t *testing.T) {
	category := "Mão de obra"

	type args struct {
		filter transaction.ListFilter
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository)
		wantLen   int
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{filter: transaction.ListFilter{Category: &category}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), transaction.ListFilter{Category: &category}).
					Return([]*transaction.Transaction{
						{ID: uuid.New()},
						{ID: uuid.New()},
					}, nil)
			},
			wantLen: 2,
			wantErr: false,
		},
		{
			name: "Error",
			args: args{filter: transaction.ListFilter{}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), transaction.ListFilter{}).
					Return(nil, errors.New("list error"))
			},
			wantLen: 0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo)
			got, err := svc.List(context.Background(), tt.args.filter)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestService_UpdatePaymentStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)
	id := uuid.New()

	err := svc.UpdatePaymentStatus(context.Background(), id, "quitado")
	assert.ErrorIs(t, err, transaction.ErrInvalidPaymentStatus)

	repo.EXPECT().UpdatePaymentStatus(gomock.Any(), id, transaction.PaymentPaid).Return(nil)
	assert.NoError(t, svc.UpdatePaymentStatus(context.Background(), id, transaction.PaymentPaid))
}

func TestTransaction_Signed(t *testing.T) {
	income := &transaction.Transaction{Value: decimal.NewFromInt(300), Type: transaction.TypeIncome}
	expense := &transaction.Transaction{Value: decimal.NewFromInt(300), Type: transaction.TypeExpense}

	assert.True(t, income.Signed().Equal(decimal.NewFromInt(300)))
	assert.True(t, expense.Signed().Equal(decimal.NewFromInt(-300)))
}

func statementLine(value int64, description string, date time.Time) transaction.CreateParams {
	return transaction.CreateParams{
		Value:         decimal.NewFromInt(value),
		Type:          transaction.TypeExpense,
		PaymentStatus: transaction.PaymentPaid,
		Description:   description,
		Date:          date,
	}
}

func TestService_ImportBatch_NoConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	svc := transaction.NewService(repo)

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	params := []transaction.CreateParams{statementLine(1000, "LOJA DE MATERIAIS", date)}

	repo.EXPECT().BeginImport(gomock.Any(), date, date).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), params).Return(nil, nil)
	itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), params)
	require.NoError(t, err)
	assert.Len(t, result.Imported, 1)
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.New)
}

func TestService_ImportBatch_WithConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	svc := transaction.NewService(repo)

	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	params := []transaction.CreateParams{
		statementLine(1000, "LOJA DE MATERIAIS", start),
		statementLine(2000, "PEDREIRO", end),
	}

	existing := &transaction.Transaction{
		ID:          uuid.New(),
		Value:       decimal.RequireFromString("1000.00"),
		Type:        transaction.TypeExpense,
		Description: "loja de materiais",
		Date:        start,
	}

	repo.EXPECT().BeginImport(gomock.Any(), start, end).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), params).Return([]*transaction.Transaction{existing}, nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), params)
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Len(t, result.New, 1)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, params[0], result.Conflicts[0].Incoming)
	assert.Equal(t, existing, result.Conflicts[0].Existing)
}

func TestService_ImportBatch_InvalidLine(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	params := []transaction.CreateParams{statementLine(-1, "ESTORNO", time.Now())}

	_, err := svc.ImportBatch(context.Background(), params)
	assert.ErrorIs(t, err, transaction.ErrNegativeValue)
}

func TestService_ImportBatch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	result, err := svc.ImportBatch(context.Background(), []transaction.CreateParams{})
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.New)
}

func TestService_CreateBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	svc := transaction.NewService(repo)

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	params := []transaction.CreateParams{statementLine(1000, "LOJA DE MATERIAIS", date)}

	repo.EXPECT().BeginImport(gomock.Any(), date, date).Return(itx, nil)
	itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	txs, err := svc.CreateBatch(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Value.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, transaction.TypeExpense, txs[0].Type)
}

func TestNewImportKey_NormalisesValueAndDescription(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	a := transaction.NewImportKey(date, decimal.RequireFromString("12.5"), transaction.TypeIncome, "  PIX Recebido ")
	b := transaction.NewImportKey(date, decimal.RequireFromString("12.50"), transaction.TypeIncome, "pix recebido")

	assert.Equal(t, a, b)
}

func TestService_CreateBatch_RejectsInvalidLine(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := transaction.NewService(transaction.NewMockRepository(ctrl))

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	bad := statementLine(10, "ESTORNO", date)
	bad.Type = "transferencia"

	_, err := svc.CreateBatch(context.Background(), []transaction.CreateParams{statementLine(1, "OK", date), bad})
	require.ErrorIs(t, err, transaction.ErrInvalidType)
	assert.Contains(t, err.Error(), "line 2")
}
