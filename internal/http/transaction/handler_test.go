package transaction_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	httptx "github.com/MrJamesThe3rd/gestobra/internal/http/transaction"
	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

func newRouter(t *testing.T) (http.Handler, *transaction.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)

	r := chi.NewRouter()
	r.Route("/transactions", httptx.NewHandler(transaction.NewService(repo)).Routes)

	return r, repo
}

func TestHandler_Create(t *testing.T) {
	type testCase struct {
		name      string
		body      string
		setupMock func(m *transaction.MockRepository)
		wantCode  int
	}

	tests := []testCase{
		{
			name: "Success",
			body: `{"date":"2024-03-05T00:00:00Z","value":"1250.50","type":"despesa","category":"Cimento","description":"Compra"}`,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCode: http.StatusCreated,
		},
		{
			name:     "MalformedBody",
			body:     `{`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "NegativeValue",
			body:     `{"date":"2024-03-05T00:00:00Z","value":"-1","type":"despesa"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "UnknownType",
			body:     `{"date":"2024-03-05T00:00:00Z","value":"10","type":"transferencia"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "UnknownProject",
			body: `{"date":"2024-03-05T00:00:00Z","value":"10","type":"receita","project_id":"` + uuid.NewString() + `"}`,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(transaction.ErrProjectNotFound)
			},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, repo := newRouter(t)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			req := httptest.NewRequest(http.MethodPost, "/transactions/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestHandler_CreateResponseBody(t *testing.T) {
	router, repo := newRouter(t)

	repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)

	body := `{"date":"2024-03-05T00:00:00Z","value":"1250.50","type":"receita","category":"Medição"}`
	req := httptest.NewRequest(http.MethodPost, "/transactions/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "1250.5", got["value"])
	assert.Equal(t, "pendente", got["payment_status"])
	assert.Equal(t, "Medição", got["category"])
}

func TestHandler_ListFilters(t *testing.T) {
	router, repo := newRouter(t)
	projectID := uuid.New()

	repo.EXPECT().
		ListTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
			require.NotNil(t, filter.ProjectID)
			assert.Equal(t, projectID, *filter.ProjectID)
			require.NotNil(t, filter.Type)
			assert.Equal(t, transaction.TypeExpense, *filter.Type)
			require.NotNil(t, filter.PaymentStatus)
			assert.Equal(t, transaction.PaymentPaid, *filter.PaymentStatus)
			require.NotNil(t, filter.StartDate)
			assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *filter.StartDate)
			assert.Nil(t, filter.EndDate)

			return []*transaction.Transaction{{ID: uuid.New(), Value: decimal.NewFromInt(10), Type: transaction.TypeExpense}}, nil
		})

	req := httptest.NewRequest(http.MethodGet,
		"/transactions/?project_id="+projectID.String()+"&type=despesa&payment_status=pago&start_date=2024-01-01&end_date=bad", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}

func TestHandler_ListInvalidProject(t *testing.T) {
	router, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/transactions/?project_id=nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Get(t *testing.T) {
	type testCase struct {
		name      string
		id        string
		setupMock func(m *transaction.MockRepository, id uuid.UUID)
		wantCode  int
	}

	tests := []testCase{
		{
			name: "Found",
			id:   uuid.NewString(),
			setupMock: func(m *transaction.MockRepository, id uuid.UUID) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(&transaction.Transaction{ID: id}, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name: "NotFound",
			id:   uuid.NewString(),
			setupMock: func(m *transaction.MockRepository, id uuid.UUID) {
				m.EXPECT().GetTransaction(gomock.Any(), id).Return(nil, transaction.ErrNotFound)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "InvalidID",
			id:       "abc",
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, repo := newRouter(t)
			if tt.setupMock != nil {
				tt.setupMock(repo, uuid.MustParse(tt.id))
			}

			req := httptest.NewRequest(http.MethodGet, "/transactions/"+tt.id, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestHandler_Update(t *testing.T) {
	router, repo := newRouter(t)
	id := uuid.New()

	existing := &transaction.Transaction{
		ID:            id,
		Value:         decimal.NewFromInt(100),
		Type:          transaction.TypeExpense,
		PaymentStatus: transaction.PaymentPending,
		Description:   "antigo",
	}

	repo.EXPECT().GetTransaction(gomock.Any(), id).Return(existing, nil)
	repo.EXPECT().
		UpdateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, tx *transaction.Transaction) error {
			assert.Equal(t, "novo", tx.Description)
			assert.True(t, decimal.NewFromInt(100).Equal(tx.Value))
			return nil
		})

	req := httptest.NewRequest(http.MethodPatch, "/transactions/"+id.String(), strings.NewReader(`{"description":"novo"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_UpdatePaymentStatus(t *testing.T) {
	type testCase struct {
		name      string
		body      string
		setupMock func(m *transaction.MockRepository, id uuid.UUID)
		wantCode  int
	}

	tests := []testCase{
		{
			name: "Paid",
			body: `{"payment_status":"pago"}`,
			setupMock: func(m *transaction.MockRepository, id uuid.UUID) {
				m.EXPECT().UpdatePaymentStatus(gomock.Any(), id, transaction.PaymentPaid).Return(nil)
			},
			wantCode: http.StatusNoContent,
		},
		{
			name:     "Unknown",
			body:     `{"payment_status":"quitado"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Missing",
			body: `{"payment_status":"pendente"}`,
			setupMock: func(m *transaction.MockRepository, id uuid.UUID) {
				m.EXPECT().UpdatePaymentStatus(gomock.Any(), id, transaction.PaymentPending).Return(transaction.ErrNotFound)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, repo := newRouter(t)
			id := uuid.New()

			if tt.setupMock != nil {
				tt.setupMock(repo, id)
			}

			req := httptest.NewRequest(http.MethodPatch, "/transactions/"+id.String()+"/payment-status", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestHandler_Categories(t *testing.T) {
	router, repo := newRouter(t)

	repo.EXPECT().ListCategories(gomock.Any()).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/transactions/categories", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
