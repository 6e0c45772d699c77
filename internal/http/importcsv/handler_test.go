package importcsv_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
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

	"github.com/MrJamesThe3rd/gestobra/internal/http/importcsv"
	"github.com/MrJamesThe3rd/gestobra/internal/importer"
	"github.com/MrJamesThe3rd/gestobra/internal/matching"
	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

const statementCSV = "Data;Descrição;Valor;Categoria\n01/03/2024;Compra de areia;-850,00;Materiais\n05/03/2024;Medição 2;12.000,00;Medições\n"

type mocks struct {
	repo  *transaction.MockRepository
	itx   *transaction.MockImportTx
	rules *matching.MockRepository
}

func newRouter(t *testing.T) (http.Handler, mocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := mocks{
		repo:  transaction.NewMockRepository(ctrl),
		itx:   transaction.NewMockImportTx(ctrl),
		rules: matching.NewMockRepository(ctrl),
	}

	h := importcsv.NewHandler(importer.NewService(), transaction.NewService(m.repo), matching.NewService(m.rules))

	r := chi.NewRouter()
	r.Route("/import", h.Routes)

	return r, m
}

func uploadRequest(t *testing.T, fields map[string]string, content string) *http.Request {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	if content != "" {
		fw, err := mw.CreateFormFile("file", "extrato.csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/import/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func TestHandler_Import(t *testing.T) {
	router, m := newRouter(t)
	repo, itx := m.repo, m.itx
	projectID := uuid.New()

	repo.EXPECT().
		BeginImport(gomock.Any(), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)).
		Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), gomock.Any()).Return(nil, nil)
	itx.EXPECT().
		CreateTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, txs []*transaction.Transaction) error {
			require.Len(t, txs, 2)

			for _, tx := range txs {
				require.NotNil(t, tx.ProjectID)
				assert.Equal(t, projectID, *tx.ProjectID)
				assert.Equal(t, transaction.PaymentPaid, tx.PaymentStatus)
			}

			assert.Equal(t, transaction.TypeExpense, txs[0].Type)
			assert.Equal(t, "Materiais", txs[0].Category)

			return nil
		})
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, map[string]string{"project_id": projectID.String()}, statementCSV))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got struct {
		Imported int `json:"imported"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Imported)
}

func TestHandler_ImportConflict(t *testing.T) {
	router, m := newRouter(t)
	repo, itx := m.repo, m.itx

	existing := &transaction.Transaction{
		ID:          uuid.New(),
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Value:       decimal.RequireFromString("850"),
		Type:        transaction.TypeExpense,
		Description: "compra de areia",
	}

	repo.EXPECT().BeginImport(gomock.Any(), gomock.Any(), gomock.Any()).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), gomock.Any()).Return([]*transaction.Transaction{existing}, nil)
	itx.EXPECT().Rollback().Return(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, nil, statementCSV))

	require.Equal(t, http.StatusConflict, rec.Code)

	var got struct {
		New       []map[string]any `json:"new"`
		Conflicts []map[string]any `json:"conflicts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.New, 1)
	assert.Len(t, got.Conflicts, 1)
}

func TestHandler_ImportBadInput(t *testing.T) {
	type testCase struct {
		name    string
		fields  map[string]string
		content string
	}

	tests := []testCase{
		{name: "NoFile", fields: map[string]string{"layout": "extrato"}},
		{name: "BadProject", fields: map[string]string{"project_id": "x"}, content: statementCSV},
		{name: "UnknownLayout", fields: map[string]string{"layout": "ofx"}, content: statementCSV},
		{name: "Unparseable", content: "Date;Amount\n2024-01-01;1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newRouter(t)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, uploadRequest(t, tt.fields, tt.content))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_Confirm(t *testing.T) {
	router, m := newRouter(t)
	repo, itx := m.repo, m.itx

	repo.EXPECT().BeginImport(gomock.Any(), gomock.Any(), gomock.Any()).Return(itx, nil)
	itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	body := `{"params":[{"date":"2024-03-01T00:00:00Z","value":"850","type":"despesa","description":"Compra de areia","payment_status":"pago"}]}`
	req := httptest.NewRequest(http.MethodPost, "/import/confirm", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandler_ConfirmInvalidLine(t *testing.T) {
	router, _ := newRouter(t)

	body := `{"params":[{"date":"2024-03-01T00:00:00Z","value":"-1","type":"despesa"}]}`
	req := httptest.NewRequest(http.MethodPost, "/import/confirm", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ImportClassifiesUncategorisedLines(t *testing.T) {
	router, m := newRouter(t)

	const csv = "Data;Histórico;Débito;Crédito\n10/01/2024;PIX DEPOSITO SAO JOSE;3.200,00;\n"

	m.rules.EXPECT().FindCategory(gomock.Any(), "PIX DEPOSITO SAO JOSE").Return("Materiais", nil)
	m.repo.EXPECT().BeginImport(gomock.Any(), gomock.Any(), gomock.Any()).Return(m.itx, nil)
	m.itx.EXPECT().FindDuplicates(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.itx.EXPECT().
		CreateTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, txs []*transaction.Transaction) error {
			require.Len(t, txs, 1)
			assert.Equal(t, "Materiais", txs[0].Category)
			assert.True(t, decimal.RequireFromString("3200").Equal(txs[0].Value))
			return nil
		})
	m.itx.EXPECT().Commit().Return(nil)
	m.itx.EXPECT().Rollback().Return(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, nil, csv))

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
