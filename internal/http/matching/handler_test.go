package matching_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	httpmatching "github.com/MrJamesThe3rd/gestobra/internal/http/matching"
	"github.com/MrJamesThe3rd/gestobra/internal/matching"
)

func newRouter(t *testing.T) (http.Handler, *matching.MockRepository) {
	t.Helper()

	repo := matching.NewMockRepository(gomock.NewController(t))

	r := chi.NewRouter()
	r.Route("/rules", httpmatching.NewHandler(matching.NewService(repo)).Routes)

	return r, repo
}

func TestHandler_Suggest(t *testing.T) {
	router, repo := newRouter(t)

	repo.EXPECT().FindCategory(gomock.Any(), "PIX DEPOSITO SAO JOSE").Return("Materiais", nil)

	req := httptest.NewRequest(http.MethodGet, "/rules/suggest?description=PIX+DEPOSITO+SAO+JOSE", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"description":"PIX DEPOSITO SAO JOSE","category":"Materiais"}`, rec.Body.String())
}

func TestHandler_SuggestMissingDescription(t *testing.T) {
	router, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/rules/suggest", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Learn(t *testing.T) {
	type testCase struct {
		name      string
		body      string
		setupMock func(m *matching.MockRepository)
		wantCode  int
	}

	tests := []testCase{
		{
			name: "Created",
			body: `{"pattern":"SAO JOSE","category":"Materiais"}`,
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().CreateRule(gomock.Any(), "SAO JOSE", "Materiais").Return(nil)
			},
			wantCode: http.StatusCreated,
		},
		{name: "MissingCategory", body: `{"pattern":"SAO JOSE"}`, wantCode: http.StatusBadRequest},
		{name: "Malformed", body: `{`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, repo := newRouter(t)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			req := httptest.NewRequest(http.MethodPost, "/rules/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
