package project_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	httpproject "github.com/MrJamesThe3rd/gestobra/internal/http/project"
	"github.com/MrJamesThe3rd/gestobra/internal/project"
)

func newRouter(t *testing.T) (http.Handler, *project.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := project.NewMockRepository(ctrl)

	r := chi.NewRouter()
	r.Route("/projects", httpproject.NewHandler(project.NewService(repo)).Routes)

	return r, repo
}

func TestHandler_Create(t *testing.T) {
	type testCase struct {
		name      string
		body      string
		setupMock func(m *project.MockRepository)
		wantCode  int
	}

	tests := []testCase{
		{
			name: "Success",
			body: `{"name":"Residencial Aurora","budget":"150000","progress":10}`,
			setupMock: func(m *project.MockRepository) {
				m.EXPECT().CreateProject(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCode: http.StatusCreated,
		},
		{
			name:     "EmptyName",
			body:     `{"name":"  ","budget":"10"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "ProgressOutOfRange",
			body:     `{"name":"Galpão","progress":120}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "UnknownStatus",
			body:     `{"name":"Galpão","status":"demolida"}`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, repo := newRouter(t)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			req := httptest.NewRequest(http.MethodPost, "/projects/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestHandler_List(t *testing.T) {
	router, repo := newRouter(t)

	repo.EXPECT().
		ListProjects(gomock.Any(), project.ListFilter{Status: new(project.StatusInProgress), Search: "aurora"}).
		Return([]*project.Project{{
			ID:       uuid.New(),
			Name:     "Residencial Aurora",
			Status:   project.StatusInProgress,
			Budget:   decimal.NewFromInt(1000),
			Progress: 40,
		}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/projects/?status=em_andamento&search=aurora", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Em andamento", got[0]["status_label"])
	assert.Equal(t, "1000", got[0]["budget"])
}

func TestHandler_Update(t *testing.T) {
	router, repo := newRouter(t)
	id := uuid.New()

	repo.EXPECT().GetProject(gomock.Any(), id).Return(&project.Project{
		ID:     id,
		Name:   "Galpão",
		Status: project.StatusPlanned,
	}, nil)
	repo.EXPECT().
		UpdateProject(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, p *project.Project) error {
			assert.Equal(t, 75, p.Progress)
			assert.Equal(t, project.StatusInProgress, p.Status)
			assert.Equal(t, "Galpão", p.Name)
			return nil
		})

	req := httptest.NewRequest(http.MethodPatch, "/projects/"+id.String(), strings.NewReader(`{"progress":75,"status":"em_andamento"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_Delete(t *testing.T) {
	type testCase struct {
		name     string
		repoErr  error
		wantCode int
	}

	tests := []testCase{
		{name: "Deleted", wantCode: http.StatusNoContent},
		{name: "NotFound", repoErr: project.ErrNotFound, wantCode: http.StatusNotFound},
		{name: "InUse", repoErr: project.ErrInUse, wantCode: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, repo := newRouter(t)
			id := uuid.New()

			repo.EXPECT().DeleteProject(gomock.Any(), id).Return(tt.repoErr)

			req := httptest.NewRequest(http.MethodDelete, "/projects/"+id.String(), nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
