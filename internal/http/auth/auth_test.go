package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/gestobra/internal/http/auth"
)

var secret = []byte("segredo-de-teste")

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)

	return token
}

func TestMiddleware(t *testing.T) {
	type testCase struct {
		name        string
		header      string
		wantCode    int
		wantSubject string
	}

	valid := sign(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	expired := sign(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	otherKey := sign(t, jwt.SigningMethodHS256, []byte("outra-chave"), jwt.RegisteredClaims{Subject: "user-42"})
	otherAlg := sign(t, jwt.SigningMethodHS512, secret, jwt.RegisteredClaims{Subject: "user-42"})
	noSubject := sign(t, jwt.SigningMethodHS256, secret, jwt.RegisteredClaims{})

	tests := []testCase{
		{name: "Valid", header: "Bearer " + valid, wantCode: http.StatusOK, wantSubject: "user-42"},
		{name: "Missing", header: "", wantCode: http.StatusUnauthorized},
		{name: "NotBearer", header: "Basic abc", wantCode: http.StatusUnauthorized},
		{name: "Expired", header: "Bearer " + expired, wantCode: http.StatusUnauthorized},
		{name: "WrongKey", header: "Bearer " + otherKey, wantCode: http.StatusUnauthorized},
		{name: "WrongAlgorithm", header: "Bearer " + otherAlg, wantCode: http.StatusUnauthorized},
		{name: "NoSubject", header: "Bearer " + noSubject, wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotSubject string

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSubject = auth.Subject(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			auth.Middleware(secret)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantSubject, gotSubject)
		})
	}
}
