package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator map[string]string

func (v stubValidator) ValidateToken(token string) (string, error) {
	subject, ok := v[token]
	if !ok {
		return "", errors.New("invalid token")
	}
	return subject, nil
}

func serve(t *testing.T, validator TokenValidator, header string) (*httptest.ResponseRecorder, string, bool) {
	t.Helper()
	var (
		called  bool
		subject string
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		subject = Subject(r)
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/upload-jd", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	RequireToken(validator)(next).ServeHTTP(w, req)
	return w, subject, called
}

func TestRequireToken_Valid(t *testing.T) {
	validator := stubValidator{"good-token": "recruiter@example.com"}

	for _, header := range []string{"Bearer good-token", "bearer good-token", "BEARER   good-token"} {
		w, subject, called := serve(t, validator, header)
		require.True(t, called, header)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "recruiter@example.com", subject)
	}
}

func TestRequireToken_Rejected(t *testing.T) {
	validator := stubValidator{"good-token": "ops"}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic good-token"},
		{"no token", "Bearer"},
		{"extra parts", "Bearer good-token extra"},
		{"unknown token", "Bearer bad-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _, called := serve(t, validator, tt.header)
			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
			assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")
		})
	}
}

func TestRequireToken_NilValidatorDisablesAuth(t *testing.T) {
	w, subject, called := serve(t, nil, "")
	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, subject)
}
