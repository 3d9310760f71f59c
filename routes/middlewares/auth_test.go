package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(tokens *jwtauth.JWTAuth) http.Handler {
	return RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(UserID(r.Context())))
	}))
}

func sign(t *testing.T, tokens *jwtauth.JWTAuth, claims map[string]interface{}) string {
	t.Helper()
	_, token, err := tokens.Encode(claims)
	require.NoError(t, err)
	return token
}

func TestRequireAuth(t *testing.T) {
	tokens := jwtauth.New("HS256", []byte("test-secret"), nil)
	other := jwtauth.New("HS256", []byte("other-secret"), nil)

	valid := map[string]interface{}{"sub": "user-1"}
	jwtauth.SetExpiryIn(valid, time.Hour)

	expired := map[string]interface{}{"sub": "user-1"}
	jwtauth.SetExpiry(expired, time.Now().Add(-time.Hour))

	noSubject := map[string]interface{}{}
	jwtauth.SetExpiryIn(noSubject, time.Hour)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"no header", "", http.StatusUnauthorized, `{"error":"unauthorized"}`},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, `{"error":"unauthorized"}`},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized, `{"error":"invalid_token"}`},
		{"foreign signature", "Bearer " + sign(t, other, valid), http.StatusUnauthorized, `{"error":"invalid_token"}`},
		{"expired", "Bearer " + sign(t, tokens, expired), http.StatusUnauthorized, `{"error":"invalid_token"}`},
		{"no subject", "Bearer " + sign(t, tokens, noSubject), http.StatusUnauthorized, `{"error":"unauthorized"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			protected(tokens).ServeHTTP(w, r)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}

	t.Run("valid", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set("Authorization", "Bearer "+sign(t, tokens, valid))
		w := httptest.NewRecorder()
		protected(tokens).ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-1", w.Body.String())
	})
}

func TestUserIDOutsideGate(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, UserID(r.Context()))
}
