package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"

	"github.com/mbolis/waterlily/httpx"
	"github.com/mbolis/waterlily/model"
)

type contextKey struct{ name string }

var userIDKey = &contextKey{"user_id"}

// RequireAuth admits only requests carrying a valid bearer token signed by
// tokens. The token subject is made available through UserID.
func RequireAuth(tokens *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(jwtauth.Verify(tokens, jwtauth.TokenFromHeader), authenticate).Handler(next)
	}
}

func authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		if errors.Is(err, jwtauth.ErrNoTokenFound) {
			httpx.Error(w, r, "auth.token", model.ErrUnauthorized())
			return
		}
		if err != nil || token == nil {
			httpx.Error(w, r, "auth.verify", model.ErrInvalidToken())
			return
		}

		sub := token.Subject()
		if sub == "" {
			httpx.Error(w, r, "auth.subject", model.ErrUnauthorized())
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, sub)))
	})
}

// UserID returns the authenticated user id, or "" outside RequireAuth.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
