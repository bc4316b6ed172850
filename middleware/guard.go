package middleware

import (
	"context"
	"net/http"

	"github.com/kweilun/authcore"
	"github.com/kweilun/authcore/jwt"
)

type contextKey struct{ name string }

var claimsKey = contextKey{"access-claims"}

// Verifier is the slice of the engine the guard needs. *authcore.Engine
// satisfies it.
type Verifier interface {
	VerifyAccess(tokenStr string) (*jwt.AccessClaims, error)
}

// Guard returns middleware that rejects requests without a valid
// "Bearer <token>" Authorization header. Valid requests proceed with the
// token claims attached to the request context.
//
// Both missing and invalid credentials yield 401 with the same body, so the
// response does not reveal whether a presented token was expired, forged,
// or absent.
func Guard(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := authcore.ExtractBearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			claims, err := verifier.VerifyAccess(token)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the access claims stored by [Guard], or
// (nil, false) when the request did not pass through the guard.
func ClaimsFromContext(ctx context.Context) (*jwt.AccessClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*jwt.AccessClaims)
	return claims, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
