package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kweilun/authcore/jwt"
)

type fakeVerifier struct {
	claims *jwt.AccessClaims
	err    error
}

func (v fakeVerifier) VerifyAccess(string) (*jwt.AccessClaims, error) {
	return v.claims, v.err
}

func guardedHandler(t *testing.T, v Verifier) (http.Handler, *bool, **jwt.AccessClaims) {
	t.Helper()
	called := false
	var seen *jwt.AccessClaims
	handler := Guard(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return handler, &called, &seen
}

func TestGuardPassesValidToken(t *testing.T) {
	want := &jwt.AccessClaims{UserID: "u1", Email: "a@example.com", Username: "alice"}
	handler, called, seen := guardedHandler(t, fakeVerifier{claims: want})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !*called {
		t.Fatal("handler not invoked")
	}
	if *seen != want {
		t.Fatalf("claims = %+v, want %+v", *seen, want)
	}
}

func TestGuardRejectsMissingAndInvalidAlike(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		verifier Verifier
	}{
		{"no header", "", fakeVerifier{claims: &jwt.AccessClaims{}}},
		{"wrong scheme", "Basic abc", fakeVerifier{claims: &jwt.AccessClaims{}}},
		{"expired token", "Bearer tok", fakeVerifier{err: jwt.ErrTokenExpired}},
		{"forged token", "Bearer tok", fakeVerifier{err: jwt.ErrTokenInvalid}},
		{"engine failure", "Bearer tok", fakeVerifier{err: errors.New("boom")}},
	}

	var bodies []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler, called, _ := guardedHandler(t, tc.verifier)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if *called {
				t.Fatal("handler invoked for rejected request")
			}
			bodies = append(bodies, rec.Body.String())
		})
	}

	// Responses must not distinguish the rejection reasons.
	for i := 1; i < len(bodies); i++ {
		if bodies[i] != bodies[0] {
			t.Fatalf("response bodies differ: %q vs %q", bodies[0], bodies[i])
		}
	}
}

func TestClaimsFromContextWithoutGuard(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if claims, ok := ClaimsFromContext(req.Context()); ok || claims != nil {
		t.Fatalf("claims = %+v, ok = %v", claims, ok)
	}
}
