package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"villacal/pkg/logger"
)

const testSecret = "test-secret-do-not-use"

func signToken(t *testing.T, secret, sub, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestAdminAuth(t *testing.T) {
	log := logger.New(logger.Config{Output: io.Discard})
	mw := AdminAuth(testSecret, "ADMIN", log)

	var seenPrincipal string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenPrincipal = PrincipalID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
		wantPrincipal string
	}{
		{
			name:          "no header",
			authorization: "",
			wantStatus:    http.StatusUnauthorized,
		},
		{
			name:          "wrong scheme",
			authorization: "Basic dXNlcjpwYXNz",
			wantStatus:    http.StatusUnauthorized,
		},
		{
			name:          "garbage token",
			authorization: "Bearer not.a.jwt",
			wantStatus:    http.StatusUnauthorized,
		},
		{
			name:          "wrong secret",
			authorization: "Bearer " + signToken(t, "other-secret", "admin-1", "ADMIN"),
			wantStatus:    http.StatusUnauthorized,
		},
		{
			name:          "valid token wrong role",
			authorization: "Bearer " + signToken(t, testSecret, "viewer-1", "VIEWER"),
			wantStatus:    http.StatusForbidden,
		},
		{
			name:          "valid admin",
			authorization: "Bearer " + signToken(t, testSecret, "admin-1", "ADMIN"),
			wantStatus:    http.StatusOK,
			wantPrincipal: "admin-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seenPrincipal = ""
			req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			rec := httptest.NewRecorder()

			mw(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if seenPrincipal != tt.wantPrincipal {
				t.Errorf("principal = %q, want %q", seenPrincipal, tt.wantPrincipal)
			}
		})
	}
}

func TestAdminAuth_ExpiredToken(t *testing.T) {
	log := logger.New(logger.Config{Output: io.Discard})
	mw := AdminAuth(testSecret, "ADMIN", log)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "admin-1",
		"role": "ADMIN",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()

	called := false
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if called {
		t.Errorf("next handler must not run for an expired token")
	}
}

func TestAdminAuth_RejectsUnsignedAlg(t *testing.T) {
	log := logger.New(logger.Config{Output: io.Discard})
	mw := AdminAuth(testSecret, "ADMIN", log)

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":  "admin-1",
		"role": "ADMIN",
	})
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestPrincipalID_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/public/bookings", nil)
	if got := PrincipalID(req.Context()); got != "" {
		t.Errorf("expected empty principal, got %q", got)
	}
}
