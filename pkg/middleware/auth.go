package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"villacal/pkg/logger"
)

const (
	PrincipalIDKey contextKey = "principal_id"
	RoleKey        contextKey = "role"
)

// AdminAuth validates a Bearer access token and requires the token's role
// claim to match requiredRole. The principal id (sub claim) is injected into
// the request context so handlers can stamp it onto created records.
// Missing or invalid credentials yield 401; a valid token with the wrong
// role yields 403.
func AdminAuth(secret, requiredRole string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				log.Warn("Rejected invalid access token",
					"request_id", RequestID(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				writeAuthError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "invalid claims")
				return
			}

			role, _ := claims["role"].(string)
			if role != requiredRole {
				log.Warn("Rejected non-admin principal",
					"request_id", RequestID(r.Context()),
					"path", r.URL.Path,
					"role", role,
				)
				writeAuthError(w, http.StatusForbidden, "forbidden")
				return
			}

			ctx := r.Context()
			if sub, _ := claims["sub"].(string); sub != "" {
				ctx = context.WithValue(ctx, PrincipalIDKey, sub)
			}
			ctx = context.WithValue(ctx, RoleKey, role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalID returns the authenticated principal's id, or "" for
// unauthenticated requests.
func PrincipalID(ctx context.Context) string {
	if id, ok := ctx.Value(PrincipalIDKey).(string); ok {
		return id
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
