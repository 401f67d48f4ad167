package middleware

import (
	"context"
	"net/http"
	"strings"

	"lcr/pkg/auth"
	"lcr/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

const principalKey contextKey = "principal"

// Principal is the resolved identity placed on the request context. The core
// consumes it as-is; authentication itself happens in the accounts service.
type Principal struct {
	UserID   string
	Username string
	Role     string
	Scopes   []string
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}

// Authenticate verifies the bearer token and stores the Principal on the
// context. Paths listed in skip bypass verification (health, register, login).
func Authenticate(secret string, log *logger.Logger, skip ...string) func(http.Handler) http.Handler {
	isPublic := func(path string) bool {
		for _, prefix := range skip {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "Missing bearer token")
				return
			}

			claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "), secret)
			if err != nil {
				log.Warn("Token validation failed",
					"request_id", RequestID(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				writeAuthError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			principal := &Principal{
				UserID:   claims.UserID,
				Username: claims.Username,
				Role:     claims.Role,
				Scopes:   claims.Scopes(),
			}
			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScope guards a single route with a scope check. Used by handlers
// when registering routes.
func RequireScope(scope string, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		if !auth.HasScope(p.Scopes, scope) {
			writeAuthError(w, http.StatusForbidden, "Insufficient scope")
			return
		}
		next(w, r, ps)
	}
}
