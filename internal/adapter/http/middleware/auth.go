package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/satistakip/cariledger/internal/domain"
	"github.com/satistakip/cariledger/internal/infrastructure/auth"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// ScopeContextKey is the context key for the resolved tenant scope
	ScopeContextKey ContextKey = "scope"
	// ClaimsContextKey is the context key for the verified JWT claims
	ClaimsContextKey ContextKey = "claims"
)

// AuthMiddleware verifies the Bearer token and resolves the tenant scope.
// Tokens carrying a company_id map to the company scope; older tokens
// without one fall back to the per-user scope.
func AuthMiddleware(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			// Parse Bearer token
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			scope := claims.Scope()
			if scope.IsZero() {
				http.Error(w, "token carries no tenant identity", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			ctx = context.WithValue(ctx, ScopeContextKey, scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HeaderScopeMiddleware resolves the tenant scope from X-Company-ID or
// X-User-ID headers. Used when JWT auth is disabled (local development).
func HeaderScopeMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var scope domain.Scope
			if companyID := r.Header.Get("X-Company-ID"); companyID != "" {
				scope = domain.ByCompany(companyID)
			} else if userID := r.Header.Get("X-User-ID"); userID != "" {
				scope = domain.ByLegacyUser(userID)
			} else {
				http.Error(w, "missing tenant headers", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ScopeContextKey, scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetScopeFromContext extracts the resolved tenant scope from context
func GetScopeFromContext(ctx context.Context) (domain.Scope, bool) {
	scope, ok := ctx.Value(ScopeContextKey).(domain.Scope)
	return scope, ok
}

// GetClaimsFromContext extracts the verified claims from context
func GetClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*auth.Claims)
	return claims, ok
}
