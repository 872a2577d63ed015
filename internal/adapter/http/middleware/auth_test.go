package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/satistakip/cariledger/internal/domain"
	"github.com/satistakip/cariledger/internal/infrastructure/auth"
)

func scopeEchoHandler(t *testing.T, captured *domain.Scope) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope, ok := GetScopeFromContext(r.Context())
		if !ok {
			t.Fatal("expected scope in request context")
		}
		*captured = scope
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_CompanyToken(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := manager.Generate("user-1", "comp-1", "admin")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var captured domain.Scope
	mw := AuthMiddleware(manager)(scopeEchoHandler(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !captured.Equal(domain.ByCompany("comp-1")) {
		t.Fatalf("expected company scope, got %s", captured)
	}
}

func TestAuthMiddleware_LegacyUserToken(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := manager.Generate("user-7", "", "")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var captured domain.Scope
	mw := AuthMiddleware(manager)(scopeEchoHandler(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !captured.Equal(domain.ByLegacyUser("user-7")) {
		t.Fatalf("expected legacy user scope, got %s", captured)
	}
}

func TestAuthMiddleware_RejectsMissingHeader(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", time.Hour)
	mw := AuthMiddleware(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/accounts", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_RejectsBadToken(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", time.Hour)
	mw := AuthMiddleware(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()

	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHeaderScopeMiddleware_CompanyOverUser(t *testing.T) {
	var captured domain.Scope
	mw := HeaderScopeMiddleware()(scopeEchoHandler(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	req.Header.Set("X-Company-ID", "comp-1")
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()

	mw.ServeHTTP(rec, req)

	if !captured.Equal(domain.ByCompany("comp-1")) {
		t.Fatalf("expected company header to win, got %s", captured)
	}
}

func TestHeaderScopeMiddleware_MissingHeaders(t *testing.T) {
	mw := HeaderScopeMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/accounts", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
