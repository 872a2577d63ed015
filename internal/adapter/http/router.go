package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/satistakip/cariledger/internal/adapter/http/handler"
	"github.com/satistakip/cariledger/internal/adapter/http/middleware"
	"github.com/satistakip/cariledger/internal/infrastructure/auth"
	"github.com/satistakip/cariledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	ProductHandler   *handler.ProductHandler
	PostingHandler   *handler.PostingHandler
	ReversalHandler  *handler.ReversalHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler
	JWTManager       *auth.JWTManager
	IdempotencyStore usecase.IdempotencyStore
	AuditRepo        usecase.AuditRepository
	RateLimiter      *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		// Tenant resolution: JWT when configured, dev headers otherwise
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		} else {
			r.Use(middleware.HeaderScopeMiddleware())
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Audit trail for mutating requests, after tenant resolution
		if cfg.AuditRepo != nil {
			auditMiddleware := middleware.NewAuditMiddleware(cfg.AuditRepo)
			r.Use(auditMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/balance", cfg.LedgerHandler.GetBalance)
			r.Get("/{id}/statement", cfg.LedgerHandler.GetStatement)
			r.Get("/{id}/reconciliation", cfg.LedgerHandler.ReconcileAccount)
		})

		// Products
		r.Route("/products", func(r chi.Router) {
			r.Post("/", cfg.ProductHandler.Create)
			r.Get("/", cfg.ProductHandler.List)
			r.Get("/{id}", cfg.ProductHandler.Get)
		})

		// Journal entries
		r.Route("/entries", func(r chi.Router) {
			r.Post("/sales", cfg.PostingHandler.PostSale)
			r.Post("/purchases", cfg.PostingHandler.PostPurchase)
			r.Post("/payments", cfg.PostingHandler.PostPayment)
			r.Get("/{id}", cfg.PostingHandler.Get)
			r.Post("/{id}/cancel", cfg.ReversalHandler.Cancel)
			r.Post("/{id}/revert", cfg.ReversalHandler.Revert)
			r.Post("/{id}/return", cfg.ReversalHandler.Return)
			r.Post("/{id}/settle", cfg.ReversalHandler.Settle)
		})

		// Sale groups addressed by sale number
		r.Route("/sales", func(r chi.Router) {
			r.Get("/{saleNo}", cfg.PostingHandler.GetBySaleNo)
			r.Post("/{saleNo}/cancel", cfg.ReversalHandler.CancelBySaleNo)
		})

		// Scope-wide reconciliation
		r.Get("/reconciliation", cfg.LedgerHandler.ReconcileScope)
	})

	return r
}
