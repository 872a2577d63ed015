package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satistakip/cariledger/internal/domain"
)

// EntryRepository defines data access for journal entries. No method ever
// removes a row; cancel and revert flows only update soft-state flags.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Entry, error)
	GetBySaleNo(ctx context.Context, scope domain.Scope, saleNo string) ([]*domain.Entry, error)
	ListByAccount(ctx context.Context, scope domain.Scope, accountID string, from, to *time.Time) ([]*domain.Entry, error)
	UpdateState(ctx context.Context, tx Transaction, id string, status domain.EntryStatus, isDeleted bool) error
	CountSettlements(ctx context.Context, tx Transaction, returnEntryID string) (int, error)
	SumActiveReturns(ctx context.Context, tx Transaction, saleEntryID string) (decimal.Decimal, error)
	CountByAccount(ctx context.Context, scope domain.Scope, accountID string) (int64, error)
}

// AccountRepository defines data access for cari accounts. GetByID is
// unscoped on purpose: the caller distinguishes NotFound from Forbidden by
// comparing the returned scope.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	UpdateCachedBakiye(ctx context.Context, tx Transaction, id string, bakiye decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, scope domain.Scope, limit, offset int) ([]*domain.Account, error)
}

// ProductRepository defines data access for the stock collaborator.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, scope domain.Scope, id string) (*domain.Product, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, scope domain.Scope, ids []string) ([]*domain.Product, error)
	AdjustOnHand(ctx context.Context, tx Transaction, id string, delta decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, scope domain.Scope, limit, offset int) ([]*domain.Product, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries an operation on transient data-store failures. The
// operation must be safe to re-run from the top.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
