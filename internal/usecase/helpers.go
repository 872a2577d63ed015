package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satistakip/cariledger/internal/domain"
)

// decimalFromString parses a cached decimal value.
func decimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// balanceCacheKey is the cache key for a scoped account balance.
func balanceCacheKey(scope domain.Scope, accountID string) string {
	return "balance:" + scope.String() + ":" + accountID
}

// runWithRetry executes a transactional operation through the retrier when
// one is configured.
func runWithRetry(ctx context.Context, retrier Retrier, operation func() error) error {
	if retrier == nil {
		return operation()
	}

	return retrier.Retry(ctx, operation)
}

// lockAccount loads an account under a row lock and authorizes the scope.
// A missing account maps to NotFound; an account owned by another tenant
// maps to Forbidden.
func lockAccount(ctx context.Context, tx Transaction, repo AccountRepository, scope domain.Scope, accountID string) (*domain.Account, error) {
	account, err := repo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	if err := account.AuthorizeRead(scope); err != nil {
		return nil, err
	}

	return account, nil
}

// getAccount is the read-side counterpart of lockAccount.
func getAccount(ctx context.Context, repo AccountRepository, scope domain.Scope, accountID string) (*domain.Account, error) {
	account, err := repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := account.AuthorizeRead(scope); err != nil {
		return nil, err
	}

	return account, nil
}

// lockProducts locks the products referenced by items in sorted ID order to
// keep lock acquisition deterministic across concurrent postings.
func lockProducts(ctx context.Context, tx Transaction, repo ProductRepository, scope domain.Scope, items []domain.LineItem) (map[string]*domain.Product, error) {
	if len(items) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool, len(items))

	var ids []string
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	sort.Strings(ids)

	products, err := repo.GetByIDsForUpdate(ctx, tx, scope, ids)
	if err != nil {
		return nil, err
	}

	if len(products) != len(ids) {
		return nil, domain.ErrProductNotFound
	}

	byID := make(map[string]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	return byID, nil
}

// applyStock adjusts on-hand for each line item. invert applies the negated
// delta, used when undoing the stock effect of a cancelled entry.
func applyStock(
	ctx context.Context,
	tx Transaction,
	repo ProductRepository,
	products map[string]*domain.Product,
	entryType domain.EntryType,
	items []domain.LineItem,
	invert bool,
	now time.Time,
) error {
	for _, item := range items {
		delta := domain.StockDeltaFor(entryType, item.Quantity)
		if invert {
			delta = delta.Neg()
		}

		if delta.IsZero() {
			continue
		}

		product := products[item.ProductID]

		if delta.IsNegative() {
			if err := product.ValidateIssue(delta.Neg()); err != nil {
				return err
			}
		}

		if err := repo.AdjustOnHand(ctx, tx, product.ID, delta, now); err != nil {
			return err
		}

		product.OnHand = product.OnHand.Add(delta)
	}

	return nil
}

// newOutboxEvent builds an outbox row for an entry-level event.
func newOutboxEvent(id, eventType, entryID string, payload any, now time.Time) *domain.OutboxEvent {
	data, _ := json.Marshal(payload)

	var m map[string]any
	_ = json.Unmarshal(data, &m)

	return &domain.OutboxEvent{
		ID:            id,
		AggregateID:   entryID,
		AggregateType: domain.AggregateTypeEntry,
		EventType:     eventType,
		Payload:       m,
		CreatedAt:     now,
	}
}
