package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/satistakip/cariledger/internal/domain"
	"github.com/satistakip/cariledger/internal/infrastructure/metrics"
)

// BalanceUseCase computes {borc, alacak, bakiye} for a cari account from the
// journal. Read-only; the journal is authoritative, the Redis cache only
// shortcuts repeated unbounded reads and is dropped on every posting.
type BalanceUseCase struct {
	entryRepo   EntryRepository
	accountRepo AccountRepository
	cache       Cache
	metrics     *metrics.Metrics
}

// NewBalanceUseCase creates a new BalanceUseCase. cache may be nil.
func NewBalanceUseCase(entryRepo EntryRepository, accountRepo AccountRepository, cache Cache) *BalanceUseCase {
	return &BalanceUseCase{
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		cache:       cache,
	}
}

// WithMetrics records balance read counters by source.
func (uc *BalanceUseCase) WithMetrics(m *metrics.Metrics) *BalanceUseCase {
	uc.metrics = m
	return uc
}

// ComputeBalanceInput scopes a balance computation.
type ComputeBalanceInput struct {
	Scope     domain.Scope
	AccountID string
	From      *time.Time
	To        *time.Time
}

// cachedBalance is the cache wire form of a computed balance.
type cachedBalance struct {
	Borc   string `json:"borc"`
	Alacak string `json:"alacak"`
	Bakiye string `json:"bakiye"`
}

// ComputeBalance folds active journal entries in scope into a balance.
// bakiye = borc - alacak; positive means the counterparty owes us.
func (uc *BalanceUseCase) ComputeBalance(ctx context.Context, input ComputeBalanceInput) (domain.Balance, error) {
	if err := domain.ValidateDateRange(input.From, input.To); err != nil {
		return domain.Balance{}, err
	}

	if _, err := getAccount(ctx, uc.accountRepo, input.Scope, input.AccountID); err != nil {
		return domain.Balance{}, err
	}

	unbounded := input.From == nil && input.To == nil

	if unbounded {
		if balance, ok := uc.fromCache(ctx, input.Scope, input.AccountID); ok {
			if uc.metrics != nil {
				uc.metrics.BalanceReads.WithLabelValues("cache").Inc()
			}
			return balance, nil
		}
	}

	entries, err := uc.entryRepo.ListByAccount(ctx, input.Scope, input.AccountID, input.From, input.To)
	if err != nil {
		return domain.Balance{}, err
	}

	balance := domain.FoldBalance(entries)

	if uc.metrics != nil {
		uc.metrics.BalanceReads.WithLabelValues("journal").Inc()
	}

	if unbounded {
		uc.toCache(ctx, input.Scope, input.AccountID, balance)
	}

	return balance, nil
}

func (uc *BalanceUseCase) fromCache(ctx context.Context, scope domain.Scope, accountID string) (domain.Balance, bool) {
	if uc.cache == nil {
		return domain.Balance{}, false
	}

	raw, err := uc.cache.Get(ctx, balanceCacheKey(scope, accountID))
	if err != nil {
		return domain.Balance{}, false
	}

	var cb cachedBalance
	if err := json.Unmarshal([]byte(raw), &cb); err != nil {
		return domain.Balance{}, false
	}

	balance, err := cb.toDomain()
	if err != nil {
		return domain.Balance{}, false
	}

	return balance, true
}

func (uc *BalanceUseCase) toCache(ctx context.Context, scope domain.Scope, accountID string, balance domain.Balance) {
	if uc.cache == nil {
		return
	}

	raw, err := json.Marshal(cachedBalance{
		Borc:   balance.Borc.String(),
		Alacak: balance.Alacak.String(),
		Bakiye: balance.Bakiye.String(),
	})
	if err != nil {
		return
	}

	_ = uc.cache.Set(ctx, balanceCacheKey(scope, accountID), string(raw), BalanceCacheTTL)
}

func (cb cachedBalance) toDomain() (domain.Balance, error) {
	var balance domain.Balance

	var err error
	if balance.Borc, err = decimalFromString(cb.Borc); err != nil {
		return domain.Balance{}, err
	}

	if balance.Alacak, err = decimalFromString(cb.Alacak); err != nil {
		return domain.Balance{}, err
	}

	if balance.Bakiye, err = decimalFromString(cb.Bakiye); err != nil {
		return domain.Balance{}, err
	}

	return balance, nil
}
