package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satistakip/cariledger/internal/domain"
	"github.com/satistakip/cariledger/internal/infrastructure/metrics"
)

// ReconciliationUseCase checks the transactionally maintained bakiye cache on
// each account against the authoritative journal fold and reports drift.
type ReconciliationUseCase struct {
	entryRepo   EntryRepository
	accountRepo AccountRepository
	metrics     *metrics.Metrics
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(entryRepo EntryRepository, accountRepo AccountRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
	}
}

// WithMetrics records reconciliation run and drift counters.
func (uc *ReconciliationUseCase) WithMetrics(m *metrics.Metrics) *ReconciliationUseCase {
	uc.metrics = m
	return uc
}

// ReconciliationResult is the drift report for one account.
type ReconciliationResult struct {
	AccountID     string
	CachedBakiye  decimal.Decimal
	JournalBakiye decimal.Decimal
	Difference    decimal.Decimal
	EntryCount    int64
	IsReconciled  bool
	CheckedAt     time.Time
}

// ReconcileAccount recomputes one account's bakiye from the journal and
// compares it with the cached value.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, scope domain.Scope, accountID string) (*ReconciliationResult, error) {
	account, err := getAccount(ctx, uc.accountRepo, scope, accountID)
	if err != nil {
		return nil, err
	}

	entries, err := uc.entryRepo.ListByAccount(ctx, scope, accountID, nil, nil)
	if err != nil {
		return nil, err
	}

	count, err := uc.entryRepo.CountByAccount(ctx, scope, accountID)
	if err != nil {
		return nil, err
	}

	journal := domain.FoldBalance(entries)
	diff := account.CachedBakiye.Sub(journal.Bakiye)

	if uc.metrics != nil {
		uc.metrics.ReconciliationRuns.Inc()
		if !diff.IsZero() {
			uc.metrics.ReconciliationDrifts.Inc()
		}
	}

	return &ReconciliationResult{
		AccountID:     accountID,
		CachedBakiye:  account.CachedBakiye,
		JournalBakiye: journal.Bakiye,
		Difference:    diff,
		EntryCount:    count,
		IsReconciled:  diff.IsZero(),
		CheckedAt:     time.Now().UTC(),
	}, nil
}

// ReconciliationReport is the scope-wide drift report.
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	CheckedAt          time.Time
}

// ReconcileScope reconciles every account in the tenant scope.
func (uc *ReconciliationUseCase) ReconcileScope(ctx context.Context, scope domain.Scope) (*ReconciliationReport, error) {
	limit, offset := domain.ValidatePagination(1000, 0)

	report := &ReconciliationReport{
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for {
		accounts, err := uc.accountRepo.List(ctx, scope, limit, offset)
		if err != nil {
			return nil, err
		}

		for _, account := range accounts {
			result, err := uc.ReconcileAccount(ctx, scope, account.ID)
			if err != nil {
				return nil, fmt.Errorf("reconcile account %s: %w", account.ID, err)
			}

			report.TotalAccounts++

			if result.IsReconciled {
				report.ReconciledAccounts++
			} else {
				report.Discrepancies = append(report.Discrepancies, result)
			}
		}

		if len(accounts) < limit {
			break
		}

		offset += limit
	}

	return report, nil
}
