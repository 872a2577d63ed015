package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satistakip/cariledger/internal/domain"
	"github.com/satistakip/cariledger/internal/infrastructure/metrics"
)

// ReversalUseCase implements the cancel / revert / return flows. Every flow
// compensates rather than deletes: the journal row count for an account never
// shrinks.
type ReversalUseCase struct {
	txManager   TransactionManager
	entryRepo   EntryRepository
	accountRepo AccountRepository
	productRepo ProductRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	cache       Cache
	retrier     Retrier
	metrics     *metrics.Metrics
}

// NewReversalUseCase creates a new ReversalUseCase. cache may be nil.
func NewReversalUseCase(
	txManager TransactionManager,
	entryRepo EntryRepository,
	accountRepo AccountRepository,
	productRepo ProductRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
) *ReversalUseCase {
	return &ReversalUseCase{
		txManager:   txManager,
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		cache:       cache,
	}
}

// WithRetrier retries reversals on transient serialization failures.
func (uc *ReversalUseCase) WithRetrier(retrier Retrier) *ReversalUseCase {
	uc.retrier = retrier
	return uc
}

// WithMetrics records reversal counters.
func (uc *ReversalUseCase) WithMetrics(m *metrics.Metrics) *ReversalUseCase {
	uc.metrics = m
	return uc
}

// CancelInput identifies the forward entry to cancel.
type CancelInput struct {
	Scope   domain.Scope
	EntryID string
	Note    string
}

// Cancel inserts a compensating entry with inverted direction and identical
// amount, flips the original to cancelled, and undoes its stock effect, all
// in one transaction.
func (uc *ReversalUseCase) Cancel(ctx context.Context, input CancelInput) (*domain.Entry, error) {
	var comp *domain.Entry

	err := runWithRetry(ctx, uc.retrier, func() error {
		var err error
		comp, err = uc.cancelOnce(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesCancelled.Inc()
	}

	return comp, nil
}

func (uc *ReversalUseCase) cancelOnce(ctx context.Context, input CancelInput) (*domain.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	entry, err := uc.lockEntryInScope(ctx, tx, input.Scope, input.EntryID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	account, err := lockAccount(ctx, tx, uc.accountRepo, input.Scope, entry.AccountID)
	if err != nil {
		return nil, err
	}

	comp, err := uc.cancelLocked(ctx, tx, entry, input.Note, now)
	if err != nil {
		return nil, err
	}

	bakiye := account.ApplyDelta(comp.BalanceDelta())
	if err := uc.accountRepo.UpdateCachedBakiye(ctx, tx, account.ID, bakiye, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.invalidateBalance(ctx, input.Scope, entry.AccountID)

	return comp, nil
}

// CancelBySaleNo cancels every active forward entry grouped under one sale
// number (the sale and any payments posted with it) atomically.
func (uc *ReversalUseCase) CancelBySaleNo(ctx context.Context, scope domain.Scope, saleNo, note string) ([]*domain.Entry, error) {
	if saleNo == "" {
		return nil, domain.ErrMissingSaleNo
	}

	var compensations []*domain.Entry

	err := runWithRetry(ctx, uc.retrier, func() error {
		var err error
		compensations, err = uc.cancelBySaleNoOnce(ctx, scope, saleNo, note)
		return err
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesCancelled.Add(float64(len(compensations)))
	}

	return compensations, nil
}

func (uc *ReversalUseCase) cancelBySaleNoOnce(ctx context.Context, scope domain.Scope, saleNo, note string) ([]*domain.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	group, err := uc.entryRepo.GetBySaleNo(ctx, scope, saleNo)
	if err != nil {
		return nil, err
	}

	if len(group) == 0 {
		return nil, domain.ErrEntryNotFound
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	accountID := group[0].AccountID

	account, err := lockAccount(ctx, tx, uc.accountRepo, scope, accountID)
	if err != nil {
		return nil, err
	}

	bakiye := account.CachedBakiye

	var compensations []*domain.Entry

	for _, e := range group {
		if e.Type.IsCancelType() || e.Status != domain.StatusActive || e.IsDeleted {
			continue
		}

		locked, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, e.ID)
		if err != nil {
			return nil, err
		}

		comp, err := uc.cancelLocked(ctx, tx, locked, note, now)
		if err != nil {
			return nil, err
		}

		bakiye = bakiye.Add(comp.BalanceDelta())
		compensations = append(compensations, comp)
	}

	if len(compensations) == 0 {
		return nil, domain.ErrAlreadyCancelled
	}

	if err := uc.accountRepo.UpdateCachedBakiye(ctx, tx, account.ID, bakiye, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.invalidateBalance(ctx, scope, accountID)

	return compensations, nil
}

// RevertInput identifies the cancellation entry to undo.
type RevertInput struct {
	Scope         domain.Scope
	CancelEntryID string
}

// Revert undoes a cancellation: the original entry becomes active again and
// the compensating entry is flagged reversed and soft-deleted. Only one level
// of revert exists; reverting twice fails with a conflict.
func (uc *ReversalUseCase) Revert(ctx context.Context, input RevertInput) (*domain.Entry, error) {
	var original *domain.Entry

	err := runWithRetry(ctx, uc.retrier, func() error {
		var err error
		original, err = uc.revertOnce(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesReverted.Inc()
	}

	return original, nil
}

func (uc *ReversalUseCase) revertOnce(ctx context.Context, input RevertInput) (*domain.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	comp, err := uc.lockEntryInScope(ctx, tx, input.Scope, input.CancelEntryID)
	if err != nil {
		return nil, err
	}

	if !comp.Type.IsCancelType() {
		return nil, domain.ErrNotCancelEntry
	}

	if comp.Status == domain.StatusReversed || comp.IsDeleted {
		return nil, domain.ErrAlreadyReverted
	}

	if comp.RefEntryID == "" {
		return nil, domain.ErrEntryNotFound
	}

	original, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, comp.RefEntryID)
	if err != nil {
		return nil, err
	}

	if original.Status != domain.StatusCancelled {
		return nil, domain.ErrNotCancelled
	}

	now := time.Now().UTC()

	account, err := lockAccount(ctx, tx, uc.accountRepo, input.Scope, original.AccountID)
	if err != nil {
		return nil, err
	}

	// Re-apply the original's stock effect that the cancel had undone.
	products, err := lockProducts(ctx, tx, uc.productRepo, input.Scope, original.Items)
	if err != nil {
		return nil, err
	}

	if err := applyStock(ctx, tx, uc.productRepo, products, original.Type, original.Items, false, now); err != nil {
		return nil, err
	}

	if err := uc.entryRepo.UpdateState(ctx, tx, original.ID, domain.StatusActive, false); err != nil {
		return nil, err
	}

	if err := uc.entryRepo.UpdateState(ctx, tx, comp.ID, domain.StatusReversed, true); err != nil {
		return nil, err
	}

	bakiye := account.ApplyDelta(comp.BalanceDelta().Neg())
	if err := uc.accountRepo.UpdateCachedBakiye(ctx, tx, account.ID, bakiye, now); err != nil {
		return nil, err
	}

	event := newOutboxEvent(uc.idGen.Generate(), domain.EventTypeEntryReverted, comp.ID, domain.EntryRevertedEvent{
		CancelEntryID:   comp.ID,
		OriginalEntryID: original.ID,
		AccountID:       original.AccountID,
	}, now)

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.invalidateBalance(ctx, input.Scope, original.AccountID)

	original.Status = domain.StatusActive
	original.IsDeleted = false

	return original, nil
}

// ReturnSettlement selects how a sale return settles, if immediately.
type ReturnSettlement string

const (
	SettleNone   ReturnSettlement = ""
	SettleIade   ReturnSettlement = "iade"
	SettleMahsup ReturnSettlement = "mahsup"
)

// ReturnSaleInput carries a sale return, optionally settled in the same
// transaction.
type ReturnSaleInput struct {
	Scope       domain.Scope
	SaleEntryID string
	Amount      decimal.Decimal
	Items       []domain.LineItem
	Settlement  ReturnSettlement
	Note        string
}

// ReturnSale posts a sale_return entry against an active sale, restocks the
// returned items, and optionally settles the return with a refund or offset
// payment.
func (uc *ReversalUseCase) ReturnSale(ctx context.Context, input ReturnSaleInput) ([]*domain.Entry, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	var entries []*domain.Entry

	err := runWithRetry(ctx, uc.retrier, func() error {
		var err error
		entries, err = uc.returnSaleOnce(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil && len(entries) > 1 {
		uc.metrics.ReturnsSettled.WithLabelValues(string(entries[1].PaymentMethod)).Inc()
	}

	return entries, nil
}

func (uc *ReversalUseCase) returnSaleOnce(ctx context.Context, input ReturnSaleInput) ([]*domain.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	sale, err := uc.lockEntryInScope(ctx, tx, input.Scope, input.SaleEntryID)
	if err != nil {
		return nil, err
	}

	if sale.Type != domain.EntrySale {
		return nil, domain.ErrNotReturnEntry
	}

	if sale.Status != domain.StatusActive || sale.IsDeleted {
		return nil, domain.ErrAlreadyCancelled
	}

	// Partial returns accumulate; the live total must never exceed the sale.
	returned, err := uc.entryRepo.SumActiveReturns(ctx, tx, sale.ID)
	if err != nil {
		return nil, err
	}

	if returned.Add(input.Amount).GreaterThan(sale.Amount) {
		return nil, domain.ErrReturnExceedsSale
	}

	now := time.Now().UTC()

	account, err := lockAccount(ctx, tx, uc.accountRepo, input.Scope, sale.AccountID)
	if err != nil {
		return nil, err
	}

	ret := &domain.Entry{
		ID:         uc.idGen.Generate(),
		Scope:      input.Scope,
		AccountID:  sale.AccountID,
		SaleNo:     sale.SaleNo,
		Type:       domain.EntrySaleReturn,
		Direction:  sale.Direction.Opposite(),
		Amount:     input.Amount,
		Currency:   sale.Currency,
		FxRate:     sale.FxRate,
		Items:      input.Items,
		Note:       input.Note,
		RefEntryID: sale.ID,
		RefSaleNo:  sale.SaleNo,
		Status:     domain.StatusActive,
		Date:       now,
		CreatedAt:  now,
	}

	if err := ret.Validate(); err != nil {
		return nil, err
	}

	products, err := lockProducts(ctx, tx, uc.productRepo, input.Scope, ret.Items)
	if err != nil {
		return nil, err
	}

	if err := applyStock(ctx, tx, uc.productRepo, products, ret.Type, ret.Items, false, now); err != nil {
		return nil, err
	}

	if err := uc.entryRepo.Create(ctx, tx, ret); err != nil {
		return nil, err
	}

	entries := []*domain.Entry{ret}
	delta := ret.BalanceDelta()

	if input.Settlement != SettleNone {
		settlement, err := uc.buildSettlement(ret, input.Settlement, now)
		if err != nil {
			return nil, err
		}

		if err := uc.entryRepo.Create(ctx, tx, settlement); err != nil {
			return nil, err
		}

		entries = append(entries, settlement)
		delta = delta.Add(settlement.BalanceDelta())

		event := newOutboxEvent(uc.idGen.Generate(), domain.EventTypeReturnSettled, ret.ID, domain.ReturnSettledEvent{
			ReturnEntryID:  ret.ID,
			PaymentEntryID: settlement.ID,
			Method:         string(settlement.PaymentMethod),
			Amount:         settlement.Amount.String(),
		}, now)

		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := uc.accountRepo.UpdateCachedBakiye(ctx, tx, account.ID, account.ApplyDelta(delta), now); err != nil {
		return nil, err
	}

	event := newOutboxEvent(uc.idGen.Generate(), domain.EventTypeEntryPosted, ret.ID, domain.EntryPostedEvent{
		EntryID:   ret.ID,
		AccountID: ret.AccountID,
		SaleNo:    ret.SaleNo,
		Type:      string(ret.Type),
		Direction: string(ret.Direction),
		Amount:    ret.Amount.String(),
		Currency:  ret.Currency,
	}, now)

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.invalidateBalance(ctx, input.Scope, sale.AccountID)

	return entries, nil
}

// SettleReturnInput settles a previously posted, unsettled sale return.
type SettleReturnInput struct {
	Scope         domain.Scope
	ReturnEntryID string
	Settlement    ReturnSettlement
}

// SettleReturn settles an open sale return with exactly one refund or offset
// payment. A second settlement attempt fails with a conflict: a return must
// never be paid out twice.
func (uc *ReversalUseCase) SettleReturn(ctx context.Context, input SettleReturnInput) (*domain.Entry, error) {
	if input.Settlement == SettleNone {
		return nil, domain.ErrInvalidSettlement
	}

	var settlement *domain.Entry

	err := runWithRetry(ctx, uc.retrier, func() error {
		var err error
		settlement, err = uc.settleReturnOnce(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ReturnsSettled.WithLabelValues(string(settlement.PaymentMethod)).Inc()
	}

	return settlement, nil
}

func (uc *ReversalUseCase) settleReturnOnce(ctx context.Context, input SettleReturnInput) (*domain.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ret, err := uc.lockEntryInScope(ctx, tx, input.Scope, input.ReturnEntryID)
	if err != nil {
		return nil, err
	}

	if ret.Type != domain.EntrySaleReturn {
		return nil, domain.ErrNotReturnEntry
	}

	if ret.Status != domain.StatusActive || ret.IsDeleted {
		return nil, domain.ErrAlreadyCancelled
	}

	settled, err := uc.entryRepo.CountSettlements(ctx, tx, ret.ID)
	if err != nil {
		return nil, err
	}

	if settled > 0 {
		return nil, domain.ErrAlreadySettled
	}

	now := time.Now().UTC()

	settlement, err := uc.buildSettlement(ret, input.Settlement, now)
	if err != nil {
		return nil, err
	}

	if err := uc.entryRepo.Create(ctx, tx, settlement); err != nil {
		return nil, err
	}

	account, err := lockAccount(ctx, tx, uc.accountRepo, input.Scope, ret.AccountID)
	if err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateCachedBakiye(ctx, tx, account.ID, account.ApplyDelta(settlement.BalanceDelta()), now); err != nil {
		return nil, err
	}

	event := newOutboxEvent(uc.idGen.Generate(), domain.EventTypeReturnSettled, ret.ID, domain.ReturnSettledEvent{
		ReturnEntryID:  ret.ID,
		PaymentEntryID: settlement.ID,
		Method:         string(settlement.PaymentMethod),
		Amount:         settlement.Amount.String(),
	}, now)

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.invalidateBalance(ctx, input.Scope, ret.AccountID)

	return settlement, nil
}

// cancelLocked compensates an already-locked entry. Callers update the
// account balance cache.
func (uc *ReversalUseCase) cancelLocked(ctx context.Context, tx Transaction, entry *domain.Entry, note string, now time.Time) (*domain.Entry, error) {
	if entry.Status == domain.StatusCancelled {
		return nil, domain.ErrAlreadyCancelled
	}

	if entry.Status != domain.StatusActive || entry.IsDeleted {
		return nil, domain.ErrEntryNotFound
	}

	comp, err := entry.CompensatingEntry(uc.idGen.Generate(), now, note)
	if err != nil {
		return nil, err
	}

	// Undo the original's stock effect.
	products, err := lockProducts(ctx, tx, uc.productRepo, entry.Scope, entry.Items)
	if err != nil {
		return nil, err
	}

	if err := applyStock(ctx, tx, uc.productRepo, products, entry.Type, entry.Items, true, now); err != nil {
		return nil, err
	}

	if err := uc.entryRepo.Create(ctx, tx, comp); err != nil {
		return nil, err
	}

	if err := uc.entryRepo.UpdateState(ctx, tx, entry.ID, domain.StatusCancelled, false); err != nil {
		return nil, err
	}

	event := newOutboxEvent(uc.idGen.Generate(), domain.EventTypeEntryCancelled, comp.ID, domain.EntryCancelledEvent{
		CancelEntryID:   comp.ID,
		OriginalEntryID: entry.ID,
		AccountID:       entry.AccountID,
		Amount:          entry.Amount.String(),
	}, now)

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	return comp, nil
}

// buildSettlement creates the payment entry that settles a sale return.
func (uc *ReversalUseCase) buildSettlement(ret *domain.Entry, settlement ReturnSettlement, now time.Time) (*domain.Entry, error) {
	var method domain.PaymentMethod

	switch settlement {
	case SettleIade:
		method = domain.MethodIade
	case SettleMahsup:
		method = domain.MethodMahsup
	default:
		return nil, domain.ErrInvalidSettlement
	}

	return &domain.Entry{
		ID:            uc.idGen.Generate(),
		Scope:         ret.Scope,
		AccountID:     ret.AccountID,
		SaleNo:        ret.SaleNo,
		Type:          domain.EntryPayment,
		Direction:     ret.Direction.Opposite(),
		Amount:        ret.Amount,
		Currency:      ret.Currency,
		FxRate:        ret.FxRate,
		PaymentMethod: method,
		RefEntryID:    ret.ID,
		RefSaleNo:     ret.SaleNo,
		Status:        domain.StatusActive,
		Date:          now,
		CreatedAt:     now,
	}, nil
}

// lockEntryInScope locks an entry row and hides rows from other tenants.
func (uc *ReversalUseCase) lockEntryInScope(ctx context.Context, tx Transaction, scope domain.Scope, id string) (*domain.Entry, error) {
	entry, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !entry.Scope.Equal(scope) {
		return nil, domain.ErrEntryNotFound
	}

	return entry, nil
}

func (uc *ReversalUseCase) invalidateBalance(ctx context.Context, scope domain.Scope, accountID string) {
	if uc.cache == nil {
		return
	}

	_ = uc.cache.Delete(ctx, balanceCacheKey(scope, accountID))
}
