package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satistakip/cariledger/internal/domain"
	"github.com/satistakip/cariledger/internal/infrastructure/metrics"
)

// PostingUseCase posts sale, purchase and payment entries to the journal.
// Line-item stock mutation, the journal insert, the balance-cache update and
// the outbox event all happen in one database transaction.
type PostingUseCase struct {
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

// NewPostingUseCase creates a new PostingUseCase. cache may be nil.
func NewPostingUseCase(
	txManager TransactionManager,
	entryRepo EntryRepository,
	accountRepo AccountRepository,
	productRepo ProductRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
) *PostingUseCase {
	return &PostingUseCase{
		txManager:   txManager,
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		cache:       cache,
	}
}

// WithRetrier retries postings on transient serialization failures.
func (uc *PostingUseCase) WithRetrier(retrier Retrier) *PostingUseCase {
	uc.retrier = retrier
	return uc
}

// WithMetrics records posting counters and durations.
func (uc *PostingUseCase) WithMetrics(m *metrics.Metrics) *PostingUseCase {
	uc.metrics = m
	return uc
}

// PostSaleInput carries a sale posting. PaidAmount > 0 additionally posts a
// payment entry under the same sale number, in the same transaction.
type PostSaleInput struct {
	Scope         domain.Scope
	AccountID     string
	SaleNo        string
	Amount        decimal.Decimal
	Currency      string
	FxRate        decimal.Decimal
	Date          *time.Time
	Items         []domain.LineItem
	Note          string
	PaidAmount    decimal.Decimal
	PaymentMethod domain.PaymentMethod
}

// PostPurchaseInput carries a purchase posting.
type PostPurchaseInput struct {
	Scope     domain.Scope
	AccountID string
	SaleNo    string
	Amount    decimal.Decimal
	Currency  string
	FxRate    decimal.Decimal
	Date      *time.Time
	Items     []domain.LineItem
	Note      string
}

// PaymentKind selects the direction of a standalone payment entry.
type PaymentKind string

const (
	// PaymentTahsilat collects from the counterparty (borc side).
	PaymentTahsilat PaymentKind = "tahsilat"

	// PaymentOdeme pays the counterparty (alacak side).
	PaymentOdeme PaymentKind = "odeme"
)

// PostPaymentInput carries a standalone payment posting.
type PostPaymentInput struct {
	Scope     domain.Scope
	AccountID string
	SaleNo    string
	Kind      PaymentKind
	Method    domain.PaymentMethod
	Amount    decimal.Decimal
	Currency  string
	Date      *time.Time
	Note      string
}

// PostSale posts a sale entry (alacak side) plus an optional partial-payment
// entry, decrementing stock for each line item.
func (uc *PostingUseCase) PostSale(ctx context.Context, input PostSaleInput) ([]*domain.Entry, error) {
	if input.SaleNo == "" {
		return nil, domain.ErrMissingSaleNo
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if input.PaidAmount.IsNegative() || input.PaidAmount.GreaterThan(input.Amount) {
		return nil, domain.ErrInvalidAmount
	}

	if err := domain.ValidateNote(input.Note); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	date := now
	if input.Date != nil {
		date = input.Date.UTC()
	}

	sale := &domain.Entry{
		ID:        uc.idGen.Generate(),
		Scope:     input.Scope,
		AccountID: input.AccountID,
		SaleNo:    input.SaleNo,
		Type:      domain.EntrySale,
		Direction: domain.DirectionAlacak,
		Amount:    input.Amount,
		Currency:  normalizeCurrency(input.Currency),
		FxRate:    normalizeFxRate(input.FxRate),
		Items:     input.Items,
		Note:      input.Note,
		Status:    domain.StatusActive,
		Date:      date,
		CreatedAt: now,
	}

	entries := []*domain.Entry{sale}

	if input.PaidAmount.IsPositive() {
		method := input.PaymentMethod
		if method == "" {
			method = domain.MethodNakit
		}

		entries = append(entries, &domain.Entry{
			ID:            uc.idGen.Generate(),
			Scope:         input.Scope,
			AccountID:     input.AccountID,
			SaleNo:        input.SaleNo,
			Type:          domain.EntryPayment,
			Direction:     domain.DirectionBorc,
			Amount:        input.PaidAmount,
			Currency:      sale.Currency,
			FxRate:        sale.FxRate,
			PaymentMethod: method,
			Status:        domain.StatusActive,
			Date:          date,
			CreatedAt:     now,
		})
	}

	if err := uc.postAtomically(ctx, input.Scope, input.AccountID, entries, now); err != nil {
		return nil, err
	}

	return entries, nil
}

// PostPurchase posts a purchase entry (borc side), incrementing stock for
// each line item.
func (uc *PostingUseCase) PostPurchase(ctx context.Context, input PostPurchaseInput) (*domain.Entry, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateNote(input.Note); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	date := now
	if input.Date != nil {
		date = input.Date.UTC()
	}

	purchase := &domain.Entry{
		ID:        uc.idGen.Generate(),
		Scope:     input.Scope,
		AccountID: input.AccountID,
		SaleNo:    input.SaleNo,
		Type:      domain.EntryPurchase,
		Direction: domain.DirectionBorc,
		Amount:    input.Amount,
		Currency:  normalizeCurrency(input.Currency),
		FxRate:    normalizeFxRate(input.FxRate),
		Items:     input.Items,
		Note:      input.Note,
		Status:    domain.StatusActive,
		Date:      date,
		CreatedAt: now,
	}

	if err := uc.postAtomically(ctx, input.Scope, input.AccountID, []*domain.Entry{purchase}, now); err != nil {
		return nil, err
	}

	return purchase, nil
}

// PostPayment posts a standalone tahsilat or odeme entry.
func (uc *PostingUseCase) PostPayment(ctx context.Context, input PostPaymentInput) (*domain.Entry, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	direction := domain.DirectionBorc
	if input.Kind == PaymentOdeme {
		direction = domain.DirectionAlacak
	}

	method := input.Method
	if method == "" {
		method = domain.MethodNakit
	}

	now := time.Now().UTC()
	date := now
	if input.Date != nil {
		date = input.Date.UTC()
	}

	payment := &domain.Entry{
		ID:            uc.idGen.Generate(),
		Scope:         input.Scope,
		AccountID:     input.AccountID,
		SaleNo:        input.SaleNo,
		Type:          domain.EntryPayment,
		Direction:     direction,
		Amount:        input.Amount,
		Currency:      normalizeCurrency(input.Currency),
		FxRate:        decimal.NewFromInt(1),
		PaymentMethod: method,
		Note:          input.Note,
		Status:        domain.StatusActive,
		Date:          date,
		CreatedAt:     now,
	}

	if err := uc.postAtomically(ctx, input.Scope, input.AccountID, []*domain.Entry{payment}, now); err != nil {
		return nil, err
	}

	return payment, nil
}

// GetEntry retrieves a journal entry in scope.
func (uc *PostingUseCase) GetEntry(ctx context.Context, scope domain.Scope, id string) (*domain.Entry, error) {
	entry, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !entry.Scope.Equal(scope) {
		return nil, domain.ErrForbidden
	}

	return entry, nil
}

// GetBySaleNo lists all entries correlated under one sale number.
func (uc *PostingUseCase) GetBySaleNo(ctx context.Context, scope domain.Scope, saleNo string) ([]*domain.Entry, error) {
	if saleNo == "" {
		return nil, domain.ErrMissingSaleNo
	}

	return uc.entryRepo.GetBySaleNo(ctx, scope, saleNo)
}

// postAtomically validates and writes a group of entries plus their stock and
// balance-cache effects in one transaction, then drops the cached balance.
// The transaction is re-run from the top on serialization failures.
func (uc *PostingUseCase) postAtomically(ctx context.Context, scope domain.Scope, accountID string, entries []*domain.Entry, now time.Time) error {
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
	}

	start := time.Now()

	err := runWithRetry(ctx, uc.retrier, func() error {
		return uc.postOnce(ctx, scope, accountID, entries, now)
	})

	if uc.metrics != nil {
		uc.metrics.PostingDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			uc.metrics.PostingErrors.WithLabelValues("transaction").Inc()
		} else {
			for _, e := range entries {
				uc.metrics.EntriesPosted.WithLabelValues(string(e.Type)).Inc()
				amount, _ := e.Amount.Float64()
				uc.metrics.EntryAmount.Observe(amount)
			}
		}
	}

	return err
}

func (uc *PostingUseCase) postOnce(ctx context.Context, scope domain.Scope, accountID string, entries []*domain.Entry, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	account, err := lockAccount(ctx, tx, uc.accountRepo, scope, accountID)
	if err != nil {
		return err
	}

	bakiye := account.CachedBakiye

	for _, e := range entries {
		products, err := lockProducts(ctx, tx, uc.productRepo, scope, e.Items)
		if err != nil {
			return err
		}

		if err := applyStock(ctx, tx, uc.productRepo, products, e.Type, e.Items, false, now); err != nil {
			return err
		}

		if err := uc.entryRepo.Create(ctx, tx, e); err != nil {
			return err
		}

		bakiye = bakiye.Add(e.BalanceDelta())

		event := newOutboxEvent(uc.idGen.Generate(), domain.EventTypeEntryPosted, e.ID, domain.EntryPostedEvent{
			EntryID:   e.ID,
			AccountID: e.AccountID,
			SaleNo:    e.SaleNo,
			Type:      string(e.Type),
			Direction: string(e.Direction),
			Amount:    e.Amount.String(),
			Currency:  e.Currency,
		}, now)

		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return err
		}
	}

	if err := uc.accountRepo.UpdateCachedBakiye(ctx, tx, account.ID, bakiye, now); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	uc.invalidateBalance(ctx, scope, accountID)

	return nil
}

func (uc *PostingUseCase) invalidateBalance(ctx context.Context, scope domain.Scope, accountID string) {
	if uc.cache == nil {
		return
	}

	_ = uc.cache.Delete(ctx, balanceCacheKey(scope, accountID))
}

func normalizeCurrency(currency string) string {
	if currency == "" {
		return "TRY"
	}

	return currency
}

func normalizeFxRate(rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return decimal.NewFromInt(1)
	}

	return rate
}
