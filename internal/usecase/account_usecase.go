package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satistakip/cariledger/internal/domain"
	"github.com/satistakip/cariledger/internal/infrastructure/metrics"
)

// AccountUseCase manages cari accounts.
type AccountUseCase struct {
	accountRepo AccountRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, idGen IDGenerator) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		idGen:       idGen,
	}
}

// WithMetrics records account operation counters.
func (uc *AccountUseCase) WithMetrics(m *metrics.Metrics) *AccountUseCase {
	uc.metrics = m
	return uc
}

// CreateAccountInput carries a new cari account.
type CreateAccountInput struct {
	Scope       domain.Scope
	DisplayName string
	Kind        domain.AccountKind
	Currency    string
	TaxNo       string
	Phone       string
}

// CreateAccount creates a cari account in the caller's scope.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.DisplayName); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "TRY"
	}

	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}

	kind := input.Kind
	if kind == "" {
		kind = domain.AccountCustomer
	}

	if !kind.IsValid() {
		return nil, domain.ErrInvalidAccountName
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:           uc.idGen.Generate(),
		Scope:        input.Scope,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		Kind:         kind,
		Currency:     currency,
		TaxNo:        input.TaxNo,
		Phone:        input.Phone,
		CachedBakiye: decimal.Zero,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
		uc.metrics.AccountOperations.WithLabelValues("create").Inc()
	}

	return account, nil
}

// GetAccount retrieves an account; other tenants' accounts map to Forbidden.
func (uc *AccountUseCase) GetAccount(ctx context.Context, scope domain.Scope, id string) (*domain.Account, error) {
	return getAccount(ctx, uc.accountRepo, scope, id)
}

// ListAccountsInput paginates an account listing.
type ListAccountsInput struct {
	Scope  domain.Scope
	Limit  int
	Offset int
}

// ListAccounts lists accounts in scope.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.accountRepo.List(ctx, input.Scope, limit, offset)
}
