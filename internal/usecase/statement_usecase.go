package usecase

import (
	"context"
	"time"

	"github.com/satistakip/cariledger/internal/domain"
)

// StatementUseCase builds the ekstre: entries in a date range ordered
// ascending, each row annotated with the running bakiye. It applies the same
// fold the balance calculator uses, so "balance as of the last row" always
// equals ComputeBalance over the same range.
type StatementUseCase struct {
	entryRepo   EntryRepository
	accountRepo AccountRepository
}

// NewStatementUseCase creates a new StatementUseCase.
func NewStatementUseCase(entryRepo EntryRepository, accountRepo AccountRepository) *StatementUseCase {
	return &StatementUseCase{
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
	}
}

// BuildStatementInput scopes a statement projection.
type BuildStatementInput struct {
	Scope     domain.Scope
	AccountID string
	From      *time.Time
	To        *time.Time
}

// Statement is the projection result.
type Statement struct {
	Account *domain.Account
	Rows    []domain.StatementRow
	Totals  domain.Balance
}

// BuildStatement projects the journal of one account into ordered rows with
// a running balance.
func (uc *StatementUseCase) BuildStatement(ctx context.Context, input BuildStatementInput) (*Statement, error) {
	if err := domain.ValidateDateRange(input.From, input.To); err != nil {
		return nil, err
	}

	account, err := getAccount(ctx, uc.accountRepo, input.Scope, input.AccountID)
	if err != nil {
		return nil, err
	}

	entries, err := uc.entryRepo.ListByAccount(ctx, input.Scope, input.AccountID, input.From, input.To)
	if err != nil {
		return nil, err
	}

	return &Statement{
		Account: account,
		Rows:    domain.BuildStatement(entries),
		Totals:  domain.FoldBalance(entries),
	}, nil
}
