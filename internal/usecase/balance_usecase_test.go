package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/satistakip/cariledger/internal/domain"
	"github.com/satistakip/cariledger/internal/usecase"
	"github.com/satistakip/cariledger/internal/usecase/mocks"
)

func seedBalanceEntries(entryRepo *mocks.MockEntryRepository, scope domain.Scope, accountID string) {
	day1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)

	_ = entryRepo.Create(context.Background(), nil, &domain.Entry{
		ID:        "e-1",
		Scope:     scope,
		AccountID: accountID,
		Type:      domain.EntrySale,
		Direction: domain.DirectionAlacak,
		Amount:    decimal.NewFromInt(1000),
		Status:    domain.StatusActive,
		Date:      day1,
		CreatedAt: day1,
	})
	_ = entryRepo.Create(context.Background(), nil, &domain.Entry{
		ID:        "e-2",
		Scope:     scope,
		AccountID: accountID,
		Type:      domain.EntryPayment,
		Direction: domain.DirectionBorc,
		Amount:    decimal.NewFromInt(400),
		Status:    domain.StatusActive,
		Date:      day2,
		CreatedAt: day2,
	})
}

func TestBalanceUseCase_ComputeBalance(t *testing.T) {
	scope := domain.ByCompany("comp-1")

	entryRepo := mocks.NewMockEntryRepository()
	accountRepo := mocks.NewMockAccountRepository()

	_ = accountRepo.Create(context.Background(), &domain.Account{ID: "acc-1", Scope: scope})
	seedBalanceEntries(entryRepo, scope, "acc-1")

	uc := usecase.NewBalanceUseCase(entryRepo, accountRepo, nil)

	balance, err := uc.ComputeBalance(context.Background(), usecase.ComputeBalanceInput{
		Scope:     scope,
		AccountID: "acc-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !balance.Borc.Equal(decimal.NewFromInt(400)) {
		t.Errorf("expected borc 400, got %s", balance.Borc)
	}
	if !balance.Alacak.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected alacak 1000, got %s", balance.Alacak)
	}
	if !balance.Bakiye.Equal(decimal.NewFromInt(-600)) {
		t.Errorf("expected bakiye -600, got %s", balance.Bakiye)
	}
}

func TestBalanceUseCase_TenantIsolation(t *testing.T) {
	entryRepo := mocks.NewMockEntryRepository()
	accountRepo := mocks.NewMockAccountRepository()

	owner := domain.ByCompany("comp-1")
	_ = accountRepo.Create(context.Background(), &domain.Account{ID: "acc-1", Scope: owner})
	seedBalanceEntries(entryRepo, owner, "acc-1")

	uc := usecase.NewBalanceUseCase(entryRepo, accountRepo, nil)

	_, err := uc.ComputeBalance(context.Background(), usecase.ComputeBalanceInput{
		Scope:     domain.ByCompany("comp-2"),
		AccountID: "acc-1",
	})
	if err != domain.ErrForbidden {
		t.Errorf("expected ErrForbidden, got %v", err)
	}

	_, err = uc.ComputeBalance(context.Background(), usecase.ComputeBalanceInput{
		Scope:     domain.ByLegacyUser("comp-1"),
		AccountID: "acc-1",
	})
	if err != domain.ErrForbidden {
		t.Errorf("expected ErrForbidden for kind mismatch, got %v", err)
	}
}

func TestBalanceUseCase_DateRange(t *testing.T) {
	scope := domain.ByCompany("comp-1")

	entryRepo := mocks.NewMockEntryRepository()
	accountRepo := mocks.NewMockAccountRepository()

	_ = accountRepo.Create(context.Background(), &domain.Account{ID: "acc-1", Scope: scope})
	seedBalanceEntries(entryRepo, scope, "acc-1")

	uc := usecase.NewBalanceUseCase(entryRepo, accountRepo, nil)

	// Only the first day: the payment falls outside the window.
	to := time.Date(2025, 3, 1, 23, 59, 59, 0, time.UTC)

	balance, err := uc.ComputeBalance(context.Background(), usecase.ComputeBalanceInput{
		Scope:     scope,
		AccountID: "acc-1",
		To:        &to,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !balance.Bakiye.Equal(decimal.NewFromInt(-1000)) {
		t.Errorf("expected bakiye -1000 in window, got %s", balance.Bakiye)
	}

	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	badTo := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	if _, err := uc.ComputeBalance(context.Background(), usecase.ComputeBalanceInput{
		Scope:     scope,
		AccountID: "acc-1",
		From:      &from,
		To:        &badTo,
	}); !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestBalanceUseCase_Cache(t *testing.T) {
	scope := domain.ByCompany("comp-1")

	t.Run("cache hit skips the fold", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		accountRepo := mocks.NewMockAccountRepository()
		_ = accountRepo.Create(context.Background(), &domain.Account{ID: "acc-1", Scope: scope})

		entryRepo := mocks.NewMockEntryRepository()
		entryRepo.ListByAccountFunc = func(context.Context, domain.Scope, string, *time.Time, *time.Time) ([]*domain.Entry, error) {
			t.Fatal("journal must not be read on a cache hit")
			return nil, nil
		}

		cache := mocks.NewMockCache(ctrl)
		cache.EXPECT().
			Get(gomock.Any(), "balance:company:comp-1:acc-1").
			Return(`{"borc":"400","alacak":"1000","bakiye":"-600"}`, nil)

		uc := usecase.NewBalanceUseCase(entryRepo, accountRepo, cache)

		balance, err := uc.ComputeBalance(context.Background(), usecase.ComputeBalanceInput{
			Scope:     scope,
			AccountID: "acc-1",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !balance.Bakiye.Equal(decimal.NewFromInt(-600)) {
			t.Errorf("expected cached bakiye -600, got %s", balance.Bakiye)
		}
	})

	t.Run("cache miss folds and stores", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		accountRepo := mocks.NewMockAccountRepository()
		_ = accountRepo.Create(context.Background(), &domain.Account{ID: "acc-1", Scope: scope})

		entryRepo := mocks.NewMockEntryRepository()
		seedBalanceEntries(entryRepo, scope, "acc-1")

		cache := mocks.NewMockCache(ctrl)
		cache.EXPECT().
			Get(gomock.Any(), "balance:company:comp-1:acc-1").
			Return("", errors.New("redis: nil"))
		cache.EXPECT().
			Set(gomock.Any(), "balance:company:comp-1:acc-1", gomock.Any(), usecase.BalanceCacheTTL).
			Return(nil)

		uc := usecase.NewBalanceUseCase(entryRepo, accountRepo, cache)

		balance, err := uc.ComputeBalance(context.Background(), usecase.ComputeBalanceInput{
			Scope:     scope,
			AccountID: "acc-1",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !balance.Bakiye.Equal(decimal.NewFromInt(-600)) {
			t.Errorf("expected bakiye -600, got %s", balance.Bakiye)
		}
	})

	t.Run("bounded reads bypass the cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		accountRepo := mocks.NewMockAccountRepository()
		_ = accountRepo.Create(context.Background(), &domain.Account{ID: "acc-1", Scope: scope})

		entryRepo := mocks.NewMockEntryRepository()
		seedBalanceEntries(entryRepo, scope, "acc-1")

		cache := mocks.NewMockCache(ctrl)

		uc := usecase.NewBalanceUseCase(entryRepo, accountRepo, cache)

		from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

		if _, err := uc.ComputeBalance(context.Background(), usecase.ComputeBalanceInput{
			Scope:     scope,
			AccountID: "acc-1",
			From:      &from,
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
