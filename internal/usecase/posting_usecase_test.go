package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/satistakip/cariledger/internal/domain"
	"github.com/satistakip/cariledger/internal/usecase"
	"github.com/satistakip/cariledger/internal/usecase/mocks"
)

type postingFixture struct {
	txManager   *mocks.MockTransactionManager
	entryRepo   *mocks.MockEntryRepository
	accountRepo *mocks.MockAccountRepository
	productRepo *mocks.MockProductRepository
	outboxRepo  *mocks.MockOutboxRepository
	uc          *usecase.PostingUseCase
}

func newPostingFixture() *postingFixture {
	f := &postingFixture{
		txManager:   mocks.NewMockTransactionManager(),
		entryRepo:   mocks.NewMockEntryRepository(),
		accountRepo: mocks.NewMockAccountRepository(),
		productRepo: mocks.NewMockProductRepository(),
		outboxRepo:  mocks.NewMockOutboxRepository(),
	}

	idGen := mocks.NewMockIDGenerator()
	idGen.GenerateFunc = func() func() string {
		n := 0
		return func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}
	}()

	f.uc = usecase.NewPostingUseCase(
		f.txManager,
		f.entryRepo,
		f.accountRepo,
		f.productRepo,
		f.outboxRepo,
		idGen,
		nil,
	)

	return f
}

func (f *postingFixture) seedAccount(scope domain.Scope, id string) {
	_ = f.accountRepo.Create(context.Background(), &domain.Account{
		ID:           id,
		Scope:        scope,
		DisplayName:  "Test Cari",
		Kind:         domain.AccountCustomer,
		Currency:     "TRY",
		CachedBakiye: decimal.Zero,
	})
}

func (f *postingFixture) seedProduct(scope domain.Scope, id string, onHand int64) {
	_ = f.productRepo.Create(context.Background(), &domain.Product{
		ID:     id,
		Scope:  scope,
		Name:   "Urun " + id,
		OnHand: decimal.NewFromInt(onHand),
	})
}

func TestPostingUseCase_PostSale(t *testing.T) {
	scope := domain.ByCompany("comp-1")

	t.Run("sale with partial payment", func(t *testing.T) {
		f := newPostingFixture()
		f.seedAccount(scope, "acc-1")
		f.seedProduct(scope, "prod-1", 10)

		entries, err := f.uc.PostSale(context.Background(), usecase.PostSaleInput{
			Scope:     scope,
			AccountID: "acc-1",
			SaleNo:    "S-100",
			Amount:    decimal.NewFromInt(1000),
			Items: []domain.LineItem{
				{ProductID: "prod-1", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(500)},
			},
			PaidAmount: decimal.NewFromInt(400),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Type != domain.EntrySale || entries[0].Direction != domain.DirectionAlacak {
			t.Errorf("unexpected sale entry: %s %s", entries[0].Type, entries[0].Direction)
		}
		if entries[1].Type != domain.EntryPayment || entries[1].Direction != domain.DirectionBorc {
			t.Errorf("unexpected payment entry: %s %s", entries[1].Type, entries[1].Direction)
		}
		if entries[1].SaleNo != "S-100" {
			t.Errorf("payment not correlated to sale, got %s", entries[1].SaleNo)
		}

		account, _ := f.accountRepo.GetByID(context.Background(), "acc-1")
		if !account.CachedBakiye.Equal(decimal.NewFromInt(-600)) {
			t.Errorf("expected cached bakiye -600, got %s", account.CachedBakiye)
		}

		product, _ := f.productRepo.GetByID(context.Background(), scope, "prod-1")
		if !product.OnHand.Equal(decimal.NewFromInt(8)) {
			t.Errorf("expected on hand 8, got %s", product.OnHand)
		}

		if events := f.outboxRepo.Events(); len(events) != 2 {
			t.Errorf("expected 2 outbox events, got %d", len(events))
		}
	})

	t.Run("missing sale no", func(t *testing.T) {
		f := newPostingFixture()

		_, err := f.uc.PostSale(context.Background(), usecase.PostSaleInput{
			Scope:     scope,
			AccountID: "acc-1",
			Amount:    decimal.NewFromInt(1000),
		})
		if err != domain.ErrMissingSaleNo {
			t.Errorf("expected ErrMissingSaleNo, got %v", err)
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		f := newPostingFixture()

		_, err := f.uc.PostSale(context.Background(), usecase.PostSaleInput{
			Scope:     scope,
			AccountID: "acc-1",
			SaleNo:    "S-101",
			Amount:    decimal.Zero,
		})
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("paid amount exceeds sale", func(t *testing.T) {
		f := newPostingFixture()

		_, err := f.uc.PostSale(context.Background(), usecase.PostSaleInput{
			Scope:      scope,
			AccountID:  "acc-1",
			SaleNo:     "S-102",
			Amount:     decimal.NewFromInt(100),
			PaidAmount: decimal.NewFromInt(200),
		})
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("foreign tenant account is forbidden", func(t *testing.T) {
		f := newPostingFixture()
		f.seedAccount(domain.ByCompany("comp-2"), "acc-other")

		_, err := f.uc.PostSale(context.Background(), usecase.PostSaleInput{
			Scope:     scope,
			AccountID: "acc-other",
			SaleNo:    "S-103",
			Amount:    decimal.NewFromInt(100),
		})
		if err != domain.ErrForbidden {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("missing account", func(t *testing.T) {
		f := newPostingFixture()

		_, err := f.uc.PostSale(context.Background(), usecase.PostSaleInput{
			Scope:     scope,
			AccountID: "acc-missing",
			SaleNo:    "S-104",
			Amount:    decimal.NewFromInt(100),
		})
		if err != domain.ErrAccountNotFound {
			t.Errorf("expected ErrAccountNotFound, got %v", err)
		}
	})

	t.Run("insufficient stock rolls back", func(t *testing.T) {
		f := newPostingFixture()
		f.seedAccount(scope, "acc-1")
		f.seedProduct(scope, "prod-1", 1)

		_, err := f.uc.PostSale(context.Background(), usecase.PostSaleInput{
			Scope:     scope,
			AccountID: "acc-1",
			SaleNo:    "S-105",
			Amount:    decimal.NewFromInt(1000),
			Items: []domain.LineItem{
				{ProductID: "prod-1", Quantity: decimal.NewFromInt(5)},
			},
		})
		if err != domain.ErrInsufficientStock {
			t.Errorf("expected ErrInsufficientStock, got %v", err)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newPostingFixture()
		f.seedAccount(scope, "acc-1")

		_, err := f.uc.PostSale(context.Background(), usecase.PostSaleInput{
			Scope:     scope,
			AccountID: "acc-1",
			SaleNo:    "S-106",
			Amount:    decimal.NewFromInt(1000),
			Items: []domain.LineItem{
				{ProductID: "prod-missing", Quantity: decimal.NewFromInt(1)},
			},
		})
		if err != domain.ErrProductNotFound {
			t.Errorf("expected ErrProductNotFound, got %v", err)
		}
	})
}

func TestPostingUseCase_PostPurchase(t *testing.T) {
	scope := domain.ByCompany("comp-1")

	f := newPostingFixture()
	f.seedAccount(scope, "acc-1")
	f.seedProduct(scope, "prod-1", 2)

	purchase, err := f.uc.PostPurchase(context.Background(), usecase.PostPurchaseInput{
		Scope:     scope,
		AccountID: "acc-1",
		Amount:    decimal.NewFromInt(500),
		Items: []domain.LineItem{
			{ProductID: "prod-1", Quantity: decimal.NewFromInt(4)},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if purchase.Direction != domain.DirectionBorc {
		t.Errorf("expected borc direction, got %s", purchase.Direction)
	}

	account, _ := f.accountRepo.GetByID(context.Background(), "acc-1")
	if !account.CachedBakiye.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected cached bakiye 500, got %s", account.CachedBakiye)
	}

	product, _ := f.productRepo.GetByID(context.Background(), scope, "prod-1")
	if !product.OnHand.Equal(decimal.NewFromInt(6)) {
		t.Errorf("expected on hand 6, got %s", product.OnHand)
	}
}

func TestPostingUseCase_PostPayment(t *testing.T) {
	scope := domain.ByCompany("comp-1")

	tests := []struct {
		name      string
		kind      usecase.PaymentKind
		direction domain.Direction
		bakiye    int64
	}{
		{"tahsilat lands on borc side", usecase.PaymentTahsilat, domain.DirectionBorc, 400},
		{"odeme lands on alacak side", usecase.PaymentOdeme, domain.DirectionAlacak, -400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPostingFixture()
			f.seedAccount(scope, "acc-1")

			payment, err := f.uc.PostPayment(context.Background(), usecase.PostPaymentInput{
				Scope:     scope,
				AccountID: "acc-1",
				Kind:      tt.kind,
				Amount:    decimal.NewFromInt(400),
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if payment.Direction != tt.direction {
				t.Errorf("expected direction %s, got %s", tt.direction, payment.Direction)
			}
			if payment.PaymentMethod != domain.MethodNakit {
				t.Errorf("expected default method Nakit, got %s", payment.PaymentMethod)
			}

			account, _ := f.accountRepo.GetByID(context.Background(), "acc-1")
			if !account.CachedBakiye.Equal(decimal.NewFromInt(tt.bakiye)) {
				t.Errorf("expected cached bakiye %d, got %s", tt.bakiye, account.CachedBakiye)
			}
		})
	}
}

func TestPostingUseCase_GetEntry(t *testing.T) {
	scope := domain.ByCompany("comp-1")

	f := newPostingFixture()
	_ = f.entryRepo.Create(context.Background(), nil, &domain.Entry{
		ID:        "e-1",
		Scope:     scope,
		AccountID: "acc-1",
		Direction: domain.DirectionAlacak,
		Amount:    decimal.NewFromInt(100),
		Status:    domain.StatusActive,
	})

	if _, err := f.uc.GetEntry(context.Background(), scope, "e-1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if _, err := f.uc.GetEntry(context.Background(), domain.ByCompany("comp-2"), "e-1"); err != domain.ErrForbidden {
		t.Errorf("expected ErrForbidden, got %v", err)
	}

	if _, err := f.uc.GetEntry(context.Background(), scope, "e-missing"); err != domain.ErrEntryNotFound {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}
}

type countingRetrier struct {
	calls int
}

func (r *countingRetrier) Retry(_ context.Context, operation func() error) error {
	r.calls++
	return operation()
}

func TestPostingUseCase_WithRetrier(t *testing.T) {
	scope := domain.ByCompany("comp-1")

	t.Run("routes the transaction through the retrier", func(t *testing.T) {
		f := newPostingFixture()
		f.seedAccount(scope, "acc-1")
		retrier := &countingRetrier{}
		f.uc.WithRetrier(retrier)

		_, err := f.uc.PostPayment(context.Background(), usecase.PostPaymentInput{
			Scope:     scope,
			AccountID: "acc-1",
			Kind:      usecase.PaymentTahsilat,
			Amount:    decimal.NewFromInt(250),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if retrier.calls != 1 {
			t.Errorf("expected 1 retrier invocation, got %d", retrier.calls)
		}
	})

	t.Run("business errors pass through unchanged", func(t *testing.T) {
		f := newPostingFixture()
		retrier := &countingRetrier{}
		f.uc.WithRetrier(retrier)

		_, err := f.uc.PostPayment(context.Background(), usecase.PostPaymentInput{
			Scope:     scope,
			AccountID: "acc-missing",
			Kind:      usecase.PaymentTahsilat,
			Amount:    decimal.NewFromInt(250),
		})
		if !errors.Is(err, domain.ErrAccountNotFound) {
			t.Errorf("expected ErrAccountNotFound, got %v", err)
		}

		if retrier.calls != 1 {
			t.Errorf("expected 1 retrier invocation, got %d", retrier.calls)
		}
	})
}

func TestPostingUseCase_TransactionDeadline(t *testing.T) {
	scope := domain.ByCompany("comp-1")

	f := newPostingFixture()
	f.seedAccount(scope, "acc-1")

	var hasDeadline bool
	f.txManager.BeginFunc = func(ctx context.Context) (usecase.Transaction, error) {
		_, hasDeadline = ctx.Deadline()
		return &mocks.MockTransaction{}, nil
	}

	_, err := f.uc.PostPayment(context.Background(), usecase.PostPaymentInput{
		Scope:     scope,
		AccountID: "acc-1",
		Kind:      usecase.PaymentTahsilat,
		Amount:    decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !hasDeadline {
		t.Error("expected the transaction context to carry a deadline")
	}
}
