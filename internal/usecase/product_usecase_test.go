package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/satistakip/cariledger/internal/domain"
	"github.com/satistakip/cariledger/internal/usecase"
	"github.com/satistakip/cariledger/internal/usecase/mocks"
)

func TestProductUseCase_CreateProduct(t *testing.T) {
	scope := domain.ByCompany("comp-1")

	repo := mocks.NewMockProductRepository()
	uc := usecase.NewProductUseCase(repo, mocks.NewMockIDGenerator())

	t.Run("valid product", func(t *testing.T) {
		product, err := uc.CreateProduct(context.Background(), usecase.CreateProductInput{
			Scope:   scope,
			Name:    "Cimento 50kg",
			SKU:     "CMT-50",
			Unit:    "adet",
			Initial: decimal.NewFromInt(100),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if product.ID == "" {
			t.Error("expected generated ID")
		}
		if !product.OnHand.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected on hand 100, got %s", product.OnHand)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := uc.CreateProduct(context.Background(), usecase.CreateProductInput{
			Scope: scope,
			Name:  "  ",
		})
		if err != domain.ErrInvalidProductName {
			t.Errorf("expected ErrInvalidProductName, got %v", err)
		}
	})

	t.Run("negative opening quantity", func(t *testing.T) {
		_, err := uc.CreateProduct(context.Background(), usecase.CreateProductInput{
			Scope:   scope,
			Name:    "Cimento 50kg",
			Initial: decimal.NewFromInt(-1),
		})
		if err != domain.ErrInvalidQuantity {
			t.Errorf("expected ErrInvalidQuantity, got %v", err)
		}
	})
}

func TestProductUseCase_GetProduct(t *testing.T) {
	scope := domain.ByCompany("comp-1")

	repo := mocks.NewMockProductRepository()
	_ = repo.Create(context.Background(), &domain.Product{ID: "prod-1", Scope: scope})

	uc := usecase.NewProductUseCase(repo, mocks.NewMockIDGenerator())

	if _, err := uc.GetProduct(context.Background(), scope, "prod-1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	// Scoped lookups hide other tenants' products entirely.
	if _, err := uc.GetProduct(context.Background(), domain.ByCompany("comp-2"), "prod-1"); err != domain.ErrProductNotFound {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}
