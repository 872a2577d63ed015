package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satistakip/cariledger/internal/domain"
)

// ProductUseCase manages the stock catalog referenced by sale and purchase
// line items. Quantity mutation during postings happens inside the posting
// transactions, not here.
type ProductUseCase struct {
	productRepo ProductRepository
	idGen       IDGenerator
}

// NewProductUseCase creates a new ProductUseCase.
func NewProductUseCase(productRepo ProductRepository, idGen IDGenerator) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		idGen:       idGen,
	}
}

// CreateProductInput carries a new product.
type CreateProductInput struct {
	Scope   domain.Scope
	Name    string
	SKU     string
	Unit    string
	Initial decimal.Decimal
}

// CreateProduct creates a product with an opening on-hand quantity.
func (uc *ProductUseCase) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrInvalidProductName
	}

	if input.Initial.IsNegative() {
		return nil, domain.ErrInvalidQuantity
	}

	now := time.Now().UTC()

	product := &domain.Product{
		ID:        uc.idGen.Generate(),
		Scope:     input.Scope,
		Name:      name,
		SKU:       input.SKU,
		Unit:      input.Unit,
		OnHand:    input.Initial,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// GetProduct retrieves a product in scope.
func (uc *ProductUseCase) GetProduct(ctx context.Context, scope domain.Scope, id string) (*domain.Product, error) {
	return uc.productRepo.GetByID(ctx, scope, id)
}

// ListProducts lists products in scope.
func (uc *ProductUseCase) ListProducts(ctx context.Context, scope domain.Scope, limit, offset int) ([]*domain.Product, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.productRepo.List(ctx, scope, limit, offset)
}
