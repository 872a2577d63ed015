package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/satistakip/cariledger/internal/adapter/http/dto"
	"github.com/satistakip/cariledger/internal/domain"
	"github.com/satistakip/cariledger/internal/usecase"
)

// ProductService defines the behavior needed by ProductHandler.
type ProductService interface {
	CreateProduct(ctx context.Context, input usecase.CreateProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, scope domain.Scope, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, scope domain.Scope, limit, offset int) ([]*domain.Product, error)
}

// ProductHandler handles product HTTP requests.
type ProductHandler struct {
	productUC ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productUC ProductService) *ProductHandler {
	return &ProductHandler{productUC: productUC}
}

// Create creates a new product.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	var req dto.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	product, err := h.productUC.CreateProduct(r.Context(), req.ToUseCaseInput(scope))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create product", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ProductFromDomain(product))
}

// Get retrieves a product by ID.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing product ID", "")
		return
	}

	product, err := h.productUC.GetProduct(r.Context(), scope, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get product", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ProductFromDomain(product))
}

// List lists products in the caller's scope.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	products, err := h.productUC.ListProducts(r.Context(), scope, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list products", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ProductsFromDomain(products))
}
