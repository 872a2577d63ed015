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

// PostingService defines the behavior needed by PostingHandler.
type PostingService interface {
	PostSale(ctx context.Context, input usecase.PostSaleInput) ([]*domain.Entry, error)
	PostPurchase(ctx context.Context, input usecase.PostPurchaseInput) (*domain.Entry, error)
	PostPayment(ctx context.Context, input usecase.PostPaymentInput) (*domain.Entry, error)
	GetEntry(ctx context.Context, scope domain.Scope, id string) (*domain.Entry, error)
	GetBySaleNo(ctx context.Context, scope domain.Scope, saleNo string) ([]*domain.Entry, error)
}

// PostingHandler handles journal posting HTTP requests.
type PostingHandler struct {
	postingUC PostingService
}

// NewPostingHandler creates a new PostingHandler.
func NewPostingHandler(postingUC PostingService) *PostingHandler {
	return &PostingHandler{postingUC: postingUC}
}

// PostSale posts a sale entry, optionally with a partial payment.
func (h *PostingHandler) PostSale(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	var req dto.PostSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entries, err := h.postingUC.PostSale(r.Context(), req.ToUseCaseInput(scope))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post sale", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntriesFromDomain(entries))
}

// PostPurchase posts a purchase entry.
func (h *PostingHandler) PostPurchase(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	var req dto.PostPurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.postingUC.PostPurchase(r.Context(), req.ToUseCaseInput(scope))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post purchase", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// PostPayment posts a standalone tahsilat or odeme entry.
func (h *PostingHandler) PostPayment(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	var req dto.PostPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.postingUC.PostPayment(r.Context(), req.ToUseCaseInput(scope))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post payment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// Get retrieves a journal entry by ID.
func (h *PostingHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	entry, err := h.postingUC.GetEntry(r.Context(), scope, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get entry", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// GetBySaleNo retrieves all entries of a sale group.
func (h *PostingHandler) GetBySaleNo(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	saleNo := chi.URLParam(r, "saleNo")
	if saleNo == "" {
		writeError(w, http.StatusBadRequest, "missing sale number", "")
		return
	}

	entries, err := h.postingUC.GetBySaleNo(r.Context(), scope, saleNo)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get sale entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}
