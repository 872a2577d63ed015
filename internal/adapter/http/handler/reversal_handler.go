package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/satistakip/cariledger/internal/adapter/http/dto"
	"github.com/satistakip/cariledger/internal/domain"
	"github.com/satistakip/cariledger/internal/usecase"
)

// ReversalService defines the behavior needed by ReversalHandler.
type ReversalService interface {
	Cancel(ctx context.Context, input usecase.CancelInput) (*domain.Entry, error)
	CancelBySaleNo(ctx context.Context, scope domain.Scope, saleNo, note string) ([]*domain.Entry, error)
	Revert(ctx context.Context, input usecase.RevertInput) (*domain.Entry, error)
	ReturnSale(ctx context.Context, input usecase.ReturnSaleInput) ([]*domain.Entry, error)
	SettleReturn(ctx context.Context, input usecase.SettleReturnInput) (*domain.Entry, error)
}

// ReversalHandler handles cancel, revert and return HTTP requests.
type ReversalHandler struct {
	reversalUC ReversalService
}

// NewReversalHandler creates a new ReversalHandler.
func NewReversalHandler(reversalUC ReversalService) *ReversalHandler {
	return &ReversalHandler{reversalUC: reversalUC}
}

// Cancel cancels a single journal entry.
func (h *ReversalHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	var req dto.CancelRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.reversalUC.Cancel(r.Context(), usecase.CancelInput{
		Scope:   scope,
		EntryID: id,
		Note:    req.Note,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to cancel entry", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// CancelBySaleNo cancels every active entry of a sale group atomically.
func (h *ReversalHandler) CancelBySaleNo(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	saleNo := chi.URLParam(r, "saleNo")
	if saleNo == "" {
		writeError(w, http.StatusBadRequest, "missing sale number", "")
		return
	}

	var req dto.CancelRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entries, err := h.reversalUC.CancelBySaleNo(r.Context(), scope, saleNo, req.Note)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to cancel sale", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// Revert undoes a cancellation, reactivating the original entry.
func (h *ReversalHandler) Revert(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	entry, err := h.reversalUC.Revert(r.Context(), usecase.RevertInput{
		Scope:         scope,
		CancelEntryID: id,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to revert cancellation", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// Return posts a sale return against an active sale entry.
func (h *ReversalHandler) Return(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	var req dto.ReturnSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entries, err := h.reversalUC.ReturnSale(r.Context(), req.ToUseCaseInput(scope, id))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post return", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntriesFromDomain(entries))
}

// Settle settles an open sale return with a refund or offset.
func (h *ReversalHandler) Settle(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	var req dto.SettleReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.reversalUC.SettleReturn(r.Context(), usecase.SettleReturnInput{
		Scope:         scope,
		ReturnEntryID: id,
		Settlement:    usecase.ReturnSettlement(req.Settlement),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to settle return", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// decodeOptionalBody decodes a JSON body, tolerating an empty one.
func decodeOptionalBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil
	}

	return err
}
