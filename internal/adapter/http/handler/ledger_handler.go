package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/satistakip/cariledger/internal/adapter/http/dto"
	"github.com/satistakip/cariledger/internal/domain"
	"github.com/satistakip/cariledger/internal/usecase"
)

// BalanceService defines the balance behavior needed by LedgerHandler.
type BalanceService interface {
	ComputeBalance(ctx context.Context, input usecase.ComputeBalanceInput) (domain.Balance, error)
}

// StatementService defines the statement behavior needed by LedgerHandler.
type StatementService interface {
	BuildStatement(ctx context.Context, input usecase.BuildStatementInput) (*usecase.Statement, error)
}

// ReconciliationService defines the reconciliation behavior needed by LedgerHandler.
type ReconciliationService interface {
	ReconcileAccount(ctx context.Context, scope domain.Scope, accountID string) (*usecase.ReconciliationResult, error)
	ReconcileScope(ctx context.Context, scope domain.Scope) (*usecase.ReconciliationReport, error)
}

// LedgerHandler handles balance, statement and reconciliation requests.
type LedgerHandler struct {
	balanceUC        BalanceService
	statementUC      StatementService
	reconciliationUC ReconciliationService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(balanceUC BalanceService, statementUC StatementService, reconciliationUC ReconciliationService) *LedgerHandler {
	return &LedgerHandler{
		balanceUC:        balanceUC,
		statementUC:      statementUC,
		reconciliationUC: reconciliationUC,
	}
}

// GetBalance computes an account balance, optionally over a date window.
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	from, err := parseTimeQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date", err.Error())
		return
	}

	to, err := parseTimeQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date", err.Error())
		return
	}

	balance, err := h.balanceUC.ComputeBalance(r.Context(), usecase.ComputeBalanceInput{
		Scope:     scope,
		AccountID: id,
		From:      from,
		To:        to,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// GetStatement builds the ekstre of an account with running balances.
func (h *LedgerHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	from, err := parseTimeQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date", err.Error())
		return
	}

	to, err := parseTimeQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date", err.Error())
		return
	}

	statement, err := h.statementUC.BuildStatement(r.Context(), usecase.BuildStatementInput{
		Scope:     scope,
		AccountID: id,
		From:      from,
		To:        to,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build statement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.StatementFromUseCase(statement))
}

// ReconcileAccount compares one account's cached bakiye with the journal fold.
func (h *LedgerHandler) ReconcileAccount(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	result, err := h.reconciliationUC.ReconcileAccount(r.Context(), scope, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}

// ReconcileScope reconciles every account in the caller's scope.
func (h *LedgerHandler) ReconcileScope(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	report, err := h.reconciliationUC.ReconcileScope(r.Context(), scope)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile scope", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromUseCase(report))
}
