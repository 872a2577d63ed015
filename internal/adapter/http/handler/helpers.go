package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/satistakip/cariledger/internal/adapter/http/dto"
	"github.com/satistakip/cariledger/internal/adapter/http/middleware"
	"github.com/satistakip/cariledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// requireScope extracts the tenant scope or writes a 401.
func requireScope(w http.ResponseWriter, r *http.Request) (domain.Scope, bool) {
	scope, ok := middleware.GetScopeFromContext(r.Context())
	if !ok || scope.IsZero() {
		writeError(w, http.StatusUnauthorized, "missing tenant scope", "")
		return domain.Scope{}, false
	}

	return scope, true
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyCancelled),
		errors.Is(err, domain.ErrAlreadyReverted),
		errors.Is(err, domain.ErrAlreadySettled),
		errors.Is(err, domain.ErrNotCancelled):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrInvalidDirection),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrMissingSaleNo),
		errors.Is(err, domain.ErrMissingAccount),
		errors.Is(err, domain.ErrMissingScope),
		errors.Is(err, domain.ErrInvalidAccountName),
		errors.Is(err, domain.ErrInvalidProductName),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrNoteTooLong),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrNotCancellable),
		errors.Is(err, domain.ErrNotCancelEntry),
		errors.Is(err, domain.ErrNotReturnEntry),
		errors.Is(err, domain.ErrReturnExceedsSale),
		errors.Is(err, domain.ErrInvalidSettlement):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseTimeQuery parses an RFC 3339 or date-only query parameter.
func parseTimeQuery(r *http.Request, key string) (*time.Time, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return &t, nil
	}

	t, err := time.Parse("2006-01-02", val)
	if err != nil {
		return nil, err
	}

	return &t, nil
}
