package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/satistakip/cariledger/internal/adapter/http/dto"
	"github.com/satistakip/cariledger/internal/domain"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/accounts?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/accounts?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestParseTimeQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/statement?from=2026-01-15", nil)
	got, err := parseTimeQuery(req, "from")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Format("2006-01-02") != "2026-01-15" {
		t.Fatalf("expected date 2026-01-15, got %v", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/statement?from=2026-01-15T10:30:00Z", nil)
	if got, err = parseTimeQuery(req, "from"); err != nil || got == nil {
		t.Fatalf("expected RFC3339 to parse, got %v err %v", got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/statement", nil)
	if got, err = parseTimeQuery(req, "from"); err != nil || got != nil {
		t.Fatalf("expected nil for missing param, got %v err %v", got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/statement?from=yesterday", nil)
	if _, err = parseTimeQuery(req, "from"); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound},
		{"entry not found", domain.ErrEntryNotFound, http.StatusNotFound},
		{"product not found", domain.ErrProductNotFound, http.StatusNotFound},
		{"already cancelled", domain.ErrAlreadyCancelled, http.StatusConflict},
		{"already reverted", domain.ErrAlreadyReverted, http.StatusConflict},
		{"already settled", domain.ErrAlreadySettled, http.StatusConflict},
		{"not cancelled", domain.ErrNotCancelled, http.StatusConflict},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"insufficient stock", domain.ErrInsufficientStock, http.StatusBadRequest},
		{"return exceeds sale", domain.ErrReturnExceedsSale, http.StatusBadRequest},
		{"invalid settlement", domain.ErrInvalidSettlement, http.StatusBadRequest},
		{"expired token", domain.ErrExpiredToken, http.StatusUnauthorized},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "bad request", "detail")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if resp.Error != "bad request" {
		t.Fatalf("expected error message to propagate, got %+v", resp)
	}
}
