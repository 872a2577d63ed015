package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestValidateAccountName(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		{"valid name", "Mehmet Ticaret", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"too long", strings.Repeat("a", MaxAccountNameLength+1), true},
		{"max length", strings.Repeat("a", MaxAccountNameLength), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAccountName(tt.input)
			if tt.expectError && !errors.Is(err, ErrInvalidAccountName) {
				t.Errorf("expected ErrInvalidAccountName, got %v", err)
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateCurrency(t *testing.T) {
	for _, valid := range []string{"TRY", "usd", " eur "} {
		if err := ValidateCurrency(valid); err != nil {
			t.Errorf("expected %q valid, got %v", valid, err)
		}
	}

	for _, invalid := range []string{"", "TL", "XXX"} {
		if err := ValidateCurrency(invalid); !errors.Is(err, ErrInvalidCurrency) {
			t.Errorf("expected ErrInvalidCurrency for %q, got %v", invalid, err)
		}
	}
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(decimal.NewFromInt(1000)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := ValidateAmount(decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	if err := ValidateAmount(decimal.NewFromInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	huge, _ := decimal.NewFromString("1000000000001")
	if err := ValidateAmount(huge); !errors.Is(err, ErrAmountTooLarge) {
		t.Errorf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestValidateDateRange(t *testing.T) {
	early := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	if err := ValidateDateRange(&early, &late); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateDateRange(nil, nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateDateRange(&late, &early); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestValidateNote(t *testing.T) {
	if err := ValidateNote(strings.Repeat("x", MaxNoteLength)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateNote(strings.Repeat("x", MaxNoteLength+1)); !errors.Is(err, ErrNoteTooLong) {
		t.Errorf("expected ErrNoteTooLong, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	tests := []struct {
		name           string
		limit, offset  int
		expectedLimit  int
		expectedOffset int
	}{
		{"defaults", 0, 0, 50, 0},
		{"negative values", -5, -10, 50, 0},
		{"clamped to max", 5000, 100, 1000, 100},
		{"passthrough", 25, 75, 25, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := ValidatePagination(tt.limit, tt.offset)
			if limit != tt.expectedLimit || offset != tt.expectedOffset {
				t.Errorf("expected (%d, %d), got (%d, %d)", tt.expectedLimit, tt.expectedOffset, limit, offset)
			}
		})
	}
}
