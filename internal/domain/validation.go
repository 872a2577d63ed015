package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidAccountName = errors.New("invalid account name")
	ErrInvalidProductName = errors.New("invalid product name")
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
	ErrInvalidDateRange   = errors.New("invalid date range")
	ErrNoteTooLong        = errors.New("note exceeds maximum length")
)

// Validation constants
const (
	MaxAccountNameLength = 255
	MaxNoteLength        = 2000
	MaxEntryAmount       = "1000000000000" // 1 trillion
)

// Valid currency codes (ISO 4217), TRY being the home currency.
var validCurrencies = map[string]bool{
	"TRY": true, "USD": true, "EUR": true, "GBP": true,
	"JPY": true, "CHF": true, "RUB": true, "SAR": true,
}

// ValidateAccountName validates a cari display name.
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if len(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return nil
}

// ValidateCurrency validates a currency code.
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a supported currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateAmount validates a posting amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxEntryAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxEntryAmount)
	}

	return nil
}

// ValidateDateRange validates an optional [from, to] statement range.
func ValidateDateRange(from, to *time.Time) error {
	if from != nil && to != nil && to.Before(*from) {
		return fmt.Errorf("%w: end precedes start", ErrInvalidDateRange)
	}

	return nil
}

// ValidateNote validates a free-text annotation.
func ValidateNote(note string) error {
	if len(note) > MaxNoteLength {
		return fmt.Errorf("%w: limit is %d bytes", ErrNoteTooLong, MaxNoteLength)
	}

	return nil
}

// ValidatePagination clamps pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const maxPageSize = 1000
	const defaultPageSize = 50

	if limit <= 0 {
		limit = defaultPageSize
	}

	if limit > maxPageSize {
		limit = maxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
