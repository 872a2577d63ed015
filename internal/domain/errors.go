package domain

import "errors"

var (
	// Authentication errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")

	// Scope errors
	ErrForbidden    = errors.New("account belongs to another tenant")
	ErrMissingScope = errors.New("tenant scope is required")

	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrMissingAccount  = errors.New("account id is required")

	// Product errors
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock for sale")

	// Entry errors
	ErrEntryNotFound    = errors.New("entry not found")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidDirection = errors.New("direction must be borc or alacak")
	ErrInvalidQuantity  = errors.New("item quantity must be positive")
	ErrMissingSaleNo    = errors.New("sale number is required")

	// Reversal errors
	ErrAlreadyCancelled = errors.New("entry is already cancelled")
	ErrNotCancellable   = errors.New("entry type cannot be cancelled")
	ErrNotCancelEntry   = errors.New("entry is not a cancellation")
	ErrAlreadyReverted  = errors.New("cancellation has already been reverted")
	ErrNotCancelled     = errors.New("referenced entry is not cancelled")

	// Return settlement errors
	ErrNotReturnEntry    = errors.New("entry is not a sale return")
	ErrAlreadySettled    = errors.New("sale return is already settled")
	ErrReturnExceedsSale = errors.New("return amount exceeds sale amount")
	ErrInvalidSettlement = errors.New("settlement method must be iade or mahsup")
)
