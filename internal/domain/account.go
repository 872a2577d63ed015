package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind distinguishes customer and supplier cari accounts.
type AccountKind string

const (
	AccountCustomer AccountKind = "customer"
	AccountSupplier AccountKind = "supplier"
)

// IsValid reports whether the kind is known.
func (k AccountKind) IsValid() bool {
	return k == AccountCustomer || k == AccountSupplier
}

// Account is a cari (counterparty) account. CachedBakiye mirrors the journal
// fold and is rebuilt inside the same transaction as every posting; the
// journal remains the single source of truth.
type Account struct {
	ID           string
	Scope        Scope
	DisplayName  string
	Kind         AccountKind
	Currency     string
	TaxNo        string
	Phone        string
	CachedBakiye decimal.Decimal
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthorizeRead checks that the caller's scope owns this account.
func (a *Account) AuthorizeRead(scope Scope) error {
	if !a.Scope.Equal(scope) {
		return ErrForbidden
	}

	return nil
}

// ApplyDelta returns the cached bakiye after a signed journal delta.
func (a *Account) ApplyDelta(delta decimal.Decimal) decimal.Decimal {
	return a.CachedBakiye.Add(delta)
}
