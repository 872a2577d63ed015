package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the stock collaborator: on-hand quantity is mutated inside the
// same database transaction as the journal write for sale/purchase items.
type Product struct {
	ID        string
	Scope     Scope
	Name      string
	SKU       string
	Unit      string
	OnHand    decimal.Decimal
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateIssue checks that qty can be taken from stock.
func (p *Product) ValidateIssue(qty decimal.Decimal) error {
	if p.OnHand.LessThan(qty) {
		return ErrInsufficientStock
	}

	return nil
}

// StockDeltaFor returns the signed on-hand change a posted entry of the given
// type causes for one line-item quantity. Cancel and return flows apply the
// negation of the forward delta.
func StockDeltaFor(t EntryType, qty decimal.Decimal) decimal.Decimal {
	switch t {
	case EntrySale:
		return qty.Neg()
	case EntryPurchase, EntrySaleReturn:
		return qty
	}

	return decimal.Zero
}
