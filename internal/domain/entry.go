package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of the cari account an entry contributes to.
type Direction string

const (
	// DirectionBorc is the debit side.
	DirectionBorc Direction = "borc"

	// DirectionAlacak is the credit side.
	DirectionAlacak Direction = "alacak"
)

// IsValid reports whether the direction is one of the two known sides.
func (d Direction) IsValid() bool {
	return d == DirectionBorc || d == DirectionAlacak
}

// Opposite returns the inverted direction, used for compensating entries.
func (d Direction) Opposite() Direction {
	if d == DirectionBorc {
		return DirectionAlacak
	}

	return DirectionBorc
}

// EntryType is the semantic type of a journal entry.
type EntryType string

const (
	EntrySale           EntryType = "sale"
	EntrySaleReturn     EntryType = "sale_return"
	EntrySaleCancel     EntryType = "sale_cancel"
	EntryPurchase       EntryType = "purchase"
	EntryPurchaseCancel EntryType = "purchase_cancel"
	EntryPayment        EntryType = "payment"
	EntryTahsilatCancel EntryType = "tahsilat_cancel"
)

// cancelTypes maps a forward entry type to the type of its compensating entry.
var cancelTypes = map[EntryType]EntryType{
	EntrySale:     EntrySaleCancel,
	EntryPurchase: EntryPurchaseCancel,
	EntryPayment:  EntryTahsilatCancel,
}

// CancelTypeFor returns the compensating entry type for a forward entry type.
func CancelTypeFor(t EntryType) (EntryType, error) {
	ct, ok := cancelTypes[t]
	if !ok {
		return "", ErrNotCancellable
	}

	return ct, nil
}

// IsCancelType reports whether the type is a compensating (cancel) type.
func (t EntryType) IsCancelType() bool {
	switch t {
	case EntrySaleCancel, EntryPurchaseCancel, EntryTahsilatCancel:
		return true
	}

	return false
}

// EntryStatus is the soft-state of a journal entry. Rows are never removed
// once posted; cancel and revert flows only move entries between states.
type EntryStatus string

const (
	StatusActive    EntryStatus = "active"
	StatusCancelled EntryStatus = "cancelled"
	StatusReversed  EntryStatus = "reversed"
)

// PaymentMethod identifies how a payment entry settles.
type PaymentMethod string

const (
	MethodNakit  PaymentMethod = "Nakit"
	MethodHavale PaymentMethod = "Havale"
	MethodKart   PaymentMethod = "Kart"

	// MethodMahsup settles a sale return by offsetting the account balance
	// instead of moving cash.
	MethodMahsup PaymentMethod = "Mahsup"

	// MethodIade is a cash refund against a sale return.
	MethodIade PaymentMethod = "Iade"
)

// LineItem is one product line of a sale or purchase entry. The legacy
// system serialized these into the note text; here they are a real field.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Entry is a single journal row for a cari account. The journal is the
// authoritative source of balance; the denormalized bakiye on Account is a
// cache rebuilt transactionally on every posting.
type Entry struct {
	ID            string
	Scope         Scope
	AccountID     string
	SaleNo        string
	Type          EntryType
	Direction     Direction
	Amount        decimal.Decimal
	Currency      string
	FxRate        decimal.Decimal
	Items         []LineItem
	Note          string
	PaymentMethod PaymentMethod
	RefEntryID    string
	RefSaleNo     string
	Status        EntryStatus
	IsDeleted     bool
	Date          time.Time
	CreatedAt     time.Time
}

// Validate checks the structural invariants of a new entry.
func (e *Entry) Validate() error {
	if e.Scope.IsZero() {
		return ErrMissingScope
	}

	if e.AccountID == "" {
		return ErrMissingAccount
	}

	if !e.Direction.IsValid() {
		return ErrInvalidDirection
	}

	if e.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	for _, item := range e.Items {
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return ErrInvalidQuantity
		}
	}

	return nil
}

// CountsInBalance reports whether the entry contributes to balance and
// statement folds. Cancelled originals keep counting; their active
// compensating entries net them to zero. Reversed (undone) compensators and
// soft-deleted rows drop out.
func (e *Entry) CountsInBalance() bool {
	return !e.IsDeleted && e.Status != StatusReversed
}

// BalanceDelta returns the signed contribution of the entry under the
// bakiye = borc - alacak convention.
func (e *Entry) BalanceDelta() decimal.Decimal {
	if e.Direction == DirectionBorc {
		return e.Amount
	}

	return e.Amount.Neg()
}

// CompensatingEntry builds the cancel entry for e: inverted direction,
// identical amount, back-reference to the original.
func (e *Entry) CompensatingEntry(id string, now time.Time, note string) (*Entry, error) {
	ct, err := CancelTypeFor(e.Type)
	if err != nil {
		return nil, err
	}

	return &Entry{
		ID:         id,
		Scope:      e.Scope,
		AccountID:  e.AccountID,
		SaleNo:     e.SaleNo,
		Type:       ct,
		Direction:  e.Direction.Opposite(),
		Amount:     e.Amount,
		Currency:   e.Currency,
		FxRate:     e.FxRate,
		Note:       note,
		RefEntryID: e.ID,
		RefSaleNo:  e.SaleNo,
		Status:     StatusActive,
		Date:       now,
		CreatedAt:  now,
	}, nil
}

// Balance is the read-side aggregate of a cari account.
type Balance struct {
	Borc   decimal.Decimal
	Alacak decimal.Decimal
	Bakiye decimal.Decimal
}

// FoldBalance folds journal entries into {borc, alacak, bakiye}. This is the
// single balance algorithm; the statement projection applies the same fold
// row by row.
func FoldBalance(entries []*Entry) Balance {
	b := Balance{Borc: decimal.Zero, Alacak: decimal.Zero, Bakiye: decimal.Zero}

	for _, e := range entries {
		if !e.CountsInBalance() {
			continue
		}

		if e.Direction == DirectionBorc {
			b.Borc = b.Borc.Add(e.Amount)
		} else {
			b.Alacak = b.Alacak.Add(e.Amount)
		}
	}

	b.Bakiye = b.Borc.Sub(b.Alacak)

	return b
}
