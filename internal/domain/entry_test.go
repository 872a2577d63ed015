package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestEntry_Validate(t *testing.T) {
	valid := func() *Entry {
		return &Entry{
			Scope:     ByCompany("comp-1"),
			AccountID: "acc-1",
			Type:      EntrySale,
			Direction: DirectionAlacak,
			Amount:    decimal.NewFromInt(1000),
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Entry)
		expectError error
	}{
		{
			name:        "valid entry",
			mutate:      func(*Entry) {},
			expectError: nil,
		},
		{
			name:        "missing scope",
			mutate:      func(e *Entry) { e.Scope = Scope{} },
			expectError: ErrMissingScope,
		},
		{
			name:        "missing account",
			mutate:      func(e *Entry) { e.AccountID = "" },
			expectError: ErrMissingAccount,
		},
		{
			name:        "invalid direction",
			mutate:      func(e *Entry) { e.Direction = "debit" },
			expectError: ErrInvalidDirection,
		},
		{
			name:        "zero amount",
			mutate:      func(e *Entry) { e.Amount = decimal.Zero },
			expectError: ErrInvalidAmount,
		},
		{
			name:        "negative amount",
			mutate:      func(e *Entry) { e.Amount = decimal.NewFromInt(-5) },
			expectError: ErrInvalidAmount,
		},
		{
			name: "zero quantity line item",
			mutate: func(e *Entry) {
				e.Items = []LineItem{{ProductID: "p-1", Quantity: decimal.Zero}}
			},
			expectError: ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := valid()
			tt.mutate(entry)

			err := entry.Validate()

			if tt.expectError == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectError != nil && err != tt.expectError {
				t.Errorf("expected error %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestEntry_CountsInBalance(t *testing.T) {
	tests := []struct {
		name      string
		status    EntryStatus
		isDeleted bool
		counts    bool
	}{
		{"active", StatusActive, false, true},
		{"cancelled original still counts", StatusCancelled, false, true},
		{"reversed compensator drops out", StatusReversed, false, false},
		{"soft deleted drops out", StatusActive, true, false},
		{"reversed and deleted", StatusReversed, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Entry{Status: tt.status, IsDeleted: tt.isDeleted}
			if got := e.CountsInBalance(); got != tt.counts {
				t.Errorf("expected %v, got %v", tt.counts, got)
			}
		})
	}
}

func TestEntry_BalanceDelta(t *testing.T) {
	borc := &Entry{Direction: DirectionBorc, Amount: decimal.NewFromInt(250)}
	if !borc.BalanceDelta().Equal(decimal.NewFromInt(250)) {
		t.Errorf("expected +250, got %s", borc.BalanceDelta())
	}

	alacak := &Entry{Direction: DirectionAlacak, Amount: decimal.NewFromInt(250)}
	if !alacak.BalanceDelta().Equal(decimal.NewFromInt(-250)) {
		t.Errorf("expected -250, got %s", alacak.BalanceDelta())
	}
}

func TestEntry_CompensatingEntry(t *testing.T) {
	now := time.Now().UTC()

	sale := &Entry{
		ID:        "entry-1",
		Scope:     ByCompany("comp-1"),
		AccountID: "acc-1",
		SaleNo:    "S-100",
		Type:      EntrySale,
		Direction: DirectionAlacak,
		Amount:    decimal.NewFromInt(1000),
		Currency:  "TRY",
		FxRate:    decimal.NewFromInt(1),
		Status:    StatusActive,
	}

	comp, err := sale.CompensatingEntry("entry-2", now, "musteri vazgecti")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if comp.Type != EntrySaleCancel {
		t.Errorf("expected type %s, got %s", EntrySaleCancel, comp.Type)
	}
	if comp.Direction != DirectionBorc {
		t.Errorf("expected direction %s, got %s", DirectionBorc, comp.Direction)
	}
	if !comp.Amount.Equal(sale.Amount) {
		t.Errorf("expected amount %s, got %s", sale.Amount, comp.Amount)
	}
	if comp.RefEntryID != "entry-1" {
		t.Errorf("expected ref entry-1, got %s", comp.RefEntryID)
	}
	if comp.RefSaleNo != "S-100" {
		t.Errorf("expected ref sale no S-100, got %s", comp.RefSaleNo)
	}

	cancel := &Entry{Type: EntrySaleCancel, Direction: DirectionBorc, Amount: decimal.NewFromInt(1000)}
	if _, err := cancel.CompensatingEntry("entry-3", now, ""); err != ErrNotCancellable {
		t.Errorf("expected ErrNotCancellable, got %v", err)
	}
}

func TestFoldBalance(t *testing.T) {
	entries := []*Entry{
		{Direction: DirectionAlacak, Amount: decimal.NewFromInt(1000), Status: StatusActive},
		{Direction: DirectionBorc, Amount: decimal.NewFromInt(400), Status: StatusActive},
	}

	b := FoldBalance(entries)

	if !b.Borc.Equal(decimal.NewFromInt(400)) {
		t.Errorf("expected borc 400, got %s", b.Borc)
	}
	if !b.Alacak.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected alacak 1000, got %s", b.Alacak)
	}
	if !b.Bakiye.Equal(decimal.NewFromInt(-600)) {
		t.Errorf("expected bakiye -600, got %s", b.Bakiye)
	}
}

func TestFoldBalance_CancelNetsToZero(t *testing.T) {
	// A cancelled sale keeps counting; its active compensator nets it out.
	entries := []*Entry{
		{Direction: DirectionAlacak, Amount: decimal.NewFromInt(1000), Status: StatusCancelled},
		{Type: EntrySaleCancel, Direction: DirectionBorc, Amount: decimal.NewFromInt(1000), Status: StatusActive},
	}

	b := FoldBalance(entries)

	if !b.Bakiye.IsZero() {
		t.Errorf("expected zero bakiye after cancel, got %s", b.Bakiye)
	}
}

func TestFoldBalance_RevertedCompensatorExcluded(t *testing.T) {
	// After a revert the original is active again and the compensator is
	// reversed and soft-deleted; the fold must equal the original alone.
	entries := []*Entry{
		{Direction: DirectionAlacak, Amount: decimal.NewFromInt(1000), Status: StatusActive},
		{Type: EntrySaleCancel, Direction: DirectionBorc, Amount: decimal.NewFromInt(1000), Status: StatusReversed, IsDeleted: true},
	}

	b := FoldBalance(entries)

	if !b.Bakiye.Equal(decimal.NewFromInt(-1000)) {
		t.Errorf("expected bakiye -1000, got %s", b.Bakiye)
	}
}

func TestCancelTypeFor(t *testing.T) {
	tests := []struct {
		forward EntryType
		cancel  EntryType
	}{
		{EntrySale, EntrySaleCancel},
		{EntryPurchase, EntryPurchaseCancel},
		{EntryPayment, EntryTahsilatCancel},
	}

	for _, tt := range tests {
		got, err := CancelTypeFor(tt.forward)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.forward, err)
		}
		if got != tt.cancel {
			t.Errorf("expected %s, got %s", tt.cancel, got)
		}
	}

	if _, err := CancelTypeFor(EntrySaleReturn); err != ErrNotCancellable {
		t.Errorf("expected ErrNotCancellable, got %v", err)
	}
}

func TestDirection_Opposite(t *testing.T) {
	if DirectionBorc.Opposite() != DirectionAlacak {
		t.Error("expected borc opposite to be alacak")
	}
	if DirectionAlacak.Opposite() != DirectionBorc {
		t.Error("expected alacak opposite to be borc")
	}
}
