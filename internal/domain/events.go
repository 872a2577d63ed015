package domain

import "time"

// Event types
const (
	EventTypeEntryPosted    = "entry.posted"
	EventTypeEntryCancelled = "entry.cancelled"
	EventTypeEntryReverted  = "entry.reverted"
	EventTypeReturnSettled  = "entry.return_settled"
)

// Aggregate types
const (
	AggregateTypeEntry   = "entry"
	AggregateTypeAccount = "account"
)

// OutboxEvent is written in the same transaction as the journal mutation it
// describes and drained by the background publisher.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// EntryPostedEvent payload
type EntryPostedEvent struct {
	EntryID   string `json:"entry_id"`
	AccountID string `json:"account_id"`
	SaleNo    string `json:"sale_no,omitempty"`
	Type      string `json:"type"`
	Direction string `json:"direction"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

// EntryCancelledEvent payload
type EntryCancelledEvent struct {
	CancelEntryID   string `json:"cancel_entry_id"`
	OriginalEntryID string `json:"original_entry_id"`
	AccountID       string `json:"account_id"`
	Amount          string `json:"amount"`
}

// EntryRevertedEvent payload
type EntryRevertedEvent struct {
	CancelEntryID   string `json:"cancel_entry_id"`
	OriginalEntryID string `json:"original_entry_id"`
	AccountID       string `json:"account_id"`
}

// ReturnSettledEvent payload
type ReturnSettledEvent struct {
	ReturnEntryID  string `json:"return_entry_id"`
	PaymentEntryID string `json:"payment_entry_id"`
	Method         string `json:"method"`
	Amount         string `json:"amount"`
}
