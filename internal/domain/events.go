package domain

import "time"

// Event types
const (
	EventTypeEntryCreated     = "entry.created"
	EventTypeEntryDeleted     = "entry.deleted"
	EventTypeSeriesExpanded   = "series.expanded"
	EventTypeSeriesMoved      = "series.moved"
	EventTypeSeriesTruncated  = "series.truncated"
	EventTypeEntryAnticipated = "entry.anticipated"
	EventTypeBillPaid         = "bill.paid"
	EventTypeBalanceAdjusted  = "balance.adjusted"
)

// Aggregate types
const (
	AggregateTypeEntry   = "entry"
	AggregateTypeSeries  = "series"
	AggregateTypeBill    = "bill"
	AggregateTypeAccount = "account"
)

// OutboxEvent represents an event waiting to be published. Outbox writes
// ride the same per-document discipline as everything else: a failed outbox
// write is logged and dropped, it never fails the primary operation.
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

// SeriesExpandedEvent payload
type SeriesExpandedEvent struct {
	SeriesID  string `json:"series_id"`
	Requested int    `json:"requested"`
	Written   int    `json:"written"`
	SplitMode string `json:"split_mode"`
}

// BillPaidEvent payload
type BillPaidEvent struct {
	CardID    string `json:"card_id"`
	Period    string `json:"period"`
	Amount    string `json:"amount"`
	AccountID string `json:"account_id"`
}

// BalanceAdjustedEvent payload
type BalanceAdjustedEvent struct {
	AccountID  string `json:"account_id"`
	OldBalance string `json:"old_balance"`
	NewBalance string `json:"new_balance"`
	Delta      string `json:"delta"`
}
