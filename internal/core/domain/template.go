package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringTemplate is a subscription, salary or similar repeating money
// flow. The pair {LastOccurrence, NextOccurrence} is the materialization
// cursor: NextOccurrence is always produced by the rule evaluator, never
// hand-edited, and is advanced only after the transaction for the previous
// occurrence has been persisted. Invariant: LastOccurrence <= NextOccurrence
// whenever both are set.
type RecurringTemplate struct {
	TemplateID      string          `json:"templateID"`
	UserID          string          `json:"userID"`
	Kind            FlowKind        `json:"kind"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currencyCode"`
	AccountID       string          `json:"accountID"`       // optional; income target
	PaymentMethodID string          `json:"paymentMethodID"` // optional; expense settlement
	CategoryID      string          `json:"categoryID"`      // optional
	SourceID        string          `json:"sourceID"`        // optional
	TaxIDs          []string        `json:"taxIDs"`
	RecurrenceRule  string          `json:"recurrenceRule"`
	NextOccurrence  *time.Time      `json:"nextOccurrence"` // nil when the rule is exhausted
	LastOccurrence  *time.Time      `json:"lastOccurrence"`
	IsActive        bool            `json:"isActive"` // soft-delete tombstone
	AuditFields
}

// IsDue reports whether the template has an occurrence at or before now.
// Exhausted rules (NextOccurrence == nil) are never due.
func (t RecurringTemplate) IsDue(now time.Time) bool {
	return t.IsActive && t.NextOccurrence != nil && !t.NextOccurrence.After(now)
}
