package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one concrete, dated money movement. Materialized
// transactions are dated at the occurrence instant, not at creation time,
// and carry the spot rates observed at generation as their conversion
// snapshot. Immutable once created except by direct user edit, which never
// re-triggers scheduling.
type Transaction struct {
	TransactionID   string          `json:"transactionID"`
	UserID          string          `json:"userID"`
	Kind            FlowKind        `json:"kind"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currencyCode"`
	Date            time.Time       `json:"date"` // effective occurrence instant
	AccountID       string          `json:"accountID"`
	PaymentMethodID string          `json:"paymentMethodID"`
	CategoryID      string          `json:"categoryID"`
	SourceID        string          `json:"sourceID"`
	TaxIDs          []string        `json:"taxIDs"`
	TemplateID      string          `json:"templateID"` // set when materialized from a template

	// Conversion snapshot: spot rate of the transaction currency and of the
	// target account currency at generation time, both relative to the base
	// currency. 1.0 when no rate was known yet.
	SourceRate decimal.Decimal `json:"sourceRate"`
	TargetRate decimal.Decimal `json:"targetRate"`

	AuditFields
}
