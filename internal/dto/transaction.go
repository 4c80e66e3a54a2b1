package dto

import (
	"time"

	"github.com/finflow/finflow_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionResponse defines the data returned for a concrete transaction,
// including the conversion snapshot captured when it was generated.
type TransactionResponse struct {
	TransactionID   string          `json:"transactionID"`
	Kind            domain.FlowKind `json:"kind"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currencyCode"`
	Date            time.Time       `json:"date"`
	AccountID       string          `json:"accountID,omitempty"`
	PaymentMethodID string          `json:"paymentMethodID,omitempty"`
	CategoryID      string          `json:"categoryID,omitempty"`
	SourceID        string          `json:"sourceID,omitempty"`
	TaxIDs          []string        `json:"taxIDs,omitempty"`
	TemplateID      string          `json:"templateID,omitempty"`
	SourceRate      decimal.Decimal `json:"sourceRate"`
	TargetRate      decimal.Decimal `json:"targetRate"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ToTransactionResponse converts a domain.Transaction to its DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   t.TransactionID,
		Kind:            t.Kind,
		Description:     t.Description,
		Amount:          t.Amount,
		CurrencyCode:    t.CurrencyCode,
		Date:            t.Date,
		AccountID:       t.AccountID,
		PaymentMethodID: t.PaymentMethodID,
		CategoryID:      t.CategoryID,
		SourceID:        t.SourceID,
		TaxIDs:          t.TaxIDs,
		TemplateID:      t.TemplateID,
		SourceRate:      t.SourceRate,
		TargetRate:      t.TargetRate,
		CreatedAt:       t.CreatedAt,
	}
}
