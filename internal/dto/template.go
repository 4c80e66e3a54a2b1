package dto

import (
	"time"

	"github.com/finflow/finflow_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTemplateRequest defines the data needed to create a recurring template.
type CreateTemplateRequest struct {
	Kind            domain.FlowKind `json:"kind" binding:"required,oneof=EXPENSE INCOME"`
	Description     string          `json:"description" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode    string          `json:"currencyCode" binding:"required,uppercase,len=3"`
	AccountID       string          `json:"accountID"`
	PaymentMethodID string          `json:"paymentMethodID"`
	CategoryID      string          `json:"categoryID"`
	SourceID        string          `json:"sourceID"`
	TaxIDs          []string        `json:"taxIDs"`
	RecurrenceRule  string          `json:"recurrenceRule" binding:"required"`
}

// UpdateTemplateRequest defines the mutable fields of a recurring template.
// Nil pointers mean "leave unchanged". Changing the rule recomputes the next
// occurrence from scratch.
type UpdateTemplateRequest struct {
	Description     *string          `json:"description"`
	Amount          *decimal.Decimal `json:"amount"`
	CurrencyCode    *string          `json:"currencyCode" binding:"omitempty,uppercase,len=3"`
	AccountID       *string          `json:"accountID"`
	PaymentMethodID *string          `json:"paymentMethodID"`
	CategoryID      *string          `json:"categoryID"`
	SourceID        *string          `json:"sourceID"`
	TaxIDs          *[]string        `json:"taxIDs"`
	RecurrenceRule  *string          `json:"recurrenceRule"`
}

// TemplateResponse defines the data returned for a recurring template.
type TemplateResponse struct {
	TemplateID      string          `json:"templateID"`
	Kind            domain.FlowKind `json:"kind"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currencyCode"`
	AccountID       string          `json:"accountID,omitempty"`
	PaymentMethodID string          `json:"paymentMethodID,omitempty"`
	CategoryID      string          `json:"categoryID,omitempty"`
	SourceID        string          `json:"sourceID,omitempty"`
	TaxIDs          []string        `json:"taxIDs,omitempty"`
	RecurrenceRule  string          `json:"recurrenceRule"`
	NextOccurrence  *time.Time      `json:"nextOccurrence"`
	LastOccurrence  *time.Time      `json:"lastOccurrence"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
	LastUpdatedAt   time.Time       `json:"lastUpdatedAt"`
}

// ToTemplateResponse converts a domain.RecurringTemplate to its DTO.
func ToTemplateResponse(t *domain.RecurringTemplate) TemplateResponse {
	return TemplateResponse{
		TemplateID:      t.TemplateID,
		Kind:            t.Kind,
		Description:     t.Description,
		Amount:          t.Amount,
		CurrencyCode:    t.CurrencyCode,
		AccountID:       t.AccountID,
		PaymentMethodID: t.PaymentMethodID,
		CategoryID:      t.CategoryID,
		SourceID:        t.SourceID,
		TaxIDs:          t.TaxIDs,
		RecurrenceRule:  t.RecurrenceRule,
		NextOccurrence:  t.NextOccurrence,
		LastOccurrence:  t.LastOccurrence,
		IsActive:        t.IsActive,
		CreatedAt:       t.CreatedAt,
		LastUpdatedAt:   t.LastUpdatedAt,
	}
}

// ListTemplatesResponse wraps a page of templates with the pagination token.
type ListTemplatesResponse struct {
	Templates []TemplateResponse `json:"templates"`
	NextToken string             `json:"nextToken,omitempty"`
}

// ToListTemplatesResponse converts a page of domain templates to the DTO.
func ToListTemplatesResponse(templates []domain.RecurringTemplate, nextToken string) ListTemplatesResponse {
	res := ListTemplatesResponse{
		Templates: make([]TemplateResponse, len(templates)),
		NextToken: nextToken,
	}
	for i := range templates {
		res.Templates[i] = ToTemplateResponse(&templates[i])
	}
	return res
}
