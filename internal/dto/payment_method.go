package dto

import (
	"time"

	"github.com/finflow/finflow_backend/internal/core/domain"
)

// CreatePaymentMethodRequest defines the data needed to create a payment method.
// Credit methods must carry both cycle rules; they are validated on write.
type CreatePaymentMethodRequest struct {
	Name              string                   `json:"name" binding:"required"`
	Kind              domain.PaymentMethodKind `json:"kind" binding:"required,oneof=CASH DEBIT CREDIT"`
	AccountID         string                   `json:"accountID" binding:"required"`
	CreditClosingRule string                   `json:"creditClosingRule"`
	CreditDueRule     string                   `json:"creditDueRule"`
}

// UpdatePaymentMethodRequest defines the mutable fields of a payment method.
type UpdatePaymentMethodRequest struct {
	Name              *string                   `json:"name"`
	Kind              *domain.PaymentMethodKind `json:"kind" binding:"omitempty,oneof=CASH DEBIT CREDIT"`
	AccountID         *string                   `json:"accountID"`
	CreditClosingRule *string                   `json:"creditClosingRule"`
	CreditDueRule     *string                   `json:"creditDueRule"`
}

// PaymentMethodResponse defines the data returned for a payment method,
// including the cached credit cycle window.
type PaymentMethodResponse struct {
	PaymentMethodID   string                   `json:"paymentMethodID"`
	Name              string                   `json:"name"`
	Kind              domain.PaymentMethodKind `json:"kind"`
	AccountID         string                   `json:"accountID"`
	CreditClosingRule string                   `json:"creditClosingRule,omitempty"`
	CreditDueRule     string                   `json:"creditDueRule,omitempty"`
	NextClosing       *time.Time               `json:"nextClosing"`
	NextDue           *time.Time               `json:"nextDue"`
	LastClosing       *time.Time               `json:"lastClosing"`
	LastDue           *time.Time               `json:"lastDue"`
	IsActive          bool                     `json:"isActive"`
	CreatedAt         time.Time                `json:"createdAt"`
	LastUpdatedAt     time.Time                `json:"lastUpdatedAt"`
}

// ToPaymentMethodResponse converts a domain.PaymentMethod to its DTO.
func ToPaymentMethodResponse(m *domain.PaymentMethod) PaymentMethodResponse {
	return PaymentMethodResponse{
		PaymentMethodID:   m.PaymentMethodID,
		Name:              m.Name,
		Kind:              m.Kind,
		AccountID:         m.AccountID,
		CreditClosingRule: m.CreditClosingRule,
		CreditDueRule:     m.CreditDueRule,
		NextClosing:       m.NextClosing,
		NextDue:           m.NextDue,
		LastClosing:       m.LastClosing,
		LastDue:           m.LastDue,
		IsActive:          m.IsActive,
		CreatedAt:         m.CreatedAt,
		LastUpdatedAt:     m.LastUpdatedAt,
	}
}
