package dto

import (
	"time"

	"github.com/finflow/finflow_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create an account.
type CreateAccountRequest struct {
	Name         string          `json:"name" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3"`
	Balance      decimal.Decimal `json:"balance"`
}

// UpdateAccountRequest defines the mutable fields of an account.
type UpdateAccountRequest struct {
	Name         *string          `json:"name"`
	CurrencyCode *string          `json:"currencyCode" binding:"omitempty,len=3"`
	Balance      *decimal.Decimal `json:"balance"`
	IsActive     *bool            `json:"isActive"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID     string          `json:"accountID"`
	Name          string          `json:"name"`
	CurrencyCode  string          `json:"currencyCode"`
	Balance       decimal.Decimal `json:"balance"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain.Account to its DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     a.AccountID,
		Name:          a.Name,
		CurrencyCode:  a.CurrencyCode,
		Balance:       a.Balance,
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt,
		LastUpdatedAt: a.LastUpdatedAt,
	}
}
