package domain

import "github.com/shopspring/decimal"

// Account is a user-owned money container (bank account, wallet, broker).
// Its currency decides the target side of the conversion snapshot taken when
// a recurring template materializes into it.
type Account struct {
	AccountID    string          `json:"accountID"`
	UserID       string          `json:"userID"`
	Name         string          `json:"name"`
	CurrencyCode string          `json:"currencyCode"`
	Balance      decimal.Decimal `json:"balance"`
	IsActive     bool            `json:"isActive"`
	AuditFields
}
