package domain

import "github.com/shopspring/decimal"

// Category labels an expense (groceries, rent, ...).
type Category struct {
	CategoryID string `json:"categoryID"`
	UserID     string `json:"userID"`
	Name       string `json:"name"`
	AuditFields
}

// Source labels an income (salary, dividends, ...).
type Source struct {
	SourceID string `json:"sourceID"`
	UserID   string `json:"userID"`
	Name     string `json:"name"`
	AuditFields
}

// Tax is a percentage applied on top of an expense amount when computing
// gross statistics totals.
type Tax struct {
	TaxID       string          `json:"taxID"`
	UserID      string          `json:"userID"`
	Name        string          `json:"name"`
	RatePercent decimal.Decimal `json:"ratePercent"`
	AuditFields
}
