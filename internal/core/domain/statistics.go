package domain

import "github.com/shopspring/decimal"

// Dimension selects the grouping key for a by-dimension statistics query.
type Dimension string

const (
	DimensionPaymentMethod Dimension = "PAYMENT_METHOD"
	DimensionCategory      Dimension = "CATEGORY"
	DimensionAccount       Dimension = "ACCOUNT"
	DimensionSource        Dimension = "SOURCE"
)

// ValidDimension reports whether d is one of the supported grouping keys.
func ValidDimension(d Dimension) bool {
	switch d {
	case DimensionPaymentMethod, DimensionCategory, DimensionAccount, DimensionSource:
		return true
	}
	return false
}

// DimensionTotal is one slice of a grouped statistics result, already
// converted into the display currency.
type DimensionTotal struct {
	Key              string          `json:"key"` // entity ID of the dimension value
	Total            decimal.Decimal `json:"total"`
	TransactionCount int             `json:"transactionCount"`
}

// DimensionReport is the full grouped result, sorted descending by total.
// ExcludedTransactions counts values dropped because no historic snapshot
// (or no usable rate in it) existed for their date.
type DimensionReport struct {
	DisplayCurrency      string           `json:"displayCurrency"`
	Rows                 []DimensionTotal `json:"rows"`
	ExcludedTransactions int              `json:"excludedTransactions"`
}

// MonthlyPoint is one calendar month of the time series. Expense and income
// totals are summed independently.
type MonthlyPoint struct {
	Month   string          `json:"month"` // "2006-01"
	Expense decimal.Decimal `json:"expense"`
	Income  decimal.Decimal `json:"income"`
}

// MonthlySeries covers every calendar month in the queried range, including
// months with zero activity.
type MonthlySeries struct {
	DisplayCurrency      string         `json:"displayCurrency"`
	Points               []MonthlyPoint `json:"points"`
	ExcludedTransactions int            `json:"excludedTransactions"`
}

// HeatmapCell is one non-zero calendar day. Days where both totals are zero
// are omitted entirely (sparse map, not dense array).
type HeatmapCell struct {
	Date    string          `json:"date"` // "2006-01-02"
	Expense decimal.Decimal `json:"expense"`
	Income  decimal.Decimal `json:"income"`
}

// Heatmap is the sparse per-day result for a date range.
type Heatmap struct {
	DisplayCurrency      string        `json:"displayCurrency"`
	Cells                []HeatmapCell `json:"cells"`
	ExcludedTransactions int           `json:"excludedTransactions"`
}
