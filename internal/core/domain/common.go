package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID reference
}

// FlowKind distinguishes money leaving the user from money arriving.
type FlowKind string

const (
	FlowExpense FlowKind = "EXPENSE"
	FlowIncome  FlowKind = "INCOME"
)

// DayKey is the canonical calendar-day key used for historic rate snapshots
// and heatmap buckets.
const DayKey = "2006-01-02"

// MonthKey is the canonical calendar-month key used by the monthly series.
const MonthKey = "2006-01"

// TruncateToDay normalizes an instant to UTC midnight of its calendar day.
func TruncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
