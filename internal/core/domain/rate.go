package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpotRate is the latest known exchange rate for a currency, relative to the
// fixed base currency. One row per currency, overwritten on each refresh.
// It may be minutes to hours stale between refreshes.
type SpotRate struct {
	CurrencyCode  string          `json:"currencyCode"`
	Rate          decimal.Decimal `json:"rate"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// HistoricRateSnapshot is the full set of rates as they stood on one calendar
// day, relative to the same base currency. Keyed by date, immutable once the
// day has passed. Statistics are valued entirely from these snapshots.
type HistoricRateSnapshot struct {
	Date  time.Time                  `json:"date"` // UTC midnight
	Rates map[string]decimal.Decimal `json:"rates"`
}

// RateFor returns the snapshot rate for a currency code. The second return
// is false when the code is absent or the recorded rate is zero; callers
// must skip conversion in that case rather than divide.
func (s HistoricRateSnapshot) RateFor(code string) (decimal.Decimal, bool) {
	r, ok := s.Rates[code]
	if !ok || r.IsZero() {
		return decimal.Zero, false
	}
	return r, true
}

// RatePayload is the parsed result of one external rate fetch. The fetch
// itself happens outside the core; the core only consumes this.
type RatePayload struct {
	Timestamp    time.Time
	BaseCurrency string
	Rates        map[string]decimal.Decimal
}
