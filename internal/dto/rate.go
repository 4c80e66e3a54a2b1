package dto

import (
	"time"

	"github.com/finflow/finflow_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SpotRateResponse defines the data returned for a latest spot rate.
type SpotRateResponse struct {
	CurrencyCode  string          `json:"currencyCode"`
	Rate          decimal.Decimal `json:"rate"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// ToSpotRateResponse converts a domain.SpotRate to its DTO.
func ToSpotRateResponse(r *domain.SpotRate) SpotRateResponse {
	return SpotRateResponse{
		CurrencyCode:  r.CurrencyCode,
		Rate:          r.Rate,
		LastUpdatedAt: r.LastUpdatedAt,
	}
}

// SnapshotResponse defines the data returned for a historic daily snapshot.
type SnapshotResponse struct {
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// ToSnapshotResponse converts a domain.HistoricRateSnapshot to its DTO.
func ToSnapshotResponse(s *domain.HistoricRateSnapshot) SnapshotResponse {
	return SnapshotResponse{
		Date:  s.Date.Format(domain.DayKey),
		Rates: s.Rates,
	}
}
