package services

import (
	"context"
	"time"

	"github.com/finflow/finflow_backend/internal/core/domain"
)

// ExchangeRateReaderSvc defines read operations for rate data.
type ExchangeRateReaderSvc interface {
	// GetSpotRate retrieves the latest known rate for a currency.
	GetSpotRate(ctx context.Context, currencyCode string) (*domain.SpotRate, error)

	// ListSpotRates retrieves every currency's latest known rate.
	ListSpotRates(ctx context.Context) ([]domain.SpotRate, error)

	// GetSnapshot retrieves the historic snapshot for a calendar day.
	GetSnapshot(ctx context.Context, date time.Time) (*domain.HistoricRateSnapshot, error)
}

// ExchangeRateRefresherSvc is invoked by the periodic rate-refresh job.
type ExchangeRateRefresherSvc interface {
	// RefreshRates pulls the latest payload from the rate source, overwrites
	// every spot rate and upserts the snapshot for now's calendar day.
	RefreshRates(ctx context.Context, now time.Time) error
}

// ExchangeRateSvcFacade combines all exchange rate service interfaces.
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateRefresherSvc
}
