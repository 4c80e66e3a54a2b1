package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/finflow/finflow_backend/internal/apperrors"
	"github.com/finflow/finflow_backend/internal/core/domain"
	portsrepo "github.com/finflow/finflow_backend/internal/core/ports/repositories"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// exchangeRateService implements the ExchangeRateSvcFacade interface. It
// owns both rate stores: the in-place latest spot rates used by the
// materializer and the append-only daily snapshots used by statistics.
type exchangeRateService struct {
	BaseService
	rateRepo     portsrepo.RateRepositoryFacade
	rateSource   portssvc.RateSource
	baseCurrency string
}

// NewExchangeRateService creates a new exchange rate service.
func NewExchangeRateService(
	rateRepo portsrepo.RateRepositoryFacade,
	rateSource portssvc.RateSource,
	baseCurrency string,
) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{
		rateRepo:     rateRepo,
		rateSource:   rateSource,
		baseCurrency: strings.ToUpper(baseCurrency),
	}
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// RefreshRates consumes one payload from the rate source, overwrites every
// spot rate and upserts the snapshot for now's calendar day in a single
// repository transaction. The snapshot for a day is rewritten on every
// refresh during that day and becomes immutable once the day has passed.
func (s *exchangeRateService) RefreshRates(ctx context.Context, now time.Time) error {
	payload, err := s.rateSource.FetchLatest(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch rates: %w", err)
	}
	if !strings.EqualFold(payload.BaseCurrency, s.baseCurrency) {
		return fmt.Errorf("%w: rate payload anchored to %s, expected %s",
			apperrors.ErrValidation, payload.BaseCurrency, s.baseCurrency)
	}

	updated := payload.Timestamp
	if updated.IsZero() {
		updated = now
	}

	snapshot := domain.HistoricRateSnapshot{
		Date:  domain.TruncateToDay(now),
		Rates: make(map[string]decimal.Decimal, len(payload.Rates)+1),
	}
	// The base currency converts to itself at 1:1 even when the provider
	// omits it from the payload.
	snapshot.Rates[s.baseCurrency] = decimal.NewFromInt(1)

	spots := make([]domain.SpotRate, 0, len(payload.Rates)+1)
	for code, rate := range payload.Rates {
		code = strings.ToUpper(code)
		if rate.LessThanOrEqual(decimal.Zero) {
			s.LogWarn(ctx, "Skipping non-positive rate from source", "currency", code)
			continue
		}
		snapshot.Rates[code] = rate
		spots = append(spots, domain.SpotRate{
			CurrencyCode:  code,
			Rate:          rate,
			LastUpdatedAt: updated,
		})
	}
	spots = append(spots, domain.SpotRate{
		CurrencyCode:  s.baseCurrency,
		Rate:          decimal.NewFromInt(1),
		LastUpdatedAt: updated,
	})

	if err := s.rateRepo.ReplaceRates(ctx, spots, snapshot); err != nil {
		return fmt.Errorf("failed to store refreshed rates: %w", err)
	}

	s.LogInfo(ctx, "Exchange rates refreshed",
		"currencies", len(spots),
		"snapshot_date", snapshot.Date.Format(domain.DayKey))
	return nil
}

// GetSpotRate retrieves the latest known rate for a currency.
func (s *exchangeRateService) GetSpotRate(ctx context.Context, currencyCode string) (*domain.SpotRate, error) {
	currencyCode = strings.ToUpper(currencyCode)
	if len(currencyCode) != 3 {
		return nil, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}
	rate, err := s.rateRepo.FindSpotRate(ctx, currencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get spot rate: %w", err)
	}
	return rate, nil
}

// ListSpotRates retrieves every currency's latest known rate.
func (s *exchangeRateService) ListSpotRates(ctx context.Context) ([]domain.SpotRate, error) {
	rates, err := s.rateRepo.ListSpotRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list spot rates: %w", err)
	}
	if rates == nil {
		return []domain.SpotRate{}, nil
	}
	return rates, nil
}

// GetSnapshot retrieves the historic snapshot for a calendar day.
func (s *exchangeRateService) GetSnapshot(ctx context.Context, date time.Time) (*domain.HistoricRateSnapshot, error) {
	snapshot, err := s.rateRepo.FindSnapshotByDate(ctx, domain.TruncateToDay(date))
	if err != nil {
		return nil, fmt.Errorf("failed to get historic snapshot: %w", err)
	}
	return snapshot, nil
}
