package repositories

import (
	"context"
	"time"

	"github.com/finflow/finflow_backend/internal/core/domain"
)

// SpotRateReader defines read operations for latest spot rates.
type SpotRateReader interface {
	// FindSpotRate retrieves the latest known rate for a currency.
	// Returns apperrors.ErrNotFound when no rate has been fetched yet.
	FindSpotRate(ctx context.Context, currencyCode string) (*domain.SpotRate, error)

	ListSpotRates(ctx context.Context) ([]domain.SpotRate, error)
}

// HistoricRateReader defines read operations for daily rate snapshots.
type HistoricRateReader interface {
	// FindSnapshotByDate retrieves the snapshot for one calendar day
	// (UTC midnight key). Returns apperrors.ErrNotFound when absent.
	FindSnapshotByDate(ctx context.Context, date time.Time) (*domain.HistoricRateSnapshot, error)

	// ListSnapshotsByRange retrieves every snapshot with date in [from, to].
	ListSnapshotsByRange(ctx context.Context, from, to time.Time) ([]domain.HistoricRateSnapshot, error)
}

// RateWriter defines write operations for rate storage. Both stores are
// written together by the refresh job.
type RateWriter interface {
	// ReplaceRates overwrites the spot rate row for every given currency and
	// inserts or replaces the daily snapshot, atomically. A failed refresh
	// never leaves the two stores disagreeing.
	ReplaceRates(ctx context.Context, spots []domain.SpotRate, snapshot domain.HistoricRateSnapshot) error
}

// RateRepositoryFacade combines all rate repository interfaces.
type RateRepositoryFacade interface {
	SpotRateReader
	HistoricRateReader
	RateWriter
}
