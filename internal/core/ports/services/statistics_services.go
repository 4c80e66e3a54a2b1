package services

import (
	"context"
	"time"

	"github.com/finflow/finflow_backend/internal/core/domain"
)

// StatisticsSvcFacade provides read-only, multi-dimensional aggregation of
// concrete transactions, valued in the display currency at each
// transaction's historic rate.
type StatisticsSvcFacade interface {
	// ByDimension groups transactions of the given kind by a dimension key
	// over [from, to], sorted descending by converted total.
	ByDimension(ctx context.Context, userID string, dim domain.Dimension, kind domain.FlowKind, from, to time.Time, displayCurrency string) (*domain.DimensionReport, error)

	// MonthlySeries sums expense and income totals independently for every
	// calendar month in [from, to] inclusive.
	MonthlySeries(ctx context.Context, userID string, from, to time.Time, displayCurrency string) (*domain.MonthlySeries, error)

	// Heatmap sums per-day totals over [from, to], omitting zero days.
	Heatmap(ctx context.Context, userID string, from, to time.Time, displayCurrency string) (*domain.Heatmap, error)
}
