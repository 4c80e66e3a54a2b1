package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finflow/finflow_backend/internal/apperrors"
	"github.com/finflow/finflow_backend/internal/core/domain"
	portsrepo "github.com/finflow/finflow_backend/internal/core/ports/repositories"
)

type PgxRateRepository struct {
	BaseRepository
}

func newPgxRateRepository(pool *pgxpool.Pool) portsrepo.RateRepositoryFacade {
	return &PgxRateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.RateRepositoryFacade = (*PgxRateRepository)(nil)

// ReplaceRates overwrites the spot rate row for every given currency and
// upserts the daily snapshot in one transaction. The refresh job calls this
// once per fetch, so a mid-write failure rolls both stores back together.
func (r *PgxRateRepository) ReplaceRates(ctx context.Context, spots []domain.SpotRate, snapshot domain.HistoricRateSnapshot) error {
	ratesJSON, err := json.Marshal(snapshot.Rates)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot rates for %s: %w", snapshot.Date.Format(domain.DayKey), err)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	spotQuery := `
		INSERT INTO spot_rates (currency_code, rate, last_updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (currency_code) DO UPDATE SET
			rate = EXCLUDED.rate,
			last_updated_at = EXCLUDED.last_updated_at;
	`
	for _, spot := range spots {
		if _, err := tx.Exec(ctx, spotQuery, spot.CurrencyCode, spot.Rate, spot.LastUpdatedAt); err != nil {
			return fmt.Errorf("failed to upsert spot rate for %s: %w", spot.CurrencyCode, err)
		}
	}

	snapshotQuery := `
		INSERT INTO historic_rate_snapshots (snapshot_date, rates)
		VALUES ($1, $2)
		ON CONFLICT (snapshot_date) DO UPDATE SET rates = EXCLUDED.rates;
	`
	if _, err := tx.Exec(ctx, snapshotQuery, domain.TruncateToDay(snapshot.Date), ratesJSON); err != nil {
		return fmt.Errorf("failed to upsert snapshot for %s: %w", snapshot.Date.Format(domain.DayKey), err)
	}

	return r.Commit(ctx, tx)
}

// FindSpotRate retrieves the latest known rate for a currency.
func (r *PgxRateRepository) FindSpotRate(ctx context.Context, currencyCode string) (*domain.SpotRate, error) {
	query := `SELECT currency_code, rate, last_updated_at FROM spot_rates WHERE currency_code = $1;`
	var rate domain.SpotRate
	err := r.Pool.QueryRow(ctx, query, currencyCode).Scan(&rate.CurrencyCode, &rate.Rate, &rate.LastUpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find spot rate for %s: %w", currencyCode, err)
	}
	return &rate, nil
}

// ListSpotRates retrieves all spot rates.
func (r *PgxRateRepository) ListSpotRates(ctx context.Context) ([]domain.SpotRate, error) {
	query := `SELECT currency_code, rate, last_updated_at FROM spot_rates ORDER BY currency_code;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query spot rates: %w", err)
	}
	defer rows.Close()

	rates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SpotRate, error) {
		var rate domain.SpotRate
		err := row.Scan(&rate.CurrencyCode, &rate.Rate, &rate.LastUpdatedAt)
		return rate, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan spot rates: %w", err)
	}
	return rates, nil
}

// FindSnapshotByDate retrieves the snapshot for one calendar day. Rates are
// stored as a JSONB document since the currency set varies per day.
func (r *PgxRateRepository) FindSnapshotByDate(ctx context.Context, date time.Time) (*domain.HistoricRateSnapshot, error) {
	query := `SELECT snapshot_date, rates FROM historic_rate_snapshots WHERE snapshot_date = $1;`
	snapshot, err := scanSnapshotRow(r.Pool.QueryRow(ctx, query, domain.TruncateToDay(date)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find snapshot for %s: %w", date.Format(domain.DayKey), err)
	}
	return snapshot, nil
}

// ListSnapshotsByRange retrieves every snapshot with date in [from, to].
func (r *PgxRateRepository) ListSnapshotsByRange(ctx context.Context, from, to time.Time) ([]domain.HistoricRateSnapshot, error) {
	query := `
		SELECT snapshot_date, rates
		FROM historic_rate_snapshots
		WHERE snapshot_date >= $1 AND snapshot_date <= $2
		ORDER BY snapshot_date ASC;
	`
	rows, err := r.Pool.Query(ctx, query, domain.TruncateToDay(from), domain.TruncateToDay(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.HistoricRateSnapshot, error) {
		s, err := scanSnapshotRow(row)
		if err != nil {
			return domain.HistoricRateSnapshot{}, err
		}
		return *s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshots: %w", err)
	}
	return snapshots, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshotRow(row rowScanner) (*domain.HistoricRateSnapshot, error) {
	var snapshot domain.HistoricRateSnapshot
	var ratesJSON []byte
	if err := row.Scan(&snapshot.Date, &ratesJSON); err != nil {
		return nil, err
	}
	snapshot.Rates = make(map[string]decimal.Decimal)
	if err := json.Unmarshal(ratesJSON, &snapshot.Rates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot rates: %w", err)
	}
	snapshot.Date = domain.TruncateToDay(snapshot.Date)
	return &snapshot, nil
}
