package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finflow/finflow_backend/internal/apperrors"
	"github.com/finflow/finflow_backend/internal/core/domain"
	portsrepo "github.com/finflow/finflow_backend/internal/core/ports/repositories"
)

// Postgres error code for unique constraint violations.
const uniqueViolationCode = "23505"

type PgxCurrencyRepository struct {
	BaseRepository
}

// newPgxCurrencyRepository creates a new repository for currency data.
func newPgxCurrencyRepository(pool *pgxpool.Pool) portsrepo.CurrencyRepositoryFacade {
	return &PgxCurrencyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.CurrencyRepositoryFacade = (*PgxCurrencyRepository)(nil)

// SaveCurrency inserts a new currency. Re-creating an existing code is a
// conflict, not an update.
func (r *PgxCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	query := `
		INSERT INTO currencies (currency_code, symbol, name, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`

	_, err := r.Pool.Exec(ctx, query,
		currency.CurrencyCode,
		currency.Symbol,
		currency.Name,
		currency.CreatedAt,
		currency.CreatedBy,
		currency.LastUpdatedAt,
		currency.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return fmt.Errorf("%w: currency %s", apperrors.ErrDuplicate, currency.CurrencyCode)
		}
		return fmt.Errorf("failed to save currency %s: %w", currency.CurrencyCode, err)
	}
	return nil
}

// FindCurrencyByCode retrieves a currency by its 3-letter code.
func (r *PgxCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	query := `
		SELECT currency_code, symbol, name, created_at, created_by, last_updated_at, last_updated_by
		FROM currencies
		WHERE currency_code = $1;
	`
	var currency domain.Currency
	err := r.Pool.QueryRow(ctx, query, currencyCode).Scan(
		&currency.CurrencyCode,
		&currency.Symbol,
		&currency.Name,
		&currency.CreatedAt,
		&currency.CreatedBy,
		&currency.LastUpdatedAt,
		&currency.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find currency by code %s: %w", currencyCode, err)
	}
	return &currency, nil
}

// ListCurrencies retrieves all currencies.
func (r *PgxCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	query := `
		SELECT currency_code, symbol, name, created_at, created_by, last_updated_at, last_updated_by
		FROM currencies
		ORDER BY currency_code;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	currencies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Currency, error) {
		var currency domain.Currency
		err := row.Scan(
			&currency.CurrencyCode,
			&currency.Symbol,
			&currency.Name,
			&currency.CreatedAt,
			&currency.CreatedBy,
			&currency.LastUpdatedAt,
			&currency.LastUpdatedBy,
		)
		return currency, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan currencies: %w", err)
	}
	return currencies, nil
}
