package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finflow/finflow_backend/internal/core/domain"
	portsrepo "github.com/finflow/finflow_backend/internal/core/ports/repositories"
)

type PgxTaxRepository struct {
	BaseRepository
}

func newPgxTaxRepository(pool *pgxpool.Pool) portsrepo.TaxReader {
	return &PgxTaxRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.TaxReader = (*PgxTaxRepository)(nil)

// FindTaxesByIDs retrieves the taxes for the given IDs. Unknown IDs are
// silently omitted from the result.
func (r *PgxTaxRepository) FindTaxesByIDs(ctx context.Context, taxIDs []string) ([]domain.Tax, error) {
	if len(taxIDs) == 0 {
		return []domain.Tax{}, nil
	}

	query := `
		SELECT tax_id, user_id, name, rate_percent,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM taxes
		WHERE tax_id = ANY($1);
	`
	rows, err := r.Pool.Query(ctx, query, taxIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query taxes: %w", err)
	}
	defer rows.Close()

	taxes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Tax, error) {
		var tax domain.Tax
		err := row.Scan(
			&tax.TaxID,
			&tax.UserID,
			&tax.Name,
			&tax.RatePercent,
			&tax.CreatedAt,
			&tax.CreatedBy,
			&tax.LastUpdatedAt,
			&tax.LastUpdatedBy,
		)
		return tax, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan taxes: %w", err)
	}
	return taxes, nil
}
