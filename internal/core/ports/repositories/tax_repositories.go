package repositories

import (
	"context"

	"github.com/finflow/finflow_backend/internal/core/domain"
)

// TaxReader defines read operations for taxes. Only reads are needed here;
// tax CRUD lives outside the engine.
type TaxReader interface {
	// FindTaxesByIDs retrieves the taxes for the given IDs. Unknown IDs are
	// silently omitted from the result.
	FindTaxesByIDs(ctx context.Context, taxIDs []string) ([]domain.Tax, error)
}
