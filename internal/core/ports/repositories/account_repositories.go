package repositories

import (
	"context"

	"github.com/finflow/finflow_backend/internal/core/domain"
)

// AccountReader defines read operations for accounts.
type AccountReader interface {
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	ListAccountsByUser(ctx context.Context, userID string) ([]domain.Account, error)
}

// AccountWriter defines write operations for accounts.
type AccountWriter interface {
	SaveAccount(ctx context.Context, account domain.Account) error
	UpdateAccount(ctx context.Context, account domain.Account) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
