package repositories

import (
	"context"
	"time"

	"github.com/finflow/finflow_backend/internal/core/domain"
)

// TransactionReader defines read operations for concrete transactions.
type TransactionReader interface {
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByDateRange retrieves a user's transactions whose
	// effective date falls in [from, to], ordered by date ascending.
	ListTransactionsByDateRange(ctx context.Context, userID string, from, to time.Time) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for concrete transactions.
type TransactionWriter interface {
	SaveTransaction(ctx context.Context, txn domain.Transaction) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
