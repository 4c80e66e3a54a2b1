package services

import (
	"context"
	"time"

	"github.com/finflow/finflow_backend/internal/core/domain"
)

// TransactionSvcFacade defines read operations over concrete transactions.
// Transactions are written by the materializer; this surface only exposes
// what it produced.
type TransactionSvcFacade interface {
	GetTransaction(ctx context.Context, transactionID, userID string) (*domain.Transaction, error)

	// ListTransactions retrieves the user's transactions with effective
	// date in [from, to], ordered by date ascending.
	ListTransactions(ctx context.Context, userID string, from, to time.Time) ([]domain.Transaction, error)
}
