package services

import (
	"context"
	"fmt"
	"time"

	"github.com/finflow/finflow_backend/internal/apperrors"
	"github.com/finflow/finflow_backend/internal/core/domain"
	portsrepo "github.com/finflow/finflow_backend/internal/core/ports/repositories"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
)

// transactionService implements the TransactionSvcFacade interface.
type transactionService struct {
	BaseService
	txnRepo portsrepo.TransactionReader
}

// NewTransactionService creates a new transaction read service.
func NewTransactionService(txnRepo portsrepo.TransactionReader) portssvc.TransactionSvcFacade {
	return &transactionService{txnRepo: txnRepo}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// GetTransaction retrieves one of the user's transactions.
func (s *transactionService) GetTransaction(ctx context.Context, transactionID, userID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if txn.UserID != userID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("transaction %s not found", transactionID))
	}
	return txn, nil
}

// ListTransactions retrieves the user's transactions in a date range.
func (s *transactionService) ListTransactions(ctx context.Context, userID string, from, to time.Time) ([]domain.Transaction, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end before range start", apperrors.ErrValidation)
	}
	txns, err := s.txnRepo.ListTransactionsByDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if txns == nil {
		return []domain.Transaction{}, nil
	}
	return txns, nil
}
