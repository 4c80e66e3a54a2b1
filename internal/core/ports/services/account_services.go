package services

import (
	"context"
	"time"

	"github.com/finflow/finflow_backend/internal/core/domain"
	"github.com/finflow/finflow_backend/internal/dto"
)

// AccountSvcFacade defines operations for managing accounts. Account
// currencies decide the target side of materialized conversion snapshots,
// so they are validated against known currencies on every write.
type AccountSvcFacade interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string, now time.Time) (*domain.Account, error)
	GetAccount(ctx context.Context, accountID, userID string) (*domain.Account, error)
	ListAccounts(ctx context.Context, userID string) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string, now time.Time) (*domain.Account, error)
}
