package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/finflow/finflow_backend/internal/apperrors"
	"github.com/finflow/finflow_backend/internal/core/domain"
	portsrepo "github.com/finflow/finflow_backend/internal/core/ports/repositories"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
	"github.com/finflow/finflow_backend/internal/dto"
	"github.com/google/uuid"
)

// accountService implements the AccountSvcFacade interface.
type accountService struct {
	BaseService
	accountRepo  portsrepo.AccountRepositoryFacade
	currencyRepo portsrepo.CurrencyReader
}

// NewAccountService creates a new account service.
func NewAccountService(
	accountRepo portsrepo.AccountRepositoryFacade,
	currencyRepo portsrepo.CurrencyReader,
) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo:  accountRepo,
		currencyRepo: currencyRepo,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount validates the account currency and persists a new account.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string, now time.Time) (*domain.Account, error) {
	currencyCode := strings.ToUpper(req.CurrencyCode)
	if err := s.validateCurrency(ctx, currencyCode); err != nil {
		return nil, err
	}
	if req.Balance.IsNegative() {
		return nil, apperrors.NewValidationError("account balance must not be negative")
	}

	account := domain.Account{
		AccountID:    uuid.NewString(),
		UserID:       userID,
		Name:         req.Name,
		CurrencyCode: currencyCode,
		Balance:      req.Balance,
		IsActive:     true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return &account, nil
}

// GetAccount retrieves one of the user's accounts.
func (s *accountService) GetAccount(ctx context.Context, accountID, userID string) (*domain.Account, error) {
	return s.findOwned(ctx, accountID, userID)
}

// ListAccounts retrieves all of the user's accounts.
func (s *accountService) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

// UpdateAccount applies a partial update to an account.
func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string, now time.Time) (*domain.Account, error) {
	account, err := s.findOwned(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.CurrencyCode != nil {
		currencyCode := strings.ToUpper(*req.CurrencyCode)
		if err := s.validateCurrency(ctx, currencyCode); err != nil {
			return nil, err
		}
		account.CurrencyCode = currencyCode
	}
	if req.Balance != nil {
		if req.Balance.IsNegative() {
			return nil, apperrors.NewValidationError("account balance must not be negative")
		}
		account.Balance = *req.Balance
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}

	account.LastUpdatedAt = now
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

func (s *accountService) validateCurrency(ctx context.Context, currencyCode string) error {
	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationError(fmt.Sprintf("currency '%s' does not exist", currencyCode))
		}
		return fmt.Errorf("failed to validate currency '%s': %w", currencyCode, err)
	}
	return nil
}

func (s *accountService) findOwned(ctx context.Context, accountID, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account.UserID != userID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", accountID))
	}
	return account, nil
}
