package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/finflow/finflow_backend/internal/apperrors"
	"github.com/finflow/finflow_backend/internal/core/domain"
	portsrepo "github.com/finflow/finflow_backend/internal/core/ports/repositories"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
	"github.com/finflow/finflow_backend/internal/dto"
)

// currencyService implements the CurrencySvcFacade interface.
type currencyService struct {
	BaseService
	currencyRepo portsrepo.CurrencyRepositoryFacade
}

// NewCurrencyService creates a new currency service.
func NewCurrencyService(currencyRepo portsrepo.CurrencyRepositoryFacade) portssvc.CurrencySvcFacade {
	return &currencyService{currencyRepo: currencyRepo}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

func (s *currencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	now := time.Now()

	currency := domain.Currency{
		CurrencyCode: strings.ToUpper(req.CurrencyCode),
		Symbol:       req.Symbol,
		Name:         req.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
		return nil, fmt.Errorf("failed to create currency: %w", err)
	}
	return &currency, nil
}

func (s *currencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	currencyCode = strings.ToUpper(currencyCode)
	if len(currencyCode) != 3 {
		return nil, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get currency by code: %w", err)
	}
	return currency, nil
}

func (s *currencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	if currencies == nil {
		return []domain.Currency{}, nil
	}
	return currencies, nil
}
