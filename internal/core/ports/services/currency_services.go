package services

import (
	"context"

	"github.com/finflow/finflow_backend/internal/core/domain"
	"github.com/finflow/finflow_backend/internal/dto"
)

// CurrencyReaderSvc defines read operations for currency data.
type CurrencyReaderSvc interface {
	// GetCurrencyByCode retrieves a specific currency by its code.
	GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies retrieves all available currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// CurrencyWriterSvc defines write operations for currency data.
type CurrencyWriterSvc interface {
	// CreateCurrency persists a new currency.
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error)
}

// CurrencySvcFacade combines all currency-related service interfaces.
type CurrencySvcFacade interface {
	CurrencyReaderSvc
	CurrencyWriterSvc
}
