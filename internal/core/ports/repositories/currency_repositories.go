package repositories

import (
	"context"

	"github.com/finflow/finflow_backend/internal/core/domain"
)

// CurrencyReader defines read operations for currency data.
type CurrencyReader interface {
	FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// CurrencyWriter defines write operations for currency data.
type CurrencyWriter interface {
	SaveCurrency(ctx context.Context, currency domain.Currency) error
}

// CurrencyRepositoryFacade combines all currency repository interfaces.
type CurrencyRepositoryFacade interface {
	CurrencyReader
	CurrencyWriter
}
