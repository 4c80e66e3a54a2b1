package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/finflow/finflow_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TemplateRepo:      newPgxTemplateRepository(dbPool),
		TransactionRepo:   newPgxTransactionRepository(dbPool),
		RateRepo:          newPgxRateRepository(dbPool),
		CurrencyRepo:      newPgxCurrencyRepository(dbPool),
		AccountRepo:       newPgxAccountRepository(dbPool),
		PaymentMethodRepo: newPgxPaymentMethodRepository(dbPool),
		TaxRepo:           newPgxTaxRepository(dbPool),
	}
}
