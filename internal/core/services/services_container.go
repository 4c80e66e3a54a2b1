package services

import (
	portsrepo "github.com/finflow/finflow_backend/internal/core/ports/repositories"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
)

// NewServiceContainer wires all services with their repository and
// capability dependencies.
func NewServiceContainer(
	repos portsrepo.RepositoryProvider,
	rateSource portssvc.RateSource,
	baseCurrency string,
	materializerOptions ...MaterializerOption,
) *portssvc.ServiceContainer {
	evaluator := NewRuleEvaluator()
	creditCycle := NewCreditCycleService(evaluator)

	return &portssvc.ServiceContainer{
		Template:      NewTemplateService(repos.TemplateRepo, repos.CurrencyRepo, evaluator),
		Account:       NewAccountService(repos.AccountRepo, repos.CurrencyRepo),
		Transaction:   NewTransactionService(repos.TransactionRepo),
		PaymentMethod: NewPaymentMethodService(repos.PaymentMethodRepo, repos.AccountRepo, creditCycle, evaluator),
		Currency:      NewCurrencyService(repos.CurrencyRepo),
		ExchangeRate:  NewExchangeRateService(repos.RateRepo, rateSource, baseCurrency),
		Statistics:    NewStatisticsService(repos.TransactionRepo, repos.RateRepo, repos.TaxRepo),
		Materializer: NewMaterializerService(
			repos.TemplateRepo,
			repos.TransactionRepo,
			repos.RateRepo,
			repos.AccountRepo,
			repos.PaymentMethodRepo,
			evaluator,
			materializerOptions...,
		),
		CreditCycle: creditCycle,
		Evaluator:   evaluator,
	}
}
