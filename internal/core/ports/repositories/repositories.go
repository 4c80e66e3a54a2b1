package repositories

// RepositoryProvider bundles all repository implementations for injection
// into the service container.
type RepositoryProvider struct {
	TemplateRepo      TemplateRepositoryFacade
	TransactionRepo   TransactionRepositoryFacade
	RateRepo          RateRepositoryFacade
	CurrencyRepo      CurrencyRepositoryFacade
	AccountRepo       AccountRepositoryFacade
	PaymentMethodRepo PaymentMethodRepositoryFacade
	TaxRepo           TaxReader
}
