package services

// ServiceContainer holds instances of all the application services. It is
// the entry point for accessing service functionality from the handlers and
// the background loops in main.
type ServiceContainer struct {
	Template      TemplateSvcFacade
	Account       AccountSvcFacade
	Transaction   TransactionSvcFacade
	PaymentMethod PaymentMethodSvcFacade
	Currency      CurrencySvcFacade
	ExchangeRate  ExchangeRateSvcFacade
	Statistics    StatisticsSvcFacade
	Materializer  MaterializerSvc
	CreditCycle   CreditCycleSvc
	Evaluator     RuleEvaluator
}
