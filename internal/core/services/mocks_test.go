package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/finflow/finflow_backend/internal/core/domain"
)

// Shared repository mocks for the service test suites.

// --- Mock TemplateRepository ---
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) FindTemplateByID(ctx context.Context, templateID string) (*domain.RecurringTemplate, error) {
	args := m.Called(ctx, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringTemplate), args.Error(1)
}

func (m *MockTemplateRepository) ListTemplates(ctx context.Context, userID string, limit int, afterCreatedAt time.Time) ([]domain.RecurringTemplate, error) {
	args := m.Called(ctx, userID, limit, afterCreatedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecurringTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindDueTemplates(ctx context.Context, now time.Time) ([]domain.RecurringTemplate, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecurringTemplate), args.Error(1)
}

func (m *MockTemplateRepository) SaveTemplate(ctx context.Context, template domain.RecurringTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) UpdateTemplate(ctx context.Context, template domain.RecurringTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) UpdateTemplateCursor(ctx context.Context, templateID string, lastOccurrence, nextOccurrence *time.Time) error {
	args := m.Called(ctx, templateID, lastOccurrence, nextOccurrence)
	return args.Error(0)
}

func (m *MockTemplateRepository) DeactivateTemplate(ctx context.Context, templateID string, deactivatedBy string, at time.Time) error {
	args := m.Called(ctx, templateID, deactivatedBy, at)
	return args.Error(0)
}

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactionsByDateRange(ctx context.Context, userID string, from, to time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

// --- Mock RateRepository ---
type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) FindSpotRate(ctx context.Context, currencyCode string) (*domain.SpotRate, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SpotRate), args.Error(1)
}

func (m *MockRateRepository) ListSpotRates(ctx context.Context) ([]domain.SpotRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SpotRate), args.Error(1)
}

func (m *MockRateRepository) ReplaceRates(ctx context.Context, spots []domain.SpotRate, snapshot domain.HistoricRateSnapshot) error {
	args := m.Called(ctx, spots, snapshot)
	return args.Error(0)
}

func (m *MockRateRepository) FindSnapshotByDate(ctx context.Context, date time.Time) (*domain.HistoricRateSnapshot, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HistoricRateSnapshot), args.Error(1)
}

func (m *MockRateRepository) ListSnapshotsByRange(ctx context.Context, from, to time.Time) ([]domain.HistoricRateSnapshot, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoricRateSnapshot), args.Error(1)
}

// --- Mock CurrencyRepository ---
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccountsByUser(ctx context.Context, userID string) ([]domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// --- Mock PaymentMethodRepository ---
type MockPaymentMethodRepository struct {
	mock.Mock
}

func (m *MockPaymentMethodRepository) FindPaymentMethodByID(ctx context.Context, paymentMethodID string) (*domain.PaymentMethod, error) {
	args := m.Called(ctx, paymentMethodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentMethod), args.Error(1)
}

func (m *MockPaymentMethodRepository) ListPaymentMethodsByUser(ctx context.Context, userID string) ([]domain.PaymentMethod, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentMethod), args.Error(1)
}

func (m *MockPaymentMethodRepository) SavePaymentMethod(ctx context.Context, method domain.PaymentMethod) error {
	args := m.Called(ctx, method)
	return args.Error(0)
}

func (m *MockPaymentMethodRepository) UpdatePaymentMethod(ctx context.Context, method domain.PaymentMethod) error {
	args := m.Called(ctx, method)
	return args.Error(0)
}

// --- Mock TaxRepository ---
type MockTaxRepository struct {
	mock.Mock
}

func (m *MockTaxRepository) FindTaxesByIDs(ctx context.Context, taxIDs []string) ([]domain.Tax, error) {
	args := m.Called(ctx, taxIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Tax), args.Error(1)
}

// --- Mock RateSource ---
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) FetchLatest(ctx context.Context) (*domain.RatePayload, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatePayload), args.Error(1)
}
