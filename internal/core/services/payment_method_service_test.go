package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finflow/finflow_backend/internal/apperrors"
	"github.com/finflow/finflow_backend/internal/core/domain"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
	"github.com/finflow/finflow_backend/internal/core/services"
	"github.com/finflow/finflow_backend/internal/dto"
)

type PaymentMethodServiceTestSuite struct {
	suite.Suite
	mockMethodRepo  *MockPaymentMethodRepository
	mockAccountRepo *MockAccountRepository
	service         portssvc.PaymentMethodSvcFacade

	userID string
	now    time.Time
}

func (suite *PaymentMethodServiceTestSuite) SetupTest() {
	suite.mockMethodRepo = new(MockPaymentMethodRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	evaluator := services.NewRuleEvaluator()
	suite.service = services.NewPaymentMethodService(
		suite.mockMethodRepo,
		suite.mockAccountRepo,
		services.NewCreditCycleService(evaluator),
		evaluator,
	)
	suite.userID = uuid.NewString()
	suite.now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
}

func (suite *PaymentMethodServiceTestSuite) expectAccountExists(accountID string) {
	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, accountID).
		Return(&domain.Account{AccountID: accountID, CurrencyCode: "USD"}, nil)
}

func (suite *PaymentMethodServiceTestSuite) TestCreatePaymentMethod_CreditCachesCycleWindow() {
	ctx := context.Background()
	suite.expectAccountExists("acc-1")
	suite.mockMethodRepo.On("SavePaymentMethod", ctx, mock.MatchedBy(func(m domain.PaymentMethod) bool {
		return m.NextDue != nil && m.NextClosing != nil &&
			m.NextDue.UTC().Equal(time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)) &&
			m.NextClosing.UTC().Equal(time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC))
	})).Return(nil).Once()

	method, err := suite.service.CreatePaymentMethod(ctx, dto.CreatePaymentMethodRequest{
		Name:              "Visa",
		Kind:              domain.PaymentMethodCredit,
		AccountID:         "acc-1",
		CreditClosingRule: monthlyClosingFifth,
		CreditDueRule:     monthlyDueTwentieth,
	}, suite.userID, suite.now)

	suite.Require().NoError(err)
	suite.Require().NotNil(method.NextDue)
	suite.Require().NotNil(method.LastDue)
	suite.Equal(time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), method.LastDue.UTC())
	suite.mockMethodRepo.AssertExpectations(suite.T())
}

func (suite *PaymentMethodServiceTestSuite) TestCreatePaymentMethod_NonCreditStaysWithoutWindow() {
	ctx := context.Background()
	suite.expectAccountExists("acc-1")
	suite.mockMethodRepo.On("SavePaymentMethod", ctx, mock.AnythingOfType("domain.PaymentMethod")).
		Return(nil).Once()

	method, err := suite.service.CreatePaymentMethod(ctx, dto.CreatePaymentMethodRequest{
		Name:      "Wallet",
		Kind:      domain.PaymentMethodCash,
		AccountID: "acc-1",
	}, suite.userID, suite.now)

	suite.Require().NoError(err)
	suite.Nil(method.NextDue)
	suite.Nil(method.NextClosing)
}

func (suite *PaymentMethodServiceTestSuite) TestCreatePaymentMethod_CreditNeedsBothRules() {
	ctx := context.Background()
	suite.expectAccountExists("acc-1")

	_, err := suite.service.CreatePaymentMethod(ctx, dto.CreatePaymentMethodRequest{
		Name:          "Visa",
		Kind:          domain.PaymentMethodCredit,
		AccountID:     "acc-1",
		CreditDueRule: monthlyDueTwentieth,
	}, suite.userID, suite.now)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockMethodRepo.AssertNotCalled(suite.T(), "SavePaymentMethod", mock.Anything, mock.Anything)
}

func (suite *PaymentMethodServiceTestSuite) TestCreatePaymentMethod_RejectsUnparseableRule() {
	ctx := context.Background()
	suite.expectAccountExists("acc-1")

	_, err := suite.service.CreatePaymentMethod(ctx, dto.CreatePaymentMethodRequest{
		Name:              "Visa",
		Kind:              domain.PaymentMethodCredit,
		AccountID:         "acc-1",
		CreditClosingRule: "FREQ=SOMETIMES",
		CreditDueRule:     monthlyDueTwentieth,
	}, suite.userID, suite.now)

	suite.ErrorIs(err, apperrors.ErrInvalidRule)
}

func (suite *PaymentMethodServiceTestSuite) TestCreatePaymentMethod_RejectsUnknownAccount() {
	ctx := context.Background()
	suite.mockAccountRepo.On("FindAccountByID", ctx, "missing").
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CreatePaymentMethod(ctx, dto.CreatePaymentMethodRequest{
		Name:      "Visa",
		Kind:      domain.PaymentMethodDebit,
		AccountID: "missing",
	}, suite.userID, suite.now)

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *PaymentMethodServiceTestSuite) TestUpdatePaymentMethod_RecomputesWindowWholesale() {
	ctx := context.Background()
	staleDue := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	existing := &domain.PaymentMethod{
		PaymentMethodID:   "pm-1",
		UserID:            suite.userID,
		Name:              "Visa",
		Kind:              domain.PaymentMethodCredit,
		AccountID:         "acc-1",
		CreditClosingRule: monthlyClosingFifth,
		CreditDueRule:     monthlyDueTwentieth,
		CreditCycleState:  domain.CreditCycleState{NextDue: &staleDue},
		IsActive:          true,
	}
	suite.mockMethodRepo.On("FindPaymentMethodByID", ctx, "pm-1").Return(existing, nil).Once()
	suite.mockMethodRepo.On("UpdatePaymentMethod", ctx, mock.MatchedBy(func(m domain.PaymentMethod) bool {
		return m.NextDue != nil && m.NextDue.UTC().Equal(time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC))
	})).Return(nil).Once()

	name := "Visa Gold"
	method, err := suite.service.UpdatePaymentMethod(ctx, "pm-1",
		dto.UpdatePaymentMethodRequest{Name: &name}, suite.userID, suite.now)

	suite.Require().NoError(err)
	suite.Equal("Visa Gold", method.Name)
	suite.Require().NotNil(method.NextDue)
	suite.Equal(time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), method.NextDue.UTC())
	suite.mockMethodRepo.AssertExpectations(suite.T())
}

func (suite *PaymentMethodServiceTestSuite) TestGetPaymentMethod_OtherUsersHiddenBehindNotFound() {
	ctx := context.Background()
	existing := &domain.PaymentMethod{PaymentMethodID: "pm-1", UserID: "someone-else"}
	suite.mockMethodRepo.On("FindPaymentMethodByID", ctx, "pm-1").Return(existing, nil).Once()

	_, err := suite.service.GetPaymentMethod(ctx, "pm-1", suite.userID)

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestPaymentMethodServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentMethodServiceTestSuite))
}
