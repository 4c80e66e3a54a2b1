package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finflow/finflow_backend/internal/apperrors"
	"github.com/finflow/finflow_backend/internal/core/domain"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
	"github.com/finflow/finflow_backend/internal/core/services"
	"github.com/finflow/finflow_backend/internal/dto"
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo  *MockAccountRepository
	mockCurrencyRepo *MockCurrencyRepository
	service          portssvc.AccountSvcFacade
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.service = services.NewAccountService(suite.mockAccountRepo, suite.mockCurrencyRepo)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "EUR").
		Return(&domain.Currency{CurrencyCode: "EUR"}, nil).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.UserID == userID &&
			a.Name == "Checking" &&
			a.CurrencyCode == "EUR" &&
			a.IsActive &&
			a.CreatedAt.Equal(now)
	})).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, dto.CreateAccountRequest{
		Name:         "Checking",
		CurrencyCode: "eur",
		Balance:      decimal.NewFromInt(100),
	}, userID, now)

	suite.Require().NoError(err)
	suite.NotEmpty(account.AccountID)
	suite.Equal("EUR", account.CurrencyCode)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_UnknownCurrencyRejected() {
	ctx := context.Background()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "XXX").
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CreateAccount(ctx, dto.CreateAccountRequest{
		Name:         "Checking",
		CurrencyCode: "xxx",
	}, uuid.NewString(), time.Now().UTC())

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_NegativeBalanceRejected() {
	ctx := context.Background()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "EUR").
		Return(&domain.Currency{CurrencyCode: "EUR"}, nil).Once()

	_, err := suite.service.CreateAccount(ctx, dto.CreateAccountRequest{
		Name:         "Checking",
		CurrencyCode: "EUR",
		Balance:      decimal.NewFromInt(-5),
	}, uuid.NewString(), time.Now().UTC())

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestGetAccount_OtherUsersAccountHidden() {
	ctx := context.Background()
	accountID := uuid.NewString()
	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).
		Return(&domain.Account{AccountID: accountID, UserID: uuid.NewString()}, nil).Once()

	_, err := suite.service.GetAccount(ctx, accountID, uuid.NewString())

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_PartialApply() {
	ctx := context.Background()
	userID := uuid.NewString()
	accountID := uuid.NewString()
	now := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	existing := &domain.Account{
		AccountID:    accountID,
		UserID:       userID,
		Name:         "Checking",
		CurrencyCode: "EUR",
		Balance:      decimal.NewFromInt(100),
		IsActive:     true,
	}
	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(existing, nil).Once()
	suite.mockAccountRepo.On("UpdateAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Name == "Savings" &&
			a.CurrencyCode == "EUR" &&
			a.Balance.Equal(decimal.NewFromInt(100)) &&
			a.LastUpdatedAt.Equal(now)
	})).Return(nil).Once()

	newName := "Savings"
	account, err := suite.service.UpdateAccount(ctx, accountID, dto.UpdateAccountRequest{
		Name: &newName,
	}, userID, now)

	suite.Require().NoError(err)
	suite.Equal("Savings", account.Name)
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockCurrencyRepo.AssertNotCalled(suite.T(), "FindCurrencyByCode", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_CurrencyChangeRevalidated() {
	ctx := context.Background()
	userID := uuid.NewString()
	accountID := uuid.NewString()
	existing := &domain.Account{AccountID: accountID, UserID: userID, CurrencyCode: "EUR"}
	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(existing, nil).Once()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "XXX").
		Return(nil, apperrors.ErrNotFound).Once()

	badCode := "xxx"
	_, err := suite.service.UpdateAccount(ctx, accountID, dto.UpdateAccountRequest{
		CurrencyCode: &badCode,
	}, userID, time.Now().UTC())

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestListAccounts_NilBecomesEmptySlice() {
	ctx := context.Background()
	userID := uuid.NewString()
	suite.mockAccountRepo.On("ListAccountsByUser", ctx, userID).Return(nil, nil).Once()

	accounts, err := suite.service.ListAccounts(ctx, userID)

	suite.Require().NoError(err)
	suite.NotNil(accounts)
	suite.Empty(accounts)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
