package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finflow/finflow_backend/internal/apperrors"
	"github.com/finflow/finflow_backend/internal/core/domain"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
	"github.com/finflow/finflow_backend/internal/core/services"
	"github.com/finflow/finflow_backend/internal/dto"
)

type CurrencyServiceTestSuite struct {
	suite.Suite
	mockCurrencyRepo *MockCurrencyRepository
	service          portssvc.CurrencySvcFacade
}

func (suite *CurrencyServiceTestSuite) SetupTest() {
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.service = services.NewCurrencyService(suite.mockCurrencyRepo)
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_Success() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	suite.mockCurrencyRepo.On("SaveCurrency", ctx, mock.MatchedBy(func(c domain.Currency) bool {
		return c.CurrencyCode == "EUR" && c.CreatedBy == creatorUserID
	})).Return(nil).Once()

	currency, err := suite.service.CreateCurrency(ctx, dto.CreateCurrencyRequest{
		CurrencyCode: "eur",
		Symbol:       "€",
		Name:         "Euro",
	}, creatorUserID)

	suite.Require().NoError(err)
	suite.Equal("EUR", currency.CurrencyCode)
	suite.mockCurrencyRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_SaveError() {
	ctx := context.Background()
	dbErr := errors.New("db error")
	suite.mockCurrencyRepo.On("SaveCurrency", ctx, mock.AnythingOfType("domain.Currency")).
		Return(dbErr).Once()

	currency, err := suite.service.CreateCurrency(ctx, dto.CreateCurrencyRequest{
		CurrencyCode: "EUR", Symbol: "€", Name: "Euro",
	}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(currency)
	suite.ErrorIs(err, dbErr)
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_DuplicateCodeSurfaces() {
	ctx := context.Background()
	suite.mockCurrencyRepo.On("SaveCurrency", ctx, mock.AnythingOfType("domain.Currency")).
		Return(fmt.Errorf("%w: currency EUR", apperrors.ErrDuplicate)).Once()

	_, err := suite.service.CreateCurrency(ctx, dto.CreateCurrencyRequest{
		CurrencyCode: "EUR", Symbol: "€", Name: "Euro",
	}, uuid.NewString())

	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *CurrencyServiceTestSuite) TestGetCurrencyByCode_Success() {
	ctx := context.Background()
	expected := &domain.Currency{CurrencyCode: "EUR", Symbol: "€", Name: "Euro"}
	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "EUR").Return(expected, nil).Once()

	currency, err := suite.service.GetCurrencyByCode(ctx, "eur")

	suite.Require().NoError(err)
	suite.Equal(expected, currency)
}

func (suite *CurrencyServiceTestSuite) TestGetCurrencyByCode_RejectsMalformedCode() {
	_, err := suite.service.GetCurrencyByCode(context.Background(), "EURO")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockCurrencyRepo.AssertNotCalled(suite.T(), "FindCurrencyByCode", mock.Anything, mock.Anything)
}

func (suite *CurrencyServiceTestSuite) TestGetCurrencyByCode_NotFound() {
	ctx := context.Background()
	suite.mockCurrencyRepo.On("FindCurrencyByCode", ctx, "XXX").
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetCurrencyByCode(ctx, "XXX")

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *CurrencyServiceTestSuite) TestListCurrencies_NilBecomesEmptySlice() {
	ctx := context.Background()
	suite.mockCurrencyRepo.On("ListCurrencies", ctx).Return(nil, nil).Once()

	currencies, err := suite.service.ListCurrencies(ctx)

	suite.Require().NoError(err)
	suite.NotNil(currencies)
	suite.Empty(currencies)
}

func TestCurrencyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CurrencyServiceTestSuite))
}
