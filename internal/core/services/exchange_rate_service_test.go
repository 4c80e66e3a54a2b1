package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finflow/finflow_backend/internal/apperrors"
	"github.com/finflow/finflow_backend/internal/core/domain"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
	"github.com/finflow/finflow_backend/internal/core/services"
)

type ExchangeRateServiceTestSuite struct {
	suite.Suite
	mockRateRepo *MockRateRepository
	mockSource   *MockRateSource
	service      portssvc.ExchangeRateSvcFacade
}

func (suite *ExchangeRateServiceTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockRateRepository)
	suite.mockSource = new(MockRateSource)
	suite.service = services.NewExchangeRateService(suite.mockRateRepo, suite.mockSource, "USD")
}

func (suite *ExchangeRateServiceTestSuite) TestRefreshRates_OverwritesSpotsAndSnapshotsDay() {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	fetched := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

	suite.mockSource.On("FetchLatest", ctx).Return(&domain.RatePayload{
		Timestamp:    fetched,
		BaseCurrency: "USD",
		Rates: map[string]decimal.Decimal{
			"EUR": decimal.RequireFromString("0.92"),
			"JPY": decimal.RequireFromString("149.5"),
			"BAD": decimal.RequireFromString("-3"),
		},
	}, nil).Once()

	suite.mockRateRepo.On("ReplaceRates", ctx,
		mock.MatchedBy(func(spots []domain.SpotRate) bool {
			byCode := make(map[string]domain.SpotRate, len(spots))
			for _, spot := range spots {
				if !spot.LastUpdatedAt.Equal(fetched) {
					return false
				}
				byCode[spot.CurrencyCode] = spot
			}
			// Base at 1:1, both positive source rates, negative rate dropped.
			if _, bad := byCode["BAD"]; bad || len(byCode) != 3 {
				return false
			}
			return byCode["EUR"].Rate.Equal(decimal.RequireFromString("0.92")) &&
				byCode["USD"].Rate.Equal(decimal.NewFromInt(1))
		}),
		mock.MatchedBy(func(s domain.HistoricRateSnapshot) bool {
			if !s.Date.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)) {
				return false
			}
			if _, bad := s.Rates["BAD"]; bad {
				return false
			}
			return len(s.Rates) == 3 && s.Rates["USD"].Equal(decimal.NewFromInt(1))
		}),
	).Return(nil).Once()

	err := suite.service.RefreshRates(ctx, now)

	suite.Require().NoError(err)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestRefreshRates_RejectsForeignBase() {
	ctx := context.Background()
	suite.mockSource.On("FetchLatest", ctx).Return(&domain.RatePayload{
		BaseCurrency: "EUR",
		Rates:        map[string]decimal.Decimal{"USD": decimal.NewFromInt(1)},
	}, nil).Once()

	err := suite.service.RefreshRates(ctx, time.Now().UTC())

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "ReplaceRates", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestGetSpotRate_NormalizesCode() {
	ctx := context.Background()
	expected := &domain.SpotRate{CurrencyCode: "EUR", Rate: decimal.RequireFromString("0.92")}
	suite.mockRateRepo.On("FindSpotRate", ctx, "EUR").Return(expected, nil).Once()

	rate, err := suite.service.GetSpotRate(ctx, "eur")

	suite.Require().NoError(err)
	suite.Equal(expected, rate)
}

func (suite *ExchangeRateServiceTestSuite) TestGetSpotRate_RejectsMalformedCode() {
	_, err := suite.service.GetSpotRate(context.Background(), "EURO")

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExchangeRateServiceTestSuite) TestListSpotRates_NilBecomesEmptySlice() {
	ctx := context.Background()
	suite.mockRateRepo.On("ListSpotRates", ctx).Return(nil, nil).Once()

	rates, err := suite.service.ListSpotRates(ctx)

	suite.Require().NoError(err)
	suite.NotNil(rates)
	suite.Empty(rates)
}

func (suite *ExchangeRateServiceTestSuite) TestGetSnapshot_TruncatesToDay() {
	ctx := context.Background()
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	expected := &domain.HistoricRateSnapshot{Date: day}
	suite.mockRateRepo.On("FindSnapshotByDate", ctx, day).Return(expected, nil).Once()

	snapshot, err := suite.service.GetSnapshot(ctx, time.Date(2024, 3, 10, 18, 45, 0, 0, time.UTC))

	suite.Require().NoError(err)
	suite.Equal(expected, snapshot)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func TestExchangeRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}
