package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finflow/finflow_backend/internal/apperrors"
	"github.com/finflow/finflow_backend/internal/core/domain"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
	"github.com/finflow/finflow_backend/internal/core/services"
)

type MaterializerServiceTestSuite struct {
	suite.Suite
	mockTemplateRepo      *MockTemplateRepository
	mockTxnRepo           *MockTransactionRepository
	mockRateRepo          *MockRateRepository
	mockAccountRepo       *MockAccountRepository
	mockPaymentMethodRepo *MockPaymentMethodRepository
	service               portssvc.MaterializerSvc
}

func (suite *MaterializerServiceTestSuite) SetupTest() {
	suite.mockTemplateRepo = new(MockTemplateRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockRateRepo = new(MockRateRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockPaymentMethodRepo = new(MockPaymentMethodRepository)
	suite.service = services.NewMaterializerService(
		suite.mockTemplateRepo,
		suite.mockTxnRepo,
		suite.mockRateRepo,
		suite.mockAccountRepo,
		suite.mockPaymentMethodRepo,
		services.NewRuleEvaluator(),
	)
}

func (suite *MaterializerServiceTestSuite) newDailyTemplate(next time.Time) domain.RecurringTemplate {
	return domain.RecurringTemplate{
		TemplateID:     uuid.NewString(),
		UserID:         uuid.NewString(),
		Kind:           domain.FlowExpense,
		Description:    "Streaming subscription",
		Amount:         decimal.NewFromInt(10),
		CurrencyCode:   "USD",
		RecurrenceRule: dailyNineAM,
		NextOccurrence: &next,
		IsActive:       true,
	}
}

func (suite *MaterializerServiceTestSuite) TestRunOnce_SingleDueOccurrence() {
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	occurrence := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	template := suite.newDailyTemplate(occurrence)

	suite.mockTemplateRepo.On("FindDueTemplates", ctx, now).
		Return([]domain.RecurringTemplate{template}, nil).Once()
	suite.mockRateRepo.On("FindSpotRate", ctx, "USD").
		Return(&domain.SpotRate{CurrencyCode: "USD", Rate: decimal.NewFromInt(1)}, nil)
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.TemplateID == template.TemplateID &&
			txn.Date.Equal(occurrence) &&
			txn.Amount.Equal(template.Amount) &&
			txn.CreatedAt.Equal(now)
	})).Return(nil).Once()

	expectedNext := time.Date(2024, 1, 11, 9, 0, 0, 0, time.UTC)
	suite.mockTemplateRepo.On("UpdateTemplateCursor", ctx, template.TemplateID,
		mock.MatchedBy(func(last *time.Time) bool { return last != nil && last.Equal(occurrence) }),
		mock.MatchedBy(func(next *time.Time) bool { return next != nil && next.UTC().Equal(expectedNext) }),
	).Return(nil).Once()

	created, err := suite.service.RunOnce(ctx, now)

	suite.Require().NoError(err)
	suite.Equal(1, created)
	suite.mockTemplateRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *MaterializerServiceTestSuite) TestRunOnce_CatchesUpMissedOccurrences() {
	// Three daily occurrences elapsed while the process was down; one pass
	// creates all three, each dated at its own occurrence instant.
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	firstMissed := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	template := suite.newDailyTemplate(firstMissed)

	suite.mockTemplateRepo.On("FindDueTemplates", ctx, now).
		Return([]domain.RecurringTemplate{template}, nil).Once()
	suite.mockRateRepo.On("FindSpotRate", ctx, "USD").
		Return(&domain.SpotRate{CurrencyCode: "USD", Rate: decimal.NewFromInt(1)}, nil)

	var savedDates []time.Time
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Run(func(args mock.Arguments) {
			savedDates = append(savedDates, args.Get(1).(domain.Transaction).Date.UTC())
		}).Return(nil).Times(3)
	suite.mockTemplateRepo.On("UpdateTemplateCursor", ctx, template.TemplateID, mock.Anything, mock.Anything).
		Return(nil).Times(3)

	created, err := suite.service.RunOnce(ctx, now)

	suite.Require().NoError(err)
	suite.Equal(3, created)
	suite.Equal([]time.Time{
		time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 9, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
	}, savedDates)
	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockTemplateRepo.AssertExpectations(suite.T())
}

func (suite *MaterializerServiceTestSuite) TestRunOnce_MissingRateDefaultsToOne() {
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	occurrence := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	template := suite.newDailyTemplate(occurrence)
	template.CurrencyCode = "XXX"

	suite.mockTemplateRepo.On("FindDueTemplates", ctx, now).
		Return([]domain.RecurringTemplate{template}, nil).Once()
	suite.mockRateRepo.On("FindSpotRate", ctx, "XXX").
		Return(nil, apperrors.ErrNotFound)
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.SourceRate.Equal(decimal.NewFromInt(1)) && txn.TargetRate.Equal(decimal.NewFromInt(1))
	})).Return(nil).Once()
	suite.mockTemplateRepo.On("UpdateTemplateCursor", ctx, template.TemplateID, mock.Anything, mock.Anything).
		Return(nil).Once()

	created, err := suite.service.RunOnce(ctx, now)

	suite.Require().NoError(err)
	suite.Equal(1, created)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *MaterializerServiceTestSuite) TestRunOnce_SaveFailureLeavesCursorUntouched() {
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	occurrence := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	template := suite.newDailyTemplate(occurrence)

	suite.mockTemplateRepo.On("FindDueTemplates", ctx, now).
		Return([]domain.RecurringTemplate{template}, nil).Once()
	suite.mockRateRepo.On("FindSpotRate", ctx, "USD").
		Return(&domain.SpotRate{CurrencyCode: "USD", Rate: decimal.NewFromInt(1)}, nil)
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Return(assert.AnError).Once()

	created, err := suite.service.RunOnce(ctx, now)

	suite.Require().NoError(err)
	suite.Equal(0, created)
	suite.mockTemplateRepo.AssertNotCalled(suite.T(), "UpdateTemplateCursor",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MaterializerServiceTestSuite) TestRunOnce_FailureIsolatedPerTemplate() {
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	occurrence := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	broken := suite.newDailyTemplate(occurrence)
	healthy := suite.newDailyTemplate(occurrence)

	suite.mockTemplateRepo.On("FindDueTemplates", ctx, now).
		Return([]domain.RecurringTemplate{broken, healthy}, nil).Once()
	suite.mockRateRepo.On("FindSpotRate", ctx, "USD").
		Return(&domain.SpotRate{CurrencyCode: "USD", Rate: decimal.NewFromInt(1)}, nil)
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.TemplateID == broken.TemplateID
	})).Return(assert.AnError).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.TemplateID == healthy.TemplateID
	})).Return(nil).Once()
	suite.mockTemplateRepo.On("UpdateTemplateCursor", ctx, healthy.TemplateID, mock.Anything, mock.Anything).
		Return(nil).Once()

	created, err := suite.service.RunOnce(ctx, now)

	suite.Require().NoError(err)
	suite.Equal(1, created)
	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockTemplateRepo.AssertExpectations(suite.T())
}

func (suite *MaterializerServiceTestSuite) TestRunOnce_ExhaustedRuleParksCursor() {
	// The last COUNT-bounded occurrence materializes, then the cursor's next
	// occurrence becomes nil and the template drops out of future scans.
	ctx := context.Background()
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	lastOccurrence := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	template := suite.newDailyTemplate(lastOccurrence)
	template.RecurrenceRule = "DTSTART:20240101T090000Z\nRRULE:FREQ=DAILY;COUNT=5"

	suite.mockTemplateRepo.On("FindDueTemplates", ctx, now).
		Return([]domain.RecurringTemplate{template}, nil).Once()
	suite.mockRateRepo.On("FindSpotRate", ctx, "USD").
		Return(&domain.SpotRate{CurrencyCode: "USD", Rate: decimal.NewFromInt(1)}, nil)
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Return(nil).Once()
	suite.mockTemplateRepo.On("UpdateTemplateCursor", ctx, template.TemplateID,
		mock.MatchedBy(func(last *time.Time) bool { return last != nil && last.Equal(lastOccurrence) }),
		(*time.Time)(nil),
	).Return(nil).Once()

	created, err := suite.service.RunOnce(ctx, now)

	suite.Require().NoError(err)
	suite.Equal(1, created)
	suite.mockTemplateRepo.AssertExpectations(suite.T())
}

func (suite *MaterializerServiceTestSuite) TestRunOnce_ExpenseUsesPaymentMethodAccountCurrency() {
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	occurrence := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	template := suite.newDailyTemplate(occurrence)
	template.CurrencyCode = "EUR"
	template.PaymentMethodID = uuid.NewString()
	accountID := uuid.NewString()

	suite.mockTemplateRepo.On("FindDueTemplates", ctx, now).
		Return([]domain.RecurringTemplate{template}, nil).Once()
	suite.mockPaymentMethodRepo.On("FindPaymentMethodByID", ctx, template.PaymentMethodID).
		Return(&domain.PaymentMethod{PaymentMethodID: template.PaymentMethodID, AccountID: accountID}, nil)
	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).
		Return(&domain.Account{AccountID: accountID, CurrencyCode: "USD"}, nil)
	suite.mockRateRepo.On("FindSpotRate", ctx, "EUR").
		Return(&domain.SpotRate{CurrencyCode: "EUR", Rate: decimal.RequireFromString("0.9")}, nil)
	suite.mockRateRepo.On("FindSpotRate", ctx, "USD").
		Return(&domain.SpotRate{CurrencyCode: "USD", Rate: decimal.NewFromInt(1)}, nil)
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.SourceRate.Equal(decimal.RequireFromString("0.9")) &&
			txn.TargetRate.Equal(decimal.NewFromInt(1))
	})).Return(nil).Once()
	suite.mockTemplateRepo.On("UpdateTemplateCursor", ctx, template.TemplateID, mock.Anything, mock.Anything).
		Return(nil).Once()

	created, err := suite.service.RunOnce(ctx, now)

	suite.Require().NoError(err)
	suite.Equal(1, created)
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *MaterializerServiceTestSuite) TestRunOnce_DanglingReferenceSkipsTemplate() {
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	occurrence := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	template := suite.newDailyTemplate(occurrence)
	template.PaymentMethodID = uuid.NewString()

	suite.mockTemplateRepo.On("FindDueTemplates", ctx, now).
		Return([]domain.RecurringTemplate{template}, nil).Once()
	suite.mockPaymentMethodRepo.On("FindPaymentMethodByID", ctx, template.PaymentMethodID).
		Return(nil, apperrors.ErrNotFound)

	created, err := suite.service.RunOnce(ctx, now)

	suite.Require().NoError(err)
	suite.Equal(0, created)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *MaterializerServiceTestSuite) TestRunOnce_OverlappingPassSkipped() {
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	occurrence := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	template := suite.newDailyTemplate(occurrence)

	entered := make(chan struct{})
	release := make(chan struct{})
	suite.mockTemplateRepo.On("FindDueTemplates", ctx, now).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return([]domain.RecurringTemplate{template}, nil).Once()
	suite.mockRateRepo.On("FindSpotRate", ctx, "USD").
		Return(&domain.SpotRate{CurrencyCode: "USD", Rate: decimal.NewFromInt(1)}, nil)
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Return(nil).Once()
	suite.mockTemplateRepo.On("UpdateTemplateCursor", ctx, template.TemplateID, mock.Anything, mock.Anything).
		Return(nil).Once()

	type passResult struct {
		created int
		err     error
	}
	firstDone := make(chan passResult, 1)
	go func() {
		created, err := suite.service.RunOnce(ctx, now)
		firstDone <- passResult{created, err}
	}()
	<-entered

	// The first pass holds the run lock; a tick firing mid-pass must bail
	// out without materializing anything a second time.
	created, err := suite.service.RunOnce(ctx, now)
	suite.Require().NoError(err)
	suite.Equal(0, created)

	close(release)
	first := <-firstDone
	suite.Require().NoError(first.err)
	suite.Equal(1, first.created)
	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockTemplateRepo.AssertExpectations(suite.T())
}

func (suite *MaterializerServiceTestSuite) TestRunOnce_BudgetStopsPassLeavingBacklog() {
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	occurrence := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	first := suite.newDailyTemplate(occurrence)
	second := suite.newDailyTemplate(occurrence)

	budgeted := services.NewMaterializerService(
		suite.mockTemplateRepo,
		suite.mockTxnRepo,
		suite.mockRateRepo,
		suite.mockAccountRepo,
		suite.mockPaymentMethodRepo,
		services.NewRuleEvaluator(),
		services.WithPassBudget(50*time.Millisecond),
	)

	suite.mockTemplateRepo.On("FindDueTemplates", ctx, now).
		Return([]domain.RecurringTemplate{first, second}, nil).Once()
	suite.mockRateRepo.On("FindSpotRate", ctx, "USD").
		Return(&domain.SpotRate{CurrencyCode: "USD", Rate: decimal.NewFromInt(1)}, nil)
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.TemplateID == first.TemplateID
	})).Run(func(mock.Arguments) {
		time.Sleep(100 * time.Millisecond)
	}).Return(nil).Once()
	suite.mockTemplateRepo.On("UpdateTemplateCursor", ctx, first.TemplateID, mock.Anything, mock.Anything).
		Return(nil).Once()

	created, err := budgeted.RunOnce(ctx, now)

	// The first template exhausts the budget; the second stays untouched,
	// its cursor still due, so the next tick picks it up.
	suite.Require().NoError(err)
	suite.Equal(1, created)
	suite.mockTxnRepo.AssertNumberOfCalls(suite.T(), "SaveTransaction", 1)
	suite.mockTemplateRepo.AssertNotCalled(suite.T(), "UpdateTemplateCursor",
		ctx, second.TemplateID, mock.Anything, mock.Anything)
}

func TestMaterializerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MaterializerServiceTestSuite))
}
