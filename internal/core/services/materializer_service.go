package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/finflow/finflow_backend/internal/apperrors"
	"github.com/finflow/finflow_backend/internal/core/domain"
	portsrepo "github.com/finflow/finflow_backend/internal/core/ports/repositories"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// keyedMutex hands out one mutex per key. Used to serialize concurrent
// materialization of the same template, which the cursor design does not
// tolerate (see RunOnce).
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// materializerService implements the MaterializerSvc interface. It is the
// only component that mutates template cursors: lastOccurrence/
// nextOccurrence advance strictly after the transaction for an occurrence
// has been persisted, which makes re-runs safe (at-least-once, and
// effectively exactly-once in normal operation).
type materializerService struct {
	BaseService
	templateRepo      portsrepo.TemplateRepositoryFacade
	txnRepo           portsrepo.TransactionWriter
	spotRateRepo      portsrepo.SpotRateReader
	accountRepo       portsrepo.AccountReader
	paymentMethodRepo portsrepo.PaymentMethodReader
	evaluator         portssvc.RuleEvaluator

	// budget bounds one pass so a pathological backlog cannot starve the
	// next scheduled tick; leftover work resumes on the following tick.
	budget time.Duration

	runMu      sync.Mutex
	templateMu keyedMutex
}

// MaterializerOption is a functional option for configuring the materializer.
type MaterializerOption func(*materializerService)

// WithPassBudget bounds the wall-clock duration of a single pass.
func WithPassBudget(d time.Duration) MaterializerOption {
	return func(s *materializerService) {
		s.budget = d
	}
}

// NewMaterializerService creates a new materializer.
func NewMaterializerService(
	templateRepo portsrepo.TemplateRepositoryFacade,
	txnRepo portsrepo.TransactionWriter,
	spotRateRepo portsrepo.SpotRateReader,
	accountRepo portsrepo.AccountReader,
	paymentMethodRepo portsrepo.PaymentMethodReader,
	evaluator portssvc.RuleEvaluator,
	options ...MaterializerOption,
) portssvc.MaterializerSvc {
	svc := &materializerService{
		templateRepo:      templateRepo,
		txnRepo:           txnRepo,
		spotRateRepo:      spotRateRepo,
		accountRepo:       accountRepo,
		paymentMethodRepo: paymentMethodRepo,
		evaluator:         evaluator,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.MaterializerSvc = (*materializerService)(nil)

// RunOnce performs one materialization pass as of now. Each due template
// catches up fully within the pass: one transaction per missed occurrence,
// cursor advanced after each successful write. Per-template failures are
// logged and that template is retried on the next pass with its cursor
// unchanged; they never abort the batch.
func (s *materializerService) RunOnce(ctx context.Context, now time.Time) (int, error) {
	if !s.runMu.TryLock() {
		s.LogWarn(ctx, "Materialization pass already running, skipping tick")
		return 0, nil
	}
	defer s.runMu.Unlock()

	start := time.Now()

	due, err := s.templateRepo.FindDueTemplates(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list due templates: %w", err)
	}

	created := 0
	for i := range due {
		if ctx.Err() != nil {
			s.LogWarn(ctx, "Materialization pass cancelled", "templates_remaining", len(due)-i)
			break
		}
		if s.budget > 0 && time.Since(start) > s.budget {
			s.LogWarn(ctx, "Materialization pass budget exhausted, resuming next tick",
				"templates_remaining", len(due)-i)
			break
		}
		created += s.materializeTemplate(ctx, &due[i], now)
	}

	s.LogInfo(ctx, "Materialization pass complete",
		"templates_due", len(due),
		"transactions_created", created)
	return created, nil
}

// materializeTemplate catches one template up to now, returning the number
// of transactions created for it.
func (s *materializerService) materializeTemplate(ctx context.Context, template *domain.RecurringTemplate, now time.Time) int {
	lock := s.templateMu.get(template.TemplateID)
	lock.Lock()
	defer lock.Unlock()

	created := 0
	for template.IsDue(now) {
		occurrence := *template.NextOccurrence

		targetCurrency, err := s.resolveTargetCurrency(ctx, template)
		if err != nil {
			s.LogError(ctx, err, "Skipping template, reference missing",
				"template_id", template.TemplateID)
			return created
		}

		sourceRate := s.spotRateOrOne(ctx, template.CurrencyCode)
		targetRate := sourceRate
		if targetCurrency != template.CurrencyCode {
			targetRate = s.spotRateOrOne(ctx, targetCurrency)
		}

		txn := domain.Transaction{
			TransactionID:   uuid.NewString(),
			UserID:          template.UserID,
			Kind:            template.Kind,
			Description:     template.Description,
			Amount:          template.Amount,
			CurrencyCode:    template.CurrencyCode,
			Date:            occurrence,
			AccountID:       template.AccountID,
			PaymentMethodID: template.PaymentMethodID,
			CategoryID:      template.CategoryID,
			SourceID:        template.SourceID,
			TaxIDs:          template.TaxIDs,
			TemplateID:      template.TemplateID,
			SourceRate:      sourceRate,
			TargetRate:      targetRate,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     template.UserID,
				LastUpdatedAt: now,
				LastUpdatedBy: template.UserID,
			},
		}

		if err := s.txnRepo.SaveTransaction(ctx, txn); err != nil {
			s.LogError(ctx, err, "Failed to persist materialized transaction, cursor unchanged",
				"template_id", template.TemplateID,
				"occurrence", occurrence.Format(time.RFC3339))
			return created
		}
		created++

		// Strictly-after advance: the occurrence just materialized can never
		// be produced again.
		next, err := s.evaluator.Next(template.RecurrenceRule, occurrence, false)
		if err != nil {
			s.LogError(ctx, err, "Stored rule became unevaluable, leaving cursor at last occurrence",
				"template_id", template.TemplateID)
			return created
		}
		template.LastOccurrence = &occurrence
		template.NextOccurrence = next

		if err := s.templateRepo.UpdateTemplateCursor(ctx, template.TemplateID, template.LastOccurrence, template.NextOccurrence); err != nil {
			s.LogError(ctx, err, "Failed to persist cursor, occurrence may be re-materialized next pass",
				"template_id", template.TemplateID)
			return created
		}

		s.LogInfo(ctx, "Materialized transaction from template",
			"template_id", template.TemplateID,
			"transaction_id", txn.TransactionID,
			"occurrence", occurrence.Format(time.RFC3339))
	}
	return created
}

// resolveTargetCurrency walks template -> payment method -> account (for
// expenses) or template -> account (for income) to the currency the
// transaction lands in. Templates without links stay in their own currency.
// A dangling link is a MissingReferenceError.
func (s *materializerService) resolveTargetCurrency(ctx context.Context, template *domain.RecurringTemplate) (string, error) {
	accountID := template.AccountID
	if template.Kind == domain.FlowExpense && template.PaymentMethodID != "" {
		method, err := s.paymentMethodRepo.FindPaymentMethodByID(ctx, template.PaymentMethodID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return "", fmt.Errorf("%w: payment method %s", apperrors.ErrMissingReference, template.PaymentMethodID)
			}
			return "", err
		}
		accountID = method.AccountID
	}
	if accountID == "" {
		return template.CurrencyCode, nil
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: account %s", apperrors.ErrMissingReference, accountID)
		}
		return "", err
	}
	return account.CurrencyCode, nil
}

// spotRateOrOne resolves the latest spot rate for a currency, defaulting to
// 1.0 when none exists yet. That is an explicit fallback, not an error:
// rates may simply not have been fetched for a brand-new currency.
func (s *materializerService) spotRateOrOne(ctx context.Context, currencyCode string) decimal.Decimal {
	rate, err := s.spotRateRepo.FindSpotRate(ctx, currencyCode)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Spot rate lookup failed, defaulting to 1.0", "currency", currencyCode)
		} else {
			s.LogWarn(ctx, "No spot rate for currency, defaulting to 1.0", "currency", currencyCode)
		}
		return decimal.NewFromInt(1)
	}
	if rate.Rate.IsZero() {
		s.LogWarn(ctx, "Zero spot rate for currency, defaulting to 1.0", "currency", currencyCode)
		return decimal.NewFromInt(1)
	}
	return rate.Rate
}
