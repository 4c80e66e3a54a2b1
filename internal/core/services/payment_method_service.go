package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finflow/finflow_backend/internal/apperrors"
	"github.com/finflow/finflow_backend/internal/core/domain"
	portsrepo "github.com/finflow/finflow_backend/internal/core/ports/repositories"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
	"github.com/finflow/finflow_backend/internal/dto"
	"github.com/google/uuid"
)

// paymentMethodService implements the PaymentMethodSvcFacade interface.
type paymentMethodService struct {
	BaseService
	paymentMethodRepo portsrepo.PaymentMethodRepositoryFacade
	accountRepo       portsrepo.AccountReader
	creditCycle       portssvc.CreditCycleSvc
	evaluator         portssvc.RuleEvaluator
}

// NewPaymentMethodService creates a new payment method service.
func NewPaymentMethodService(
	paymentMethodRepo portsrepo.PaymentMethodRepositoryFacade,
	accountRepo portsrepo.AccountReader,
	creditCycle portssvc.CreditCycleSvc,
	evaluator portssvc.RuleEvaluator,
) portssvc.PaymentMethodSvcFacade {
	return &paymentMethodService{
		paymentMethodRepo: paymentMethodRepo,
		accountRepo:       accountRepo,
		creditCycle:       creditCycle,
		evaluator:         evaluator,
	}
}

var _ portssvc.PaymentMethodSvcFacade = (*paymentMethodService)(nil)

// CreatePaymentMethod validates cycle rules synchronously and caches the
// derived statement window on the new method.
func (s *paymentMethodService) CreatePaymentMethod(ctx context.Context, req dto.CreatePaymentMethodRequest, userID string, now time.Time) (*domain.PaymentMethod, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, req.AccountID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: account '%s' not found", apperrors.ErrValidation, req.AccountID)
		}
		return nil, fmt.Errorf("failed to validate account '%s': %w", req.AccountID, err)
	}

	method := domain.PaymentMethod{
		PaymentMethodID:   uuid.NewString(),
		UserID:            userID,
		Name:              req.Name,
		Kind:              req.Kind,
		AccountID:         req.AccountID,
		CreditClosingRule: req.CreditClosingRule,
		CreditDueRule:     req.CreditDueRule,
		IsActive:          true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.validateCycleRules(&method); err != nil {
		return nil, err
	}
	if err := s.recomputeCycle(&method, now); err != nil {
		return nil, err
	}

	if err := s.paymentMethodRepo.SavePaymentMethod(ctx, method); err != nil {
		return nil, fmt.Errorf("failed to create payment method: %w", err)
	}
	return &method, nil
}

// UpdatePaymentMethod applies a partial update and recomputes the cached
// cycle window wholesale, whether or not the rules changed.
func (s *paymentMethodService) UpdatePaymentMethod(ctx context.Context, paymentMethodID string, req dto.UpdatePaymentMethodRequest, userID string, now time.Time) (*domain.PaymentMethod, error) {
	method, err := s.findOwned(ctx, paymentMethodID, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		method.Name = *req.Name
	}
	if req.Kind != nil {
		method.Kind = *req.Kind
	}
	if req.AccountID != nil {
		if _, err := s.accountRepo.FindAccountByID(ctx, *req.AccountID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: account '%s' not found", apperrors.ErrValidation, *req.AccountID)
			}
			return nil, fmt.Errorf("failed to validate account '%s': %w", *req.AccountID, err)
		}
		method.AccountID = *req.AccountID
	}
	if req.CreditClosingRule != nil {
		method.CreditClosingRule = *req.CreditClosingRule
	}
	if req.CreditDueRule != nil {
		method.CreditDueRule = *req.CreditDueRule
	}

	if err := s.validateCycleRules(method); err != nil {
		return nil, err
	}
	if err := s.recomputeCycle(method, now); err != nil {
		return nil, err
	}

	method.LastUpdatedAt = now
	method.LastUpdatedBy = userID

	if err := s.paymentMethodRepo.UpdatePaymentMethod(ctx, *method); err != nil {
		return nil, fmt.Errorf("failed to update payment method: %w", err)
	}
	return method, nil
}

// GetPaymentMethod retrieves one of the user's payment methods.
func (s *paymentMethodService) GetPaymentMethod(ctx context.Context, paymentMethodID, userID string) (*domain.PaymentMethod, error) {
	return s.findOwned(ctx, paymentMethodID, userID)
}

// ListPaymentMethods retrieves all of the user's payment methods.
func (s *paymentMethodService) ListPaymentMethods(ctx context.Context, userID string) ([]domain.PaymentMethod, error) {
	methods, err := s.paymentMethodRepo.ListPaymentMethodsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	if methods == nil {
		return []domain.PaymentMethod{}, nil
	}
	return methods, nil
}

func (s *paymentMethodService) validateCycleRules(method *domain.PaymentMethod) error {
	if method.Kind != domain.PaymentMethodCredit {
		return nil
	}
	if (method.CreditClosingRule == "") != (method.CreditDueRule == "") {
		return fmt.Errorf("%w: credit methods need both closing and due rules or neither", apperrors.ErrValidation)
	}
	if method.CreditClosingRule != "" {
		if err := s.evaluator.Validate(method.CreditClosingRule); err != nil {
			return err
		}
	}
	if method.CreditDueRule != "" {
		if err := s.evaluator.Validate(method.CreditDueRule); err != nil {
			return err
		}
	}
	return nil
}

func (s *paymentMethodService) recomputeCycle(method *domain.PaymentMethod, now time.Time) error {
	state, err := s.creditCycle.Compute(*method, now)
	if err != nil {
		return fmt.Errorf("failed to compute credit cycle: %w", err)
	}
	method.CreditCycleState = state
	return nil
}

func (s *paymentMethodService) findOwned(ctx context.Context, paymentMethodID, userID string) (*domain.PaymentMethod, error) {
	method, err := s.paymentMethodRepo.FindPaymentMethodByID(ctx, paymentMethodID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment method: %w", err)
	}
	if method.UserID != userID {
		return nil, fmt.Errorf("%w: payment method %s", apperrors.ErrNotFound, paymentMethodID)
	}
	return method, nil
}
