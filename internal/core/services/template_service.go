package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/finflow/finflow_backend/internal/apperrors"
	"github.com/finflow/finflow_backend/internal/core/domain"
	portsrepo "github.com/finflow/finflow_backend/internal/core/ports/repositories"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
	"github.com/finflow/finflow_backend/internal/dto"
	"github.com/finflow/finflow_backend/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultTemplateListLimit = 50

// templateService implements the TemplateSvcFacade interface.
type templateService struct {
	BaseService
	templateRepo portsrepo.TemplateRepositoryFacade
	currencyRepo portsrepo.CurrencyReader
	evaluator    portssvc.RuleEvaluator
}

// NewTemplateService creates a new recurring template service.
func NewTemplateService(
	templateRepo portsrepo.TemplateRepositoryFacade,
	currencyRepo portsrepo.CurrencyReader,
	evaluator portssvc.RuleEvaluator,
) portssvc.TemplateSvcFacade {
	return &templateService{
		templateRepo: templateRepo,
		currencyRepo: currencyRepo,
		evaluator:    evaluator,
	}
}

var _ portssvc.TemplateSvcFacade = (*templateService)(nil)

// CreateTemplate validates the recurrence rule synchronously and seeds the
// first occurrence inclusively, so a rule whose first instant is "now" still
// materializes today.
func (s *templateService) CreateTemplate(ctx context.Context, req dto.CreateTemplateRequest, userID string, now time.Time) (*domain.RecurringTemplate, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	currencyCode := strings.ToUpper(req.CurrencyCode)
	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: currency code '%s' not found", apperrors.ErrValidation, currencyCode)
		}
		return nil, fmt.Errorf("failed to validate currency '%s': %w", currencyCode, err)
	}

	// An unparseable rule is rejected here and never reaches the scheduler.
	if err := s.evaluator.Validate(req.RecurrenceRule); err != nil {
		return nil, err
	}
	next, err := s.evaluator.Next(req.RecurrenceRule, now, true)
	if err != nil {
		return nil, err
	}

	template := domain.RecurringTemplate{
		TemplateID:      uuid.NewString(),
		UserID:          userID,
		Kind:            req.Kind,
		Description:     req.Description,
		Amount:          req.Amount,
		CurrencyCode:    currencyCode,
		AccountID:       req.AccountID,
		PaymentMethodID: req.PaymentMethodID,
		CategoryID:      req.CategoryID,
		SourceID:        req.SourceID,
		TaxIDs:          req.TaxIDs,
		RecurrenceRule:  req.RecurrenceRule,
		NextOccurrence:  next,
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.templateRepo.SaveTemplate(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to create recurring template: %w", err)
	}

	s.LogInfo(ctx, "Recurring template created",
		"template_id", template.TemplateID,
		"kind", string(template.Kind),
		"rule", template.RecurrenceRule)
	return &template, nil
}

// UpdateTemplate applies a partial update. A rule change recomputes the next
// occurrence from "now" inclusively; the cursor's last occurrence is kept so
// history stays intact.
func (s *templateService) UpdateTemplate(ctx context.Context, templateID string, req dto.UpdateTemplateRequest, userID string, now time.Time) (*domain.RecurringTemplate, error) {
	template, err := s.findOwned(ctx, templateID, userID)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		template.Description = *req.Description
	}
	if req.Amount != nil {
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
		}
		template.Amount = *req.Amount
	}
	if req.CurrencyCode != nil {
		code := strings.ToUpper(*req.CurrencyCode)
		if _, err := s.currencyRepo.FindCurrencyByCode(ctx, code); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: currency code '%s' not found", apperrors.ErrValidation, code)
			}
			return nil, fmt.Errorf("failed to validate currency '%s': %w", code, err)
		}
		template.CurrencyCode = code
	}
	if req.AccountID != nil {
		template.AccountID = *req.AccountID
	}
	if req.PaymentMethodID != nil {
		template.PaymentMethodID = *req.PaymentMethodID
	}
	if req.CategoryID != nil {
		template.CategoryID = *req.CategoryID
	}
	if req.SourceID != nil {
		template.SourceID = *req.SourceID
	}
	if req.TaxIDs != nil {
		template.TaxIDs = *req.TaxIDs
	}
	if req.RecurrenceRule != nil && *req.RecurrenceRule != template.RecurrenceRule {
		if err := s.evaluator.Validate(*req.RecurrenceRule); err != nil {
			return nil, err
		}
		next, err := s.evaluator.Next(*req.RecurrenceRule, now, true)
		if err != nil {
			return nil, err
		}
		template.RecurrenceRule = *req.RecurrenceRule
		template.NextOccurrence = next
	}

	template.LastUpdatedAt = now
	template.LastUpdatedBy = userID

	if err := s.templateRepo.UpdateTemplate(ctx, *template); err != nil {
		return nil, fmt.Errorf("failed to update recurring template: %w", err)
	}
	return template, nil
}

// DeactivateTemplate soft-deletes a template. Transactions it produced keep
// referencing it.
func (s *templateService) DeactivateTemplate(ctx context.Context, templateID, userID string, now time.Time) error {
	if _, err := s.findOwned(ctx, templateID, userID); err != nil {
		return err
	}
	if err := s.templateRepo.DeactivateTemplate(ctx, templateID, userID, now); err != nil {
		return fmt.Errorf("failed to deactivate recurring template: %w", err)
	}
	s.LogInfo(ctx, "Recurring template deactivated", "template_id", templateID)
	return nil
}

// GetTemplate retrieves one of the user's templates.
func (s *templateService) GetTemplate(ctx context.Context, templateID, userID string) (*domain.RecurringTemplate, error) {
	return s.findOwned(ctx, templateID, userID)
}

// ListTemplates returns a page of the user's templates and an opaque token
// for the next page.
func (s *templateService) ListTemplates(ctx context.Context, userID string, limit int, nextToken string) ([]domain.RecurringTemplate, string, error) {
	if limit <= 0 {
		limit = defaultTemplateListLimit
	}
	var after time.Time
	if nextToken != "" {
		var err error
		after, err = pagination.DecodeDateBasedToken(nextToken)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}

	templates, err := s.templateRepo.ListTemplates(ctx, userID, limit, after)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list recurring templates: %w", err)
	}

	var token string
	if len(templates) == limit {
		token = pagination.EncodeDateBasedToken(templates[len(templates)-1].CreatedAt)
	}
	return templates, token, nil
}

// findOwned fetches a template and hides other users' templates behind
// ErrNotFound.
func (s *templateService) findOwned(ctx context.Context, templateID, userID string) (*domain.RecurringTemplate, error) {
	template, err := s.templateRepo.FindTemplateByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recurring template: %w", err)
	}
	if template.UserID != userID {
		return nil, fmt.Errorf("%w: template %s", apperrors.ErrNotFound, templateID)
	}
	return template, nil
}
