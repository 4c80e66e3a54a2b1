package services

import (
	"context"
	"time"

	"github.com/finflow/finflow_backend/internal/core/domain"
	"github.com/finflow/finflow_backend/internal/dto"
)

// TemplateReaderSvc defines read operations for recurring templates.
type TemplateReaderSvc interface {
	GetTemplate(ctx context.Context, templateID, userID string) (*domain.RecurringTemplate, error)

	// ListTemplates returns a page of the user's templates plus an opaque
	// token for the next page ("" when exhausted).
	ListTemplates(ctx context.Context, userID string, limit int, nextToken string) ([]domain.RecurringTemplate, string, error)
}

// TemplateWriterSvc defines write operations for recurring templates.
// Rule validation happens here, synchronously, so the scheduler only ever
// sees templates whose rule was parseable at write time.
type TemplateWriterSvc interface {
	CreateTemplate(ctx context.Context, req dto.CreateTemplateRequest, userID string, now time.Time) (*domain.RecurringTemplate, error)
	UpdateTemplate(ctx context.Context, templateID string, req dto.UpdateTemplateRequest, userID string, now time.Time) (*domain.RecurringTemplate, error)
	DeactivateTemplate(ctx context.Context, templateID, userID string, now time.Time) error
}

// TemplateSvcFacade combines all template service interfaces.
type TemplateSvcFacade interface {
	TemplateReaderSvc
	TemplateWriterSvc
}
