package repositories

import (
	"context"
	"time"

	"github.com/finflow/finflow_backend/internal/core/domain"
)

// TemplateReader defines read operations for recurring templates.
type TemplateReader interface {
	// FindTemplateByID retrieves one template, active or tombstoned.
	FindTemplateByID(ctx context.Context, templateID string) (*domain.RecurringTemplate, error)

	// ListTemplates retrieves a page of a user's templates ordered by
	// creation time. afterCreatedAt is the exclusive cursor; zero means
	// start from the beginning.
	ListTemplates(ctx context.Context, userID string, limit int, afterCreatedAt time.Time) ([]domain.RecurringTemplate, error)

	// FindDueTemplates retrieves every active template whose next occurrence
	// is at or before now. Templates with a nil next occurrence are never
	// returned.
	FindDueTemplates(ctx context.Context, now time.Time) ([]domain.RecurringTemplate, error)
}

// TemplateWriter defines write operations for recurring templates.
type TemplateWriter interface {
	SaveTemplate(ctx context.Context, template domain.RecurringTemplate) error
	UpdateTemplate(ctx context.Context, template domain.RecurringTemplate) error

	// UpdateTemplateCursor persists only the occurrence cursor. Called by the
	// materializer after the transaction for lastOccurrence has been written.
	UpdateTemplateCursor(ctx context.Context, templateID string, lastOccurrence, nextOccurrence *time.Time) error

	// DeactivateTemplate soft-deletes a template. Historical transactions
	// keep referencing it, so it is never hard-deleted.
	DeactivateTemplate(ctx context.Context, templateID string, deactivatedBy string, at time.Time) error
}

// TemplateRepositoryFacade combines all template repository interfaces.
type TemplateRepositoryFacade interface {
	TemplateReader
	TemplateWriter
}
