package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finflow/finflow_backend/internal/apperrors"
	"github.com/finflow/finflow_backend/internal/core/domain"
	portsrepo "github.com/finflow/finflow_backend/internal/core/ports/repositories"
)

const templateColumns = `
	template_id, user_id, kind, description, amount, currency_code,
	account_id, payment_method_id, category_id, source_id, tax_ids,
	recurrence_rule, next_occurrence, last_occurrence, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxTemplateRepository struct {
	BaseRepository
}

func newPgxTemplateRepository(pool *pgxpool.Pool) portsrepo.TemplateRepositoryFacade {
	return &PgxTemplateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.TemplateRepositoryFacade = (*PgxTemplateRepository)(nil)

func scanTemplate(row pgx.CollectableRow) (domain.RecurringTemplate, error) {
	var t domain.RecurringTemplate
	err := row.Scan(
		&t.TemplateID,
		&t.UserID,
		&t.Kind,
		&t.Description,
		&t.Amount,
		&t.CurrencyCode,
		&t.AccountID,
		&t.PaymentMethodID,
		&t.CategoryID,
		&t.SourceID,
		&t.TaxIDs,
		&t.RecurrenceRule,
		&t.NextOccurrence,
		&t.LastOccurrence,
		&t.IsActive,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	return t, err
}

// SaveTemplate inserts a new recurring template.
func (r *PgxTemplateRepository) SaveTemplate(ctx context.Context, template domain.RecurringTemplate) error {
	query := `
		INSERT INTO recurring_templates (` + templateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err := r.Pool.Exec(ctx, query,
		template.TemplateID,
		template.UserID,
		template.Kind,
		template.Description,
		template.Amount,
		template.CurrencyCode,
		template.AccountID,
		template.PaymentMethodID,
		template.CategoryID,
		template.SourceID,
		template.TaxIDs,
		template.RecurrenceRule,
		template.NextOccurrence,
		template.LastOccurrence,
		template.IsActive,
		template.CreatedAt,
		template.CreatedBy,
		template.LastUpdatedAt,
		template.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save recurring template %s: %w", template.TemplateID, err)
	}
	return nil
}

// UpdateTemplate replaces the full mutable state of a template, cursor
// included. Used by the API update path, which may re-seed the cursor when
// the rule changes.
func (r *PgxTemplateRepository) UpdateTemplate(ctx context.Context, template domain.RecurringTemplate) error {
	query := `
		UPDATE recurring_templates SET
			kind = $2,
			description = $3,
			amount = $4,
			currency_code = $5,
			account_id = $6,
			payment_method_id = $7,
			category_id = $8,
			source_id = $9,
			tax_ids = $10,
			recurrence_rule = $11,
			next_occurrence = $12,
			last_occurrence = $13,
			is_active = $14,
			last_updated_at = $15,
			last_updated_by = $16
		WHERE template_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		template.TemplateID,
		template.Kind,
		template.Description,
		template.Amount,
		template.CurrencyCode,
		template.AccountID,
		template.PaymentMethodID,
		template.CategoryID,
		template.SourceID,
		template.TaxIDs,
		template.RecurrenceRule,
		template.NextOccurrence,
		template.LastOccurrence,
		template.IsActive,
		template.LastUpdatedAt,
		template.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update recurring template %s: %w", template.TemplateID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateTemplateCursor persists only the occurrence cursor.
func (r *PgxTemplateRepository) UpdateTemplateCursor(ctx context.Context, templateID string, lastOccurrence, nextOccurrence *time.Time) error {
	query := `
		UPDATE recurring_templates
		SET last_occurrence = $2, next_occurrence = $3, last_updated_at = now()
		WHERE template_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, templateID, lastOccurrence, nextOccurrence)
	if err != nil {
		return fmt.Errorf("failed to update cursor for template %s: %w", templateID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateTemplate soft-deletes a template.
func (r *PgxTemplateRepository) DeactivateTemplate(ctx context.Context, templateID string, deactivatedBy string, at time.Time) error {
	query := `
		UPDATE recurring_templates
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE template_id = $1 AND is_active = TRUE;
	`
	tag, err := r.Pool.Exec(ctx, query, templateID, at, deactivatedBy)
	if err != nil {
		return fmt.Errorf("failed to deactivate template %s: %w", templateID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindTemplateByID retrieves one template, active or tombstoned.
func (r *PgxTemplateRepository) FindTemplateByID(ctx context.Context, templateID string) (*domain.RecurringTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM recurring_templates WHERE template_id = $1;`
	rows, err := r.Pool.Query(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query template %s: %w", templateID, err)
	}
	template, err := pgx.CollectExactlyOneRow(rows, scanTemplate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan template %s: %w", templateID, err)
	}
	return &template, nil
}

// ListTemplates retrieves a page of a user's templates ordered by creation time.
func (r *PgxTemplateRepository) ListTemplates(ctx context.Context, userID string, limit int, afterCreatedAt time.Time) ([]domain.RecurringTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM recurring_templates
		WHERE user_id = $1 AND ($2::timestamptz IS NULL OR created_at > $2)
		ORDER BY created_at ASC
		LIMIT $3;
	`
	var cursor *time.Time
	if !afterCreatedAt.IsZero() {
		cursor = &afterCreatedAt
	}
	rows, err := r.Pool.Query(ctx, query, userID, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates for user %s: %w", userID, err)
	}
	defer rows.Close()

	templates, err := pgx.CollectRows(rows, scanTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to scan templates for user %s: %w", userID, err)
	}
	return templates, nil
}

// FindDueTemplates retrieves every active template whose next occurrence is
// at or before now, oldest cursor first so backlogged templates drain in a
// stable order.
func (r *PgxTemplateRepository) FindDueTemplates(ctx context.Context, now time.Time) ([]domain.RecurringTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM recurring_templates
		WHERE is_active = TRUE
		  AND next_occurrence IS NOT NULL
		  AND next_occurrence <= $1
		ORDER BY next_occurrence ASC;
	`
	rows, err := r.Pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due templates: %w", err)
	}
	defer rows.Close()

	templates, err := pgx.CollectRows(rows, scanTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to scan due templates: %w", err)
	}
	return templates, nil
}
