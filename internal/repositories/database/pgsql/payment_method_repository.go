package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finflow/finflow_backend/internal/apperrors"
	"github.com/finflow/finflow_backend/internal/core/domain"
	portsrepo "github.com/finflow/finflow_backend/internal/core/ports/repositories"
)

const paymentMethodColumns = `
	payment_method_id, user_id, name, kind, account_id,
	credit_closing_rule, credit_due_rule,
	next_closing, next_due, last_closing, last_due, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxPaymentMethodRepository struct {
	BaseRepository
}

func newPgxPaymentMethodRepository(pool *pgxpool.Pool) portsrepo.PaymentMethodRepositoryFacade {
	return &PgxPaymentMethodRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.PaymentMethodRepositoryFacade = (*PgxPaymentMethodRepository)(nil)

func scanPaymentMethod(row pgx.CollectableRow) (domain.PaymentMethod, error) {
	var m domain.PaymentMethod
	err := row.Scan(
		&m.PaymentMethodID,
		&m.UserID,
		&m.Name,
		&m.Kind,
		&m.AccountID,
		&m.CreditClosingRule,
		&m.CreditDueRule,
		&m.NextClosing,
		&m.NextDue,
		&m.LastClosing,
		&m.LastDue,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SavePaymentMethod inserts a new payment method with its cached credit
// cycle window.
func (r *PgxPaymentMethodRepository) SavePaymentMethod(ctx context.Context, method domain.PaymentMethod) error {
	query := `
		INSERT INTO payment_methods (` + paymentMethodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.Pool.Exec(ctx, query,
		method.PaymentMethodID,
		method.UserID,
		method.Name,
		method.Kind,
		method.AccountID,
		method.CreditClosingRule,
		method.CreditDueRule,
		method.NextClosing,
		method.NextDue,
		method.LastClosing,
		method.LastDue,
		method.IsActive,
		method.CreatedAt,
		method.CreatedBy,
		method.LastUpdatedAt,
		method.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save payment method %s: %w", method.PaymentMethodID, err)
	}
	return nil
}

// UpdatePaymentMethod replaces the whole row, cached cycle window included.
func (r *PgxPaymentMethodRepository) UpdatePaymentMethod(ctx context.Context, method domain.PaymentMethod) error {
	query := `
		UPDATE payment_methods SET
			name = $2,
			kind = $3,
			account_id = $4,
			credit_closing_rule = $5,
			credit_due_rule = $6,
			next_closing = $7,
			next_due = $8,
			last_closing = $9,
			last_due = $10,
			is_active = $11,
			last_updated_at = $12,
			last_updated_by = $13
		WHERE payment_method_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		method.PaymentMethodID,
		method.Name,
		method.Kind,
		method.AccountID,
		method.CreditClosingRule,
		method.CreditDueRule,
		method.NextClosing,
		method.NextDue,
		method.LastClosing,
		method.LastDue,
		method.IsActive,
		method.LastUpdatedAt,
		method.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment method %s: %w", method.PaymentMethodID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindPaymentMethodByID retrieves a single payment method.
func (r *PgxPaymentMethodRepository) FindPaymentMethodByID(ctx context.Context, paymentMethodID string) (*domain.PaymentMethod, error) {
	query := `SELECT ` + paymentMethodColumns + ` FROM payment_methods WHERE payment_method_id = $1;`
	rows, err := r.Pool.Query(ctx, query, paymentMethodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment method %s: %w", paymentMethodID, err)
	}
	method, err := pgx.CollectExactlyOneRow(rows, scanPaymentMethod)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan payment method %s: %w", paymentMethodID, err)
	}
	return &method, nil
}

// ListPaymentMethodsByUser retrieves all of a user's payment methods.
func (r *PgxPaymentMethodRepository) ListPaymentMethodsByUser(ctx context.Context, userID string) ([]domain.PaymentMethod, error) {
	query := `SELECT ` + paymentMethodColumns + ` FROM payment_methods WHERE user_id = $1 ORDER BY name;`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment methods for user %s: %w", userID, err)
	}
	defer rows.Close()

	methods, err := pgx.CollectRows(rows, scanPaymentMethod)
	if err != nil {
		return nil, fmt.Errorf("failed to scan payment methods for user %s: %w", userID, err)
	}
	return methods, nil
}
