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

const transactionColumns = `
	transaction_id, user_id, kind, description, amount, currency_code, date,
	account_id, payment_method_id, category_id, source_id, tax_ids,
	template_id, source_rate, target_rate,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.CollectableRow) (domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.TransactionID,
		&t.UserID,
		&t.Kind,
		&t.Description,
		&t.Amount,
		&t.CurrencyCode,
		&t.Date,
		&t.AccountID,
		&t.PaymentMethodID,
		&t.CategoryID,
		&t.SourceID,
		&t.TaxIDs,
		&t.TemplateID,
		&t.SourceRate,
		&t.TargetRate,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	return t, err
}

// SaveTransaction inserts a concrete transaction row.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err := r.Pool.Exec(ctx, query,
		txn.TransactionID,
		txn.UserID,
		txn.Kind,
		txn.Description,
		txn.Amount,
		txn.CurrencyCode,
		txn.Date,
		txn.AccountID,
		txn.PaymentMethodID,
		txn.CategoryID,
		txn.SourceID,
		txn.TaxIDs,
		txn.TemplateID,
		txn.SourceRate,
		txn.TargetRate,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

// FindTransactionByID retrieves a single transaction.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction %s: %w", transactionID, err)
	}
	txn, err := pgx.CollectExactlyOneRow(rows, scanTransaction)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan transaction %s: %w", transactionID, err)
	}
	return &txn, nil
}

// ListTransactionsByDateRange retrieves a user's transactions with effective
// date in [from, to], ordered by date ascending.
func (r *PgxTransactionRepository) ListTransactionsByDateRange(ctx context.Context, userID string, from, to time.Time) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC;
	`
	rows, err := r.Pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	txns, err := pgx.CollectRows(rows, scanTransaction)
	if err != nil {
		return nil, fmt.Errorf("failed to scan transactions for user %s: %w", userID, err)
	}
	return txns, nil
}
