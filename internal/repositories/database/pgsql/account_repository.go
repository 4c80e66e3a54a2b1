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

const accountColumns = `
	account_id, user_id, name, currency_code, balance, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.CollectableRow) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.AccountID,
		&a.UserID,
		&a.Name,
		&a.CurrencyCode,
		&a.Balance,
		&a.IsActive,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	return a, err
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.UserID,
		account.Name,
		account.CurrencyCode,
		account.Balance,
		account.IsActive,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}
	return nil
}

// UpdateAccount replaces the mutable state of an account.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts SET
			name = $2,
			currency_code = $3,
			balance = $4,
			is_active = $5,
			last_updated_at = $6,
			last_updated_by = $7
		WHERE account_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.Name,
		account.CurrencyCode,
		account.Balance,
		account.IsActive,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", account.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindAccountByID retrieves a single account.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query account %s: %w", accountID, err)
	}
	account, err := pgx.CollectExactlyOneRow(rows, scanAccount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan account %s: %w", accountID, err)
	}
	return &account, nil
}

// ListAccountsByUser retrieves all of a user's accounts.
func (r *PgxAccountRepository) ListAccountsByUser(ctx context.Context, userID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY name;`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for user %s: %w", userID, err)
	}
	defer rows.Close()

	accounts, err := pgx.CollectRows(rows, scanAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to scan accounts for user %s: %w", userID, err)
	}
	return accounts, nil
}
