package sqlite

import (
	"context"
	"database/sql"

	"github.com/eldrun/eldrun/internal/persistence"
)

// AccountRepository implements persistence.AccountRepository using SQLite.
type AccountRepository struct {
	pool *ConnectionPool
}

// NewAccountRepository creates a new SQLite account repository.
func NewAccountRepository(pool *ConnectionPool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// CreateAccount inserts the account and opens its wallet with a zero balance
// in one transaction. A duplicate username surfaces as ErrAlreadyExists.
func (r *AccountRepository) CreateAccount(ctx context.Context, account persistence.Account) error {
	if account.ID == "" || account.Username == "" || account.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO accounts (id, username, password_hash, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)`,
			account.ID, account.Username, account.PasswordHash,
			formatTime(account.CreatedAt), formatTime(account.UpdatedAt),
		); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO wallets (account_id, balance, bonus_claimed_at, updated_at)
			VALUES (?, 0, NULL, ?)`,
			account.ID, formatTime(account.CreatedAt),
		)
		return err
	})
	return mapError(err)
}

// GetAccount retrieves an account by ID.
func (r *AccountRepository) GetAccount(ctx context.Context, id string) (persistence.Account, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at, updated_at
		FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

// GetAccountByUsername retrieves an account by its unique username.
func (r *AccountRepository) GetAccountByUsername(ctx context.Context, username string) (persistence.Account, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at, updated_at
		FROM accounts WHERE username = ?`, username)
	return scanAccount(row)
}

func scanAccount(row *sql.Row) (persistence.Account, error) {
	var (
		account   persistence.Account
		createdAt string
		updatedAt string
	)
	err := row.Scan(&account.ID, &account.Username, &account.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Account{}, mapError(err)
	}
	if account.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Account{}, err
	}
	if account.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Account{}, err
	}
	return account, nil
}
