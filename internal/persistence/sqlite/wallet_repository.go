package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/eldrun/eldrun/internal/persistence"
)

// WalletRepository implements persistence.WalletRepository using SQLite.
//
// Every mutating method runs as one all-or-nothing transaction so the
// non-negative-balance and bonus-claimed-once invariants hold even when a
// request fails partway through.
type WalletRepository struct {
	pool *ConnectionPool
}

// NewWalletRepository creates a new SQLite wallet repository.
func NewWalletRepository(pool *ConnectionPool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

// GetWallet retrieves the wallet for an account.
func (r *WalletRepository) GetWallet(ctx context.Context, accountID string) (persistence.Wallet, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT account_id, balance, bonus_claimed_at, updated_at
		FROM wallets WHERE account_id = ?`, accountID)
	return scanWallet(row)
}

// ClaimWelcomeBonus credits the welcome bonus exactly once per account.
func (r *WalletRepository) ClaimWelcomeBonus(ctx context.Context, accountID string, amount int64, claimedAt time.Time) (persistence.Wallet, error) {
	var wallet persistence.Wallet
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		current, err := scanWallet(tx.QueryRow(`
			SELECT account_id, balance, bonus_claimed_at, updated_at
			FROM wallets WHERE account_id = ?`, accountID))
		if err != nil {
			return err
		}
		if current.BonusClaimedAt != nil {
			return persistence.ErrBonusClaimed
		}

		if _, err := tx.Exec(`
			UPDATE wallets SET balance = balance + ?, bonus_claimed_at = ?, updated_at = ?
			WHERE account_id = ?`,
			amount, formatTime(claimedAt), formatTime(claimedAt), accountID,
		); err != nil {
			return err
		}

		wallet = current
		wallet.Balance += amount
		wallet.BonusClaimedAt = &claimedAt
		wallet.UpdatedAt = claimedAt
		return nil
	})
	if err != nil {
		return persistence.Wallet{}, mapError(err)
	}
	return wallet, nil
}

// SettleRoll debits the wager, credits the payout, and records the roll.
func (r *WalletRepository) SettleRoll(ctx context.Context, roll persistence.CasinoRoll) (persistence.Wallet, error) {
	var wallet persistence.Wallet
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		current, err := scanWallet(tx.QueryRow(`
			SELECT account_id, balance, bonus_claimed_at, updated_at
			FROM wallets WHERE account_id = ?`, roll.AccountID))
		if err != nil {
			return err
		}
		if current.Balance < roll.Wager {
			return persistence.ErrInsufficientFunds
		}

		newBalance := current.Balance - roll.Wager + roll.Payout
		if _, err := tx.Exec(`
			UPDATE wallets SET balance = ?, updated_at = ? WHERE account_id = ?`,
			newBalance, formatTime(roll.CreatedAt), roll.AccountID,
		); err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO casino_rolls (id, account_id, wager, roll, payout, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			roll.ID, roll.AccountID, roll.Wager, roll.Roll, roll.Payout, formatTime(roll.CreatedAt),
		); err != nil {
			return err
		}

		wallet = current
		wallet.Balance = newBalance
		wallet.UpdatedAt = roll.CreatedAt
		return nil
	})
	if err != nil {
		return persistence.Wallet{}, mapError(err)
	}
	return wallet, nil
}

// RecordPurchase debits the price and records the purchase.
func (r *WalletRepository) RecordPurchase(ctx context.Context, purchase persistence.Purchase) (persistence.Wallet, error) {
	var wallet persistence.Wallet
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		current, err := scanWallet(tx.QueryRow(`
			SELECT account_id, balance, bonus_claimed_at, updated_at
			FROM wallets WHERE account_id = ?`, purchase.AccountID))
		if err != nil {
			return err
		}
		if current.Balance < purchase.PricePaid {
			return persistence.ErrInsufficientFunds
		}

		if _, err := tx.Exec(`
			UPDATE wallets SET balance = balance - ?, updated_at = ? WHERE account_id = ?`,
			purchase.PricePaid, formatTime(purchase.CreatedAt), purchase.AccountID,
		); err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO purchases (id, account_id, item_id, price_paid, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			purchase.ID, purchase.AccountID, purchase.ItemID, purchase.PricePaid, formatTime(purchase.CreatedAt),
		); err != nil {
			return err
		}

		wallet = current
		wallet.Balance -= purchase.PricePaid
		wallet.UpdatedAt = purchase.CreatedAt
		return nil
	})
	if err != nil {
		return persistence.Wallet{}, mapError(err)
	}
	return wallet, nil
}

// Leaderboard returns accounts ranked by the requested column. orderBy is
// restricted to known columns by the service layer; the switch here is the
// second line of defense against injection.
func (r *WalletRepository) Leaderboard(ctx context.Context, orderBy string, limit int) ([]persistence.LeaderboardRow, error) {
	order := "w.balance DESC"
	if orderBy == "winnings" {
		order = "winnings DESC"
	}

	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT a.id, a.username, w.balance,
			COALESCE((SELECT SUM(cr.payout - cr.wager) FROM casino_rolls cr WHERE cr.account_id = a.id), 0) AS winnings
		FROM accounts a
		JOIN wallets w ON w.account_id = a.id
		ORDER BY `+order+`, a.username ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var board []persistence.LeaderboardRow
	for rows.Next() {
		var row persistence.LeaderboardRow
		if err := rows.Scan(&row.AccountID, &row.Username, &row.Balance, &row.Winnings); err != nil {
			return nil, err
		}
		board = append(board, row)
	}
	return board, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWallet(row rowScanner) (persistence.Wallet, error) {
	var (
		wallet    persistence.Wallet
		claimedAt sql.NullString
		updatedAt string
	)
	err := row.Scan(&wallet.AccountID, &wallet.Balance, &claimedAt, &updatedAt)
	if err != nil {
		return persistence.Wallet{}, mapError(err)
	}
	if wallet.BonusClaimedAt, err = parseTimePtr(claimedAt); err != nil {
		return persistence.Wallet{}, err
	}
	if wallet.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Wallet{}, err
	}
	return wallet, nil
}
