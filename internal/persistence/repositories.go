package persistence

import (
	"context"
	"time"
)

// SessionRepository stores ops sessions and their timer state.
type SessionRepository interface {
	// CreateSession inserts a new session. ErrAlreadyExists signals a code
	// collision so callers can regenerate and retry.
	CreateSession(ctx context.Context, session Session) error
	GetSessionByCode(ctx context.Context, code string) (Session, error)
	// UpdateSessionTimer persists timer fields only; other columns are
	// immutable after creation.
	UpdateSessionTimer(ctx context.Context, session Session) error
}

// BoardRepository stores the per-session event log: pins, alerts, resource
// events, and role assignments.
type BoardRepository interface {
	CreatePin(ctx context.Context, pin Pin) error
	ListPins(ctx context.Context, sessionID string, limit int) ([]Pin, error)

	CreateAlert(ctx context.Context, alert Alert) error
	ListAlerts(ctx context.Context, sessionID string, limit int) ([]Alert, error)
	// LatestAlertAt returns nil when the session has no alerts.
	LatestAlertAt(ctx context.Context, sessionID string) (*time.Time, error)

	CreateResourceEvent(ctx context.Context, event ResourceEvent) error
	ListResourceEvents(ctx context.Context, sessionID string, limit int) ([]ResourceEvent, error)
	// SumResourceDeltas folds the complete ledger for the session, not just
	// the capped display window.
	SumResourceDeltas(ctx context.Context, sessionID string) (map[string]int64, error)

	CreateRoleAssignment(ctx context.Context, assignment RoleAssignment) error
	GetRoleAssignment(ctx context.Context, sessionID, role string) (RoleAssignment, error)
	UpdateRoleNickname(ctx context.Context, id string, nickname *string, updatedAt time.Time) error
	ListRoleAssignments(ctx context.Context, sessionID string) ([]RoleAssignment, error)
}

// AccountRepository stores registered accounts. Creating an account also
// opens its wallet in the same transaction.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account Account) error
	GetAccount(ctx context.Context, id string) (Account, error)
	GetAccountByUsername(ctx context.Context, username string) (Account, error)
}

// WalletRepository stores balances and the transactional operations that
// must hold the non-negative-balance invariant.
type WalletRepository interface {
	GetWallet(ctx context.Context, accountID string) (Wallet, error)
	// ClaimWelcomeBonus credits the bonus exactly once per account;
	// ErrBonusClaimed on repeats. Runs as one transaction.
	ClaimWelcomeBonus(ctx context.Context, accountID string, amount int64, claimedAt time.Time) (Wallet, error)
	// SettleRoll debits the wager, credits the payout, and records the roll
	// in one transaction. ErrInsufficientFunds when the wager exceeds the
	// balance.
	SettleRoll(ctx context.Context, roll CasinoRoll) (Wallet, error)
	// RecordPurchase debits the price and records the purchase in one
	// transaction. ErrInsufficientFunds when the balance cannot cover it.
	RecordPurchase(ctx context.Context, purchase Purchase) (Wallet, error)
	Leaderboard(ctx context.Context, orderBy string, limit int) ([]LeaderboardRow, error)
}

// ShopRepository stores the purchasable catalog.
type ShopRepository interface {
	ListItems(ctx context.Context) ([]ShopItem, error)
	GetItem(ctx context.Context, id string) (ShopItem, error)
}

// ForumRepository stores threads and their posts.
type ForumRepository interface {
	CreateThread(ctx context.Context, thread ForumThread) error
	GetThread(ctx context.Context, id string) (ForumThread, error)
	ListThreads(ctx context.Context, limit int) ([]ForumThread, error)
	CreatePost(ctx context.Context, post ForumPost) error
	ListPosts(ctx context.Context, threadID string) ([]ForumPost, error)
}
