package persistence

import "time"

// Session represents an ops board identified by a short shareable code.
type Session struct {
	ID             string
	Code           string
	Title          string
	Description    *string
	Status         string
	TimerStatus    string
	TimerStartAt   *time.Time
	TimerElapsedMs int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Pin is an immutable marker placed on the shared board.
type Pin struct {
	ID        string
	SessionID string
	Type      string
	Label     string
	Note      *string
	X         float64
	Y         float64
	CreatedAt time.Time
}

// Alert is a severity-tagged notice scoped to a session. Coordinates are
// optional; both are nil when the alert is not tied to a board position.
type Alert struct {
	ID        string
	SessionID string
	Type      string
	Severity  string
	Message   string
	X         *float64
	Y         *float64
	CreatedAt time.Time
}

// ResourceEvent is one append-only ledger entry against a named resource.
type ResourceEvent struct {
	ID        string
	SessionID string
	Resource  string
	Delta     int64
	Note      *string
	CreatedAt time.Time
}

// RoleAssignment binds an operational role to an optional nickname,
// one row per (session, role) pair.
type RoleAssignment struct {
	ID        string
	SessionID string
	Role      string
	Nickname  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Account is a registered site member.
type Account struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Wallet tracks an account's coin balance. Balance never goes negative;
// debits that would break that are rejected inside the store transaction.
type Wallet struct {
	AccountID      string
	Balance        int64
	BonusClaimedAt *time.Time
	UpdatedAt      time.Time
}

// ShopItem is a catalog entry purchasable with coins.
type ShopItem struct {
	ID          string
	Name        string
	Description string
	Price       int64
	CreatedAt   time.Time
}

// Purchase records a completed shop transaction.
type Purchase struct {
	ID        string
	AccountID string
	ItemID    string
	PricePaid int64
	CreatedAt time.Time
}

// CasinoRoll records one wager round, including the settled payout.
type CasinoRoll struct {
	ID        string
	AccountID string
	Wager     int64
	Roll      int64
	Payout    int64
	CreatedAt time.Time
}

// ForumThread is a top-level discussion entry.
type ForumThread struct {
	ID        string
	AuthorID  string
	Title     string
	Body      string
	CreatedAt time.Time
}

// ForumPost is a reply within a thread.
type ForumPost struct {
	ID        string
	ThreadID  string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}

// LeaderboardRow is a ranked account with its wallet standing.
type LeaderboardRow struct {
	AccountID string
	Username  string
	Balance   int64
	Winnings  int64
}
