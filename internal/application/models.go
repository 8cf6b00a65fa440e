package application

import (
	"time"

	"github.com/eldrun/eldrun/internal/persistence"
)

// Principal represents the authenticated account invoking a service method.
type Principal struct {
	AccountID string
	Username  string
}

// Session lifecycle states.
const (
	SessionStatusActive = "active"
	SessionStatusClosed = "closed"
)

// Timer states.
const (
	TimerStopped = "stopped"
	TimerRunning = "running"
	TimerPaused  = "paused"
)

// Timer actions accepted by the state machine.
const (
	TimerActionStart  = "start"
	TimerActionPause  = "pause"
	TimerActionResume = "resume"
	TimerActionReset  = "reset"
)

// DefaultRoles are seeded on every new session, unassigned.
var DefaultRoles = []string{"leader", "scout", "builder", "medic", "logistics"}

// Board defaults.
const (
	DefaultPinType = "note"
	DefaultPinX    = 4000
	DefaultPinY    = 4000

	DefaultAlertType     = "system"
	DefaultAlertSeverity = "info"
	DefaultAlertMessage  = "Alert"
)

// CreateSessionParams captures caller provided session fields.
type CreateSessionParams struct {
	Title       string
	Description string
}

// PinInput captures caller provided pin fields. Nil coordinates fall back to
// the board default position.
type PinInput struct {
	Type  string
	Label string
	Note  string
	X     *float64
	Y     *float64
}

// AlertInput captures caller provided alert fields. Nil coordinates are
// stored as null rather than defaulted.
type AlertInput struct {
	Type     string
	Severity string
	Message  string
	X        *float64
	Y        *float64
}

// ResourceEventInput captures one ledger entry. Delta is a pointer so a
// missing field is distinguishable from an explicit zero.
type ResourceEventInput struct {
	Resource string
	Delta    *float64
	Note     string
}

// RoleInput captures a role assignment request.
type RoleInput struct {
	Role     string
	Nickname string
}

// TimerState is the externally visible timer. ElapsedMs holds only the
// accumulated component; while running, callers add now-StartAt themselves.
type TimerState struct {
	Status    string
	StartAt   *time.Time
	ElapsedMs int64
}

// Snapshot is the full derived state of a session at one instant.
type Snapshot struct {
	Session        persistence.Session
	Pins           []persistence.Pin
	Roles          []persistence.RoleAssignment
	Alerts         []persistence.Alert
	Resources      []persistence.ResourceEvent
	ResourceTotals map[string]int64
}

// RollResult is the settled outcome of one casino wager.
type RollResult struct {
	Roll    int64
	Wager   int64
	Payout  int64
	Balance int64
}

// RegisterParams captures a new account request.
type RegisterParams struct {
	Username string
	Password string
}

// AuthResult bundles the authenticated account with its signed token.
type AuthResult struct {
	Account   persistence.Account
	Token     string
	ExpiresAt time.Time
}

// ThreadInput captures a new forum thread.
type ThreadInput struct {
	Title string
	Body  string
}

// ThreadDetail is a thread with its replies, oldest first.
type ThreadDetail struct {
	Thread persistence.ForumThread
	Posts  []persistence.ForumPost
}

// HeatmapPoint is one recorded activity coordinate.
type HeatmapPoint struct {
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Kind       string    `json:"kind"`
	RecordedAt time.Time `json:"recordedAt"`
}
