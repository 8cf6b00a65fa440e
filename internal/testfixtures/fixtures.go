package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/eldrun/eldrun/internal/persistence"
)

var (
	sessionCounter uint64
	accountCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// SessionFixture represents a deterministic ops session record.
type SessionFixture struct {
	ID             string
	Code           string
	Title          string
	Status         string
	TimerStatus    string
	TimerElapsedMs int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session fixture with optional
// overrides.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := SessionFixture{
		ID:          fmt.Sprintf("session-%03d", idx),
		Code:        fmt.Sprintf("FIX%03d", idx),
		Title:       fmt.Sprintf("Session %03d", idx),
		Status:      "active",
		TimerStatus: "stopped",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionCode overrides the generated join code.
func WithSessionCode(code string) SessionOption {
	return func(f *SessionFixture) { f.Code = code }
}

// WithSessionTitle overrides the generated title.
func WithSessionTitle(title string) SessionOption {
	return func(f *SessionFixture) { f.Title = title }
}

// Persistence converts the fixture into a persistence model.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:             f.ID,
		Code:           f.Code,
		Title:          f.Title,
		Status:         f.Status,
		TimerStatus:    f.TimerStatus,
		TimerElapsedMs: f.TimerElapsedMs,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

// AccountFixture represents a deterministic account record.
type AccountFixture struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// AccountOption configures the generated account fixture.
type AccountOption func(*AccountFixture)

// NewAccountFixture returns a deterministic account fixture with optional
// overrides.
func NewAccountFixture(opts ...AccountOption) AccountFixture {
	idx := atomic.AddUint64(&accountCounter, 1)
	fixture := AccountFixture{
		ID:           fmt.Sprintf("account-%03d", idx),
		Username:     fmt.Sprintf("player%03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUsername overrides the generated username.
func WithUsername(username string) AccountOption {
	return func(f *AccountFixture) { f.Username = username }
}

// Persistence converts the fixture into a persistence model.
func (f AccountFixture) Persistence() persistence.Account {
	return persistence.Account{
		ID:           f.ID,
		Username:     f.Username,
		PasswordHash: f.PasswordHash,
		CreatedAt:    f.CreatedAt,
	}
}
