package sqlite

import (
	"context"
	"database/sql"

	"github.com/eldrun/eldrun/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	pool *ConnectionPool
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// CreateSession inserts a new session row. A code collision surfaces as
// persistence.ErrAlreadyExists via the UNIQUE constraint on code.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) error {
	if session.ID == "" || session.Code == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO ops_sessions
			(id, code, title, description, status, timer_status, timer_start_at, timer_elapsed_ms, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.Code,
		session.Title,
		nullString(session.Description),
		session.Status,
		session.TimerStatus,
		formatTimePtr(session.TimerStartAt),
		session.TimerElapsedMs,
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
	)
	return mapError(err)
}

// GetSessionByCode performs the exact-match lookup used as the entry gate for
// every board operation.
func (r *SessionRepository) GetSessionByCode(ctx context.Context, code string) (persistence.Session, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, code, title, description, status, timer_status, timer_start_at, timer_elapsed_ms, created_at, updated_at
		FROM ops_sessions
		WHERE code = ?`, code)
	return scanSession(row)
}

// UpdateSessionTimer persists the timer columns for an existing session.
func (r *SessionRepository) UpdateSessionTimer(ctx context.Context, session persistence.Session) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE ops_sessions
		SET timer_status = ?, timer_start_at = ?, timer_elapsed_ms = ?, updated_at = ?
		WHERE id = ?`,
		session.TimerStatus,
		formatTimePtr(session.TimerStartAt),
		session.TimerElapsedMs,
		formatTime(session.UpdatedAt),
		session.ID,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanSession(row *sql.Row) (persistence.Session, error) {
	var (
		session     persistence.Session
		description sql.NullString
		startAt     sql.NullString
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(
		&session.ID,
		&session.Code,
		&session.Title,
		&description,
		&session.Status,
		&session.TimerStatus,
		&startAt,
		&session.TimerElapsedMs,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}

	session.Description = stringPtr(description)
	if session.TimerStartAt, err = parseTimePtr(startAt); err != nil {
		return persistence.Session{}, err
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Session{}, err
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}
