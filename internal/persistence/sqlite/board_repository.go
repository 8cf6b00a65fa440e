package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/eldrun/eldrun/internal/persistence"
)

// BoardRepository implements persistence.BoardRepository using SQLite.
type BoardRepository struct {
	pool *ConnectionPool
}

// NewBoardRepository creates a new SQLite board repository.
func NewBoardRepository(pool *ConnectionPool) *BoardRepository {
	return &BoardRepository{pool: pool}
}

// CreatePin appends a pin to the session's board.
func (r *BoardRepository) CreatePin(ctx context.Context, pin persistence.Pin) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO ops_pins (id, session_id, type, label, note, x, y, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		pin.ID, pin.SessionID, pin.Type, pin.Label, nullString(pin.Note), pin.X, pin.Y, formatTime(pin.CreatedAt),
	)
	return mapError(err)
}

// ListPins returns up to limit pins, newest first.
func (r *BoardRepository) ListPins(ctx context.Context, sessionID string, limit int) ([]persistence.Pin, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, session_id, type, label, note, x, y, created_at
		FROM ops_pins
		WHERE session_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var pins []persistence.Pin
	for rows.Next() {
		var (
			pin       persistence.Pin
			note      sql.NullString
			createdAt string
		)
		if err := rows.Scan(&pin.ID, &pin.SessionID, &pin.Type, &pin.Label, &note, &pin.X, &pin.Y, &createdAt); err != nil {
			return nil, err
		}
		pin.Note = stringPtr(note)
		if pin.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		pins = append(pins, pin)
	}
	return pins, rows.Err()
}

// CreateAlert appends an alert to the session's log.
func (r *BoardRepository) CreateAlert(ctx context.Context, alert persistence.Alert) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO ops_alerts (id, session_id, type, severity, message, x, y, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.ID, alert.SessionID, alert.Type, alert.Severity, alert.Message,
		nullFloat(alert.X), nullFloat(alert.Y), formatTime(alert.CreatedAt),
	)
	return mapError(err)
}

// ListAlerts returns up to limit alerts, newest first.
func (r *BoardRepository) ListAlerts(ctx context.Context, sessionID string, limit int) ([]persistence.Alert, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, session_id, type, severity, message, x, y, created_at
		FROM ops_alerts
		WHERE session_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var alerts []persistence.Alert
	for rows.Next() {
		var (
			alert     persistence.Alert
			x, y      sql.NullFloat64
			createdAt string
		)
		if err := rows.Scan(&alert.ID, &alert.SessionID, &alert.Type, &alert.Severity, &alert.Message, &x, &y, &createdAt); err != nil {
			return nil, err
		}
		alert.X = floatPtr(x)
		alert.Y = floatPtr(y)
		if alert.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// LatestAlertAt returns the timestamp of the most recent alert, or nil when
// the session has none.
func (r *BoardRepository) LatestAlertAt(ctx context.Context, sessionID string) (*time.Time, error) {
	var latest sql.NullString
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT MAX(created_at) FROM ops_alerts WHERE session_id = ?`, sessionID,
	).Scan(&latest)
	if err != nil {
		return nil, mapError(err)
	}
	return parseTimePtr(latest)
}

// CreateResourceEvent appends one ledger entry. Entries are never mutated.
func (r *BoardRepository) CreateResourceEvent(ctx context.Context, event persistence.ResourceEvent) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO ops_resource_events (id, session_id, resource, delta, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID, event.SessionID, event.Resource, event.Delta, nullString(event.Note), formatTime(event.CreatedAt),
	)
	return mapError(err)
}

// ListResourceEvents returns up to limit ledger entries, newest first.
func (r *BoardRepository) ListResourceEvents(ctx context.Context, sessionID string, limit int) ([]persistence.ResourceEvent, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, session_id, resource, delta, note, created_at
		FROM ops_resource_events
		WHERE session_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var events []persistence.ResourceEvent
	for rows.Next() {
		var (
			event     persistence.ResourceEvent
			note      sql.NullString
			createdAt string
		)
		if err := rows.Scan(&event.ID, &event.SessionID, &event.Resource, &event.Delta, &note, &createdAt); err != nil {
			return nil, err
		}
		event.Note = stringPtr(note)
		if event.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// SumResourceDeltas folds the complete ledger into per-resource totals.
// Totals always reflect every event, not the capped display window.
func (r *BoardRepository) SumResourceDeltas(ctx context.Context, sessionID string) (map[string]int64, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT resource, SUM(delta)
		FROM ops_resource_events
		WHERE session_id = ?
		GROUP BY resource`, sessionID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var (
			resource string
			total    int64
		)
		if err := rows.Scan(&resource, &total); err != nil {
			return nil, err
		}
		totals[resource] = total
	}
	return totals, rows.Err()
}

// CreateRoleAssignment inserts a role row.
func (r *BoardRepository) CreateRoleAssignment(ctx context.Context, assignment persistence.RoleAssignment) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO ops_role_assignments (id, session_id, role, nickname, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		assignment.ID, assignment.SessionID, assignment.Role, nullString(assignment.Nickname),
		formatTime(assignment.CreatedAt), formatTime(assignment.UpdatedAt),
	)
	return mapError(err)
}

// GetRoleAssignment returns the first row matching (session, role).
func (r *BoardRepository) GetRoleAssignment(ctx context.Context, sessionID, role string) (persistence.RoleAssignment, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, session_id, role, nickname, created_at, updated_at
		FROM ops_role_assignments
		WHERE session_id = ? AND role = ?
		ORDER BY created_at ASC, id ASC
		LIMIT 1`, sessionID, role)
	return scanRoleAssignment(row)
}

// UpdateRoleNickname rewrites the nickname of an existing assignment.
func (r *BoardRepository) UpdateRoleNickname(ctx context.Context, id string, nickname *string, updatedAt time.Time) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE ops_role_assignments SET nickname = ?, updated_at = ? WHERE id = ?`,
		nullString(nickname), formatTime(updatedAt), id,
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

// ListRoleAssignments returns all assignments for the session ordered by role.
func (r *BoardRepository) ListRoleAssignments(ctx context.Context, sessionID string) ([]persistence.RoleAssignment, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, session_id, role, nickname, created_at, updated_at
		FROM ops_role_assignments
		WHERE session_id = ?
		ORDER BY role ASC`, sessionID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var assignments []persistence.RoleAssignment
	for rows.Next() {
		var (
			assignment persistence.RoleAssignment
			nickname   sql.NullString
			createdAt  string
			updatedAt  string
		)
		if err := rows.Scan(&assignment.ID, &assignment.SessionID, &assignment.Role, &nickname, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		assignment.Nickname = stringPtr(nickname)
		if assignment.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if assignment.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	return assignments, rows.Err()
}

func scanRoleAssignment(row *sql.Row) (persistence.RoleAssignment, error) {
	var (
		assignment persistence.RoleAssignment
		nickname   sql.NullString
		createdAt  string
		updatedAt  string
	)
	err := row.Scan(&assignment.ID, &assignment.SessionID, &assignment.Role, &nickname, &createdAt, &updatedAt)
	if err != nil {
		return persistence.RoleAssignment{}, mapError(err)
	}
	assignment.Nickname = stringPtr(nickname)
	if assignment.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.RoleAssignment{}, err
	}
	if assignment.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.RoleAssignment{}, err
	}
	return assignment, nil
}
