package application

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/eldrun/eldrun/internal/persistence"
)

const (
	sessionCodeLength   = 6
	sessionCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	codeAttempts        = 5

	// boardDisplayCap bounds the lists returned for display. Resource
	// totals are never subject to this cap.
	boardDisplayCap = 50

	defaultSessionTitle = "Ops Session"
)

// OpsService orchestrates the session registry, timer state machine, board
// event log, and snapshot assembly.
type OpsService struct {
	sessions    persistence.SessionRepository
	board       persistence.BoardRepository
	idGenerator func() string
	newCode     func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewOpsService constructs the service with the provided dependencies.
func NewOpsService(sessions persistence.SessionRepository, board persistence.BoardRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *OpsService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &OpsService{
		sessions:    sessions,
		board:       board,
		idGenerator: idGenerator,
		newCode:     randomSessionCode,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *OpsService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "OpsService", operation, attrs...)
}

// CreateSession generates a shareable code, persists the session, and seeds
// the default role slots.
func (s *OpsService) CreateSession(ctx context.Context, params CreateSessionParams) (session persistence.Session, err error) {
	logger := s.loggerWith(ctx, "CreateSession")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_id", session.ID, "code", session.Code).InfoContext(ctx, "session created")
	}()

	title := strings.TrimSpace(params.Title)
	if title == "" {
		title = defaultSessionTitle
	}
	var description *string
	if trimmed := strings.TrimSpace(params.Description); trimmed != "" {
		description = &trimmed
	}

	now := s.now()
	session = persistence.Session{
		ID:          s.idGenerator(),
		Title:       title,
		Description: description,
		Status:      SessionStatusActive,
		TimerStatus: TimerStopped,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Code generation and insertion are not wrapped in one transaction;
	// a collision between concurrent requests just costs a retry.
	for attempt := 1; ; attempt++ {
		session.Code = s.newCode()
		err = s.sessions.CreateSession(ctx, session)
		if err == nil {
			break
		}
		if errors.Is(err, persistence.ErrAlreadyExists) && attempt < codeAttempts {
			continue
		}
		err = fmt.Errorf("create session: %w", err)
		return
	}

	err = s.seedDefaultRoles(ctx, session.ID)
	return
}

// seedDefaultRoles upserts the five standard role slots. It is a no-op for
// roles that already exist, so re-running after a partial failure is safe.
func (s *OpsService) seedDefaultRoles(ctx context.Context, sessionID string) error {
	now := s.now()
	for _, role := range DefaultRoles {
		_, err := s.board.GetRoleAssignment(ctx, sessionID, role)
		if err == nil {
			continue
		}
		if !errors.Is(err, persistence.ErrNotFound) {
			return fmt.Errorf("seed role %s: %w", role, err)
		}
		assignment := persistence.RoleAssignment{
			ID:        s.idGenerator(),
			SessionID: sessionID,
			Role:      role,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.board.CreateRoleAssignment(ctx, assignment); err != nil {
			return fmt.Errorf("seed role %s: %w", role, err)
		}
	}
	return nil
}

// GetSessionByCode resolves a session or reports ErrNotFound. Every board
// operation goes through this gate before touching child records.
func (s *OpsService) GetSessionByCode(ctx context.Context, code string) (persistence.Session, error) {
	session, err := s.sessions.GetSessionByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Session{}, ErrNotFound
		}
		return persistence.Session{}, err
	}
	return session, nil
}

// BuildSnapshot assembles the full derived state for a resolved session.
func (s *OpsService) BuildSnapshot(ctx context.Context, session persistence.Session) (Snapshot, error) {
	pins, err := s.board.ListPins(ctx, session.ID, boardDisplayCap)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list pins: %w", err)
	}
	roles, err := s.board.ListRoleAssignments(ctx, session.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list roles: %w", err)
	}
	alerts, err := s.board.ListAlerts(ctx, session.ID, boardDisplayCap)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list alerts: %w", err)
	}
	resources, err := s.board.ListResourceEvents(ctx, session.ID, boardDisplayCap)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list resource events: %w", err)
	}
	totals, err := s.board.SumResourceDeltas(ctx, session.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("sum resource deltas: %w", err)
	}

	return Snapshot{
		Session:        session,
		Pins:           pins,
		Roles:          roles,
		Alerts:         alerts,
		Resources:      resources,
		ResourceTotals: totals,
	}, nil
}

// SessionDetail resolves a session by code and returns its snapshot.
func (s *OpsService) SessionDetail(ctx context.Context, code string) (Snapshot, error) {
	session, err := s.GetSessionByCode(ctx, code)
	if err != nil {
		return Snapshot{}, err
	}
	return s.BuildSnapshot(ctx, session)
}

// LatestAlertAt reports the most recent alert timestamp for the session.
func (s *OpsService) LatestAlertAt(ctx context.Context, sessionID string) (*time.Time, error) {
	return s.board.LatestAlertAt(ctx, sessionID)
}

// Timer applies one of start/pause/resume/reset to the session's timer.
//
// The stored state is only the accumulated elapsed component plus the start
// instant of the current running interval; no background clock ticks.
func (s *OpsService) Timer(ctx context.Context, code, action string) (state TimerState, err error) {
	logger := s.loggerWith(ctx, "Timer", "code", code, "action", action)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "timer action failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "timer action applied", "timer_status", state.Status, "elapsed_ms", state.ElapsedMs)
	}()

	var session persistence.Session
	session, err = s.GetSessionByCode(ctx, code)
	if err != nil {
		return
	}

	now := s.now()
	switch action {
	case TimerActionStart:
		// Start is a restart: elapsed resets even when already running.
		session.TimerStatus = TimerRunning
		session.TimerElapsedMs = 0
		session.TimerStartAt = &now
	case TimerActionPause:
		if session.TimerStatus == TimerRunning && session.TimerStartAt != nil {
			delta := now.Sub(*session.TimerStartAt).Milliseconds()
			if delta < 0 {
				// Clock skew between writes; never subtract time.
				delta = 0
			}
			session.TimerElapsedMs += delta
		}
		session.TimerStatus = TimerPaused
		session.TimerStartAt = nil
	case TimerActionResume:
		session.TimerStatus = TimerRunning
		session.TimerStartAt = &now
	case TimerActionReset:
		session.TimerStatus = TimerStopped
		session.TimerStartAt = nil
		session.TimerElapsedMs = 0
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, action)
		return
	}

	session.UpdatedAt = now
	if err = s.sessions.UpdateSessionTimer(ctx, session); err != nil {
		err = fmt.Errorf("persist timer state: %w", err)
		return
	}

	state = TimerState{
		Status:    session.TimerStatus,
		StartAt:   session.TimerStartAt,
		ElapsedMs: session.TimerElapsedMs,
	}
	return
}

// AddPin appends a marker to the session's board.
func (s *OpsService) AddPin(ctx context.Context, code string, input PinInput) (persistence.Pin, error) {
	session, err := s.GetSessionByCode(ctx, code)
	if err != nil {
		return persistence.Pin{}, err
	}

	pinType := strings.TrimSpace(input.Type)
	if pinType == "" {
		pinType = DefaultPinType
	}
	label := strings.TrimSpace(input.Label)
	if label == "" {
		label = strings.ToUpper(pinType)
	}
	var note *string
	if trimmed := strings.TrimSpace(input.Note); trimmed != "" {
		note = &trimmed
	}

	pin := persistence.Pin{
		ID:        s.idGenerator(),
		SessionID: session.ID,
		Type:      pinType,
		Label:     label,
		Note:      note,
		X:         finiteOr(input.X, DefaultPinX),
		Y:         finiteOr(input.Y, DefaultPinY),
		CreatedAt: s.now(),
	}
	if err := s.board.CreatePin(ctx, pin); err != nil {
		return persistence.Pin{}, fmt.Errorf("create pin: %w", err)
	}

	s.loggerWith(ctx, "AddPin", "session_id", session.ID, "pin_id", pin.ID).InfoContext(ctx, "pin added")
	return pin, nil
}

// AddAlert appends an alert to the session's log.
func (s *OpsService) AddAlert(ctx context.Context, code string, input AlertInput) (persistence.Alert, error) {
	session, err := s.GetSessionByCode(ctx, code)
	if err != nil {
		return persistence.Alert{}, err
	}

	alertType := strings.TrimSpace(input.Type)
	if alertType == "" {
		alertType = DefaultAlertType
	}
	severity := strings.TrimSpace(input.Severity)
	if severity == "" {
		severity = DefaultAlertSeverity
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		message = DefaultAlertMessage
	}

	alert := persistence.Alert{
		ID:        s.idGenerator(),
		SessionID: session.ID,
		Type:      alertType,
		Severity:  severity,
		Message:   message,
		X:         finitePtr(input.X),
		Y:         finitePtr(input.Y),
		CreatedAt: s.now(),
	}
	if err := s.board.CreateAlert(ctx, alert); err != nil {
		return persistence.Alert{}, fmt.Errorf("create alert: %w", err)
	}

	s.loggerWith(ctx, "AddAlert", "session_id", session.ID, "severity", alert.Severity).InfoContext(ctx, "alert added")
	return alert, nil
}

// RecordResourceEvent appends one ledger entry. The delta is truncated
// toward zero; fractional quantities are not supported.
func (s *OpsService) RecordResourceEvent(ctx context.Context, code string, input ResourceEventInput) (persistence.ResourceEvent, error) {
	session, err := s.GetSessionByCode(ctx, code)
	if err != nil {
		return persistence.ResourceEvent{}, err
	}

	resource := strings.TrimSpace(input.Resource)
	if resource == "" || input.Delta == nil || math.IsNaN(*input.Delta) || math.IsInf(*input.Delta, 0) {
		vErr := &ValidationError{}
		vErr.add("resource", "Missing resource or delta")
		return persistence.ResourceEvent{}, vErr
	}

	var note *string
	if trimmed := strings.TrimSpace(input.Note); trimmed != "" {
		note = &trimmed
	}

	event := persistence.ResourceEvent{
		ID:        s.idGenerator(),
		SessionID: session.ID,
		Resource:  resource,
		Delta:     int64(*input.Delta),
		Note:      note,
		CreatedAt: s.now(),
	}
	if err := s.board.CreateResourceEvent(ctx, event); err != nil {
		return persistence.ResourceEvent{}, fmt.Errorf("create resource event: %w", err)
	}

	s.loggerWith(ctx, "RecordResourceEvent", "session_id", session.ID, "resource", resource, "delta", event.Delta).InfoContext(ctx, "resource event recorded")
	return event, nil
}

// AssignRole sets or replaces the nickname bound to a role slot.
//
// This is an upsert keyed on the first matching row, not a database-level
// unique upsert: concurrent identical requests can race and leave duplicate
// rows. Accepted limitation given how the board is used.
func (s *OpsService) AssignRole(ctx context.Context, code string, input RoleInput) (persistence.RoleAssignment, error) {
	session, err := s.GetSessionByCode(ctx, code)
	if err != nil {
		return persistence.RoleAssignment{}, err
	}

	role := strings.TrimSpace(input.Role)
	if role == "" {
		vErr := &ValidationError{}
		vErr.add("role", "Missing role")
		return persistence.RoleAssignment{}, vErr
	}

	var nickname *string
	if trimmed := strings.TrimSpace(input.Nickname); trimmed != "" {
		nickname = &trimmed
	}

	now := s.now()
	existing, err := s.board.GetRoleAssignment(ctx, session.ID, role)
	switch {
	case err == nil:
		if err := s.board.UpdateRoleNickname(ctx, existing.ID, nickname, now); err != nil {
			return persistence.RoleAssignment{}, fmt.Errorf("update role nickname: %w", err)
		}
		existing.Nickname = nickname
		existing.UpdatedAt = now
		return existing, nil
	case errors.Is(err, persistence.ErrNotFound):
		assignment := persistence.RoleAssignment{
			ID:        s.idGenerator(),
			SessionID: session.ID,
			Role:      role,
			Nickname:  nickname,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.board.CreateRoleAssignment(ctx, assignment); err != nil {
			return persistence.RoleAssignment{}, fmt.Errorf("create role assignment: %w", err)
		}
		return assignment, nil
	default:
		return persistence.RoleAssignment{}, fmt.Errorf("lookup role assignment: %w", err)
	}
}

// ResourceTotals folds the session's complete ledger into per-resource sums.
func (s *OpsService) ResourceTotals(ctx context.Context, code string) (map[string]int64, error) {
	session, err := s.GetSessionByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.board.SumResourceDeltas(ctx, session.ID)
}

func finiteOr(value *float64, fallback float64) float64 {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return fallback
	}
	return *value
}

func finitePtr(value *float64) *float64 {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return nil
	}
	v := *value
	return &v
}

// randomSessionCode returns a short human-enterable code. The alphabet skips
// easily confused characters (I, L, O, 0, 1).
func randomSessionCode() string {
	buf := make([]byte, sessionCodeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand is effectively infallible; fall back to a
		// time-derived code rather than failing session creation.
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	for i, b := range buf {
		buf[i] = sessionCodeAlphabet[int(b)%len(sessionCodeAlphabet)]
	}
	return string(buf)
}
