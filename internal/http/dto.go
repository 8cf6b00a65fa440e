package http

import (
	"time"

	"github.com/eldrun/eldrun/internal/application"
	"github.com/eldrun/eldrun/internal/persistence"
)

type sessionPayload struct {
	ID             string     `json:"id"`
	Code           string     `json:"code"`
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	Status         string     `json:"status"`
	TimerStatus    string     `json:"timerStatus"`
	TimerStartAt   *time.Time `json:"timerStartAt,omitempty"`
	TimerElapsedMs int64      `json:"timerElapsedMs"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func toSessionPayload(s persistence.Session) sessionPayload {
	return sessionPayload{
		ID:             s.ID,
		Code:           s.Code,
		Title:          s.Title,
		Description:    s.Description,
		Status:         s.Status,
		TimerStatus:    s.TimerStatus,
		TimerStartAt:   s.TimerStartAt,
		TimerElapsedMs: s.TimerElapsedMs,
		CreatedAt:      s.CreatedAt,
	}
}

type pinPayload struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Label     string    `json:"label"`
	Note      *string   `json:"note,omitempty"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	CreatedAt time.Time `json:"createdAt"`
}

func toPinPayload(p persistence.Pin) pinPayload {
	return pinPayload{
		ID:        p.ID,
		Type:      p.Type,
		Label:     p.Label,
		Note:      p.Note,
		X:         p.X,
		Y:         p.Y,
		CreatedAt: p.CreatedAt,
	}
}

type alertPayload struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	X         *float64  `json:"x"`
	Y         *float64  `json:"y"`
	CreatedAt time.Time `json:"createdAt"`
}

func toAlertPayload(a persistence.Alert) alertPayload {
	return alertPayload{
		ID:        a.ID,
		Type:      a.Type,
		Severity:  a.Severity,
		Message:   a.Message,
		X:         a.X,
		Y:         a.Y,
		CreatedAt: a.CreatedAt,
	}
}

type resourceEventPayload struct {
	ID        string    `json:"id"`
	Resource  string    `json:"resource"`
	Delta     int64     `json:"delta"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toResourceEventPayload(e persistence.ResourceEvent) resourceEventPayload {
	return resourceEventPayload{
		ID:        e.ID,
		Resource:  e.Resource,
		Delta:     e.Delta,
		Note:      e.Note,
		CreatedAt: e.CreatedAt,
	}
}

type roleAssignmentPayload struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Nickname  *string   `json:"nickname"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toRoleAssignmentPayload(a persistence.RoleAssignment) roleAssignmentPayload {
	return roleAssignmentPayload{
		ID:        a.ID,
		Role:      a.Role,
		Nickname:  a.Nickname,
		UpdatedAt: a.UpdatedAt,
	}
}

type timerPayload struct {
	Status    string     `json:"status"`
	StartAt   *time.Time `json:"startAt"`
	ElapsedMs int64      `json:"elapsedMs"`
}

func toTimerPayload(t application.TimerState) timerPayload {
	return timerPayload{Status: t.Status, StartAt: t.StartAt, ElapsedMs: t.ElapsedMs}
}

type snapshotPayload struct {
	Session        sessionPayload          `json:"session"`
	Pins           []pinPayload            `json:"pins"`
	Roles          []roleAssignmentPayload `json:"roles"`
	Alerts         []alertPayload          `json:"alerts"`
	Resources      []resourceEventPayload  `json:"resources"`
	ResourceTotals map[string]int64        `json:"resourceTotals"`
	LatestAlertAt  *time.Time              `json:"latestAlertAt,omitempty"`
}

func toSnapshotPayload(s application.Snapshot) snapshotPayload {
	payload := snapshotPayload{
		Session:        toSessionPayload(s.Session),
		Pins:           make([]pinPayload, 0, len(s.Pins)),
		Roles:          make([]roleAssignmentPayload, 0, len(s.Roles)),
		Alerts:         make([]alertPayload, 0, len(s.Alerts)),
		Resources:      make([]resourceEventPayload, 0, len(s.Resources)),
		ResourceTotals: s.ResourceTotals,
	}
	if payload.ResourceTotals == nil {
		payload.ResourceTotals = map[string]int64{}
	}
	for _, pin := range s.Pins {
		payload.Pins = append(payload.Pins, toPinPayload(pin))
	}
	for _, role := range s.Roles {
		payload.Roles = append(payload.Roles, toRoleAssignmentPayload(role))
	}
	for _, alert := range s.Alerts {
		payload.Alerts = append(payload.Alerts, toAlertPayload(alert))
	}
	for _, event := range s.Resources {
		payload.Resources = append(payload.Resources, toResourceEventPayload(event))
	}
	return payload
}

type walletPayload struct {
	Balance        int64      `json:"balance"`
	BonusClaimedAt *time.Time `json:"bonusClaimedAt,omitempty"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func toWalletPayload(w persistence.Wallet) walletPayload {
	return walletPayload{Balance: w.Balance, BonusClaimedAt: w.BonusClaimedAt, UpdatedAt: w.UpdatedAt}
}

type shopItemPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
}

func toShopItemPayload(item persistence.ShopItem) shopItemPayload {
	return shopItemPayload{ID: item.ID, Name: item.Name, Description: item.Description, Price: item.Price}
}

type threadPayload struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

func toThreadPayload(t persistence.ForumThread) threadPayload {
	return threadPayload{ID: t.ID, AuthorID: t.AuthorID, Title: t.Title, Body: t.Body, CreatedAt: t.CreatedAt}
}

type postPayload struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"threadId"`
	AuthorID  string    `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

func toPostPayload(p persistence.ForumPost) postPayload {
	return postPayload{ID: p.ID, ThreadID: p.ThreadID, AuthorID: p.AuthorID, Body: p.Body, CreatedAt: p.CreatedAt}
}

type leaderboardRowPayload struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
	Winnings int64  `json:"winnings"`
}
