package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/eldrun/eldrun/internal/application"
	"github.com/eldrun/eldrun/internal/persistence/sqlite"
	"github.com/eldrun/eldrun/internal/testfixtures"
)

// newTestServer wires the full stack over an in-memory database. The casino
// roll is pinned to a losing 30 for determinism.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	pool, err := sqlite.NewConnectionPool(dsn)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })
	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ids := testfixtures.NewIDGenerator(strings.ReplaceAll(t.Name(), "/", "_"))
	sessions := sqlite.NewSessionRepository(pool)
	board := sqlite.NewBoardRepository(pool)
	accounts := sqlite.NewAccountRepository(pool)
	wallets := sqlite.NewWalletRepository(pool)
	shop := sqlite.NewShopRepository(pool)
	forum := sqlite.NewForumRepository(pool)

	ops := application.NewOpsService(sessions, board, ids.NextFunc(), nil, nil)
	auth := application.NewAuthService(accounts, "test-secret", time.Hour, ids.NextFunc(), nil, nil)
	wallet := application.NewWalletService(wallets, 500, nil, nil)
	casino := application.NewCasinoService(wallets, func() int64 { return 30 }, ids.NextFunc(), nil, nil)
	shopSvc := application.NewShopService(shop, wallets, ids.NextFunc(), nil, nil)
	forumSvc := application.NewForumService(forum, ids.NextFunc(), nil, nil)
	leaderboard := application.NewLeaderboardService(wallets, nil)
	heatmap := application.NewHeatmap(nil)

	router := NewRouter(RouterConfig{
		Ops:            NewOpsHandler(ops, heatmap, nil),
		Stream:         NewStreamHandler(ops, time.Hour, nil, nil),
		Auth:           NewAuthHandler(auth, false, nil),
		Wallet:         NewWalletHandler(wallet, nil),
		Casino:         NewCasinoHandler(casino, nil),
		Shop:           NewShopHandler(shopSvc, nil),
		Forum:          NewForumHandler(forumSvc, nil),
		Leaderboard:    NewLeaderboardHandler(leaderboard, nil),
		Heatmap:        NewHeatmapHandler(heatmap, nil),
		RequireAccount: RequireAccount(auth, nil),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func registerAccount(t *testing.T, client *http.Client, baseURL, username string) {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/auth/register", map[string]string{
		"username": username,
		"password": "correct-horse-battery",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	server := newTestServer(t)
	client := newClient(t)

	var created struct {
		Session struct {
			ID    string `json:"id"`
			Code  string `json:"code"`
			Title string `json:"title"`
		} `json:"session"`
	}
	resp := postJSON(t, client, server.URL+"/sessions", map[string]string{"title": "Raid Night"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	decodeJSON(t, resp, &created)

	if !regexp.MustCompile(`^[A-Z0-9]{6}$`).MatchString(created.Session.Code) {
		t.Errorf("code = %q, want 6 uppercase alphanumerics", created.Session.Code)
	}
	if created.Session.Title != "Raid Night" {
		t.Errorf("title = %q", created.Session.Title)
	}

	resp = postJSON(t, client, server.URL+"/sessions/"+created.Session.Code+"/resources", map[string]any{
		"resource": "scrap",
		"delta":    100,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("resource status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	detailResp, err := client.Get(server.URL + "/sessions/" + created.Session.Code)
	if err != nil {
		t.Fatalf("GET session: %v", err)
	}
	if detailResp.StatusCode != http.StatusOK {
		t.Fatalf("detail status = %d", detailResp.StatusCode)
	}
	var detail struct {
		ResourceTotals map[string]int64 `json:"resourceTotals"`
		Roles          []struct {
			Role string `json:"role"`
		} `json:"roles"`
	}
	decodeJSON(t, detailResp, &detail)
	if detail.ResourceTotals["scrap"] != 100 {
		t.Errorf("scrap total = %d, want 100", detail.ResourceTotals["scrap"])
	}
	if len(detail.Roles) != 5 {
		t.Errorf("seeded roles = %d, want 5", len(detail.Roles))
	}
}

func TestChildRoutesReturn404ForUnknownCode(t *testing.T) {
	server := newTestServer(t)
	client := newClient(t)

	paths := []string{"/pins", "/alerts", "/resources", "/roles", "/timer"}
	for _, path := range paths {
		resp := postJSON(t, client, server.URL+"/sessions/ZZZZ99"+path, map[string]string{
			"resource": "wood", "role": "scout", "action": "start",
		})
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", path, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp, err := client.Get(server.URL + "/sessions/ZZZZ99")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("detail status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestTimerValidationOverHTTP(t *testing.T) {
	server := newTestServer(t)
	client := newClient(t)

	var created struct {
		Session struct {
			Code string `json:"code"`
		} `json:"session"`
	}
	resp := postJSON(t, client, server.URL+"/sessions", map[string]string{})
	decodeJSON(t, resp, &created)

	resp = postJSON(t, client, server.URL+"/sessions/"+created.Session.Code+"/timer", map[string]string{"action": "rewind"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown action status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, client, server.URL+"/sessions/"+created.Session.Code+"/timer", map[string]string{"action": "start"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d", resp.StatusCode)
	}
	var started struct {
		Timer struct {
			Status    string `json:"status"`
			ElapsedMs int64  `json:"elapsedMs"`
		} `json:"timer"`
	}
	decodeJSON(t, resp, &started)
	if started.Timer.Status != "running" {
		t.Errorf("status = %q, want running", started.Timer.Status)
	}

	before := time.Now()
	resp = postJSON(t, client, server.URL+"/sessions/"+created.Session.Code+"/timer", map[string]string{"action": "pause"})
	var paused struct {
		Timer struct {
			ElapsedMs int64 `json:"elapsedMs"`
		} `json:"timer"`
	}
	decodeJSON(t, resp, &paused)
	bound := time.Since(before) + 5*time.Second
	if paused.Timer.ElapsedMs < 0 || paused.Timer.ElapsedMs > bound.Milliseconds() {
		t.Errorf("elapsed = %dms, want within [0, %dms]", paused.Timer.ElapsedMs, bound.Milliseconds())
	}
}

func TestResourceValidationOverHTTP(t *testing.T) {
	server := newTestServer(t)
	client := newClient(t)

	var created struct {
		Session struct {
			Code string `json:"code"`
		} `json:"session"`
	}
	resp := postJSON(t, client, server.URL+"/sessions", map[string]string{})
	decodeJSON(t, resp, &created)

	resp = postJSON(t, client, server.URL+"/sessions/"+created.Session.Code+"/resources", map[string]any{"resource": "wood"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var body struct {
		Message string `json:"message"`
	}
	decodeJSON(t, resp, &body)
	if body.Message != "Missing resource or delta" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestBoardStreamHandshake(t *testing.T) {
	server := newTestServer(t)
	client := newClient(t)

	resp, err := client.Get(server.URL + "/ops/stream")
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing code status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err = client.Get(server.URL + "/ops/stream?code=ZZZZ99")
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown code status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	var created struct {
		Session struct {
			Code string `json:"code"`
		} `json:"session"`
	}
	createResp := postJSON(t, client, server.URL+"/sessions", map[string]string{})
	decodeJSON(t, createResp, &created)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/ops/stream?code="+created.Session.Code, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	streamResp, err := client.Do(req)
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	defer streamResp.Body.Close()

	if got := streamResp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("content type = %q", got)
	}

	buf := make([]byte, 8192)
	var received strings.Builder
	for {
		n, err := streamResp.Body.Read(buf)
		received.Write(buf[:n])
		if err != nil {
			break
		}
		if strings.Contains(received.String(), ": ping") {
			break
		}
	}
	if !strings.Contains(received.String(), "event: snapshot") {
		t.Errorf("stream missing snapshot event: %q", received.String())
	}
	if !strings.Contains(received.String(), ": ping") {
		t.Errorf("stream missing ping: %q", received.String())
	}
}

func TestEventsChannelHandshake(t *testing.T) {
	server := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/events", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()

	buf := make([]byte, 4096)
	var received strings.Builder
	for {
		n, err := resp.Body.Read(buf)
		received.Write(buf[:n])
		if err != nil || strings.Contains(received.String(), "event: announcement") {
			break
		}
	}
	if !strings.Contains(received.String(), "event: connected") {
		t.Errorf("missing connection ack: %q", received.String())
	}
}

func TestAuthFlowOverHTTP(t *testing.T) {
	server := newTestServer(t)

	t.Run("register sets the session cookie", func(t *testing.T) {
		client := newClient(t)
		registerAccount(t, client, server.URL, "ranger")

		resp, err := client.Get(server.URL + "/auth/me")
		if err != nil {
			t.Fatalf("GET /auth/me: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("me status = %d", resp.StatusCode)
		}
		var me struct {
			Account struct {
				Username string `json:"username"`
			} `json:"account"`
		}
		decodeJSON(t, resp, &me)
		if me.Account.Username != "ranger" {
			t.Errorf("username = %q", me.Account.Username)
		}
	})

	t.Run("unauthenticated requests are rejected", func(t *testing.T) {
		client := newClient(t)
		resp, err := client.Get(server.URL + "/auth/me")
		if err != nil {
			t.Fatalf("GET /auth/me: %v", err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
		resp.Body.Close()
	})

	t.Run("logout clears the cookie", func(t *testing.T) {
		client := newClient(t)
		registerAccount(t, client, server.URL, "leaver")

		resp := postJSON(t, client, server.URL+"/auth/logout", nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("logout status = %d", resp.StatusCode)
		}
		resp.Body.Close()

		resp2, err := client.Get(server.URL + "/auth/me")
		if err != nil {
			t.Fatalf("GET /auth/me: %v", err)
		}
		if resp2.StatusCode != http.StatusUnauthorized {
			t.Errorf("status after logout = %d, want 401", resp2.StatusCode)
		}
		resp2.Body.Close()
	})
}

func TestWalletAndShopOverHTTP(t *testing.T) {
	server := newTestServer(t)
	client := newClient(t)
	registerAccount(t, client, server.URL, "spender")

	var wallet struct {
		Wallet struct {
			Balance int64 `json:"balance"`
		} `json:"wallet"`
	}

	resp := postJSON(t, client, server.URL+"/wallet/bonus", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("bonus status = %d", resp.StatusCode)
	}
	decodeJSON(t, resp, &wallet)
	if wallet.Wallet.Balance != 500 {
		t.Errorf("balance after bonus = %d, want 500", wallet.Wallet.Balance)
	}

	resp = postJSON(t, client, server.URL+"/wallet/bonus", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("second bonus status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()

	// Pinned losing roll: the wager is simply forfeited.
	resp = postJSON(t, client, server.URL+"/casino/rolls", map[string]int64{"wager": 100})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("roll status = %d", resp.StatusCode)
	}
	var roll struct {
		Result struct {
			Balance int64 `json:"balance"`
			Payout  int64 `json:"payout"`
		} `json:"result"`
	}
	decodeJSON(t, resp, &roll)
	if roll.Result.Payout != 0 || roll.Result.Balance != 400 {
		t.Errorf("roll result = %+v, want payout 0 balance 400", roll.Result)
	}

	resp = postJSON(t, client, server.URL+"/casino/rolls", map[string]int64{"wager": 10_000})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("overdraft roll status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, client, server.URL+"/shop/purchases", map[string]string{"itemId": "item-flare"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("purchase status = %d", resp.StatusCode)
	}
	var purchase struct {
		Wallet struct {
			Balance int64 `json:"balance"`
		} `json:"wallet"`
	}
	decodeJSON(t, resp, &purchase)
	if purchase.Wallet.Balance != 300 {
		t.Errorf("balance after purchase = %d, want 300", purchase.Wallet.Balance)
	}

	resp = postJSON(t, client, server.URL+"/shop/purchases", map[string]string{"itemId": "item-compass"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("overdraft purchase status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()

	lbResp, err := client.Get(server.URL + "/leaderboards?sort=balance")
	if err != nil {
		t.Fatalf("GET leaderboards: %v", err)
	}
	var board struct {
		Rows []struct {
			Username string `json:"username"`
			Balance  int64  `json:"balance"`
		} `json:"rows"`
	}
	decodeJSON(t, lbResp, &board)
	if len(board.Rows) == 0 || board.Rows[0].Username != "spender" {
		t.Errorf("leaderboard rows = %+v", board.Rows)
	}
}

func TestForumOverHTTP(t *testing.T) {
	server := newTestServer(t)
	client := newClient(t)

	resp := postJSON(t, client, server.URL+"/forum/threads", map[string]string{"title": "Hello", "body": "First"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous thread status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()

	registerAccount(t, client, server.URL, "poster")

	resp = postJSON(t, client, server.URL+"/forum/threads", map[string]string{"title": "Hello", "body": "First"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("thread status = %d", resp.StatusCode)
	}
	var created struct {
		Thread struct {
			ID string `json:"id"`
		} `json:"thread"`
	}
	decodeJSON(t, resp, &created)

	resp = postJSON(t, client, server.URL+"/forum/threads/"+created.Thread.ID+"/posts", map[string]string{"body": "A reply"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("reply status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	detailResp, err := client.Get(server.URL + "/forum/threads/" + created.Thread.ID)
	if err != nil {
		t.Fatalf("GET thread: %v", err)
	}
	var detail struct {
		Posts []struct {
			Body string `json:"body"`
		} `json:"posts"`
	}
	decodeJSON(t, detailResp, &detail)
	if len(detail.Posts) != 1 || detail.Posts[0].Body != "A reply" {
		t.Errorf("posts = %+v", detail.Posts)
	}
}

func TestHeatmapOverHTTP(t *testing.T) {
	server := newTestServer(t)
	client := newClient(t)

	resp := postJSON(t, client, server.URL+"/heatmap/events", map[string]any{"x": 120.5, "y": 88.0, "kind": "skirmish"})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("record status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, client, server.URL+"/heatmap/events", map[string]any{"kind": "skirmish"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing coords status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	getResp, err := client.Get(server.URL + "/heatmap")
	if err != nil {
		t.Fatalf("GET heatmap: %v", err)
	}
	var body struct {
		Points []struct {
			X    float64 `json:"x"`
			Kind string  `json:"kind"`
		} `json:"points"`
	}
	decodeJSON(t, getResp, &body)
	if len(body.Points) != 1 || body.Points[0].Kind != "skirmish" {
		t.Errorf("points = %+v", body.Points)
	}
}
