package http

import "net/http"

// RouterConfig collects the handlers and middleware for the site mux.
type RouterConfig struct {
	Ops         *OpsHandler
	Stream      *StreamHandler
	Auth        *AuthHandler
	Wallet      *WalletHandler
	Casino      *CasinoHandler
	Shop        *ShopHandler
	Forum       *ForumHandler
	Leaderboard *LeaderboardHandler
	Heatmap     *HeatmapHandler

	// RequireAccount guards the account-scoped routes. Site-wide middleware
	// (request logging, rate limiting) goes in Middleware and wraps the
	// whole mux, outermost first.
	RequireAccount func(http.Handler) http.Handler
	Middleware     []func(http.Handler) http.Handler
}

// NewRouter builds the HTTP surface.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	guard := cfg.RequireAccount
	if guard == nil {
		guard = func(next http.Handler) http.Handler { return next }
	}
	protected := func(h http.HandlerFunc) http.Handler { return guard(h) }

	if cfg.Ops != nil {
		mux.HandleFunc("POST /sessions", cfg.Ops.CreateSession)
		mux.HandleFunc("GET /sessions/{code}", cfg.Ops.SessionDetail)
		mux.HandleFunc("POST /sessions/{code}/timer", cfg.Ops.Timer)
		mux.HandleFunc("POST /sessions/{code}/pins", cfg.Ops.AddPin)
		mux.HandleFunc("POST /sessions/{code}/alerts", cfg.Ops.AddAlert)
		mux.HandleFunc("POST /sessions/{code}/resources", cfg.Ops.RecordResourceEvent)
		mux.HandleFunc("POST /sessions/{code}/roles", cfg.Ops.AssignRole)
	}

	if cfg.Stream != nil {
		mux.HandleFunc("GET /ops/stream", cfg.Stream.Board)
		mux.HandleFunc("GET /events", cfg.Stream.Events)
	}

	if cfg.Auth != nil {
		mux.HandleFunc("POST /auth/register", cfg.Auth.Register)
		mux.HandleFunc("POST /auth/login", cfg.Auth.Login)
		mux.HandleFunc("POST /auth/logout", cfg.Auth.Logout)
		mux.Handle("GET /auth/me", protected(cfg.Auth.Me))
	}

	if cfg.Wallet != nil {
		mux.Handle("GET /wallet", protected(cfg.Wallet.Wallet))
		mux.Handle("POST /wallet/bonus", protected(cfg.Wallet.ClaimBonus))
	}

	if cfg.Casino != nil {
		mux.Handle("POST /casino/rolls", protected(cfg.Casino.Roll))
	}

	if cfg.Shop != nil {
		mux.HandleFunc("GET /shop/items", cfg.Shop.ListItems)
		mux.Handle("POST /shop/purchases", protected(cfg.Shop.Purchase))
	}

	if cfg.Forum != nil {
		mux.HandleFunc("GET /forum/threads", cfg.Forum.ListThreads)
		mux.Handle("POST /forum/threads", protected(cfg.Forum.CreateThread))
		mux.HandleFunc("GET /forum/threads/{id}", cfg.Forum.Thread)
		mux.Handle("POST /forum/threads/{id}/posts", protected(cfg.Forum.Reply))
	}

	if cfg.Leaderboard != nil {
		mux.HandleFunc("GET /leaderboards", cfg.Leaderboard.Top)
	}

	if cfg.Heatmap != nil {
		mux.HandleFunc("GET /heatmap", cfg.Heatmap.Points)
		mux.HandleFunc("POST /heatmap/events", cfg.Heatmap.RecordEvent)
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}
