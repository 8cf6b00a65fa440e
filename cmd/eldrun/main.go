package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/eldrun/eldrun/internal/application"
	"github.com/eldrun/eldrun/internal/config"
	httptransport "github.com/eldrun/eldrun/internal/http"
	"github.com/eldrun/eldrun/internal/logging"
	"github.com/eldrun/eldrun/internal/persistence/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	sessionRepo := sqlite.NewSessionRepository(pool)
	boardRepo := sqlite.NewBoardRepository(pool)
	accountRepo := sqlite.NewAccountRepository(pool)
	walletRepo := sqlite.NewWalletRepository(pool)
	shopRepo := sqlite.NewShopRepository(pool)
	forumRepo := sqlite.NewForumRepository(pool)

	opsService := application.NewOpsService(sessionRepo, boardRepo, idGenerator, now, logger)
	authService := application.NewAuthService(accountRepo, cfg.SessionSecret, cfg.SessionTTL, idGenerator, now, logger)
	walletService := application.NewWalletService(walletRepo, cfg.WelcomeBonus, now, logger)
	casinoService := application.NewCasinoService(walletRepo, nil, idGenerator, now, logger)
	shopService := application.NewShopService(shopRepo, walletRepo, idGenerator, now, logger)
	forumService := application.NewForumService(forumRepo, idGenerator, now, logger)
	leaderboardService := application.NewLeaderboardService(walletRepo, logger)
	heatmap := application.NewHeatmap(now)

	rateLimiter := httptransport.NewRateLimiter(ctx, cfg.RateLimitWindow, cfg.RateLimitRequests, now, logger)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Ops:            httptransport.NewOpsHandler(opsService, heatmap, logger),
		Stream:         httptransport.NewStreamHandler(opsService, cfg.StreamInterval, now, logger),
		Auth:           httptransport.NewAuthHandler(authService, false, logger),
		Wallet:         httptransport.NewWalletHandler(walletService, logger),
		Casino:         httptransport.NewCasinoHandler(casinoService, logger),
		Shop:           httptransport.NewShopHandler(shopService, logger),
		Forum:          httptransport.NewForumHandler(forumService, logger),
		Leaderboard:    httptransport.NewLeaderboardHandler(leaderboardService, logger),
		Heatmap:        httptransport.NewHeatmapHandler(heatmap, logger),
		RequireAccount: httptransport.RequireAccount(authService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			rateLimiter.Middleware,
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Long write timeout so the event streams are not cut off mid-connection.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("eldrun API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
