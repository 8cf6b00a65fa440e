package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eldrun/eldrun/internal/persistence"
)

// Leaderboard sort modes.
const (
	LeaderboardByBalance  = "balance"
	LeaderboardByWinnings = "winnings"

	leaderboardCap = 100
)

// LeaderboardService ranks accounts by wallet standing.
type LeaderboardService struct {
	wallets persistence.WalletRepository
	logger  *slog.Logger
}

// NewLeaderboardService wires dependencies for the leaderboard service.
func NewLeaderboardService(wallets persistence.WalletRepository, logger *slog.Logger) *LeaderboardService {
	return &LeaderboardService{wallets: wallets, logger: defaultLogger(logger)}
}

// Top returns up to 100 accounts ranked by the requested sort. An empty or
// unknown sort falls back to balance.
func (s *LeaderboardService) Top(ctx context.Context, sort string) ([]persistence.LeaderboardRow, error) {
	if sort != LeaderboardByWinnings {
		sort = LeaderboardByBalance
	}
	rows, err := s.wallets.Leaderboard(ctx, sort, leaderboardCap)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	return rows, nil
}
