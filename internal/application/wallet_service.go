package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eldrun/eldrun/internal/persistence"
)

// WalletService exposes balance reads and the one-time welcome bonus. The
// balance invariants themselves live in the store transactions.
type WalletService struct {
	wallets      persistence.WalletRepository
	welcomeBonus int64
	now          func() time.Time
	logger       *slog.Logger
}

// NewWalletService wires dependencies for the wallet service.
func NewWalletService(wallets persistence.WalletRepository, welcomeBonus int64, now func() time.Time, logger *slog.Logger) *WalletService {
	if now == nil {
		now = time.Now
	}
	return &WalletService{
		wallets:      wallets,
		welcomeBonus: welcomeBonus,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

// Wallet returns the account's current wallet.
func (s *WalletService) Wallet(ctx context.Context, principal Principal) (persistence.Wallet, error) {
	wallet, err := s.wallets.GetWallet(ctx, principal.AccountID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Wallet{}, ErrNotFound
		}
		return persistence.Wallet{}, fmt.Errorf("get wallet: %w", err)
	}
	return wallet, nil
}

// ClaimBonus credits the welcome bonus, at most once per account.
func (s *WalletService) ClaimBonus(ctx context.Context, principal Principal) (wallet persistence.Wallet, err error) {
	logger := serviceLogger(ctx, s.logger, "wallet", "claim_bonus", "account_id", principal.AccountID)
	defer func() {
		if err != nil {
			logger.Warn("bonus claim rejected", "error_kind", ErrorKind(err))
			return
		}
		logger.Info("bonus credited", "amount", s.welcomeBonus, "balance", wallet.Balance)
	}()

	wallet, err = s.wallets.ClaimWelcomeBonus(ctx, principal.AccountID, s.welcomeBonus, s.now())
	if err != nil {
		switch {
		case errors.Is(err, persistence.ErrBonusClaimed):
			return persistence.Wallet{}, ErrBonusClaimed
		case errors.Is(err, persistence.ErrNotFound):
			return persistence.Wallet{}, ErrNotFound
		default:
			return persistence.Wallet{}, fmt.Errorf("claim bonus: %w", err)
		}
	}
	return wallet, nil
}
