package application

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/eldrun/eldrun/internal/persistence"
)

const (
	casinoRollMax     = 100
	winThreshold      = 50
	winMultiplier     = 2
	jackpotRoll       = 100
	jackpotMultiplier = 10
	maxCasinoWager    = 1_000_000
)

// CasinoService settles dice wagers against the wallet. The roll source is
// injected so tests can pin outcomes.
type CasinoService struct {
	wallets     persistence.WalletRepository
	roll        func() int64
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewCasinoService wires dependencies for the casino service. A nil roll
// function falls back to a uniform crypto-random d100.
func NewCasinoService(wallets persistence.WalletRepository, roll func() int64, idGenerator func() string, now func() time.Time, logger *slog.Logger) *CasinoService {
	if roll == nil {
		roll = randomRoll
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &CasinoService{
		wallets:     wallets,
		roll:        roll,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// Roll wagers the given amount on one d100 roll. Rolls above the threshold
// pay double; a natural 100 pays the jackpot multiplier. The debit, credit,
// and roll record settle in one store transaction.
func (s *CasinoService) Roll(ctx context.Context, principal Principal, wager int64) (result RollResult, err error) {
	logger := serviceLogger(ctx, s.logger, "casino", "roll", "account_id", principal.AccountID)
	defer func() {
		if err != nil {
			logger.Warn("roll rejected", "error_kind", ErrorKind(err))
			return
		}
		logger.Info("roll settled", "roll", result.Roll, "wager", result.Wager, "payout", result.Payout)
	}()

	if wager <= 0 || wager > maxCasinoWager {
		vErr := &ValidationError{}
		vErr.add("wager", fmt.Sprintf("Wager must be between 1 and %d", maxCasinoWager))
		return RollResult{}, vErr
	}

	roll := s.roll()
	payout := int64(0)
	switch {
	case roll == jackpotRoll:
		payout = wager * jackpotMultiplier
	case roll > winThreshold:
		payout = wager * winMultiplier
	}

	wallet, err := s.wallets.SettleRoll(ctx, persistence.CasinoRoll{
		ID:        s.idGenerator(),
		AccountID: principal.AccountID,
		Wager:     wager,
		Roll:      roll,
		Payout:    payout,
		CreatedAt: s.now(),
	})
	if err != nil {
		switch {
		case errors.Is(err, persistence.ErrInsufficientFunds):
			return RollResult{}, ErrInsufficientFunds
		case errors.Is(err, persistence.ErrNotFound):
			return RollResult{}, ErrNotFound
		default:
			return RollResult{}, fmt.Errorf("settle roll: %w", err)
		}
	}

	return RollResult{Roll: roll, Wager: wager, Payout: payout, Balance: wallet.Balance}, nil
}

func randomRoll() int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(casinoRollMax))
	if err != nil {
		return 1 + time.Now().UnixNano()%casinoRollMax
	}
	return n.Int64() + 1
}
