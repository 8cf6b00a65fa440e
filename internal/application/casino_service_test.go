package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eldrun/eldrun/internal/persistence"
	"github.com/eldrun/eldrun/internal/testfixtures"
)

func newTestCasinoService(t *testing.T, balance int64, roll int64) (*CasinoService, *walletRepoStub) {
	t.Helper()
	wallets := newWalletRepoStub()
	wallets.wallets["account-1"] = persistence.Wallet{AccountID: "account-1", Balance: balance}
	clock := testfixtures.NewClock(time.Time{})
	ids := testfixtures.NewIDGenerator("roll")
	svc := NewCasinoService(wallets, func() int64 { return roll }, ids.NextFunc(), clock.NowFunc(), nil)
	return svc, wallets
}

func TestCasinoService_Roll(t *testing.T) {
	ctx := context.Background()
	principal := Principal{AccountID: "account-1", Username: "ranger"}

	t.Run("losing roll forfeits the wager", func(t *testing.T) {
		svc, wallets := newTestCasinoService(t, 100, 30)
		result, err := svc.Roll(ctx, principal, 40)
		if err != nil {
			t.Fatalf("Roll: %v", err)
		}
		if result.Payout != 0 || result.Balance != 60 {
			t.Errorf("result = %+v, want payout 0 balance 60", result)
		}
		if len(wallets.rolls) != 1 {
			t.Errorf("recorded rolls = %d, want 1", len(wallets.rolls))
		}
	})

	t.Run("winning roll pays double", func(t *testing.T) {
		svc, _ := newTestCasinoService(t, 100, 51)
		result, err := svc.Roll(ctx, principal, 40)
		if err != nil {
			t.Fatalf("Roll: %v", err)
		}
		if result.Payout != 80 || result.Balance != 140 {
			t.Errorf("result = %+v, want payout 80 balance 140", result)
		}
	})

	t.Run("natural hundred pays the jackpot", func(t *testing.T) {
		svc, _ := newTestCasinoService(t, 100, 100)
		result, err := svc.Roll(ctx, principal, 10)
		if err != nil {
			t.Fatalf("Roll: %v", err)
		}
		if result.Payout != 100 || result.Balance != 190 {
			t.Errorf("result = %+v, want payout 100 balance 190", result)
		}
	})

	t.Run("wager above balance is rejected without a record", func(t *testing.T) {
		svc, wallets := newTestCasinoService(t, 20, 100)
		if _, err := svc.Roll(ctx, principal, 50); !errors.Is(err, ErrInsufficientFunds) {
			t.Errorf("error = %v, want ErrInsufficientFunds", err)
		}
		if len(wallets.rolls) != 0 {
			t.Errorf("recorded rolls = %d, want 0", len(wallets.rolls))
		}
		if wallets.wallets["account-1"].Balance != 20 {
			t.Errorf("balance changed to %d", wallets.wallets["account-1"].Balance)
		}
	})

	t.Run("non-positive wager is a validation error", func(t *testing.T) {
		svc, _ := newTestCasinoService(t, 100, 100)
		for _, wager := range []int64{0, -5} {
			_, err := svc.Roll(ctx, principal, wager)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("wager %d: error = %v, want ValidationError", wager, err)
			}
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		svc, _ := newTestCasinoService(t, 100, 100)
		if _, err := svc.Roll(ctx, Principal{AccountID: "ghost"}, 10); !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}
