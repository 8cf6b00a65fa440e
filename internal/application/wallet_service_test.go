package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eldrun/eldrun/internal/persistence"
	"github.com/eldrun/eldrun/internal/testfixtures"
)

func TestWalletService_ClaimBonus(t *testing.T) {
	ctx := context.Background()
	principal := Principal{AccountID: "account-1"}

	wallets := newWalletRepoStub()
	wallets.wallets["account-1"] = persistence.Wallet{AccountID: "account-1"}
	clock := testfixtures.NewClock(time.Time{})
	svc := NewWalletService(wallets, 500, clock.NowFunc(), nil)

	wallet, err := svc.ClaimBonus(ctx, principal)
	if err != nil {
		t.Fatalf("ClaimBonus: %v", err)
	}
	if wallet.Balance != 500 || wallet.BonusClaimedAt == nil {
		t.Errorf("wallet = %+v, want balance 500 with claim timestamp", wallet)
	}

	if _, err := svc.ClaimBonus(ctx, principal); !errors.Is(err, ErrBonusClaimed) {
		t.Errorf("second claim error = %v, want ErrBonusClaimed", err)
	}
	if wallets.wallets["account-1"].Balance != 500 {
		t.Errorf("balance after rejected claim = %d, want 500", wallets.wallets["account-1"].Balance)
	}

	if _, err := svc.ClaimBonus(ctx, Principal{AccountID: "ghost"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown account error = %v, want ErrNotFound", err)
	}
}

func TestShopService_Purchase(t *testing.T) {
	ctx := context.Background()
	principal := Principal{AccountID: "account-1"}

	newSvc := func(balance int64) (*ShopService, *walletRepoStub) {
		wallets := newWalletRepoStub()
		wallets.wallets["account-1"] = persistence.Wallet{AccountID: "account-1", Balance: balance}
		shop := &shopRepoStub{items: []persistence.ShopItem{
			{ID: "item-banner", Name: "Guild Banner", Price: 250},
		}}
		ids := testfixtures.NewIDGenerator("purchase")
		clock := testfixtures.NewClock(time.Time{})
		return NewShopService(shop, wallets, ids.NextFunc(), clock.NowFunc(), nil), wallets
	}

	t.Run("debits the catalog price", func(t *testing.T) {
		svc, wallets := newSvc(400)
		purchase, wallet, err := svc.Purchase(ctx, principal, "item-banner")
		if err != nil {
			t.Fatalf("Purchase: %v", err)
		}
		if purchase.PricePaid != 250 || wallet.Balance != 150 {
			t.Errorf("purchase = %+v wallet = %+v", purchase, wallet)
		}
		if len(wallets.purchases) != 1 {
			t.Errorf("recorded purchases = %d, want 1", len(wallets.purchases))
		}
	})

	t.Run("rejects an overdraft", func(t *testing.T) {
		svc, wallets := newSvc(100)
		if _, _, err := svc.Purchase(ctx, principal, "item-banner"); !errors.Is(err, ErrInsufficientFunds) {
			t.Errorf("error = %v, want ErrInsufficientFunds", err)
		}
		if len(wallets.purchases) != 0 {
			t.Error("overdraft recorded a purchase")
		}
	})

	t.Run("unknown item", func(t *testing.T) {
		svc, _ := newSvc(400)
		if _, _, err := svc.Purchase(ctx, principal, "item-ghost"); !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestLeaderboardService_Top(t *testing.T) {
	wallets := newWalletRepoStub()
	wallets.board = []persistence.LeaderboardRow{
		{AccountID: "a", Username: "first", Balance: 900},
		{AccountID: "b", Username: "second", Balance: 400},
	}
	svc := NewLeaderboardService(wallets, nil)

	rows, err := svc.Top(context.Background(), "not-a-sort")
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(rows) != 2 || rows[0].Username != "first" {
		t.Errorf("rows = %+v", rows)
	}
}
