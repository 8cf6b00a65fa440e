package application

import (
	"context"
	"time"

	"github.com/eldrun/eldrun/internal/persistence"
)

type accountRepoStub struct {
	byID       map[string]persistence.Account
	byUsername map[string]persistence.Account
}

func newAccountRepoStub() *accountRepoStub {
	return &accountRepoStub{
		byID:       make(map[string]persistence.Account),
		byUsername: make(map[string]persistence.Account),
	}
}

func (r *accountRepoStub) CreateAccount(ctx context.Context, account persistence.Account) error {
	if _, ok := r.byUsername[account.Username]; ok {
		return persistence.ErrAlreadyExists
	}
	r.byID[account.ID] = account
	r.byUsername[account.Username] = account
	return nil
}

func (r *accountRepoStub) GetAccount(ctx context.Context, id string) (persistence.Account, error) {
	account, ok := r.byID[id]
	if !ok {
		return persistence.Account{}, persistence.ErrNotFound
	}
	return account, nil
}

func (r *accountRepoStub) GetAccountByUsername(ctx context.Context, username string) (persistence.Account, error) {
	account, ok := r.byUsername[username]
	if !ok {
		return persistence.Account{}, persistence.ErrNotFound
	}
	return account, nil
}

type walletRepoStub struct {
	wallets   map[string]persistence.Wallet
	rolls     []persistence.CasinoRoll
	purchases []persistence.Purchase
	board     []persistence.LeaderboardRow
}

func newWalletRepoStub() *walletRepoStub {
	return &walletRepoStub{wallets: make(map[string]persistence.Wallet)}
}

func (r *walletRepoStub) GetWallet(ctx context.Context, accountID string) (persistence.Wallet, error) {
	wallet, ok := r.wallets[accountID]
	if !ok {
		return persistence.Wallet{}, persistence.ErrNotFound
	}
	return wallet, nil
}

func (r *walletRepoStub) ClaimWelcomeBonus(ctx context.Context, accountID string, amount int64, claimedAt time.Time) (persistence.Wallet, error) {
	wallet, ok := r.wallets[accountID]
	if !ok {
		return persistence.Wallet{}, persistence.ErrNotFound
	}
	if wallet.BonusClaimedAt != nil {
		return persistence.Wallet{}, persistence.ErrBonusClaimed
	}
	wallet.Balance += amount
	wallet.BonusClaimedAt = &claimedAt
	wallet.UpdatedAt = claimedAt
	r.wallets[accountID] = wallet
	return wallet, nil
}

func (r *walletRepoStub) SettleRoll(ctx context.Context, roll persistence.CasinoRoll) (persistence.Wallet, error) {
	wallet, ok := r.wallets[roll.AccountID]
	if !ok {
		return persistence.Wallet{}, persistence.ErrNotFound
	}
	if wallet.Balance < roll.Wager {
		return persistence.Wallet{}, persistence.ErrInsufficientFunds
	}
	wallet.Balance += roll.Payout - roll.Wager
	wallet.UpdatedAt = roll.CreatedAt
	r.wallets[roll.AccountID] = wallet
	r.rolls = append(r.rolls, roll)
	return wallet, nil
}

func (r *walletRepoStub) RecordPurchase(ctx context.Context, purchase persistence.Purchase) (persistence.Wallet, error) {
	wallet, ok := r.wallets[purchase.AccountID]
	if !ok {
		return persistence.Wallet{}, persistence.ErrNotFound
	}
	if wallet.Balance < purchase.PricePaid {
		return persistence.Wallet{}, persistence.ErrInsufficientFunds
	}
	wallet.Balance -= purchase.PricePaid
	wallet.UpdatedAt = purchase.CreatedAt
	r.wallets[purchase.AccountID] = wallet
	r.purchases = append(r.purchases, purchase)
	return wallet, nil
}

func (r *walletRepoStub) Leaderboard(ctx context.Context, orderBy string, limit int) ([]persistence.LeaderboardRow, error) {
	if len(r.board) > limit {
		return r.board[:limit], nil
	}
	return r.board, nil
}

type shopRepoStub struct {
	items []persistence.ShopItem
}

func (r *shopRepoStub) ListItems(ctx context.Context) ([]persistence.ShopItem, error) {
	return r.items, nil
}

func (r *shopRepoStub) GetItem(ctx context.Context, id string) (persistence.ShopItem, error) {
	for _, item := range r.items {
		if item.ID == id {
			return item, nil
		}
	}
	return persistence.ShopItem{}, persistence.ErrNotFound
}

type forumRepoStub struct {
	threads []persistence.ForumThread
	posts   []persistence.ForumPost
}

func (r *forumRepoStub) CreateThread(ctx context.Context, thread persistence.ForumThread) error {
	r.threads = append(r.threads, thread)
	return nil
}

func (r *forumRepoStub) GetThread(ctx context.Context, id string) (persistence.ForumThread, error) {
	for _, thread := range r.threads {
		if thread.ID == id {
			return thread, nil
		}
	}
	return persistence.ForumThread{}, persistence.ErrNotFound
}

func (r *forumRepoStub) ListThreads(ctx context.Context, limit int) ([]persistence.ForumThread, error) {
	var out []persistence.ForumThread
	for i := len(r.threads) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.threads[i])
	}
	return out, nil
}

func (r *forumRepoStub) CreatePost(ctx context.Context, post persistence.ForumPost) error {
	r.posts = append(r.posts, post)
	return nil
}

func (r *forumRepoStub) ListPosts(ctx context.Context, threadID string) ([]persistence.ForumPost, error) {
	var out []persistence.ForumPost
	for _, post := range r.posts {
		if post.ThreadID == threadID {
			out = append(out, post)
		}
	}
	return out, nil
}
