package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eldrun/eldrun/internal/persistence"
)

// ShopService lists the catalog and settles purchases against the wallet.
type ShopService struct {
	shop        persistence.ShopRepository
	wallets     persistence.WalletRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewShopService wires dependencies for the shop service.
func NewShopService(shop persistence.ShopRepository, wallets persistence.WalletRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ShopService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ShopService{
		shop:        shop,
		wallets:     wallets,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// ListItems returns the purchasable catalog.
func (s *ShopService) ListItems(ctx context.Context) ([]persistence.ShopItem, error) {
	items, err := s.shop.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shop items: %w", err)
	}
	return items, nil
}

// Purchase debits the item price and records the purchase. The price paid is
// the catalog price at purchase time, frozen on the purchase row.
func (s *ShopService) Purchase(ctx context.Context, principal Principal, itemID string) (purchase persistence.Purchase, wallet persistence.Wallet, err error) {
	logger := serviceLogger(ctx, s.logger, "shop", "purchase", "account_id", principal.AccountID, "item_id", itemID)
	defer func() {
		if err != nil {
			logger.Warn("purchase rejected", "error_kind", ErrorKind(err))
			return
		}
		logger.Info("purchase settled", "price_paid", purchase.PricePaid, "balance", wallet.Balance)
	}()

	item, err := s.shop.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Purchase{}, persistence.Wallet{}, ErrNotFound
		}
		return persistence.Purchase{}, persistence.Wallet{}, fmt.Errorf("get shop item: %w", err)
	}

	purchase = persistence.Purchase{
		ID:        s.idGenerator(),
		AccountID: principal.AccountID,
		ItemID:    item.ID,
		PricePaid: item.Price,
		CreatedAt: s.now(),
	}
	wallet, err = s.wallets.RecordPurchase(ctx, purchase)
	if err != nil {
		switch {
		case errors.Is(err, persistence.ErrInsufficientFunds):
			return persistence.Purchase{}, persistence.Wallet{}, ErrInsufficientFunds
		case errors.Is(err, persistence.ErrNotFound):
			return persistence.Purchase{}, persistence.Wallet{}, ErrNotFound
		default:
			return persistence.Purchase{}, persistence.Wallet{}, fmt.Errorf("record purchase: %w", err)
		}
	}
	return purchase, wallet, nil
}
