package sqlite

import (
	"context"

	"github.com/eldrun/eldrun/internal/persistence"
)

// ShopRepository implements persistence.ShopRepository using SQLite.
type ShopRepository struct {
	pool *ConnectionPool
}

// NewShopRepository creates a new SQLite shop repository.
func NewShopRepository(pool *ConnectionPool) *ShopRepository {
	return &ShopRepository{pool: pool}
}

// ListItems returns the full catalog ordered by price.
func (r *ShopRepository) ListItems(ctx context.Context) ([]persistence.ShopItem, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, name, description, price, created_at
		FROM shop_items
		ORDER BY price ASC, name ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var items []persistence.ShopItem
	for rows.Next() {
		var (
			item      persistence.ShopItem
			createdAt string
		)
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price, &createdAt); err != nil {
			return nil, err
		}
		if item.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetItem retrieves one catalog entry.
func (r *ShopRepository) GetItem(ctx context.Context, id string) (persistence.ShopItem, error) {
	var (
		item      persistence.ShopItem
		createdAt string
	)
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, created_at
		FROM shop_items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Name, &item.Description, &item.Price, &createdAt)
	if err != nil {
		return persistence.ShopItem{}, mapError(err)
	}
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.ShopItem{}, err
	}
	return item, nil
}
