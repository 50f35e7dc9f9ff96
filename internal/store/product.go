package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/storepulse/internal/model"
)

type ProductStore struct {
	db *sql.DB
}

func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

func scanProduct(scanner interface{ Scan(...any) error }) (*model.Product, error) {
	var p model.Product
	err := scanner.Scan(
		&p.ID, &p.ShopID, &p.PlatformID, &p.Title,
		&p.PriceCents, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const productCols = `id, shop_id, platform_id, title, price_cents, created_at, updated_at`

// Upsert inserts or updates a product keyed by (shop_id, platform_id).
func (s *ProductStore) Upsert(shopID, platformID int64, title string, priceCents int64) (*model.Product, error) {
	_, err := s.db.Exec(
		`INSERT INTO products (shop_id, platform_id, title, price_cents)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(shop_id, platform_id) DO UPDATE SET
		   title = excluded.title,
		   price_cents = excluded.price_cents,
		   updated_at = datetime('now')`,
		shopID, platformID, title, priceCents,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert product: %w", err)
	}
	return s.GetByPlatformID(shopID, platformID)
}

func (s *ProductStore) GetByPlatformID(shopID, platformID int64) (*model.Product, error) {
	row := s.db.QueryRow(
		`SELECT `+productCols+` FROM products WHERE shop_id = ? AND platform_id = ?`,
		shopID, platformID,
	)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}
