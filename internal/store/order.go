package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/storepulse/internal/model"
)

type OrderStore struct {
	db *sql.DB
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

func scanOrder(scanner interface{ Scan(...any) error }) (*model.Order, error) {
	var o model.Order
	var customerPlatformID sql.NullInt64

	err := scanner.Scan(
		&o.ID, &o.ShopID, &o.PlatformID, &customerPlatformID,
		&o.TotalCents, &o.Currency, &o.PlacedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if customerPlatformID.Valid {
		o.CustomerPlatformID = &customerPlatformID.Int64
	}
	return &o, nil
}

const orderCols = `id, shop_id, platform_id, customer_platform_id, total_cents, currency, placed_at, created_at, updated_at`

// Upsert inserts or updates an order keyed by (shop_id, platform_id).
// Redelivery of the same platform order updates the existing row.
func (s *OrderStore) Upsert(shopID, platformID int64, customerPlatformID *int64, totalCents int64, currency string, placedAt time.Time) (*model.Order, error) {
	var cpid sql.NullInt64
	if customerPlatformID != nil {
		cpid = sql.NullInt64{Int64: *customerPlatformID, Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO orders (shop_id, platform_id, customer_platform_id, total_cents, currency, placed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(shop_id, platform_id) DO UPDATE SET
		   customer_platform_id = excluded.customer_platform_id,
		   total_cents = excluded.total_cents,
		   currency = excluded.currency,
		   placed_at = excluded.placed_at,
		   updated_at = datetime('now')`,
		shopID, platformID, cpid, totalCents, currency, sqlTime(placedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert order: %w", err)
	}
	return s.GetByPlatformID(shopID, platformID)
}

func (s *OrderStore) GetByPlatformID(shopID, platformID int64) (*model.Order, error) {
	row := s.db.QueryRow(
		`SELECT `+orderCols+` FROM orders WHERE shop_id = ? AND platform_id = ?`,
		shopID, platformID,
	)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (s *OrderStore) CountByShop(shopID int64) (int64, error) {
	var count int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM orders WHERE shop_id = ?`, shopID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}
