package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/storepulse/internal/model"
)

type CustomerStore struct {
	db *sql.DB
}

func NewCustomerStore(db *sql.DB) *CustomerStore {
	return &CustomerStore{db: db}
}

func scanCustomer(scanner interface{ Scan(...any) error }) (*model.Customer, error) {
	var c model.Customer
	err := scanner.Scan(
		&c.ID, &c.ShopID, &c.PlatformID, &c.Email,
		&c.FirstName, &c.LastName, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const customerCols = `id, shop_id, platform_id, email, first_name, last_name, created_at, updated_at`

// Upsert inserts or updates a customer keyed by (shop_id, platform_id) so
// webhook redelivery lands on the same row.
func (s *CustomerStore) Upsert(shopID, platformID int64, email, firstName, lastName string) (*model.Customer, error) {
	_, err := s.db.Exec(
		`INSERT INTO customers (shop_id, platform_id, email, first_name, last_name)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(shop_id, platform_id) DO UPDATE SET
		   email = excluded.email,
		   first_name = excluded.first_name,
		   last_name = excluded.last_name,
		   updated_at = datetime('now')`,
		shopID, platformID, email, firstName, lastName,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert customer: %w", err)
	}
	return s.GetByPlatformID(shopID, platformID)
}

func (s *CustomerStore) GetByPlatformID(shopID, platformID int64) (*model.Customer, error) {
	row := s.db.QueryRow(
		`SELECT `+customerCols+` FROM customers WHERE shop_id = ? AND platform_id = ?`,
		shopID, platformID,
	)
	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (s *CustomerStore) CountByShop(shopID int64) (int64, error) {
	var count int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM customers WHERE shop_id = ?`, shopID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return count, nil
}
