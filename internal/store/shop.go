package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/storepulse/internal/model"
)

type ShopStore struct {
	db *sql.DB
}

func NewShopStore(db *sql.DB) *ShopStore {
	return &ShopStore{db: db}
}

func scanShop(scanner interface{ Scan(...any) error }) (*model.Shop, error) {
	var sh model.Shop
	err := scanner.Scan(&sh.ID, &sh.Domain, &sh.Name, &sh.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

const shopCols = `id, domain, name, created_at`

func (s *ShopStore) Create(domain, name string) (*model.Shop, error) {
	result, err := s.db.Exec(
		`INSERT INTO shops (domain, name) VALUES (?, ?)`,
		domain, name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert shop: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ShopStore) GetByID(id int64) (*model.Shop, error) {
	row := s.db.QueryRow(`SELECT `+shopCols+` FROM shops WHERE id = ?`, id)
	sh, err := scanShop(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", err)
	}
	return sh, nil
}

func (s *ShopStore) GetByDomain(domain string) (*model.Shop, error) {
	row := s.db.QueryRow(`SELECT `+shopCols+` FROM shops WHERE domain = ?`, domain)
	sh, err := scanShop(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shop by domain: %w", err)
	}
	return sh, nil
}

func (s *ShopStore) List() ([]model.Shop, error) {
	rows, err := s.db.Query(`SELECT ` + shopCols + ` FROM shops ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	defer rows.Close()

	var shops []model.Shop
	for rows.Next() {
		sh, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shop: %w", err)
		}
		shops = append(shops, *sh)
	}
	return shops, rows.Err()
}
