package model

import "time"

// Shop is a tenant: an isolated storefront whose data must never be
// visible under another shop's ID.
type Shop struct {
	ID        int64     `json:"id"`
	Domain    string    `json:"domain"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Customer struct {
	ID         int64     `json:"id"`
	ShopID     int64     `json:"shop_id"`
	PlatformID int64     `json:"platform_id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Order struct {
	ID                 int64     `json:"id"`
	ShopID             int64     `json:"shop_id"`
	PlatformID         int64     `json:"platform_id"`
	CustomerPlatformID *int64    `json:"customer_platform_id"`
	TotalCents         int64     `json:"total_cents"`
	Currency           string    `json:"currency"`
	PlacedAt           time.Time `json:"placed_at"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type Product struct {
	ID         int64     `json:"id"`
	ShopID     int64     `json:"shop_id"`
	PlatformID int64     `json:"platform_id"`
	Title      string    `json:"title"`
	PriceCents int64     `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
