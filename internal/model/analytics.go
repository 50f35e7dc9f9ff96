package model

// DailyStat is one calendar day in a revenue series. Days with no orders
// still appear with zero counts.
type DailyStat struct {
	Date         string `json:"date"` // YYYY-MM-DD
	Orders       int64  `json:"orders"`
	RevenueCents int64  `json:"revenue_cents"`
}

type TopCustomer struct {
	PlatformID int64  `json:"platform_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	SpendCents int64  `json:"spend_cents"`
	Orders     int64  `json:"orders"`
}

type Totals struct {
	Customers     int64   `json:"customers"`
	Orders        int64   `json:"orders"`
	RevenueCents  int64   `json:"revenue_cents"`
	AvgOrderCents float64 `json:"avg_order_cents"`
}
