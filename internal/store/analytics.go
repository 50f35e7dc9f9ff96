package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/storepulse/internal/model"
)

// AnalyticsStore runs the tenant-scoped dashboard aggregations. Every
// query filters by shop_id on every table it touches; the date range is
// inclusive, with the end bound widened to the last instant of its day so
// a same-day range covers the whole day.
type AnalyticsStore struct {
	db *sql.DB
}

func NewAnalyticsStore(db *sql.DB) *AnalyticsStore {
	return &AnalyticsStore{db: db}
}

const unknownCustomerName = "Unknown Customer"
const unknownCustomerEmail = "no-email@unknown"

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayEnd(t time.Time) time.Time {
	return dayStart(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// DailySeries returns one entry per calendar day in [from, to], zero-filled
// for days with no orders.
func (s *AnalyticsStore) DailySeries(shopID int64, from, to time.Time) ([]model.DailyStat, error) {
	start, end := dayStart(from), dayEnd(to)

	rows, err := s.db.Query(
		`SELECT date(placed_at), COUNT(*), COALESCE(SUM(total_cents), 0)
		 FROM orders
		 WHERE shop_id = ? AND placed_at >= ? AND placed_at <= ?
		 GROUP BY date(placed_at)`,
		shopID, sqlTime(start), sqlTime(end),
	)
	if err != nil {
		return nil, fmt.Errorf("daily series: %w", err)
	}
	defer rows.Close()

	byDay := make(map[string]model.DailyStat)
	for rows.Next() {
		var st model.DailyStat
		if err := rows.Scan(&st.Date, &st.Orders, &st.RevenueCents); err != nil {
			return nil, fmt.Errorf("scan daily stat: %w", err)
		}
		byDay[st.Date] = st
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var series []model.DailyStat
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		if st, ok := byDay[key]; ok {
			series = append(series, st)
		} else {
			series = append(series, model.DailyStat{Date: key})
		}
	}
	return series, nil
}

// TopCustomers ranks customers by total spend in the range, descending,
// with ties broken by platform customer ID for stable output.
func (s *AnalyticsStore) TopCustomers(shopID int64, from, to time.Time, limit int) ([]model.TopCustomer, error) {
	start, end := dayStart(from), dayEnd(to)

	rows, err := s.db.Query(
		`SELECT o.customer_platform_id,
		        COALESCE(c.first_name, ''), COALESCE(c.last_name, ''), COALESCE(c.email, ''),
		        SUM(o.total_cents) AS spend, COUNT(*)
		 FROM orders o
		 LEFT JOIN customers c ON c.shop_id = o.shop_id AND c.platform_id = o.customer_platform_id
		 WHERE o.shop_id = ? AND o.customer_platform_id IS NOT NULL
		   AND o.placed_at >= ? AND o.placed_at <= ?
		 GROUP BY o.customer_platform_id
		 ORDER BY spend DESC, o.customer_platform_id ASC
		 LIMIT ?`,
		shopID, sqlTime(start), sqlTime(end), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("top customers: %w", err)
	}
	defer rows.Close()

	var top []model.TopCustomer
	for rows.Next() {
		var tc model.TopCustomer
		var firstName, lastName string
		if err := rows.Scan(&tc.PlatformID, &firstName, &lastName, &tc.Email, &tc.SpendCents, &tc.Orders); err != nil {
			return nil, fmt.Errorf("scan top customer: %w", err)
		}
		tc.Name = displayName(firstName, lastName)
		if tc.Email == "" {
			tc.Email = unknownCustomerEmail
		}
		top = append(top, tc)
	}
	return top, rows.Err()
}

// Totals returns the shop's all-time customer count plus in-range order
// count, revenue, and average order value (zero when there are no orders).
func (s *AnalyticsStore) Totals(shopID int64, from, to time.Time) (*model.Totals, error) {
	start, end := dayStart(from), dayEnd(to)

	var t model.Totals
	err := s.db.QueryRow(`SELECT COUNT(*) FROM customers WHERE shop_id = ?`, shopID).Scan(&t.Customers)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	err = s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(total_cents), 0)
		 FROM orders
		 WHERE shop_id = ? AND placed_at >= ? AND placed_at <= ?`,
		shopID, sqlTime(start), sqlTime(end),
	).Scan(&t.Orders, &t.RevenueCents)
	if err != nil {
		return nil, fmt.Errorf("order totals: %w", err)
	}

	if t.Orders > 0 {
		t.AvgOrderCents = float64(t.RevenueCents) / float64(t.Orders)
	}
	return &t, nil
}

func displayName(first, last string) string {
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	default:
		return unknownCustomerName
	}
}
