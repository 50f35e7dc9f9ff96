package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukerupert/storepulse/internal/database"
	"github.com/dukerupert/storepulse/internal/store"
	"github.com/dukerupert/storepulse/internal/tenant"
)

func newDashboardTest(t *testing.T) (*DashboardHandler, *sql.DB) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h := NewDashboardHandler(
		store.NewShopStore(db),
		store.NewUserStore(db),
		store.NewAnalyticsStore(db),
		discardLogger(),
	)
	return h, db
}

func TestDashboardPageRedirectsWithoutShop(t *testing.T) {
	h, _ := newDashboardTest(t)

	w := httptest.NewRecorder()
	h.Page(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/shops" {
		t.Errorf("location = %q, want /shops", loc)
	}
}

func TestDashboardPageClearsStaleShopCookie(t *testing.T) {
	h, _ := newDashboardTest(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(tenant.Cookie(99))
	w := httptest.NewRecorder()
	h.Page(w, r)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == tenant.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("stale shop cookie not cleared")
	}
}

func TestDashboardSummary(t *testing.T) {
	h, db := newDashboardTest(t)

	shop, err := store.NewShopStore(db).Create("acme.example.com", "Acme")
	if err != nil {
		t.Fatalf("create shop: %v", err)
	}
	orders := store.NewOrderStore(db)
	placed := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	if _, err := orders.Upsert(shop.ID, 1, nil, 1000, "USD", placed); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	if _, err := orders.Upsert(shop.ID, 2, nil, 3000, "USD", placed); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/dashboard/summary?from=2026-03-01&to=2026-03-03", nil)
	r.AddCookie(tenant.Cookie(shop.ID))
	w := httptest.NewRecorder()
	h.Summary(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp summaryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ShopID != shop.ID {
		t.Errorf("shop id = %d", resp.ShopID)
	}
	if resp.Totals.Orders != 2 || resp.Totals.RevenueCents != 4000 {
		t.Errorf("totals = %+v", resp.Totals)
	}
	if resp.Totals.AvgOrderCents != 2000 {
		t.Errorf("avg = %v, want 2000", resp.Totals.AvgOrderCents)
	}
	if len(resp.DailySeries) != 3 {
		t.Fatalf("series length = %d, want 3 zero-filled days", len(resp.DailySeries))
	}
	if resp.DailySeries[0].Orders != 0 || resp.DailySeries[1].Orders != 2 || resp.DailySeries[2].Orders != 0 {
		t.Errorf("series = %+v", resp.DailySeries)
	}
}

func TestDashboardSummaryWithoutShop(t *testing.T) {
	h, _ := newDashboardTest(t)

	w := httptest.NewRecorder()
	h.Summary(w, httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDashboardSummaryInvalidRange(t *testing.T) {
	h, db := newDashboardTest(t)

	shop, err := store.NewShopStore(db).Create("acme.example.com", "Acme")
	if err != nil {
		t.Fatalf("create shop: %v", err)
	}

	for _, query := range []string{
		"?from=garbage",
		"?to=03/01/2026",
		"?from=2026-03-10&to=2026-03-01",
	} {
		r := httptest.NewRequest(http.MethodGet, "/api/dashboard/summary"+query, nil)
		r.AddCookie(tenant.Cookie(shop.ID))
		w := httptest.NewRecorder()
		h.Summary(w, r)
		if w.Code != http.StatusBadRequest {
			t.Errorf("query %q status = %d, want 400", query, w.Code)
		}
	}
}

func TestDashboardSummaryQueryTenantOverride(t *testing.T) {
	h, db := newDashboardTest(t)

	shops := store.NewShopStore(db)
	shopA, err := shops.Create("a.example.com", "A")
	if err != nil {
		t.Fatalf("create shop: %v", err)
	}
	shopB, err := shops.Create("b.example.com", "B")
	if err != nil {
		t.Fatalf("create shop: %v", err)
	}

	orders := store.NewOrderStore(db)
	placed := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	if _, err := orders.Upsert(shopB.ID, 1, nil, 5000, "USD", placed); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/dashboard/summary?tenant=2&from=2026-03-01&to=2026-03-03", nil)
	r.AddCookie(tenant.Cookie(shopA.ID))
	w := httptest.NewRecorder()
	h.Summary(w, r)

	var resp summaryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ShopID != shopB.ID {
		t.Errorf("shop id = %d, want query override %d", resp.ShopID, shopB.ID)
	}
	if resp.Totals.RevenueCents != 5000 {
		t.Errorf("revenue = %d, want shop B's 5000", resp.Totals.RevenueCents)
	}
}
