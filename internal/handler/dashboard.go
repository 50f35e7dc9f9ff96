package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/storepulse/internal/auth"
	"github.com/dukerupert/storepulse/internal/model"
	"github.com/dukerupert/storepulse/internal/store"
	"github.com/dukerupert/storepulse/internal/tenant"
)

const (
	dateLayout    = "2006-01-02"
	defaultWindow = 30 // days
	topCustomers  = 5
)

type DashboardHandler struct {
	shops     *store.ShopStore
	users     *store.UserStore
	analytics *store.AnalyticsStore
	templates *template.Template
	logger    *slog.Logger
}

func NewDashboardHandler(shops *store.ShopStore, users *store.UserStore, analytics *store.AnalyticsStore, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		shops:     shops,
		users:     users,
		analytics: analytics,
		templates: parseTemplates(),
		logger:    logger,
	}
}

// dateRange parses from/to query parameters, defaulting to the trailing
// 30 days ending today.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -(defaultWindow - 1))
	to := now

	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date %q", v)
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date %q", v)
		}
		to = parsed
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to date precedes from date")
	}
	return from, to, nil
}

// Page renders the dashboard shell for the active shop. Without a shop
// selection the user is sent to the shop directory first.
func (h *DashboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	shopID, err := tenant.Resolve(r)
	if errors.Is(err, tenant.ErrNoShopSelected) {
		http.Redirect(w, r, "/shops", http.StatusSeeOther)
		return
	}

	shop, err := h.shops.GetByID(shopID)
	if err != nil {
		h.logger.Error("get shop", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if shop == nil {
		// Stale cookie pointing at a deleted shop.
		http.SetCookie(w, &http.Cookie{Name: tenant.CookieName, Value: "", Path: "/", MaxAge: -1})
		http.Redirect(w, r, "/shops", http.StatusSeeOther)
		return
	}

	from, to, err := dateRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var userEmail string
	if user, err := h.users.GetByID(auth.UserID(r.Context())); err == nil && user != nil {
		userEmail = user.Email
	}

	h.templates.ExecuteTemplate(w, "dashboard.html", map[string]any{
		"ShopName":  shop.Name,
		"UserEmail": userEmail,
		"From":      from.Format(dateLayout),
		"To":        to.Format(dateLayout),
	})
}

// summaryResponse is the dashboard aggregation payload.
type summaryResponse struct {
	ShopID       int64               `json:"shop_id"`
	From         string              `json:"from"`
	To           string              `json:"to"`
	Totals       *model.Totals       `json:"totals"`
	DailySeries  []model.DailyStat   `json:"daily_series"`
	TopCustomers []model.TopCustomer `json:"top_customers"`
}

// Summary returns the aggregated analytics for the active shop and range.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	shopID, err := tenant.Resolve(r)
	if errors.Is(err, tenant.ErrNoShopSelected) {
		http.Error(w, "No shop selected", http.StatusBadRequest)
		return
	}

	from, to, err := dateRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	totals, err := h.analytics.Totals(shopID, from, to)
	if err != nil {
		h.logger.Error("totals", "error", err, "shop_id", shopID)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	series, err := h.analytics.DailySeries(shopID, from, to)
	if err != nil {
		h.logger.Error("daily series", "error", err, "shop_id", shopID)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	top, err := h.analytics.TopCustomers(shopID, from, to, topCustomers)
	if err != nil {
		h.logger.Error("top customers", "error", err, "shop_id", shopID)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summaryResponse{
		ShopID:       shopID,
		From:         from.Format(dateLayout),
		To:           to.Format(dateLayout),
		Totals:       totals,
		DailySeries:  series,
		TopCustomers: top,
	})
}
