package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukerupert/storepulse/internal/store"
	"github.com/dukerupert/storepulse/internal/tenant"
)

type ShopHandler struct {
	shops     *store.ShopStore
	templates *template.Template
	logger    *slog.Logger
}

func NewShopHandler(shops *store.ShopStore, logger *slog.Logger) *ShopHandler {
	return &ShopHandler{
		shops:     shops,
		templates: parseTemplates(),
		logger:    logger,
	}
}

// List renders the shop directory with a selection form per shop.
func (h *ShopHandler) List(w http.ResponseWriter, r *http.Request) {
	shops, err := h.shops.List()
	if err != nil {
		h.logger.Error("list shops", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.templates.ExecuteTemplate(w, "shops.html", map[string]any{
		"Shops": shops,
	})
}

// Select sets the active-shop cookie and sends the user to the dashboard.
func (h *ShopHandler) Select(w http.ResponseWriter, r *http.Request) {
	shopID, err := strconv.ParseInt(r.FormValue("shop_id"), 10, 64)
	if err != nil || shopID <= 0 {
		http.Error(w, "Invalid shop", http.StatusBadRequest)
		return
	}

	shop, err := h.shops.GetByID(shopID)
	if err != nil {
		h.logger.Error("get shop", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if shop == nil {
		http.Error(w, "Unknown shop", http.StatusNotFound)
		return
	}

	http.SetCookie(w, tenant.Cookie(shop.ID))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Create registers a shop so the platform can route its webhooks here.
func (h *ShopHandler) Create(w http.ResponseWriter, r *http.Request) {
	domain := strings.ToLower(strings.TrimSpace(r.FormValue("domain")))
	name := strings.TrimSpace(r.FormValue("name"))
	if domain == "" || name == "" {
		http.Error(w, "Domain and name are required", http.StatusBadRequest)
		return
	}

	existing, err := h.shops.GetByDomain(domain)
	if err != nil {
		h.logger.Error("check shop domain", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		http.Error(w, "A shop with that domain is already registered", http.StatusConflict)
		return
	}

	shop, err := h.shops.Create(domain, name)
	if err != nil {
		h.logger.Error("create shop", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("shop registered", "shop_id", shop.ID, "domain", shop.Domain)
	http.SetCookie(w, tenant.Cookie(shop.ID))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
