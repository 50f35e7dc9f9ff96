package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/storepulse/internal/model"
	"github.com/dukerupert/storepulse/internal/platform"
	"github.com/dukerupert/storepulse/internal/push"
	"github.com/dukerupert/storepulse/internal/store"
	"github.com/dukerupert/storepulse/internal/websocket"
)

// maxWebhookBody caps webhook payloads at 1 MiB.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	secret    string
	shops     *store.ShopStore
	customers *store.CustomerStore
	orders    *store.OrderStore
	products  *store.ProductStore
	hub       *websocket.Hub
	push      *push.Service
	logger    *slog.Logger
}

func NewWebhookHandler(
	secret string,
	shops *store.ShopStore,
	customers *store.CustomerStore,
	orders *store.OrderStore,
	products *store.ProductStore,
	hub *websocket.Hub,
	pushSvc *push.Service,
	logger *slog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		secret:    secret,
		shops:     shops,
		customers: customers,
		orders:    orders,
		products:  products,
		hub:       hub,
		push:      pushSvc,
		logger:    logger,
	}
}

// readVerified reads the body, checks the HMAC signature, and resolves the
// shop from the domain header. Responses for the failure cases are written
// here; a nil shop with nil error means the caller should return.
func (h *WebhookHandler) readVerified(w http.ResponseWriter, r *http.Request) ([]byte, *model.Shop) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return nil, nil
	}

	if !platform.VerifySignature(body, r.Header.Get(platform.SignatureHeader), h.secret) {
		h.logger.Warn("webhook signature rejected", "path", r.URL.Path)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return nil, nil
	}

	domain := r.Header.Get(platform.ShopDomainHeader)
	shop, err := h.shops.GetByDomain(domain)
	if err != nil {
		h.logger.Error("lookup shop", "error", err, "domain", domain)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return nil, nil
	}
	if shop == nil {
		h.logger.Warn("webhook for unregistered shop", "domain", domain)
		http.Error(w, "Unknown shop", http.StatusNotFound)
		return nil, nil
	}

	return body, shop
}

type webhookCustomer struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type webhookOrder struct {
	ID         int64            `json:"id"`
	Customer   *webhookCustomer `json:"customer"`
	TotalPrice string           `json:"total_price"`
	Currency   string           `json:"currency"`
	CreatedAt  time.Time        `json:"created_at"`
}

type webhookProduct struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Price string `json:"price"`
}

// Orders ingests an order event. Redelivery of the same platform order ID
// updates the existing row instead of inserting a duplicate.
func (h *WebhookHandler) Orders(w http.ResponseWriter, r *http.Request) {
	body, shop := h.readVerified(w, r)
	if shop == nil {
		return
	}

	var payload webhookOrder
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if payload.ID == 0 {
		http.Error(w, "Missing order id", http.StatusBadRequest)
		return
	}

	totalCents, err := parsePriceCents(payload.TotalPrice)
	if err != nil {
		http.Error(w, "Invalid total_price", http.StatusBadRequest)
		return
	}

	placedAt := payload.CreatedAt
	if placedAt.IsZero() {
		placedAt = time.Now().UTC()
	}

	var customerPlatformID *int64
	if payload.Customer != nil && payload.Customer.ID != 0 {
		c := payload.Customer
		if _, err := h.customers.Upsert(shop.ID, c.ID, c.Email, c.FirstName, c.LastName); err != nil {
			h.logger.Error("upsert customer from order", "error", err, "shop_id", shop.ID)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		customerPlatformID = &c.ID
	}

	order, err := h.orders.Upsert(shop.ID, payload.ID, customerPlatformID, totalCents, payload.Currency, placedAt)
	if err != nil {
		h.logger.Error("upsert order", "error", err, "shop_id", shop.ID)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("order ingested", "shop_id", shop.ID, "platform_id", order.PlatformID, "total_cents", order.TotalCents)
	h.hub.Broadcast(websocket.NewMessage("order", "upserted", shop.ID, map[string]any{
		"platform_id": order.PlatformID,
	}))
	go h.push.NotifyAll(push.Payload{
		Title: "New order",
		Body:  fmt.Sprintf("%s received an order for %s %s", shop.Name, payload.TotalPrice, order.Currency),
		URL:   "/",
		Tag:   fmt.Sprintf("order-%d", order.PlatformID),
	})

	w.WriteHeader(http.StatusOK)
}

// Products ingests a product create/update event.
func (h *WebhookHandler) Products(w http.ResponseWriter, r *http.Request) {
	body, shop := h.readVerified(w, r)
	if shop == nil {
		return
	}

	var payload webhookProduct
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if payload.ID == 0 {
		http.Error(w, "Missing product id", http.StatusBadRequest)
		return
	}

	priceCents, err := parsePriceCents(payload.Price)
	if err != nil {
		http.Error(w, "Invalid price", http.StatusBadRequest)
		return
	}

	product, err := h.products.Upsert(shop.ID, payload.ID, payload.Title, priceCents)
	if err != nil {
		h.logger.Error("upsert product", "error", err, "shop_id", shop.ID)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("product", "upserted", shop.ID, map[string]any{
		"platform_id": product.PlatformID,
	}))
	w.WriteHeader(http.StatusOK)
}

// Customers ingests a customer create/update event.
func (h *WebhookHandler) Customers(w http.ResponseWriter, r *http.Request) {
	body, shop := h.readVerified(w, r)
	if shop == nil {
		return
	}

	var payload webhookCustomer
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if payload.ID == 0 {
		http.Error(w, "Missing customer id", http.StatusBadRequest)
		return
	}

	customer, err := h.customers.Upsert(shop.ID, payload.ID, payload.Email, payload.FirstName, payload.LastName)
	if err != nil {
		h.logger.Error("upsert customer", "error", err, "shop_id", shop.ID)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.hub.Broadcast(websocket.NewMessage("customer", "upserted", shop.ID, map[string]any{
		"platform_id": customer.PlatformID,
	}))
	w.WriteHeader(http.StatusOK)
}

// parsePriceCents converts a decimal money string like "123.45" to cents
// without going through floating point. An empty string is zero. At most
// two fractional digits are accepted.
func parsePriceCents(price string) (int64, error) {
	price = strings.TrimSpace(price)
	if price == "" {
		return 0, nil
	}

	negative := false
	if strings.HasPrefix(price, "-") {
		negative = true
		price = price[1:]
	}

	whole, frac, _ := strings.Cut(price, ".")
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("too many decimal places in %q", price)
	}
	// 16 whole digits plus 2 fractional stays well inside int64.
	if len(whole) > 16 {
		return 0, fmt.Errorf("price %q out of range", price)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	var cents int64
	for _, part := range []string{whole, frac} {
		for _, ch := range part {
			if ch < '0' || ch > '9' {
				return 0, fmt.Errorf("invalid price %q", price)
			}
			cents = cents*10 + int64(ch-'0')
		}
	}
	if negative {
		cents = -cents
	}
	return cents, nil
}
