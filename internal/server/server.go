package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/storepulse/internal/email"
	"github.com/dukerupert/storepulse/internal/handler"
	"github.com/dukerupert/storepulse/internal/middleware"
	"github.com/dukerupert/storepulse/internal/push"
	"github.com/dukerupert/storepulse/internal/session"
	"github.com/dukerupert/storepulse/internal/store"
	"github.com/dukerupert/storepulse/internal/websocket"
)

// Config carries everything the HTTP layer needs beyond the database.
type Config struct {
	SessionSecret string
	WebhookSecret string
	BaseURL       string
	PostmarkToken string
	FromEmail     string
	Push          push.Config
}

// Server wires stores, services, and handlers onto a router.
type Server struct {
	db          *sql.DB
	logger      *slog.Logger
	sessions    *session.Manager
	rateLimiter *middleware.RateLimiter
	hub         *websocket.Hub

	sessionStore *store.SessionStore

	authHandler      *handler.AuthHandler
	shopHandler      *handler.ShopHandler
	dashboardHandler *handler.DashboardHandler
	webhookHandler   *handler.WebhookHandler
	pushHandler      *handler.PushHandler
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	magicLinks := store.NewMagicLinkStore(db)
	users := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	shops := store.NewShopStore(db)
	customers := store.NewCustomerStore(db)
	orders := store.NewOrderStore(db)
	products := store.NewProductStore(db)
	analytics := store.NewAnalyticsStore(db)
	pushStore := store.NewPushStore(db)

	sessions := session.NewManager(cfg.SessionSecret)
	emailClient := email.NewClient(cfg.PostmarkToken, cfg.FromEmail, cfg.BaseURL)
	hub := websocket.NewHub(logger.With("component", "websocket"))
	pushSvc := push.NewService(cfg.Push, pushStore, logger.With("component", "push"))

	return &Server{
		db:           db,
		logger:       logger,
		sessions:     sessions,
		rateLimiter:  middleware.NewRateLimiter(),
		hub:          hub,
		sessionStore: sessionStore,

		authHandler:      handler.NewAuthHandler(magicLinks, sessionStore, sessions, emailClient, logger.With("component", "auth")),
		shopHandler:      handler.NewShopHandler(shops, logger.With("component", "shops")),
		dashboardHandler: handler.NewDashboardHandler(shops, users, analytics, logger.With("component", "dashboard")),
		webhookHandler:   handler.NewWebhookHandler(cfg.WebhookSecret, shops, customers, orders, products, hub, pushSvc, logger.With("component", "webhooks")),
		pushHandler:      handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push")),
	}
}

// Router builds the full route table. Webhooks and the login flow are
// public; everything else sits behind the session middleware.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Login issuance is rate limited per client IP on top of the
	// per-email cooldown the store enforces.
	loginLimit := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 10, time.Minute)

	mux.HandleFunc("GET /login", s.authHandler.LoginPage)
	mux.Handle("POST /login", loginLimit(http.HandlerFunc(s.authHandler.Login)))
	mux.HandleFunc("GET /login/verify", s.authHandler.Verify)

	mux.HandleFunc("POST /webhooks/orders", s.webhookHandler.Orders)
	mux.HandleFunc("POST /webhooks/products", s.webhookHandler.Products)
	mux.HandleFunc("POST /webhooks/customers", s.webhookHandler.Customers)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	protected := http.NewServeMux()
	protected.HandleFunc("GET /{$}", s.dashboardHandler.Page)
	protected.HandleFunc("GET /api/dashboard/summary", s.dashboardHandler.Summary)
	protected.HandleFunc("GET /shops", s.shopHandler.List)
	protected.HandleFunc("POST /shops", s.shopHandler.Create)
	protected.HandleFunc("POST /shops/select", s.shopHandler.Select)
	protected.HandleFunc("GET /api/push/key", s.pushHandler.VAPIDKey)
	protected.HandleFunc("POST /api/push/subscribe", s.pushHandler.Subscribe)
	protected.HandleFunc("POST /api/push/unsubscribe", s.pushHandler.Unsubscribe)
	protected.Handle("GET /ws", websocket.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
	protected.HandleFunc("POST /logout", s.authHandler.Logout)

	requireAuth := middleware.RequireAuth(s.sessions)
	mux.Handle("/", requireAuth(protected))

	return middleware.RequestLogger(s.logger)(mux)
}

// Hub exposes the broadcast hub for background publishers.
func (s *Server) Hub() *websocket.Hub {
	return s.hub
}

// CleanupExpired removes expired session audit rows and stale rate-limit
// entries. Intended to run on a ticker.
func (s *Server) CleanupExpired() {
	if n, err := s.sessionStore.DeleteExpired(); err != nil {
		s.logger.Error("delete expired sessions", "error", err)
	} else if n > 0 {
		s.logger.Info("expired sessions removed", "count", n)
	}
	s.rateLimiter.Cleanup()
}
