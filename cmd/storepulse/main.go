package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dukerupert/storepulse/internal/backup"
	"github.com/dukerupert/storepulse/internal/database"
	"github.com/dukerupert/storepulse/internal/logging"
	"github.com/dukerupert/storepulse/internal/push"
	"github.com/dukerupert/storepulse/internal/server"
	"github.com/dukerupert/storepulse/internal/store"
)

func main() {
	godotenv.Load()

	logger := logging.Setup(os.Getenv("STOREPULSE_LOG_LEVEL"))

	dbPath := envOr("STOREPULSE_DB_PATH", "storepulse.db")
	port := envOr("STOREPULSE_PORT", "8080")
	baseURL := envOr("STOREPULSE_BASE_URL", "http://localhost:"+port)

	sessionSecret := os.Getenv("STOREPULSE_SESSION_SECRET")
	if sessionSecret == "" {
		logger.Error("STOREPULSE_SESSION_SECRET is required")
		os.Exit(1)
	}
	webhookSecret := os.Getenv("STOREPULSE_WEBHOOK_SECRET")
	if webhookSecret == "" {
		logger.Error("STOREPULSE_WEBHOOK_SECRET is required")
		os.Exit(1)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := server.New(db, server.Config{
		SessionSecret: sessionSecret,
		WebhookSecret: webhookSecret,
		BaseURL:       baseURL,
		PostmarkToken: os.Getenv("STOREPULSE_POSTMARK_TOKEN"),
		FromEmail:     os.Getenv("STOREPULSE_FROM_EMAIL"),
		Push: push.Config{
			VAPIDPublicKey:  os.Getenv("STOREPULSE_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("STOREPULSE_VAPID_PRIVATE_KEY"),
			Subscriber:      envOr("STOREPULSE_VAPID_SUBSCRIBER", "mailto:admin@localhost"),
		},
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backups := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("STOREPULSE_S3_ENDPOINT"),
			Bucket:    os.Getenv("STOREPULSE_S3_BUCKET"),
			Region:    envOr("STOREPULSE_S3_REGION", "auto"),
			AccessKey: os.Getenv("STOREPULSE_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("STOREPULSE_S3_SECRET_KEY"),
		},
		DBPath:        dbPath,
		Passphrase:    os.Getenv("STOREPULSE_BACKUP_PASSPHRASE"),
		ScheduleHour:  envInt("STOREPULSE_BACKUP_HOUR", 3),
		RetentionDays: envInt("STOREPULSE_BACKUP_RETENTION_DAYS", 30),
	}, db, store.NewBackupStore(db), logger.With("component", "backup"))

	if backups.Enabled() {
		backups.Start(ctx)
		logger.Info("backups scheduled")
	} else {
		logger.Info("backups disabled, missing S3 credentials or passphrase")
	}

	// Hourly sweep of expired session rows and stale rate-limit windows.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.CleanupExpired()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", httpServer.Addr, "base_url", baseURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}

	backups.Stop()
	logger.Info("stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
