package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dukerupert/storepulse/internal/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestShop(t *testing.T, db *sql.DB, domain string) int64 {
	t.Helper()
	shop, err := NewShopStore(db).Create(domain, "Test Shop")
	if err != nil {
		t.Fatalf("create shop: %v", err)
	}
	return shop.ID
}
