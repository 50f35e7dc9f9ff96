package store

import (
	"testing"
	"time"

	"github.com/dukerupert/storepulse/internal/model"
)

func TestBackupLifecycle(t *testing.T) {
	db := newTestDB(t)
	s := NewBackupStore(db)

	b, err := s.Create("backup-2026.db.enc", "backup-2026.db.enc")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Status != model.BackupStatusPending {
		t.Errorf("initial status = %q", b.Status)
	}

	if err := s.UpdateStatus(b.ID, model.BackupStatusUploading, ""); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := s.UpdateCompleted(b.ID, 4096); err != nil {
		t.Fatalf("update completed: %v", err)
	}

	got, err := s.GetByID(b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.BackupStatusCompleted || got.SizeBytes != 4096 {
		t.Errorf("backup = %+v", got)
	}
}

func TestBackupFailureRecordsError(t *testing.T) {
	db := newTestDB(t)
	s := NewBackupStore(db)

	b, err := s.Create("backup.db.enc", "backup.db.enc")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.UpdateStatus(b.ID, model.BackupStatusFailed, "upload timed out"); err != nil {
		t.Fatalf("update status: %v", err)
	}

	got, err := s.GetByID(b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.BackupStatusFailed || got.Error != "upload timed out" {
		t.Errorf("backup = %+v", got)
	}
}

func TestBackupDeleteOlderThan(t *testing.T) {
	db := newTestDB(t)
	s := NewBackupStore(db)

	old, err := s.Create("old.enc", "old.enc")
	if err != nil {
		t.Fatalf("create old: %v", err)
	}
	if _, err := db.Exec(`UPDATE backups SET created_at = datetime('now', '-40 days') WHERE id = ?`, old.ID); err != nil {
		t.Fatalf("backdate: %v", err)
	}
	if _, err := s.Create("recent.enc", "recent.enc"); err != nil {
		t.Fatalf("create recent: %v", err)
	}

	keys, err := s.DeleteOlderThan(time.Now().UTC().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("delete older than: %v", err)
	}
	if len(keys) != 1 || keys[0] != "old.enc" {
		t.Errorf("keys = %v, want [old.enc]", keys)
	}

	remaining, err := s.List(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Filename != "recent.enc" {
		t.Errorf("remaining = %+v", remaining)
	}
}
