package database

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "relay.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertAndRecentRelays(t *testing.T) {
	db := newTestDB(t)

	base := time.Date(2024, 12, 6, 12, 0, 0, 0, time.UTC)
	records := []RelayRecord{
		{AppID: "A111", FileID: "F1", ChannelID: "C1", Status: "success", Message: "File event handled successfully.", CreatedAt: base},
		{AppID: "A111", FileID: "F2", ChannelID: "C1", Status: "failed", Message: "cannot accept file format", CreatedAt: base.Add(time.Minute)},
		{AppID: "A222", FileID: "F3", ChannelID: "C2", Status: "success", Message: "File event handled successfully.", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range records {
		if err := db.InsertRelay(r); err != nil {
			t.Fatalf("InsertRelay() error = %v", err)
		}
	}

	got, err := db.RecentRelays(2)
	if err != nil {
		t.Fatalf("RecentRelays() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(got))
	}
	// Newest first.
	if got[0].FileID != "F3" || got[1].FileID != "F2" {
		t.Errorf("Unexpected order: %s, %s", got[0].FileID, got[1].FileID)
	}
	if got[0].Status != "success" || got[0].AppID != "A222" {
		t.Errorf("Unexpected record %+v", got[0])
	}
}

func TestInsertRelayDefaultsCreatedAt(t *testing.T) {
	db := newTestDB(t)

	if err := db.InsertRelay(RelayRecord{AppID: "A111", Status: "failed"}); err != nil {
		t.Fatalf("InsertRelay() error = %v", err)
	}

	got, err := db.RecentRelays(1)
	if err != nil {
		t.Fatalf("RecentRelays() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(got))
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("Expected created_at to be populated")
	}
}
