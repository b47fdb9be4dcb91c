// Package database keeps an optional relay-history log in sqlite. It is
// purely observational: recorded outcomes never feed back into the
// existence check, so the documented check-then-write race is untouched.
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"slack_image_relay/internal/logger"

	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sql.DB
}

// RelayRecord is one handled webhook event and its outcome.
type RelayRecord struct {
	ID        int64
	AppID     string
	FileID    string
	ChannelID string
	Status    string
	Message   string
	CreatedAt time.Time
}

// New creates a new database connection and ensures schema is up to date
func New(dbPath string) (*DB, error) {
	// Ensure database directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &DB{db}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

func (db *DB) InsertRelay(r RelayRecord) error {
	query := `
        INSERT INTO relays (app_id, file_id, channel_id, status, message, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.DB.Exec(query, r.AppID, r.FileID, r.ChannelID, r.Status, r.Message, createdAt)
	if err != nil {
		logger.Error.Printf("Database error inserting relay record for file %s: %v", r.FileID, err)
		return fmt.Errorf("failed to insert relay record: %w", err)
	}

	logger.Debug.Printf("Recorded relay outcome %s for file %s", r.Status, r.FileID)
	return nil
}

// RecentRelays returns up to limit records, newest first.
func (db *DB) RecentRelays(limit int) ([]RelayRecord, error) {
	query := `
        SELECT id, app_id, file_id, channel_id, status, message, created_at
        FROM relays
        ORDER BY created_at DESC, id DESC
        LIMIT ?
    `
	rows, err := db.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query relay records: %w", err)
	}
	defer rows.Close()

	var records []RelayRecord
	for rows.Next() {
		var r RelayRecord
		if err := rows.Scan(&r.ID, &r.AppID, &r.FileID, &r.ChannelID, &r.Status, &r.Message, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan relay record: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}
