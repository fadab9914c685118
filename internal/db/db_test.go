package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestInit(t *testing.T) {
	tmpDir := t.TempDir()

	db, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	dbPath := filepath.Join(tmpDir, FileName)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file not created at %s", dbPath)
	}

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		t.Fatalf("failed to query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %s, want wal", journalMode)
	}

	var tableName string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='events'").Scan(&tableName)
	if err != nil {
		t.Fatalf("events table not found: %v", err)
	}

	version, err := GetUserVersion(db)
	if err != nil {
		t.Fatalf("GetUserVersion() error = %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestInit_CreatesDirectories(t *testing.T) {
	baseDir := filepath.Join(t.TempDir(), "nested", "path")

	db, err := Init(baseDir)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(baseDir); err != nil {
		t.Errorf("base directory not created: %v", err)
	}
}

func TestInit_Reopen(t *testing.T) {
	tmpDir := t.TempDir()

	db1, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("first Init() error = %v", err)
	}
	db1.Close()

	db2, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	db2.Close()
}

func TestInsertAndListEvents(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	events := []*Event{
		{Kind: "SYSTEM", Message: "started", CreatedAt: 100},
		{Kind: "SAVE", Message: "saved note", Meta: map[string]any{"universe": "Personal"}, CreatedAt: 200},
		{Kind: "SAVE", Message: "saved second", CreatedAt: 300},
	}
	for _, e := range events {
		if _, err := InsertEvent(ctx, db, e); err != nil {
			t.Fatalf("InsertEvent() error = %v", err)
		}
	}

	all, err := ListEvents(ctx, db, "", 10)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	if all[0].Message != "saved second" {
		t.Errorf("all[0].Message = %q, want newest first", all[0].Message)
	}

	saves, err := ListEvents(ctx, db, "SAVE", 1)
	if err != nil {
		t.Fatalf("ListEvents(SAVE) error = %v", err)
	}
	if len(saves) != 1 {
		t.Fatalf("len(saves) = %d, want 1", len(saves))
	}

	older, err := ListEvents(ctx, db, "SAVE", 5)
	if err != nil {
		t.Fatalf("ListEvents(SAVE) error = %v", err)
	}
	if older[1].Meta["universe"] != "Personal" {
		t.Errorf("Meta[universe] = %v, want Personal", older[1].Meta["universe"])
	}
	if older[0].Meta != nil {
		t.Errorf("Meta = %v, want nil for event without meta", older[0].Meta)
	}
}
