package indexes

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	for _, stmt := range []string{
		`CREATE TABLE stored_reports (id INTEGER PRIMARY KEY, source TEXT, created_at DATETIME)`,
		`CREATE TABLE bot_summaries (id INTEGER PRIMARY KEY, report_id INTEGER, bot TEXT, period_start TEXT, requests INTEGER, success_rate REAL)`,
		`CREATE INDEX idx_bot_name ON bot_summaries(bot)`,
	} {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}
	return db
}

func TestEnsure(t *testing.T) {
	db := openDB(t)
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)

	created, dropped, err := Ensure(db, logger)
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if created != len(Expected) || dropped != 1 {
		t.Errorf("Expected %d created and 1 dropped, got %d and %d", len(Expected), created, dropped)
	}

	created, dropped, err = Ensure(db, logger)
	if err != nil {
		t.Fatalf("Second Ensure failed: %v", err)
	}
	if created != 0 || dropped != 0 {
		t.Errorf("Expected no changes on second run, got %d created and %d dropped", created, dropped)
	}
}
