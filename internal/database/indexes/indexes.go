package indexes

import (
	"fmt"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

// Definition represents an index name and its creation SQL.
type Definition struct {
	Name string
	SQL  string
}

// Expected lists every index the report store should have.
var Expected = []Definition{
	// Report listing, newest first
	{Name: "idx_reports_created", SQL: `CREATE INDEX IF NOT EXISTS idx_reports_created ON stored_reports(created_at DESC)`},
	{Name: "idx_reports_source", SQL: `CREATE INDEX IF NOT EXISTS idx_reports_source ON stored_reports(source, created_at DESC)`},

	// Per-bot trend queries
	{Name: "idx_bot_trend", SQL: `CREATE INDEX IF NOT EXISTS idx_bot_trend ON bot_summaries(bot, period_start, requests, success_rate)`},
	{Name: "idx_bot_report", SQL: `CREATE INDEX IF NOT EXISTS idx_bot_report ON bot_summaries(report_id)`},
}

// Ensure makes the store's indexes match Expected: any other index on the report
// tables is dropped and missing ones are created.
func Ensure(db *gorm.DB, logger *pterm.Logger) (created int, dropped int, err error) {
	existing, err := existingIndexes(db)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list indexes: %w", err)
	}

	want := make(map[string]bool, len(Expected))
	for _, def := range Expected {
		want[def.Name] = true
	}

	for name := range existing {
		if want[name] {
			continue
		}
		if err := db.Exec("DROP INDEX IF EXISTS " + name).Error; err != nil {
			logger.Warn("Failed to drop index", logger.Args("index", name, "error", err))
			continue
		}
		logger.Debug("Dropped obsolete index", logger.Args("index", name))
		dropped++
	}

	for _, def := range Expected {
		if existing[def.Name] {
			continue
		}
		if err := db.Exec(def.SQL).Error; err != nil {
			return created, dropped, fmt.Errorf("failed to create index %s: %w", def.Name, err)
		}
		created++
	}
	return created, dropped, nil
}

// existingIndexes returns the named indexes on the report tables. Automatic indexes
// (sqlite_autoindex_*) are left out.
func existingIndexes(db *gorm.DB) (map[string]bool, error) {
	var names []string
	err := db.Raw(`SELECT name FROM sqlite_master
		WHERE type = 'index' AND tbl_name IN ('stored_reports', 'bot_summaries') AND name NOT LIKE 'sqlite_%'`).
		Scan(&names).Error
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set, nil
}
