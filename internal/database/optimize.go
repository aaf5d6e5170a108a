// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package database

import (
	"fmt"

	"botlynx/internal/database/indexes"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

// OptimizeDatabase reconciles the report store indexes and refreshes planner statistics.
// Only index failures are returned; the journal check and ANALYZE are advisory.
func OptimizeDatabase(db *gorm.DB, logger *pterm.Logger) error {
	if mode, err := journalMode(db); err != nil {
		logger.Warn("Failed to check journal mode", logger.Args("error", err))
	} else if mode != "wal" && mode != "memory" {
		logger.Warn("Report store is not in WAL mode, concurrent reads may block", logger.Args("mode", mode))
	}

	created, dropped, err := indexes.Ensure(db, logger)
	if err != nil {
		return fmt.Errorf("index reconcile: %w", err)
	}
	if created+dropped > 0 {
		logger.Debug("Report store indexes updated", logger.Args("created", created, "dropped", dropped))
	}

	if err := db.Exec("ANALYZE").Error; err != nil {
		logger.Warn("ANALYZE failed", logger.Args("error", err))
	}
	return nil
}

// journalMode reports the SQLite journal mode. In-memory databases report "memory".
func journalMode(db *gorm.DB) (string, error) {
	var mode string
	err := db.Raw("PRAGMA journal_mode").Scan(&mode).Error
	return mode, err
}
