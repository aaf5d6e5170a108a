// MIT License
//
// # Copyright (c) 2026 Kolin
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
package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pterm/pterm"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Config struct {
	Path         string
	MaxOpenConns int
	MaxIdleConns int
	ConnMaxLife  time.Duration
}

// queryLogger routes gorm's logging through pterm. Queries slower than threshold
// are reported at debug level, all others only at trace level.
type queryLogger struct {
	logger    *pterm.Logger
	threshold time.Duration
	level     gormlogger.LogLevel
}

func newQueryLogger(l *pterm.Logger, threshold time.Duration) *queryLogger {
	return &queryLogger{logger: l, threshold: threshold, level: gormlogger.Warn}
}

func (q *queryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *q
	clone.level = level
	return &clone
}

func (q *queryLogger) Info(_ context.Context, msg string, data ...any) {
	if q.level >= gormlogger.Info {
		q.logger.Info(msg, q.logger.Args("data", data))
	}
}

func (q *queryLogger) Warn(_ context.Context, msg string, data ...any) {
	if q.level >= gormlogger.Warn {
		q.logger.Warn(msg, q.logger.Args("data", data))
	}
}

func (q *queryLogger) Error(_ context.Context, msg string, data ...any) {
	if q.level >= gormlogger.Error {
		q.logger.Error(msg, q.logger.Args("data", data))
	}
}

func (q *queryLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	stmt, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		q.logger.Error("Report store query failed", q.logger.Args("error", err, "ms", elapsed.Milliseconds(), "sql", stmt))
	case elapsed >= q.threshold:
		q.logger.Debug("Slow report store query", q.logger.Args("ms", elapsed.Milliseconds(), "rows", rows, "sql", stmt))
	default:
		q.logger.Trace("Report store query", q.logger.Args("ms", elapsed.Milliseconds(), "rows", rows, "sql", stmt))
	}
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// NewConnection opens the report store, configures the pool and runs migrations.
func NewConnection(cfg *Config, logger *pterm.Logger) (*gorm.DB, error) {
	// WAL for concurrent API reads while an analysis is being stored,
	// busy_timeout to ride out SQLITE_BUSY
	dsn := cfg.Path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"

	if !isMemory(cfg.Path) {
		if _, err := os.Stat(cfg.Path); errors.Is(err, os.ErrPermission) {
			logger.WithCaller().Error("Permission denied to access database file.", logger.Args("error", err))
			return nil, fmt.Errorf("database %s: %w", cfg.Path, err)
		}
		logger.Debug("Permission to access database file granted.", logger.Args("path", cfg.Path))
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt: true,
		Logger:      newQueryLogger(logger, 100*time.Millisecond),
	})
	if err != nil {
		logger.WithCaller().Error("Failed to connect to the database.", logger.Args("error", err))
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.WithCaller().Error("Failed to get database instance.", logger.Args("error", err))
		return nil, err
	}

	open, idle := poolSize(cfg)
	sqlDB.SetMaxOpenConns(open)
	sqlDB.SetMaxIdleConns(idle)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLife)
	logger.Debug("Connection pool configured", logger.Args("max_open", open, "max_idle", idle, "max_life", cfg.ConnMaxLife))

	logger.Trace("Running database migrations.")
	if err := RunMigrations(db); err != nil {
		logger.WithCaller().Error("Failed to run database migrations.", logger.Args("error", err))
		return nil, fmt.Errorf("migrations failed: %w", err)
	}

	if err := OptimizeDatabase(db, logger); err != nil {
		logger.Warn("Database optimization had warnings", logger.Args("error", err))
	}

	logger.Info("Database connection established successfully.", logger.Args("path", cfg.Path))
	return db, nil
}

// poolSize returns the open and idle connection limits. Every connection to an
// in-memory database is a separate database, so those get exactly one.
func poolSize(cfg *Config) (open, idle int) {
	if isMemory(cfg.Path) {
		return 1, 1
	}
	open, idle = cfg.MaxOpenConns, cfg.MaxIdleConns
	if open <= 0 {
		open = 10
	}
	if idle <= 0 {
		idle = 5
	}
	return open, min(idle, open)
}
