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
package export

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"botlynx/internal/config"
	"botlynx/internal/report"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pterm/pterm"
)

const insertChunk = 2000

// Execer is the part of *sql.DB and *sql.Tx the exporter needs.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS ai_bot_hits (
		bot_name VARCHAR(128) NOT NULL,
		category VARCHAR(64) NOT NULL,
		value BIGINT NOT NULL,
		value_prop DECIMAL(6,2) NOT NULL,
		success_rate DECIMAL(6,2) NOT NULL,
		bytes BIGINT NOT NULL,
		month VARCHAR(2) NOT NULL,
		year VARCHAR(4) NOT NULL,
		project_id INT NOT NULL,
		KEY idx_period (project_id, year, month)
	) DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS ai_bot_methods (
		method VARCHAR(16) NOT NULL,
		value BIGINT NOT NULL,
		value_prop DECIMAL(6,2) NOT NULL,
		month VARCHAR(2) NOT NULL,
		year VARCHAR(4) NOT NULL,
		project_id INT NOT NULL,
		KEY idx_period (project_id, year, month)
	) DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS ai_bot_status_codes (
		status_class VARCHAR(3) NOT NULL,
		value BIGINT NOT NULL,
		value_prop DECIMAL(6,2) NOT NULL,
		month VARCHAR(2) NOT NULL,
		year VARCHAR(4) NOT NULL,
		project_id INT NOT NULL,
		KEY idx_period (project_id, year, month)
	) DEFAULT CHARSET=utf8mb4`,
}

// OpenMySQL connects with the configured credentials and checks the connection.
func OpenMySQL(ctx context.Context, cfg config.MySQLConfig) (*sql.DB, error) {
	timeout := int(cfg.ConnectTimeout.Seconds())
	if timeout <= 0 {
		timeout = 5
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci&timeout=%ds",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, timeout)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql %s:%d unreachable: %w", cfg.Host, cfg.Port, err)
	}
	return db, nil
}

// MySQLExporter writes per-bot, per-method and per-status-class aggregates of a report
// for one project and month. Existing rows of that period are replaced.
type MySQLExporter struct {
	db        *sql.DB
	projectID int
	logger    *pterm.Logger
}

func NewMySQLExporter(db *sql.DB, projectID int, logger *pterm.Logger) *MySQLExporter {
	return &MySQLExporter{db: db, projectID: projectID, logger: logger}
}

// EnsureTables creates the aggregate tables when missing.
func (e *MySQLExporter) EnsureTables(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := e.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Export replaces the period's rows inside one transaction. The period is the month of
// the report's first request.
func (e *MySQLExporter) Export(ctx context.Context, r *report.Report) error {
	month, year, err := Period(r)
	if err != nil {
		return err
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := WriteAggregates(ctx, tx, r, e.projectID, month, year); err != nil {
		tx.Rollback()
		e.logger.WithCaller().Error("MySQL export failed", e.logger.Args("project_id", e.projectID, "error", err))
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	e.logger.Info("Exported report to MySQL", e.logger.Args(
		"project_id", e.projectID, "month", month, "year", year, "bots", len(r.BotStatistics)))
	return nil
}

// Period returns the month and year of the report's start date.
func Period(r *report.Report) (int, int, error) {
	start := r.DateRange.Start
	if len(start) < len("2006-01-02") {
		return 0, 0, fmt.Errorf("report has no date range")
	}
	t, err := time.Parse("2006-01-02", start[:10])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid report start %q: %w", start, err)
	}
	return int(t.Month()), t.Year(), nil
}

// WriteAggregates deletes the period's rows and inserts the report's aggregates.
func WriteAggregates(ctx context.Context, db Execer, r *report.Report, projectID, month, year int) error {
	m, y := fmt.Sprintf("%d", month), fmt.Sprintf("%d", year)

	for _, table := range []string{"ai_bot_hits", "ai_bot_methods", "ai_bot_status_codes"} {
		if _, err := db.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE project_id=? AND month=? AND year=?",
			projectID, m, y,
		); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	bytesByBot := make(map[string]int64)
	if r.Bandwidth != nil {
		for _, b := range r.Bandwidth.ByBot {
			bytesByBot[b.Type] = b.Bytes
		}
	}

	bots := make([][]any, 0, len(r.BotStatistics))
	for _, b := range r.BotStatistics {
		bots = append(bots, []any{b.Type, b.Category, b.Count, twoDec(b.Percentage), twoDec(b.SuccessRate), bytesByBot[b.Type], m, y, projectID})
	}
	if err := chunkedExec(ctx, db, "ai_bot_hits",
		[]string{"bot_name", "category", "value", "value_prop", "success_rate", "bytes", "month", "year", "project_id"},
		bots, insertChunk,
	); err != nil {
		return err
	}

	methods := make([][]any, 0, len(r.RequestMethods))
	for _, mth := range r.RequestMethods {
		methods = append(methods, []any{mth.Method, mth.Count, twoDec(mth.Percentage), m, y, projectID})
	}
	if err := chunkedExec(ctx, db, "ai_bot_methods",
		[]string{"method", "value", "value_prop", "month", "year", "project_id"},
		methods, insertChunk,
	); err != nil {
		return err
	}

	var statuses [][]any
	if sb := r.StatusBreakdown; sb != nil {
		for _, c := range []struct {
			class string
			share report.CountShare
		}{{"2xx", sb.Success}, {"3xx", sb.Redirect}, {"4xx", sb.ClientError}, {"5xx", sb.ServerError}} {
			if c.share.Count == 0 {
				continue
			}
			statuses = append(statuses, []any{c.class, c.share.Count, twoDec(c.share.Percentage), m, y, projectID})
		}
	}
	return chunkedExec(ctx, db, "ai_bot_status_codes",
		[]string{"status_class", "value", "value_prop", "month", "year", "project_id"},
		statuses, insertChunk,
	)
}

func twoDec(f float64) float64 {
	return math.Round(f*100) / 100
}

func chunkedExec(ctx context.Context, db Execer, table string, cols []string, rows [][]any, chunk int) error {
	if chunk <= 0 {
		chunk = insertChunk
	}
	for i := 0; i < len(rows); i += chunk {
		j := min(i+chunk, len(rows))
		if err := bulkInsert(ctx, db, table, cols, rows[i:j]); err != nil {
			return fmt.Errorf("insert into %s failed: %w", table, err)
		}
	}
	return nil
}

func bulkInsert(ctx context.Context, db Execer, table string, cols []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	pl := "(" + strings.TrimRight(strings.Repeat("?,", len(cols)), ",") + ")"
	valPlace := strings.TrimRight(strings.Repeat(pl+",", len(rows)), ",")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, strings.Join(cols, ","), valPlace)

	args := make([]any, 0, len(rows)*len(cols))
	for _, r := range rows {
		args = append(args, r...)
	}
	_, err := db.ExecContext(ctx, query, args...)
	return err
}
