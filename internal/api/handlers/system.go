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
package handlers

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"botlynx/internal/database"
	"botlynx/internal/database/repositories"
	"botlynx/internal/detector"
	"botlynx/internal/version"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// SystemHandler serves health and process statistics
type SystemHandler struct {
	repo           repositories.ReportRepository
	classifier     *detector.Classifier
	cleanupService *database.CleanupService
	logger         *pterm.Logger
	startTime      time.Time
	dbPath         string
	retentionDays  int
}

// SystemStats groups process, store and cleanup statistics.
type SystemStats struct {
	Process ProcessStats `json:"process"`
	Store   StoreStats   `json:"store"`
	Cleanup CleanupInfo  `json:"cleanup"`
}

type ProcessStats struct {
	Version       string  `json:"version"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	StartedAt     string  `json:"started_at"`
	GoVersion     string  `json:"go_version"`
	CPUs          int     `json:"cpus"`
	Goroutines    int     `json:"goroutines"`
	HeapMB        float64 `json:"heap_mb"`
	SysMB         float64 `json:"sys_mb"`
}

type StoreStats struct {
	Path        string  `json:"path"`
	SizeMB      float64 `json:"size_mb"`
	Reports     int64   `json:"reports"`
	BotFamilies int     `json:"bot_families"`
}

type CleanupInfo struct {
	RetentionDays int    `json:"retention_days"`
	NextRun       string `json:"next_run"`
	LastRun       string `json:"last_run"`
}

// NewSystemHandler creates a new system handler. cleanupService may be nil.
func NewSystemHandler(
	repo repositories.ReportRepository,
	classifier *detector.Classifier,
	cleanupService *database.CleanupService,
	logger *pterm.Logger,
	dbPath string,
	retentionDays int,
) *SystemHandler {
	return &SystemHandler{
		repo:           repo,
		classifier:     classifier,
		cleanupService: cleanupService,
		logger:         logger,
		startTime:      time.Now(),
		dbPath:         dbPath,
		retentionDays:  retentionDays,
	}
}

// Health reports liveness and whether the report store answers
func (h *SystemHandler) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if _, err := h.repo.Count(); err != nil {
		h.logger.WithCaller().Warn("Report store unavailable", h.logger.Args("error", err))
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":  status,
		"version": version.Version,
		"uptime":  formatDuration(time.Since(h.startTime)),
	})
}

// GetSystemStats returns process, store and cleanup statistics
func (h *SystemHandler) GetSystemStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.collectSystemStats())
}

func (h *SystemHandler) collectSystemStats() *SystemStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	uptime := time.Since(h.startTime)

	stats := &SystemStats{
		Process: ProcessStats{
			Version:       version.Version,
			Uptime:        formatDuration(uptime),
			UptimeSeconds: int64(uptime.Seconds()),
			StartedAt:     h.startTime.Format(time.RFC3339),
			GoVersion:     runtime.Version(),
			CPUs:          runtime.NumCPU(),
			Goroutines:    runtime.NumGoroutine(),
			HeapMB:        toMB(int64(mem.HeapAlloc)),
			SysMB:         toMB(int64(mem.Sys)),
		},
		Store: StoreStats{Path: h.dbPath, BotFamilies: h.classifier.Len()},
		Cleanup: CleanupInfo{RetentionDays: h.retentionDays, NextRun: "disabled", LastRun: "n/a"},
	}

	if n, err := h.repo.Count(); err != nil {
		h.logger.WithCaller().Warn("Failed to count stored reports", h.logger.Args("error", err))
	} else {
		stats.Store.Reports = n
	}
	if fi, err := os.Stat(h.dbPath); err == nil {
		stats.Store.SizeMB = toMB(fi.Size())
	}

	if h.cleanupService != nil && h.retentionDays > 0 {
		cs := h.cleanupService.GetStats()
		stats.Cleanup.NextRun = cs.NextScheduledRun.Format(time.DateTime)
		stats.Cleanup.LastRun = "never"
		if !cs.LastRunTime.IsZero() {
			stats.Cleanup.LastRun = cs.LastRunTime.Format(time.DateTime)
		}
	}
	return stats
}

func toMB(n int64) float64 {
	return float64(n) / (1 << 20)
}

var durationUnits = []struct {
	name string
	size time.Duration
}{
	{"day", 24 * time.Hour},
	{"hour", time.Hour},
	{"minute", time.Minute},
	{"second", time.Second},
}

// formatDuration renders d with its two most significant units, e.g. "2 days, 3 hours".
// A zero second unit is dropped.
func formatDuration(d time.Duration) string {
	d = d.Abs()
	for i, u := range durationUnits {
		n := int(d / u.size)
		if n == 0 && u.size != time.Second {
			continue
		}
		out := plural(n, u.name)
		if i+1 < len(durationUnits) {
			next := durationUnits[i+1]
			if m := int(d % u.size / next.size); m > 0 {
				out += ", " + plural(m, next.name)
			}
		}
		return out
	}
	return "0 seconds"
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
