package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"botlynx/internal/database/repositories"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

// ErrRetentionDisabled is returned by RunOnce when DB_RETENTION_DAYS is 0.
var ErrRetentionDisabled = errors.New("report retention disabled")

const defaultCleanupTime = "02:00"

// CleanupService deletes stored reports older than the retention period once a day
// at a fixed wall-clock time.
type CleanupService struct {
	db        *gorm.DB
	repo      repositories.ReportRepository
	logger    *pterm.Logger
	retention int
	poll      time.Duration
	at        time.Duration // offset from midnight
	vacuum    bool

	stopOnce sync.Once
	stop     chan struct{}

	mu   sync.Mutex
	last CleanupStats
}

// CleanupStats describes the most recent run.
type CleanupStats struct {
	LastRunTime      time.Time
	RecordsDeleted   int64
	CleanupDuration  time.Duration
	NextScheduledRun time.Time
}

// NewCleanupService creates a cleanup service. poll bounds how long the scheduler
// sleeps between clock checks so suspend and clock changes are noticed; cleanupTime
// is HH:MM local time and falls back to 02:00 when invalid.
func NewCleanupService(db *gorm.DB, logger *pterm.Logger, retentionDays int, poll time.Duration, cleanupTime string, vacuum bool) *CleanupService {
	if poll <= 0 {
		poll = time.Hour
	}
	at, err := time.Parse("15:04", cleanupTime)
	if err != nil {
		logger.Warn("Invalid cleanup time, using "+defaultCleanupTime, logger.Args("configured", cleanupTime))
		at, _ = time.Parse("15:04", defaultCleanupTime)
	}

	return &CleanupService{
		db:        db,
		repo:      repositories.NewReportRepository(db),
		logger:    logger,
		retention: retentionDays,
		poll:      poll,
		at:        time.Duration(at.Hour())*time.Hour + time.Duration(at.Minute())*time.Minute,
		vacuum:    vacuum,
		stop:      make(chan struct{}),
	}
}

// Start launches the daily schedule. It does nothing when retention is disabled.
func (s *CleanupService) Start() {
	if s.retention <= 0 {
		s.logger.Info("Report retention disabled, cleanup service not started")
		return
	}
	s.logger.Info("Starting report cleanup service", s.logger.Args("retention_days", s.retention, "next_run", s.nextRun(time.Now()).Format(time.DateTime)))
	go s.loop()
}

// Stop ends the schedule. Safe to call more than once.
func (s *CleanupService) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *CleanupService) loop() {
	for {
		due := s.nextRun(time.Now())
		timer := time.NewTimer(min(time.Until(due), s.poll))

		select {
		case <-s.stop:
			timer.Stop()
			return
		case now := <-timer.C:
			if now.Before(due.Add(-time.Minute)) {
				continue
			}
			if _, err := s.RunOnce(); err != nil {
				s.logger.WithCaller().Error("Report cleanup failed", s.logger.Args("error", err))
			}
			// Step past the current slot so a fast run does not fire twice
			select {
			case <-s.stop:
				return
			case <-time.After(time.Minute):
			}
		}
	}
}

// nextRun returns the first scheduled time strictly after now.
func (s *CleanupService) nextRun(now time.Time) time.Time {
	y, m, d := now.Date()
	run := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).Add(s.at)
	if !run.After(now) {
		run = run.AddDate(0, 0, 1)
	}
	return run
}

// RunOnce deletes expired reports now and returns how many were removed.
func (s *CleanupService) RunOnce() (int64, error) {
	if s.retention <= 0 {
		return 0, ErrRetentionDisabled
	}

	started := time.Now()
	cutoff := started.AddDate(0, 0, -s.retention)
	deleted, err := s.repo.DeleteOlderThan(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete reports before %s: %w", cutoff.Format(time.DateOnly), err)
	}

	s.mu.Lock()
	s.last = CleanupStats{LastRunTime: started, RecordsDeleted: deleted, CleanupDuration: time.Since(started)}
	s.mu.Unlock()

	s.logger.Info("Report cleanup completed", s.logger.Args("deleted", deleted, "cutoff", cutoff.Format(time.DateOnly), "took", time.Since(started).Round(time.Millisecond)))

	if s.vacuum && deleted > 0 {
		s.reclaim()
	}
	return deleted, nil
}

// reclaim runs VACUUM, which locks the database for its duration.
func (s *CleanupService) reclaim() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	started := time.Now()
	if err := s.db.WithContext(ctx).Exec("VACUUM").Error; err != nil {
		s.logger.WithCaller().Error("VACUUM failed", s.logger.Args("error", err))
		return
	}
	s.logger.Info("VACUUM completed", s.logger.Args("took", time.Since(started).Round(time.Second)))
}

// GetStats returns the last run's statistics and the next scheduled run.
func (s *CleanupService) GetStats() *CleanupStats {
	s.mu.Lock()
	stats := s.last
	s.mu.Unlock()

	stats.NextScheduledRun = s.nextRun(time.Now())
	return &stats
}
