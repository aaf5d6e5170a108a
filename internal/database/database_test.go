package database

import (
	"errors"
	"testing"
	"time"

	"botlynx/internal/database/models"
	"botlynx/internal/database/repositories"
	"botlynx/internal/report"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewConnection(&Config{Path: ":memory:"}, pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func sampleReport(start string, gptCount int) *report.Report {
	return &report.Report{
		DateRange:          report.DateRange{Start: start, End: start},
		TotalRequests:      gptCount + 10,
		OverallSuccessRate: 90,
		BotStatistics: []report.BotStat{
			{Type: "ChatGPT/OpenAI", Count: gptCount, Category: "AI Assistant", SuccessRate: 95, HealthStatus: "good"},
			{Type: "Claude/Anthropic", Count: 10, Category: "AI Assistant", SuccessRate: 50, HealthStatus: "critical"},
		},
		Bandwidth: &report.Bandwidth{
			ByBot: []report.BotBandwidth{{Type: "ChatGPT/OpenAI", Bytes: 2048}},
		},
		Scan: report.Scan{LinesRead: gptCount + 12},
	}
}

func TestReportRepository_CreateAndFind(t *testing.T) {
	repo := repositories.NewReportRepository(newTestDB(t))

	stored, err := repo.Create(sampleReport("2025-01-10 00:00:00", 40), "/var/log/access.log")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if stored.ID == 0 {
		t.Fatal("Expected an assigned id")
	}

	found, err := repo.FindByID(stored.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Source != "/var/log/access.log" || found.TotalRequests != 50 || found.BotCount != 2 {
		t.Errorf("Unexpected stored summary %+v", found)
	}
	if len(found.Bots) != 2 {
		t.Fatalf("Expected 2 bot rows, got %d", len(found.Bots))
	}
	if found.Bots[0].Bytes != 2048 {
		t.Errorf("Expected bandwidth copied into bot row, got %d", found.Bots[0].Bytes)
	}

	decoded, err := repositories.DecodeReport(found)
	if err != nil {
		t.Fatalf("DecodeReport failed: %v", err)
	}
	if decoded.TotalRequests != 50 || len(decoded.BotStatistics) != 2 {
		t.Errorf("Decoded report does not match, got %+v", decoded)
	}
}

func TestReportRepository_FindAllAndDelete(t *testing.T) {
	repo := repositories.NewReportRepository(newTestDB(t))

	first, _ := repo.Create(sampleReport("2025-01-10 00:00:00", 1), "a.log")
	second, _ := repo.Create(sampleReport("2025-01-11 00:00:00", 2), "b.log")

	all, err := repo.FindAll(0)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != second.ID {
		t.Fatalf("Expected newest report first, got %d reports", len(all))
	}
	if all[0].Body != "" {
		t.Error("Expected FindAll to omit bodies")
	}

	if err := repo.Delete(first.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.FindByID(first.ID); !errors.Is(err, repositories.ErrReportNotFound) {
		t.Errorf("Expected ErrReportNotFound after delete, got %v", err)
	}
	if err := repo.Delete(first.ID); !errors.Is(err, repositories.ErrReportNotFound) {
		t.Errorf("Expected ErrReportNotFound on second delete, got %v", err)
	}

	count, _ := repo.Count()
	if count != 1 {
		t.Errorf("Expected 1 report left, got %d", count)
	}
}

func TestReportRepository_BotTrend(t *testing.T) {
	repo := repositories.NewReportRepository(newTestDB(t))

	repo.Create(sampleReport("2025-01-12 00:00:00", 30), "c.log")
	repo.Create(sampleReport("2025-01-10 00:00:00", 10), "a.log")
	repo.Create(sampleReport("2025-01-11 00:00:00", 20), "b.log")

	trend, err := repo.BotTrend("ChatGPT/OpenAI", 2)
	if err != nil {
		t.Fatalf("BotTrend failed: %v", err)
	}
	if len(trend) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(trend))
	}
	if trend[0].Requests != 20 || trend[1].Requests != 30 {
		t.Errorf("Expected latest two periods oldest first [20 30], got [%d %d]", trend[0].Requests, trend[1].Requests)
	}
}

func TestCleanupService_RunOnce(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewReportRepository(db)

	old, _ := repo.Create(sampleReport("2024-01-01 00:00:00", 5), "old.log")
	repo.Create(sampleReport("2025-01-10 00:00:00", 5), "new.log")
	db.Model(&models.StoredReport{}).Where("id = ?", old.ID).Update("created_at", time.Now().AddDate(0, 0, -40))

	svc := NewCleanupService(db, pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace), 30, time.Hour, "02:00", false)
	deleted, err := svc.RunOnce()
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted report, got %d", deleted)
	}

	var orphans int64
	db.Model(&models.BotSummary{}).Where("report_id = ?", old.ID).Count(&orphans)
	if orphans != 0 {
		t.Errorf("Expected bot rows of deleted report to be removed, got %d", orphans)
	}
	if svc.GetStats().RecordsDeleted != 1 {
		t.Errorf("Expected stats to record 1 deletion, got %d", svc.GetStats().RecordsDeleted)
	}
}

func TestCleanupService_Disabled(t *testing.T) {
	svc := NewCleanupService(newTestDB(t), pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace), 0, time.Hour, "02:00", false)
	if _, err := svc.RunOnce(); !errors.Is(err, ErrRetentionDisabled) {
		t.Errorf("Expected ErrRetentionDisabled, got %v", err)
	}
	svc.Stop()
	svc.Stop()
}

func TestCleanupService_NextRun(t *testing.T) {
	svc := NewCleanupService(newTestDB(t), pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace), 30, time.Hour, "02:30", false)

	tests := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2025, 3, 4, 1, 0, 0, 0, time.UTC), time.Date(2025, 3, 4, 2, 30, 0, 0, time.UTC)},
		{time.Date(2025, 3, 4, 2, 30, 0, 0, time.UTC), time.Date(2025, 3, 5, 2, 30, 0, 0, time.UTC)},
		{time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC), time.Date(2025, 4, 1, 2, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := svc.nextRun(tt.now); !got.Equal(tt.want) {
			t.Errorf("nextRun(%s): expected %s, got %s", tt.now, tt.want, got)
		}
	}

	invalid := NewCleanupService(newTestDB(t), pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace), 30, time.Hour, "bogus", false)
	got := invalid.nextRun(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC))
	if got.Hour() != 2 || got.Minute() != 0 {
		t.Errorf("Expected fallback to 02:00, got %s", got)
	}
}
