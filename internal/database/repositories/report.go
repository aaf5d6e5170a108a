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
package repositories

import (
	"errors"
	"fmt"
	"time"

	"botlynx/internal/database/models"
	"botlynx/internal/report"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"
)

// ErrReportNotFound is returned when no stored report has the requested id.
var ErrReportNotFound = errors.New("report not found")

type ReportRepository interface {
	Create(r *report.Report, source string) (*models.StoredReport, error)
	FindByID(id uint) (*models.StoredReport, error)
	FindAll(limit int) ([]*models.StoredReport, error)
	Delete(id uint) error
	DeleteOlderThan(cutoff time.Time) (int64, error)
	BotTrend(bot string, limit int) ([]*models.BotSummary, error)
	Count() (int64, error)
}

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepo{db: db}
}

// Create stores the report body and one summary row per bot in a single transaction.
func (r *reportRepo) Create(rep *report.Report, source string) (*models.StoredReport, error) {
	body, err := sonic.MarshalString(rep)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	stored := &models.StoredReport{
		Source:        source,
		StartTime:     rep.DateRange.Start,
		EndTime:       rep.DateRange.End,
		TotalRequests: rep.TotalRequests,
		SuccessRate:   rep.OverallSuccessRate,
		BotCount:      len(rep.BotStatistics),
		LinesRead:     rep.Scan.LinesRead,
		HumanRequests: rep.Scan.HumanRequests,
		Body:          body,
	}

	bytesByBot := make(map[string]int64)
	if rep.Bandwidth != nil {
		for _, b := range rep.Bandwidth.ByBot {
			bytesByBot[b.Type] = b.Bytes
		}
	}
	for _, b := range rep.BotStatistics {
		stored.Bots = append(stored.Bots, models.BotSummary{
			Bot:          b.Type,
			Category:     b.Category,
			Requests:     b.Count,
			Percentage:   b.Percentage,
			SuccessRate:  b.SuccessRate,
			Bytes:        bytesByBot[b.Type],
			HealthStatus: b.HealthStatus,
			PeriodStart:  rep.DateRange.Start,
			PeriodEnd:    rep.DateRange.End,
		})
	}

	// Create with associations inserts the bot rows in the same transaction
	if err := r.db.Create(stored).Error; err != nil {
		return nil, err
	}
	return stored, nil
}

func (r *reportRepo) FindByID(id uint) (*models.StoredReport, error) {
	var stored models.StoredReport
	err := r.db.Preload("Bots").Where("id = ?", id).First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// FindAll lists reports newest first without their bodies.
func (r *reportRepo) FindAll(limit int) ([]*models.StoredReport, error) {
	var reports []*models.StoredReport
	q := r.db.Omit("body").Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&reports).Error
	return reports, err
}

func (r *reportRepo) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", id).Delete(&models.BotSummary{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.StoredReport{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrReportNotFound
		}
		return nil
	})
}

// DeleteOlderThan removes reports created before cutoff together with their bot rows.
func (r *reportRepo) DeleteOlderThan(cutoff time.Time) (int64, error) {
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		old := tx.Model(&models.StoredReport{}).Select("id").Where("created_at < ?", cutoff)
		if err := tx.Where("report_id IN (?)", old).Delete(&models.BotSummary{}).Error; err != nil {
			return err
		}
		result := tx.Where("created_at < ?", cutoff).Delete(&models.StoredReport{})
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}

// BotTrend returns a bot's summaries oldest period first, limited to the latest limit rows.
func (r *reportRepo) BotTrend(bot string, limit int) ([]*models.BotSummary, error) {
	var rows []*models.BotSummary
	q := r.db.Where("bot = ?", bot).Order("period_start DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

func (r *reportRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.StoredReport{}).Count(&count).Error
	return count, err
}

// DecodeReport turns a stored body back into a report.
func DecodeReport(stored *models.StoredReport) (*report.Report, error) {
	var rep report.Report
	if err := sonic.UnmarshalString(stored.Body, &rep); err != nil {
		return nil, fmt.Errorf("failed to decode report %d: %w", stored.ID, err)
	}
	return &rep, nil
}
