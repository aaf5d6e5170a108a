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
package models

import (
	"time"
)

// StoredReport is one persisted analysis. Body holds the full report as JSON; the other
// columns are copied out of it for listing and filtering.
type StoredReport struct {
	ID            uint   `gorm:"primaryKey"`
	Source        string `gorm:"not null"` // analyzed path or upload name
	StartTime     string // report date range, "2006-01-02 15:04:05"
	EndTime       string
	TotalRequests int
	SuccessRate   float64
	BotCount      int
	LinesRead     int
	HumanRequests int
	Body          string `gorm:"type:text;not null"`
	CreatedAt     time.Time

	Bots []BotSummary `gorm:"foreignKey:ReportID"`
}

func (StoredReport) TableName() string {
	return "stored_reports"
}

// BotSummary is one bot_statistics row of a stored report, kept as its own row so
// trends can be queried without decoding report bodies.
type BotSummary struct {
	ID           uint   `gorm:"primaryKey"`
	ReportID     uint   `gorm:"not null"`
	Bot          string `gorm:"not null"`
	Category     string
	Requests     int
	Percentage   float64
	SuccessRate  float64
	Bytes        int64
	HealthStatus string
	PeriodStart  string // copied from the report's date range
	PeriodEnd    string
	CreatedAt    time.Time
}

func (BotSummary) TableName() string {
	return "bot_summaries"
}
