package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"botlynx/internal/database/models"
	"botlynx/internal/database/repositories"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

const (
	defaultListLimit  = 50
	maxListLimit      = 500
	defaultTrendLimit = 12
)

// ReportSummary is the listing view of a stored report.
type ReportSummary struct {
	ID            uint      `json:"id"`
	Source        string    `json:"source"`
	Start         string    `json:"start"`
	End           string    `json:"end"`
	TotalRequests int       `json:"total_requests"`
	SuccessRate   float64   `json:"success_rate"`
	BotCount      int       `json:"bot_count"`
	LinesRead     int       `json:"lines_read"`
	HumanRequests int       `json:"human_requests"`
	CreatedAt     time.Time `json:"created_at"`
}

// TrendPoint is one stored period of a single bot.
type TrendPoint struct {
	ReportID     uint    `json:"report_id"`
	Start        string  `json:"start"`
	End          string  `json:"end"`
	Requests     int     `json:"requests"`
	Percentage   float64 `json:"percentage"`
	SuccessRate  float64 `json:"success_rate"`
	Bytes        int64   `json:"bytes"`
	HealthStatus string  `json:"health_status"`
}

type ReportHandler struct {
	repo   repositories.ReportRepository
	logger *pterm.Logger
}

func NewReportHandler(repo repositories.ReportRepository, logger *pterm.Logger) *ReportHandler {
	return &ReportHandler{repo: repo, logger: logger}
}

func summarize(r *models.StoredReport) ReportSummary {
	return ReportSummary{
		ID:            r.ID,
		Source:        r.Source,
		Start:         r.StartTime,
		End:           r.EndTime,
		TotalRequests: r.TotalRequests,
		SuccessRate:   r.SuccessRate,
		BotCount:      r.BotCount,
		LinesRead:     r.LinesRead,
		HumanRequests: r.HumanRequests,
		CreatedAt:     r.CreatedAt,
	}
}

// queryLimit reads ?limit= capped at ceiling. Missing or invalid values give def.
func queryLimit(c *gin.Context, def, ceiling int) int {
	limit := def
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = min(n, ceiling)
		}
	}
	return limit
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report id"})
		return 0, false
	}
	return uint(id), true
}

// ListReports returns stored reports, newest first
func (h *ReportHandler) ListReports(c *gin.Context) {
	stored, err := h.repo.FindAll(queryLimit(c, defaultListLimit, maxListLimit))
	if err != nil {
		h.logger.WithCaller().Error("Failed to list reports", h.logger.Args("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reports"})
		return
	}

	out := make([]ReportSummary, 0, len(stored))
	for _, r := range stored {
		out = append(out, summarize(r))
	}
	c.JSON(http.StatusOK, out)
}

// GetReport returns the full stored report
func (h *ReportHandler) GetReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	stored, err := h.repo.FindByID(id)
	if errors.Is(err, repositories.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}
	if err != nil {
		h.logger.WithCaller().Error("Failed to load report", h.logger.Args("id", id, "error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load report"})
		return
	}

	rep, err := repositories.DecodeReport(stored)
	if err != nil {
		h.logger.WithCaller().Error("Stored report is corrupt", h.logger.Args("id", id, "error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary": summarize(stored),
		"report":  rep,
	})
}

func (h *ReportHandler) DeleteReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	err := h.repo.Delete(id)
	if errors.Is(err, repositories.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}
	if err != nil {
		h.logger.WithCaller().Error("Failed to delete report", h.logger.Args("id", id, "error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete report"})
		return
	}

	h.logger.Info("Report deleted", h.logger.Args("id", id))
	c.Status(http.StatusNoContent)
}

// GetBotTrend returns the latest stored periods of one bot, oldest first. Labels that
// contain a slash must be sent percent-encoded.
func (h *ReportHandler) GetBotTrend(c *gin.Context) {
	bot := c.Param("name")
	points, err := h.repo.BotTrend(bot, queryLimit(c, defaultTrendLimit, maxListLimit))
	if err != nil {
		h.logger.WithCaller().Error("Failed to get bot trend", h.logger.Args("bot", bot, "error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get bot trend"})
		return
	}

	out := make([]TrendPoint, 0, len(points))
	for _, p := range points {
		out = append(out, TrendPoint{
			ReportID:     p.ReportID,
			Start:        p.PeriodStart,
			End:          p.PeriodEnd,
			Requests:     p.Requests,
			Percentage:   p.Percentage,
			SuccessRate:  p.SuccessRate,
			Bytes:        p.Bytes,
			HealthStatus: p.HealthStatus,
		})
	}
	c.JSON(http.StatusOK, gin.H{"bot": bot, "points": out})
}
