package handlers

import (
	"net/http"

	"botlynx/internal/config"
	"botlynx/internal/database/repositories"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// WidgetHandler serves a compact status of the most recent stored report, for
// dashboards that poll.
type WidgetHandler struct {
	repo   repositories.ReportRepository
	cfg    *config.Config
	logger *pterm.Logger
}

func NewWidgetHandler(repo repositories.ReportRepository, cfg *config.Config, logger *pterm.Logger) *WidgetHandler {
	return &WidgetHandler{repo: repo, cfg: cfg, logger: logger}
}

func (h *WidgetHandler) GetWidgetSummary(c *gin.Context) {
	latest, err := h.repo.FindAll(1)
	if err != nil {
		h.logger.Debug("Widget summary fetch error", h.logger.Args("error", err))
		c.JSON(http.StatusOK, gin.H{"status": "error"})
		return
	}
	if len(latest) == 0 {
		c.JSON(http.StatusOK, gin.H{"status": "empty"})
		return
	}

	stored, err := h.repo.FindByID(latest[0].ID)
	if err != nil {
		h.logger.Debug("Widget summary fetch error", h.logger.Args("error", err))
		c.JSON(http.StatusOK, gin.H{"status": "error"})
		return
	}

	topBot, topShare := "", 0.0
	critical := 0
	for _, b := range stored.Bots {
		if b.Percentage > topShare {
			topBot, topShare = b.Bot, b.Percentage
		}
		if b.HealthStatus == "critical" {
			critical++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         h.cfg.HealthStatus(stored.SuccessRate),
		"report_id":      stored.ID,
		"start":          stored.StartTime,
		"end":            stored.EndTime,
		"total_requests": stored.TotalRequests,
		"success_rate":   stored.SuccessRate,
		"bot_count":      stored.BotCount,
		"top_bot":        topBot,
		"top_bot_share":  topShare,
		"critical_bots":  critical,
	})
}
