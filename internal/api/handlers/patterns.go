package handlers

import (
	"net/http"

	"botlynx/internal/detector"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

type registerPatternRequest struct {
	Label   string `json:"label" binding:"required"`
	Pattern string `json:"pattern" binding:"required"`
}

type PatternHandler struct {
	classifier *detector.Classifier
	logger     *pterm.Logger
}

func NewPatternHandler(classifier *detector.Classifier, logger *pterm.Logger) *PatternHandler {
	return &PatternHandler{classifier: classifier, logger: logger}
}

// ListPatterns returns the bot table in matching order
func (h *PatternHandler) ListPatterns(c *gin.Context) {
	c.JSON(http.StatusOK, h.classifier.Patterns())
}

// RegisterPattern appends a pattern to a label. New labels go to the end of the table.
func (h *PatternHandler) RegisterPattern(c *gin.Context) {
	var req registerPatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be {\"label\": \"...\", \"pattern\": \"...\"}"})
		return
	}

	if err := h.classifier.Register(req.Label, req.Pattern); err != nil {
		h.logger.Warn("Rejected bot pattern", h.logger.Args("label", req.Label, "pattern", req.Pattern, "error", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"label": req.Label, "pattern": req.Pattern, "bots": h.classifier.Len()})
}

// TestUserAgent reports which label, if any, a user agent is attributed to
func (h *PatternHandler) TestUserAgent(c *gin.Context) {
	ua := c.Query("ua")
	if ua == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing ua parameter"})
		return
	}

	info, ok := h.classifier.IdentifyWithInfo(ua)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"bot": false, "user_agent": ua})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bot": true, "match": info})
}
