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
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"botlynx/internal/analyzer"
	"botlynx/internal/database/repositories"
	"botlynx/internal/report"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// MaxSSEConnections limits concurrent streamed analyses
const MaxSSEConnections = 4

type analyzeRequest struct {
	Path string `json:"path" binding:"required"`
}

// ProgressEvent is the payload of each "progress" SSE event.
type ProgressEvent struct {
	LinesRead   int `json:"lines_read"`
	BotRequests int `json:"bot_requests"`
}

type analyzeResult struct {
	id     uint
	report *report.Report
	err    error
}

type AnalyzeHandler struct {
	analyzer          *analyzer.Analyzer
	repo              repositories.ReportRepository
	logRoot           string
	logger            *pterm.Logger
	activeConnections int
	maxConnections    int
	connectionMutex   sync.Mutex
}

// NewAnalyzeHandler creates an analyze handler that only reads files under logRoot.
func NewAnalyzeHandler(a *analyzer.Analyzer, repo repositories.ReportRepository, logRoot string, logger *pterm.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:       a,
		repo:           repo,
		logRoot:        logRoot,
		logger:         logger,
		maxConnections: MaxSSEConnections,
	}
}

// run analyzes a server-local file and stores the result.
func (h *AnalyzeHandler) run(ctx context.Context, path string, progress analyzer.ProgressFunc) analyzeResult {
	rep, err := h.analyzer.AnalyzeFile(ctx, path, progress)
	if err != nil {
		return analyzeResult{err: err}
	}

	stored, err := h.repo.Create(rep, path)
	if err != nil {
		h.logger.WithCaller().Error("Failed to store report", h.logger.Args("path", path, "error", err))
		return analyzeResult{report: rep, err: fmt.Errorf("failed to store report: %w", err)}
	}
	return analyzeResult{id: stored.ID, report: rep}
}

// errorStatus maps analysis errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrOutsideLogRoot):
		return http.StatusForbidden
	case errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, report.ErrNoData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Analyze runs a synchronous analysis of {"path": ...} and returns the stored report
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be {\"path\": \"...\"}"})
		return
	}

	path, err := confine(h.logRoot, req.Path)
	if err != nil {
		h.logger.Warn("Rejected analyze path", h.logger.Args("path", req.Path, "client_ip", c.ClientIP()))
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	res := h.run(c.Request.Context(), path, nil)
	if res.err != nil {
		status := errorStatus(res.err)
		if status == http.StatusInternalServerError {
			h.logger.WithCaller().Error("Analysis failed", h.logger.Args("path", req.Path, "error", res.err))
		}
		c.JSON(status, gin.H{"error": res.err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": res.id, "report": res.report})
}

// StreamAnalyze runs an analysis of ?path= and streams progress via Server-Sent Events.
// The stream ends with a "done" event carrying the report id, or an "error" event.
func (h *AnalyzeHandler) StreamAnalyze(c *gin.Context) {
	if c.Query("path") == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing path parameter"})
		return
	}
	path, err := confine(h.logRoot, c.Query("path"))
	if err != nil {
		h.logger.Warn("Rejected analyze path", h.logger.Args("path", c.Query("path"), "client_ip", c.ClientIP()))
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	// Check connection limit
	h.connectionMutex.Lock()
	if h.activeConnections >= h.maxConnections {
		h.connectionMutex.Unlock()
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Maximum concurrent analyses reached. Please try again later."})
		return
	}
	h.activeConnections++
	h.connectionMutex.Unlock()

	defer func() {
		h.connectionMutex.Lock()
		h.activeConnections--
		h.connectionMutex.Unlock()

		if r := recover(); r != nil {
			h.logger.Error("Panic in SSE stream", h.logger.Args("panic", r, "client_ip", c.ClientIP()))
		}
	}()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Progress is monotonic, so dropped events only lose intermediate values
	events := make(chan ProgressEvent, 16)
	done := make(chan analyzeResult, 1)
	go func() {
		done <- h.run(ctx, path, func(linesRead, botRequests int) {
			select {
			case events <- ProgressEvent{LinesRead: linesRead, BotRequests: botRequests}:
			default:
			}
		})
	}()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	h.logger.Debug("Client connected to analysis stream", h.logger.Args("client_ip", c.ClientIP(), "path", path))

	for {
		select {
		case <-c.Request.Context().Done():
			h.logger.Debug("Analysis stream cancelled by client", h.logger.Args("client_ip", c.ClientIP()))
			<-done
			return

		case ev := <-events:
			if !h.writeEvent(c, "progress", ev) {
				cancel()
				<-done
				return
			}

		case res := <-done:
			// Flush progress queued before the scan finished
			for drained := false; !drained; {
				select {
				case ev := <-events:
					h.writeEvent(c, "progress", ev)
				default:
					drained = true
				}
			}
			if res.err != nil {
				h.writeEvent(c, "error", gin.H{"error": res.err.Error(), "status": errorStatus(res.err)})
				return
			}
			h.writeEvent(c, "done", gin.H{"id": res.id, "total_requests": res.report.TotalRequests})
			return
		}
	}
}

func (h *AnalyzeHandler) writeEvent(c *gin.Context, name string, payload any) bool {
	data, err := sonic.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal SSE payload", h.logger.Args("error", err))
		return false
	}

	if _, err := fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", name, data); err != nil {
		h.logger.Debug("Failed to write SSE data", h.logger.Args("error", err))
		return false
	}
	c.Writer.Flush()
	return true
}
