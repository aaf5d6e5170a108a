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
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"botlynx/internal/analyzer"
	"botlynx/internal/api/handlers"
	"botlynx/internal/config"
	"botlynx/internal/database"
	"botlynx/internal/database/repositories"
	"botlynx/internal/detector"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// Deps are the components the HTTP API serves. Cleanup may be nil.
type Deps struct {
	Config     *config.Config
	Analyzer   *analyzer.Analyzer
	Classifier *detector.Classifier
	Reports    repositories.ReportRepository
	Cleanup    *database.CleanupService
	Logger     *pterm.Logger
}

// NewRouter wires every API route onto a fresh gin engine.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	// Bot labels such as "ChatGPT/OpenAI" travel percent-encoded in :name
	r.UseRawPath = true
	r.Use(gin.Recovery(), requestLogger(d.Logger))

	reports := handlers.NewReportHandler(d.Reports, d.Logger)
	analyze := handlers.NewAnalyzeHandler(d.Analyzer, d.Reports, d.Config.Server.LogRoot, d.Logger)
	patterns := handlers.NewPatternHandler(d.Classifier, d.Logger)
	system := handlers.NewSystemHandler(d.Reports, d.Classifier, d.Cleanup, d.Logger, d.Config.Database.Path, d.Config.Database.RetentionDays)
	widget := handlers.NewWidgetHandler(d.Reports, d.Config, d.Logger)

	api := r.Group("/api")
	{
		api.GET("/health", system.Health)
		api.GET("/system/stats", system.GetSystemStats)
		api.GET("/widget/summary", widget.GetWidgetSummary)

		api.GET("/reports", reports.ListReports)
		api.GET("/reports/:id", reports.GetReport)
		api.DELETE("/reports/:id", reports.DeleteReport)
		api.GET("/bots/:name/trend", reports.GetBotTrend)

		api.POST("/analyze", analyze.Analyze)
		api.GET("/analyze/stream", analyze.StreamAnalyze)

		api.GET("/patterns", patterns.ListPatterns)
		api.POST("/patterns", patterns.RegisterPattern)
		api.GET("/patterns/test", patterns.TestUserAgent)
	}

	return r
}

func requestLogger(logger *pterm.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := logger.Args(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).Round(time.Microsecond),
			"client_ip", c.ClientIP(),
		)
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("HTTP request failed", args)
			return
		}
		logger.Debug("HTTP request", args)
	}
}

// Server runs the API until its context is cancelled.
type Server struct {
	http   *http.Server
	logger *pterm.Logger
}

func NewServer(addr string, d Deps) *Server {
	if d.Config.Server.Mode != "" {
		gin.SetMode(d.Config.Server.Mode)
	}
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(d),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: d.Logger,
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening", s.logger.Args("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
