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
package analyzer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"botlynx/internal/aggregate"
	"botlynx/internal/config"
	"botlynx/internal/detector"
	"botlynx/internal/ingestion"
	parsers "botlynx/internal/parser"
	"botlynx/internal/report"

	"github.com/pterm/pterm"
)

// ProgressFunc is called inline during a scan. It must return quickly.
type ProgressFunc func(linesRead, botRequests int)

// CountryLookup resolves a client IP to an ISO country code, or "" when unknown.
type CountryLookup interface {
	Country(ip string) string
}

// Analyzer scans access logs and builds AI crawler reports. It is safe for concurrent
// use: every scan owns its own aggregation state and classifier snapshot.
type Analyzer struct {
	cfg        *config.Config
	classifier *detector.Classifier
	registry   *parsers.Registry
	parser     parsers.LogParser // fixed parser; nil means detect per scan
	geo        CountryLookup
	logger     *pterm.Logger
}

type Option func(*Analyzer)

// WithCountryLookup enables per-country counting.
func WithCountryLookup(geo CountryLookup) Option {
	return func(a *Analyzer) {
		a.geo = geo
	}
}

// WithParser forces a parser instead of detecting the format.
func WithParser(p parsers.LogParser) Option {
	return func(a *Analyzer) {
		a.parser = p
	}
}

func New(cfg *config.Config, classifier *detector.Classifier, logger *pterm.Logger, opts ...Option) (*Analyzer, error) {
	a := &Analyzer{
		cfg:        cfg,
		classifier: classifier,
		registry:   parsers.NewRegistry(logger),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.parser == nil && !cfg.AutoDetectFormat() {
		p, err := a.registry.Get(strings.ToLower(cfg.LogFormat))
		if err != nil {
			return nil, fmt.Errorf("invalid log_format %q: %w", cfg.LogFormat, err)
		}
		a.parser = p
	}
	return a, nil
}

// Config returns the configuration the analyzer was built with.
func (a *Analyzer) Config() *config.Config {
	return a.cfg
}

// AnalyzeFile scans one log file and builds its report. A missing file fails before
// scanning with an error wrapping os.ErrNotExist; a file without bot requests returns
// report.ErrNoData.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, progress ProgressFunc) (*report.Report, error) {
	state, err := a.ScanFile(ctx, path, progress)
	if err != nil {
		return nil, err
	}
	return a.Build(state)
}

// Analyze is AnalyzeFile over an open stream.
func (a *Analyzer) Analyze(ctx context.Context, r io.Reader, progress ProgressFunc) (*report.Report, error) {
	state, err := a.Scan(ctx, r, progress)
	if err != nil {
		return nil, err
	}
	return a.Build(state)
}

// AnalyzeFiles scans every file into its own state and reports on the merged result.
// Progress counts are cumulative across files.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, paths []string, progress ProgressFunc) (*report.Report, error) {
	merged := aggregate.NewState()
	for _, path := range paths {
		state, err := a.ScanFile(ctx, path, offsetProgress(progress, merged.LinesRead, merged.TotalRequests))
		if err != nil {
			return nil, err
		}
		merged.Merge(state)
	}
	return a.Build(merged)
}

func offsetProgress(progress ProgressFunc, lines, requests int) ProgressFunc {
	if progress == nil || (lines == 0 && requests == 0) {
		return progress
	}
	return func(linesRead, botRequests int) {
		progress(lines+linesRead, requests+botRequests)
	}
}

// ScanFile runs the scan pass over a file and returns the finalized state.
func (a *Analyzer) ScanFile(ctx context.Context, path string, progress ProgressFunc) (*aggregate.State, error) {
	lr, err := ingestion.OpenLog(path)
	if err != nil {
		a.logger.WithCaller().Error("Failed to open log file", a.logger.Args("path", path, "error", err))
		return nil, err
	}
	defer lr.Close()

	a.logger.Info("Analyzing log file", a.logger.Args("path", path))
	state, err := a.scan(ctx, lr, progress)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}
	return state, nil
}

// Scan runs the scan pass over a stream and returns the finalized state.
func (a *Analyzer) Scan(ctx context.Context, r io.Reader, progress ProgressFunc) (*aggregate.State, error) {
	return a.scan(ctx, ingestion.NewLineReader(r), progress)
}

func (a *Analyzer) scan(ctx context.Context, lr *ingestion.LineReader, progress ProgressFunc) (*aggregate.State, error) {
	classifier := a.classifier.Snapshot()
	state := aggregate.NewState()
	parser := a.parser
	interval := a.cfg.ProgressInterval
	if interval <= 0 {
		interval = 1000
	}

	for lr.Next() {
		line := lr.Line()

		switch {
		case lr.Oversized():
			a.logger.Debug("Rejected oversize line", a.logger.Args("line", lr.LinesRead(), "limit", ingestion.MaxLineSize))
			state.RecordLine(true)
		case parser == nil && strings.TrimSpace(line) == "":
			state.RecordLine(true)
		default:
			if parser == nil {
				parser = a.detectParser(line)
			}
			a.process(state, classifier, parser, line)
		}

		if state.LinesRead%interval == 0 {
			if progress != nil {
				progress(state.LinesRead, state.TotalRequests)
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	if err := lr.Err(); err != nil {
		a.logger.WithCaller().Error("Log read failed", a.logger.Args("line", lr.LinesRead(), "error", err))
		return nil, fmt.Errorf("read error after line %d: %w", lr.LinesRead(), err)
	}

	state.Finalize()
	a.logger.Info("Scan complete", a.logger.Args(
		"lines", state.LinesRead,
		"rejected", state.LinesRejected,
		"bot_requests", state.TotalRequests,
		"human_requests", state.HumanRequests,
		"bots", len(state.Bots),
	))
	if state.StepPanics > 0 {
		a.logger.Warn("Some recording steps failed", a.logger.Args("count", state.StepPanics))
	}
	return state, nil
}

func (a *Analyzer) detectParser(line string) parsers.LogParser {
	p, err := a.registry.Detect(line)
	if err != nil {
		a.logger.Warn("Could not detect log format, using default", a.logger.Args("default", parsers.DefaultFormat))
		p, _ = a.registry.Get(parsers.DefaultFormat)
	}
	return p
}

func (a *Analyzer) process(state *aggregate.State, classifier *detector.Classifier, parser parsers.LogParser, line string) {
	rec, err := parser.Parse(line)
	state.RecordLine(err != nil)
	if err != nil {
		a.logger.Trace("Rejected line", a.logger.Args("line", state.LinesRead, "error", err))
		return
	}

	bot := classifier.Identify(rec.UserAgent)
	if bot == "" {
		state.RecordHuman()
		return
	}

	hit := &aggregate.Hit{
		Record:  rec,
		Bot:     bot,
		Success: a.cfg.IsSuccess(rec.Status, rec.Path),
	}
	if a.geo != nil {
		hit.Country = a.geo.Country(rec.ClientIP)
	}

	for _, err := range state.Record(hit) {
		a.logger.WithCaller().Warn("Recording step failed", a.logger.Args("line", state.LinesRead, "error", err))
	}
}
