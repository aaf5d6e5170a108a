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
package discovery

import (
	"os"
	"strings"

	"botlynx/internal/ingestion"
	parsers "botlynx/internal/parser"

	"github.com/pterm/pterm"
)

// Source is an access log found on this host together with its detected format.
type Source struct {
	Name   string
	Path   string
	Format string
}

type ServiceDetector interface {
	Name() string
	Detect() ([]Source, error)
}

// Engine runs every detector and collects the sources they find.
type Engine struct {
	detectors []ServiceDetector
	logger    *pterm.Logger
}

func NewEngine(logger *pterm.Logger) *Engine {
	registry := parsers.NewRegistry(logger)
	return &Engine{
		detectors: []ServiceDetector{
			NewCombinedDetector(registry, logger),
			NewTraefikDetector(registry, logger),
			NewCaddyDetector(registry, logger),
		},
		logger: logger,
	}
}

func (e *Engine) Run() []Source {
	e.logger.Debug("Starting discovery...")

	var found []Source
	for _, detector := range e.detectors {
		sources, err := detector.Detect()
		e.logger.Trace("Detector executed.", e.logger.Args("Name", detector.Name()))
		if err != nil {
			e.logger.WithCaller().Warn("Detection failed,", e.logger.Args("detector", detector.Name(), "error", err))
			continue
		}
		for _, s := range sources {
			e.logger.Info("Discovered log source.", e.logger.Args("Name", s.Name, "Path", s.Path, "Format", s.Format))
		}
		found = append(found, sources...)
	}

	e.logger.Debug("Discovery completed", e.logger.Args("sources", len(found)))
	return found
}

// pathDetector checks an env-configured path, or a list of well-known locations when
// auto discovery is on, and keeps the first file whose content matches its format.
type pathDetector struct {
	format         string
	envVar         string
	candidates     []string
	registry       *parsers.Registry
	logger         *pterm.Logger
	configuredPath string
	autoDiscover   bool
}

func newPathDetector(format, envVar string, candidates []string, registry *parsers.Registry, logger *pterm.Logger) *pathDetector {
	autoDiscover := true
	if autoDiscoverEnv := os.Getenv("LOG_AUTO_DISCOVER"); autoDiscoverEnv != "" {
		autoDiscover = autoDiscoverEnv == "true"
	}

	return &pathDetector{
		format:         format,
		envVar:         envVar,
		candidates:     candidates,
		registry:       registry,
		logger:         logger,
		configuredPath: os.Getenv(envVar),
		autoDiscover:   autoDiscover,
	}
}

func (d *pathDetector) Name() string {
	return d.format
}

func (d *pathDetector) Detect() ([]Source, error) {
	var paths []string

	// Priority 1: the configured path, if set and valid
	if d.configuredPath != "" {
		if fileInfo, err := os.Stat(d.configuredPath); err == nil && !fileInfo.IsDir() {
			paths = append(paths, d.configuredPath)
			d.logger.Info("Using configured log path", d.logger.Args("env", d.envVar, "path", d.configuredPath))
		} else {
			d.logger.Warn("Configured log path is invalid", d.logger.Args("env", d.envVar, "path", d.configuredPath, "error", err))
		}
	} else if d.autoDiscover {
		// Priority 2: well-known locations
		paths = append(paths, d.candidates...)
	}

	for _, path := range paths {
		fileInfo, err := os.Stat(path)
		if err != nil {
			d.logger.Trace("Log path not found", d.logger.Args("format", d.format, "path", path))
			continue
		}
		if fileInfo.IsDir() || fileInfo.Size() == 0 {
			d.logger.Debug("Skipping directory or empty file", d.logger.Args("path", path))
			continue
		}

		if d.matches(path) {
			// Only use first valid source
			return []Source{{Name: sourceName(d.format, path), Path: path, Format: d.format}}, nil
		}
	}

	d.logger.Debug("No log sources detected", d.logger.Args("format", d.format))
	return nil, nil
}

// matches reports whether the first non-blank line is detected as this detector's format.
func (d *pathDetector) matches(path string) bool {
	lr, err := ingestion.OpenLog(path)
	if err != nil {
		d.logger.Debug("Failed to open file", d.logger.Args("path", path, "error", err))
		return false
	}
	defer lr.Close()

	for lr.Next() {
		line := lr.Line()
		if strings.TrimSpace(line) == "" {
			continue
		}
		p, err := d.registry.Detect(line)
		return err == nil && p.Name() == d.format
	}
	return false
}

func sourceName(format, path string) string {
	// Split path and get filename
	pathSplit := strings.Split(strings.ReplaceAll(path, "\\", "/"), "/")
	fileNameExtension := pathSplit[len(pathSplit)-1]

	// Remove extension
	fileName := strings.Split(fileNameExtension, ".")[0]
	return format + "-" + fileName
}
