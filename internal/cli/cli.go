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
package cli

import (
	"os"

	"botlynx/internal/analyzer"
	"botlynx/internal/banner"
	"botlynx/internal/config"
	"botlynx/internal/database"
	"botlynx/internal/detector"
	"botlynx/internal/enrichment"
	"botlynx/internal/version"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	// Global flags
	configFile string
	logLevel   string
	noBanner   bool
)

// RootCmd is the root command
var RootCmd = &cobra.Command{
	Use:   "botlynx",
	Short: "BotLynx - AI crawler access log analyzer",
	Long: `BotLynx reads web server access logs and reports how AI crawlers use your site.

Features include:
  - Per-bot request counts, success rates and health status
  - Time patterns, sessions and crawl efficiency
  - Failure root causes and recommendations
  - Anomaly detection on daily volume
  - Report history with an HTTP API`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	RootCmd.PersistentFlags().BoolVar(&noBanner, "no-banner", false, "Do not print the banner")

	RootCmd.AddCommand(analyzeCmd)
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(exportCmd)
	RootCmd.AddCommand(patternsCmd)
}

// Execute runs the CLI
func Execute() error {
	return RootCmd.Execute()
}

// app holds the components every command builds from the configuration.
type app struct {
	cfg        *config.Config
	logger     *pterm.Logger
	classifier *detector.Classifier
	geo        *enrichment.GeoIPEnricher
}

func setup() (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	// stdout is reserved for reports
	logger := config.NewLogger(cfg.LogLevel).WithWriter(os.Stderr)

	classifier, err := detector.New(cfg.Bots, logger)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, classifier: classifier}, nil
}

// newAnalyzer builds the analyzer, opening the GeoIP databases when geographic
// analysis is on. Call close when done.
func (a *app) newAnalyzer() (*analyzer.Analyzer, error) {
	var opts []analyzer.Option
	if a.cfg.Features.GeographicAnalysis {
		a.geo = enrichment.NewGeoIPEnricher(a.cfg.GeoIP.CityDB, a.cfg.GeoIP.CountryDB, a.logger, a.cfg.GeoIP.CacheSize)
		if a.geo.IsEnabled() {
			opts = append(opts, analyzer.WithCountryLookup(a.geo))
		} else {
			a.logger.Warn("Geographic analysis enabled but no GeoIP database could be opened")
		}
	}
	return analyzer.New(a.cfg, a.classifier, a.logger, opts...)
}

func (a *app) openStore() (*gorm.DB, error) {
	return database.NewConnection(&database.Config{
		Path:         a.cfg.Database.Path,
		MaxOpenConns: a.cfg.Database.MaxOpenConns,
		MaxIdleConns: a.cfg.Database.MaxIdleConns,
		ConnMaxLife:  a.cfg.Database.ConnMaxLife,
	}, a.logger)
}

func (a *app) close() {
	if a.geo != nil {
		a.geo.Close()
	}
}

func printBanner() {
	if !noBanner {
		banner.Print()
	}
}
