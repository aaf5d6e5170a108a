package analyzer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"botlynx/internal/config"
	"botlynx/internal/detector"
	"botlynx/internal/report"

	"github.com/pterm/pterm"
)

const (
	gptUA    = "GPTBot/1.0"
	claudeUA = "Mozilla/5.0 compatible; ClaudeBot"
	humanUA  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Firefox/120.0"
)

func newTestAnalyzer(t *testing.T, cfg *config.Config, opts ...Option) *Analyzer {
	t.Helper()
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	classifier, err := detector.New(cfg.Bots, logger)
	if err != nil {
		t.Fatalf("Failed to create classifier: %v", err)
	}
	a, err := New(cfg, classifier, logger, opts...)
	if err != nil {
		t.Fatalf("Failed to create analyzer: %v", err)
	}
	return a
}

func logLine(ip string, minute int, path string, status int, ua string) string {
	return fmt.Sprintf(`%s - - [10/Jan/2025:14:%02d:00 +0000] "GET %s HTTP/1.1" %d 512 "-" "%s"`,
		ip, minute%60, path, status, ua)
}

func analyze(t *testing.T, a *Analyzer, lines []string) (*report.Report, error) {
	t.Helper()
	return a.Analyze(context.Background(), strings.NewReader(strings.Join(lines, "\n")), nil)
}

func TestAnalyze_HomepageRedirectPolicy(t *testing.T) {
	lines := []string{logLine("1.2.3.4", 0, "/", 301, gptUA)}

	cfg := config.Default()
	cfg.IgnoreHomepageRedirects = true
	r, err := analyze(t, newTestAnalyzer(t, cfg), lines)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if r.OverallSuccessRate != 100 {
		t.Errorf("Expected success rate 100 with policy enabled, got %.1f", r.OverallSuccessRate)
	}
	if len(r.FailureTypes) != 0 {
		t.Errorf("Expected no failures with policy enabled, got %v", r.FailureTypes)
	}

	cfg = config.Default()
	cfg.IgnoreHomepageRedirects = false
	r, err = analyze(t, newTestAnalyzer(t, cfg), lines)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if r.OverallSuccessRate != 0 {
		t.Errorf("Expected success rate 0 with policy disabled, got %.1f", r.OverallSuccessRate)
	}
	if len(r.FailureTypes) != 1 || r.FailureTypes[0].Type != "Redirect" || r.FailureTypes[0].Count != 1 {
		t.Errorf("Expected one Redirect failure, got %v", r.FailureTypes)
	}
}

func TestAnalyze_MalformedLineTolerance(t *testing.T) {
	var lines []string
	for i := 0; i < 100; i++ {
		lines = append(lines, logLine(fmt.Sprintf("10.0.0.%d", i%10), i, "/docs/page", 200, claudeUA))
		if i%20 == 10 {
			lines = append(lines, "@@ random garbage text "+strings.Repeat("x", i))
		}
	}

	r, err := analyze(t, newTestAnalyzer(t, config.Default()), lines)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if r.TotalRequests != 100 {
		t.Errorf("Expected 100 bot requests, got %d", r.TotalRequests)
	}
	if r.Scan.LinesRead != 105 {
		t.Errorf("Expected 105 lines read, got %d", r.Scan.LinesRead)
	}
	if r.Scan.LinesRejected != 5 {
		t.Errorf("Expected 5 rejected lines, got %d", r.Scan.LinesRejected)
	}
}

func TestAnalyze_OversizeLineIsRejected(t *testing.T) {
	var lines []string
	for i := 0; i < 10; i++ {
		lines = append(lines, logLine("10.0.0.1", i, "/docs", 200, gptUA))
	}
	lines = append(lines, strings.Repeat("z", 2<<20))
	for i := 10; i < 20; i++ {
		lines = append(lines, logLine("10.0.0.1", i, "/docs", 200, gptUA))
	}

	r, err := analyze(t, newTestAnalyzer(t, config.Default()), lines)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if r.TotalRequests != 20 {
		t.Errorf("Expected 20 bot requests, got %d", r.TotalRequests)
	}
	if r.Scan.LinesRead != 21 || r.Scan.LinesRejected != 1 {
		t.Errorf("Expected 21 read and 1 rejected, got %d and %d", r.Scan.LinesRead, r.Scan.LinesRejected)
	}
}

func TestAnalyze_TimeTiesFollowLogOrder(t *testing.T) {
	lines := []string{
		`1.1.1.1 - - [08/Jan/2025:18:00:00 +0000] "GET / HTTP/1.1" 200 10 "-" "GPTBot/1.0"`,
		`1.1.1.2 - - [06/Jan/2025:09:00:00 +0000] "GET / HTTP/1.1" 200 10 "-" "GPTBot/1.0"`,
	}

	r, err := analyze(t, newTestAnalyzer(t, config.Default()), lines)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if r.TimeAnalysis.BusiestDay != "Wednesday" || r.TimeAnalysis.PeakHour != "18:00 - 19:00" {
		t.Errorf("Expected Wednesday and 18:00 - 19:00, got %s and %s", r.TimeAnalysis.BusiestDay, r.TimeAnalysis.PeakHour)
	}
}

func TestAnalyze_MixedAttribution(t *testing.T) {
	var lines []string
	for i := 0; i < 100; i++ {
		ua := gptUA
		if i%5 == 1 || i%5 == 3 {
			ua = claudeUA
		}
		lines = append(lines, logLine("5.6.7.8", i, "/article", 200, ua))
	}

	r, err := analyze(t, newTestAnalyzer(t, config.Default()), lines)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(r.BotStatistics) != 2 {
		t.Fatalf("Expected 2 bot entries, got %d", len(r.BotStatistics))
	}

	counts := map[string]int{}
	sum := 0.0
	for _, b := range r.BotStatistics {
		counts[b.Type] = b.Count
		sum += b.Percentage
	}
	if counts["ChatGPT/OpenAI"] != 60 || counts["Claude/Anthropic"] != 40 {
		t.Errorf("Expected 60/40 split, got %v", counts)
	}
	if math.Abs(sum-100) > 0.2 {
		t.Errorf("Expected percentages to sum to 100, got %.2f", sum)
	}
	if r.BotStatistics[0].Type != "ChatGPT/OpenAI" {
		t.Errorf("Expected largest bot first, got %s", r.BotStatistics[0].Type)
	}
	if r.BotStatistics[0].Category != "AI Assistant" || r.BotStatistics[0].HealthStatus != "good" {
		t.Errorf("Expected category and health to be filled, got %+v", r.BotStatistics[0])
	}
}

func TestAnalyze_HumanOnlyIsNoData(t *testing.T) {
	lines := []string{
		logLine("9.9.9.9", 1, "/", 200, humanUA),
		logLine("9.9.9.9", 2, "/about", 200, humanUA),
	}

	r, err := analyze(t, newTestAnalyzer(t, config.Default()), lines)
	if !errors.Is(err, report.ErrNoData) {
		t.Fatalf("Expected ErrNoData, got %v", err)
	}
	if r != nil {
		t.Error("Expected nil report with no data")
	}
}

func TestAnalyzeFile_Missing(t *testing.T) {
	a := newTestAnalyzer(t, config.Default())

	_, err := a.AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "nope.log"), nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Expected os.ErrNotExist, got %v", err)
	}
}

func TestAnalyzeFile_ProgressAndSections(t *testing.T) {
	var lines []string
	for i := 0; i < 25; i++ {
		lines = append(lines, logLine("1.1.1.1", i, "/robots.txt", 200, gptUA))
	}
	path := filepath.Join(t.TempDir(), "access.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.ProgressInterval = 10
	cfg.Features.SEOHealth = false

	var calls [][2]int
	r, err := newTestAnalyzer(t, cfg).AnalyzeFile(context.Background(), path, func(linesRead, bots int) {
		calls = append(calls, [2]int{linesRead, bots})
	})
	if err != nil {
		t.Fatalf("AnalyzeFile failed: %v", err)
	}

	if len(calls) != 2 || calls[0] != [2]int{10, 10} || calls[1] != [2]int{20, 20} {
		t.Errorf("Expected progress at 10 and 20 lines, got %v", calls)
	}
	if r.SEOHealth != nil {
		t.Error("Expected SEO health section to be omitted when disabled")
	}
	if r.Compliance == nil || r.Compliance.CompliantBots != 1 {
		t.Errorf("Expected one compliant bot, got %+v", r.Compliance)
	}
	if r.Geographic != nil {
		t.Error("Expected no geographic section without a country lookup")
	}
	if r.DateRange.Start != "2025-01-10 14:00:00" || r.DateRange.End != "2025-01-10 14:24:00" {
		t.Errorf("Unexpected date range %+v", r.DateRange)
	}
}

func TestAnalyzeFiles_CumulativeProgress(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for f := 0; f < 2; f++ {
		var lines []string
		for i := 0; i < 10; i++ {
			lines = append(lines, logLine("1.1.1.1", f*10+i, "/", 200, gptUA))
		}
		path := filepath.Join(dir, fmt.Sprintf("access%d.log", f))
		if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}

	cfg := config.Default()
	cfg.ProgressInterval = 5

	var calls [][2]int
	_, err := newTestAnalyzer(t, cfg).AnalyzeFiles(context.Background(), paths, func(linesRead, bots int) {
		calls = append(calls, [2]int{linesRead, bots})
	})
	if err != nil {
		t.Fatalf("AnalyzeFiles failed: %v", err)
	}

	want := [][2]int{{5, 5}, {10, 10}, {15, 15}, {20, 20}}
	if fmt.Sprint(calls) != fmt.Sprint(want) {
		t.Errorf("Expected progress %v, got %v", want, calls)
	}
}

func TestAnalyze_CancelledContext(t *testing.T) {
	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, logLine("1.1.1.1", i, "/", 200, gptUA))
	}
	cfg := config.Default()
	cfg.ProgressInterval = 5

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestAnalyzer(t, cfg).Analyze(ctx, strings.NewReader(strings.Join(lines, "\n")), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

type fakeGeo map[string]string

func (f fakeGeo) Country(ip string) string { return f[ip] }

func TestAnalyze_Geographic(t *testing.T) {
	lines := []string{
		logLine("1.1.1.1", 1, "/", 200, gptUA),
		logLine("1.1.1.1", 2, "/a", 200, gptUA),
		logLine("2.2.2.2", 3, "/b", 200, claudeUA),
		logLine("3.3.3.3", 4, "/c", 200, claudeUA),
	}
	cfg := config.Default()
	cfg.Features.GeographicAnalysis = true

	r, err := analyze(t, newTestAnalyzer(t, cfg, WithCountryLookup(fakeGeo{"1.1.1.1": "US", "2.2.2.2": "DE"})), lines)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if r.Geographic == nil {
		t.Fatal("Expected geographic section")
	}
	if len(r.Geographic.Countries) != 2 || r.Geographic.Countries[0].Country != "US" || r.Geographic.Countries[0].Count != 2 {
		t.Errorf("Unexpected countries %+v", r.Geographic.Countries)
	}
	if r.Geographic.Unknown != 1 {
		t.Errorf("Expected 1 unknown, got %d", r.Geographic.Unknown)
	}
}

func TestNew_InvalidLogFormat(t *testing.T) {
	cfg := config.Default()
	cfg.LogFormat = "apache-xml"
	classifier, _ := detector.New(cfg.Bots, pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace))

	if _, err := New(cfg, classifier, pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)); err == nil {
		t.Error("Expected error for unknown log format")
	}
}
