package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
)

func TestDefault_BotTableOrder(t *testing.T) {
	cfg := Default()

	expected := []string{"ChatGPT/OpenAI", "Perplexity", "Bard/Gemini", "Claude/Anthropic", "Other AI Bots"}
	if len(cfg.Bots) != len(expected) {
		t.Fatalf("Expected %d bots, got %d", len(expected), len(cfg.Bots))
	}
	for i, name := range expected {
		if cfg.Bots[i].DisplayName != name {
			t.Errorf("Expected bot #%d to be '%s', got '%s'", i, name, cfg.Bots[i].DisplayName)
		}
	}
	if cfg.Features.GeographicAnalysis {
		t.Error("Expected geographic analysis to be disabled by default")
	}
}

func TestConfig_IsSuccess(t *testing.T) {
	cfg := Default()

	tests := []struct {
		status   int
		path     string
		ignore   bool
		expected bool
	}{
		{200, "/page", false, true},
		{204, "/page", true, true},
		{301, "/", true, true},
		{301, "/", false, false},
		{302, "/about", true, false},
		{404, "/", true, false},
		{500, "/", true, false},
	}

	for _, tt := range tests {
		cfg.IgnoreHomepageRedirects = tt.ignore
		if got := cfg.IsSuccess(tt.status, tt.path); got != tt.expected {
			t.Errorf("IsSuccess(%d, %q) with ignore=%v: expected %v, got %v", tt.status, tt.path, tt.ignore, tt.expected, got)
		}
	}
}

func TestConfig_HealthStatus(t *testing.T) {
	cfg := Default()

	if s := cfg.HealthStatus(85); s != "good" {
		t.Errorf("Expected 'good', got '%s'", s)
	}
	if s := cfg.HealthStatus(60); s != "warning" {
		t.Errorf("Expected 'warning', got '%s'", s)
	}
	if s := cfg.HealthStatus(12.5); s != "critical" {
		t.Errorf("Expected 'critical', got '%s'", s)
	}
	if c := cfg.HealthColor(99); c != "#22c55e" {
		t.Errorf("Expected good color, got '%s'", c)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "botlynx.yaml")
	content := []byte(`
ignore_homepage_redirects: false
top_urls_count: 5
features:
  seo_health: false
database:
  path: /tmp/custom.db
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_RETENTION_DAYS", "30")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.IgnoreHomepageRedirects {
		t.Error("Expected ignore_homepage_redirects to be false")
	}
	if cfg.TopURLsCount != 5 {
		t.Errorf("Expected TopURLsCount 5, got %d", cfg.TopURLsCount)
	}
	if cfg.Features.SEOHealth {
		t.Error("Expected SEO health to be disabled")
	}
	if !cfg.Features.ReferrerAnalysis {
		t.Error("Expected untouched toggles to keep their defaults")
	}
	if cfg.Database.Path != "/tmp/custom.db" {
		t.Errorf("Expected database path '/tmp/custom.db', got '%s'", cfg.Database.Path)
	}
	if cfg.Database.RetentionDays != 30 {
		t.Errorf("Expected retention 30, got %d", cfg.Database.RetentionDays)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level 'debug', got '%s'", cfg.LogLevel)
	}
	if len(cfg.Bots) != 5 {
		t.Errorf("Expected default bots to be kept, got %d", len(cfg.Bots))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestParsePatterns(t *testing.T) {
	data := []byte(`
bots:
  - name: meta
    patterns: ["meta-externalagent", "FacebookBot"]
  - display_name: Mistral
    category: AI Assistant
    color: "#ff7000"
    patterns: ["MistralAI-User"]
`)

	bots, err := ParsePatterns(data)
	if err != nil {
		t.Fatalf("ParsePatterns failed: %v", err)
	}
	if len(bots) != 2 {
		t.Fatalf("Expected 2 bots, got %d", len(bots))
	}
	if bots[0].DisplayName != "meta" {
		t.Errorf("Expected display name to fall back to name, got '%s'", bots[0].DisplayName)
	}
	if bots[0].Category != "AI Bot" {
		t.Errorf("Expected default category 'AI Bot', got '%s'", bots[0].Category)
	}
	if bots[1].Color != "#ff7000" {
		t.Errorf("Expected color '#ff7000', got '%s'", bots[1].Color)
	}
}

func TestParsePatterns_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":       `bots: []`,
		"no patterns": "bots:\n  - name: x\n",
		"no name":     "bots:\n  - patterns: [a]\n",
		"bad yaml":    "bots: [",
	}
	for name, data := range cases {
		if _, err := ParsePatterns([]byte(data)); err == nil {
			t.Errorf("%s: expected error, got nil", name)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	if ParseLogLevel("TRACE") != pterm.LogLevelTrace {
		t.Error("Expected trace level")
	}
	if ParseLogLevel("nonsense") != pterm.LogLevelInfo {
		t.Error("Expected info level for unknown names")
	}
}

func TestValidate_ServerAndCleanup(t *testing.T) {
	cfg := Default()
	cfg.Server.Mode = "production"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for unknown server mode")
	}

	cfg = Default()
	cfg.Database.CleanupTime = "25:99"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for invalid cleanup time")
	}

	cfg = Default()
	cfg.Server.LogRoot = " "
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for empty log root")
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}
