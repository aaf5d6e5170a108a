package discovery

import (
	"os"
	"path/filepath"
	"testing"

	parsers "botlynx/internal/parser"

	"github.com/pterm/pterm"
)

const combinedLine = `1.2.3.4 - - [10/Jan/2025:14:00:00 +0000] "GET / HTTP/1.1" 200 512 "-" "GPTBot/1.0"`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCombinedDetector_ConfiguredPath(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	path := writeFile(t, "access.log", "\n"+combinedLine+"\n")
	t.Setenv("ACCESS_LOG_PATH", path)

	sources, err := NewCombinedDetector(parsers.NewRegistry(logger), logger).Detect()
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("Expected 1 source, got %d", len(sources))
	}
	if sources[0].Format != "combined" || sources[0].Name != "combined-access" {
		t.Errorf("Unexpected source %+v", sources[0])
	}
}

func TestCaddyDetector_RejectsOtherFormat(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	t.Setenv("CADDY_LOG_PATH", writeFile(t, "access.log", combinedLine+"\n"))

	sources, _ := NewCaddyDetector(parsers.NewRegistry(logger), logger).Detect()
	if len(sources) != 0 {
		t.Errorf("Expected combined log to be rejected by the caddy detector, got %+v", sources)
	}
}

func TestEngine_NoAutoDiscover(t *testing.T) {
	t.Setenv("LOG_AUTO_DISCOVER", "false")
	t.Setenv("ACCESS_LOG_PATH", "")
	t.Setenv("CADDY_LOG_PATH", "")
	t.Setenv("TRAEFIK_LOG_PATH", "")

	if got := NewEngine(pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)).Run(); len(got) != 0 {
		t.Errorf("Expected no sources with discovery off, got %+v", got)
	}
}

func TestSourceName(t *testing.T) {
	if got := sourceName("traefik", `C:\logs\access.json`); got != "traefik-access" {
		t.Errorf("Expected 'traefik-access', got '%s'", got)
	}
}
