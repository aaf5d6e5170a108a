package ingestion

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"botlynx/internal/config"
	"botlynx/internal/detector"

	"github.com/pterm/pterm"
)

const twoBots = `bots:
  - name: gpt
    display_name: GPT
    patterns: [GPTBot]
  - name: newbot
    display_name: NewBot
    patterns: [NewBot]
`

func newWatchedClassifier(t *testing.T) (*detector.Classifier, *pterm.Logger) {
	t.Helper()
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	c, err := detector.New([]config.BotPattern{{Name: "gpt", DisplayName: "GPT", Patterns: []string{"GPTBot"}}}, logger)
	if err != nil {
		t.Fatalf("Failed to create classifier: %v", err)
	}
	return c, logger
}

func TestPatternWatcher_Reload(t *testing.T) {
	c, logger := newWatchedClassifier(t)
	path := filepath.Join(t.TempDir(), "bots.yaml")
	if err := os.WriteFile(path, []byte(twoBots), 0o644); err != nil {
		t.Fatal(err)
	}

	pw, err := NewPatternWatcher(path, c, logger)
	if err != nil {
		t.Fatalf("NewPatternWatcher failed: %v", err)
	}
	defer pw.Close()

	if err := pw.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if got := c.Identify("NewBot/2.0"); got != "NewBot" {
		t.Errorf("Expected 'NewBot' after reload, got '%s'", got)
	}
}

func TestPatternWatcher_InvalidFileKeepsTable(t *testing.T) {
	c, logger := newWatchedClassifier(t)
	path := filepath.Join(t.TempDir(), "bots.yaml")
	if err := os.WriteFile(path, []byte("bots:\n  - name: broken\n    patterns: ['(']\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	pw, err := NewPatternWatcher(path, c, logger)
	if err != nil {
		t.Fatalf("NewPatternWatcher failed: %v", err)
	}
	defer pw.Close()

	if err := pw.Reload(); err == nil {
		t.Error("Expected reload error for invalid pattern")
	}
	if c.Len() != 1 || c.Identify("GPTBot") != "GPT" {
		t.Error("Expected the previous table to stay in place")
	}
}

func TestPatternWatcher_DetectsWrite(t *testing.T) {
	c, logger := newWatchedClassifier(t)
	path := filepath.Join(t.TempDir(), "bots.yaml")
	if err := os.WriteFile(path, []byte("bots:\n  - name: gpt\n    patterns: [GPTBot]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	pw, err := NewPatternWatcher(path, c, logger)
	if err != nil {
		t.Fatalf("NewPatternWatcher failed: %v", err)
	}
	defer pw.Close()

	if err := os.WriteFile(path, []byte(twoBots), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case size := <-pw.Reloaded():
			if size == 2 {
				return
			}
		case <-deadline:
			t.Fatalf("Timed out waiting for reload, table size %d", c.Len())
		}
	}
}
