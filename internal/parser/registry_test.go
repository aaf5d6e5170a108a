package parsers

import (
	"errors"
	"testing"

	"github.com/pterm/pterm"
)

func TestRegistry_BuiltinParsers(t *testing.T) {
	registry := NewRegistry(pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace))

	names := registry.Names()
	expected := []string{"combined", "caddy", "traefik"}
	if len(names) != len(expected) {
		t.Fatalf("Expected %d parsers, got %d", len(expected), len(names))
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("Expected parser #%d '%s', got '%s'", i, expected[i], names[i])
		}
	}

	if _, err := registry.Get("nginx-json"); err == nil {
		t.Error("Expected error for unknown parser")
	}
}

func TestRegistry_Detect(t *testing.T) {
	registry := NewRegistry(pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace))

	tests := []struct {
		line     string
		expected string
	}{
		{`1.2.3.4 - - [10/Jan/2025:14:30:00 +0000] "GET / HTTP/1.1" 200 10 "-" "GPTBot/1.0"`, "combined"},
		{`{"ts":1767690562.5,"logger":"http.log.access","request":{"remote_ip":"1.2.3.4","method":"GET","uri":"/"},"status":200}`, "caddy"},
		{`{"DownstreamStatus":200,"RequestPath":"/","time":"2025-01-10T14:30:00Z"}`, "traefik"},
	}

	for _, tt := range tests {
		parser, err := registry.Detect(tt.line)
		if err != nil {
			t.Errorf("Detect(%q) failed: %v", tt.line, err)
			continue
		}
		if parser.Name() != tt.expected {
			t.Errorf("Expected '%s' parser, got '%s'", tt.expected, parser.Name())
		}
	}

	if _, err := registry.Detect("garbage"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat, got %v", err)
	}
}

func TestRegistry_WrappersProduceRecords(t *testing.T) {
	registry := NewRegistry(pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace))

	caddy, _ := registry.Get("caddy")
	record, err := caddy.Parse(`{"ts":1767690562.5,"logger":"http.log.access","request":{"remote_ip":"1.2.3.4","method":"GET","uri":"/a?b=1","headers":{"User-Agent":["CCBot/2.0"]}},"status":200,"size":10}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if record.Path != "/a?b=1" {
		t.Errorf("Expected query string to be retained, got '%s'", record.Path)
	}
	if record.Referrer != "-" {
		t.Errorf("Expected missing referrer to become '-', got '%s'", record.Referrer)
	}
	if record.UserAgent != "CCBot/2.0" {
		t.Errorf("Expected user agent 'CCBot/2.0', got '%s'", record.UserAgent)
	}

	combined, _ := registry.Get(DefaultFormat)
	if _, err := combined.Parse("nope"); err == nil {
		t.Error("Expected combined parser to reject garbage")
	}
}
