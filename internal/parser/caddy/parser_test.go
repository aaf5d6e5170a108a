package caddy

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pterm/pterm"
)

func TestParser_Name(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	parser := NewParser(logger)

	if parser.Name() != "caddy" {
		t.Errorf("Expected parser name 'caddy', got '%s'", parser.Name())
	}
}

func TestParser_CanParse(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	parser := NewParser(logger)

	validLog := `{"level":"info","ts":1767690562.5659065,"logger":"http.log.access.log9","msg":"handled request","request":{"remote_ip":"192.168.1.100","method":"GET","uri":"/"},"status":200}`
	if !parser.CanParse(validLog) {
		t.Error("Expected parser to accept valid Caddy JSON log")
	}

	if parser.CanParse(`not a json log`) {
		t.Error("Expected parser to reject invalid JSON")
	}

	if parser.CanParse(`{"timestamp":"2024-01-01","message":"some log"}`) {
		t.Error("Expected parser to reject non-Caddy JSON")
	}
}

func TestParser_Parse_CrawlerRequest(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	parser := NewParser(logger)

	caddyLog := `{"level":"info","ts":1767690562.5659065,"logger":"http.log.access.log9","msg":"handled request","request":{"remote_ip":"20.171.207.5","client_ip":"20.171.207.5","proto":"HTTP/2.0","method":"get","host":"test.example.org","uri":"/blog/post?page=2","headers":{"User-Agent":["Mozilla/5.0 (compatible; GPTBot/1.2; +https://openai.com/gptbot)"],"Referer":["https://test.example.org/"]}},"bytes_read":0,"duration":0.00226026,"size":1546,"status":200}`

	event, err := parser.Parse(caddyLog)
	if err != nil {
		t.Fatalf("Failed to parse valid Caddy log: %v", err)
	}

	expectedTime := time.Unix(1767690562, 565906524).UTC()
	if !event.Timestamp.Equal(expectedTime) {
		t.Errorf("Expected timestamp %v, got %v", expectedTime, event.Timestamp)
	}
	if event.ClientIP != "20.171.207.5" {
		t.Errorf("Expected ClientIP '20.171.207.5', got '%s'", event.ClientIP)
	}
	if event.Method != "GET" {
		t.Errorf("Expected Method 'GET', got '%s'", event.Method)
	}
	if event.Path != "/blog/post" {
		t.Errorf("Expected Path '/blog/post', got '%s'", event.Path)
	}
	if event.QueryString != "page=2" {
		t.Errorf("Expected QueryString 'page=2', got '%s'", event.QueryString)
	}
	if event.StatusCode != 200 {
		t.Errorf("Expected StatusCode 200, got %d", event.StatusCode)
	}
	if event.ResponseSize != 1546 {
		t.Errorf("Expected ResponseSize 1546, got %d", event.ResponseSize)
	}
	if !strings.Contains(event.UserAgent, "GPTBot/1.2") {
		t.Errorf("Expected UserAgent to contain 'GPTBot/1.2', got '%s'", event.UserAgent)
	}
	if event.Referer != "https://test.example.org/" {
		t.Errorf("Expected Referer 'https://test.example.org/', got '%s'", event.Referer)
	}
}

func TestParser_Parse_URISplitting(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	parser := NewParser(logger)

	testCases := []struct {
		uri           string
		expectedPath  string
		expectedQuery string
	}{
		{"/", "/", ""},
		{"/api/users", "/api/users", ""},
		{"/api/users?page=1", "/api/users", "page=1"},
		{"/search?q=test&lang=en", "/search", "q=test&lang=en"},
	}

	for _, tc := range testCases {
		caddyLog := `{"level":"info","ts":1767690562.5659065,"logger":"http.log.access","msg":"handled request","request":{"remote_ip":"192.168.1.100","method":"GET","uri":"` + tc.uri + `"},"status":200,"size":100,"duration":0.1}`

		event, err := parser.Parse(caddyLog)
		if err != nil {
			t.Fatalf("Failed to parse Caddy log with URI '%s': %v", tc.uri, err)
		}

		if event.Path != tc.expectedPath {
			t.Errorf("For URI '%s': expected Path '%s', got '%s'", tc.uri, tc.expectedPath, event.Path)
		}
		if event.QueryString != tc.expectedQuery {
			t.Errorf("For URI '%s': expected QueryString '%s', got '%s'", tc.uri, tc.expectedQuery, event.QueryString)
		}
	}
}

func TestParser_Parse_ClientIPFallback(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	parser := NewParser(logger)

	caddyLog := `{"level":"info","ts":1767690562.5659065,"logger":"http.log.access","msg":"handled request","request":{"remote_ip":"192.168.1.100","method":"GET","uri":"/"},"status":200,"size":100}`
	event, err := parser.Parse(caddyLog)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if event.ClientIP != "192.168.1.100" {
		t.Errorf("Expected ClientIP '192.168.1.100', got '%s'", event.ClientIP)
	}

	caddyLog = `{"level":"info","ts":1767690562.5659065,"logger":"http.log.access","msg":"handled request","request":{"method":"GET","uri":"/","headers":{"X-Forwarded-For":["203.0.113.1"]}},"status":200,"size":100}`
	event, err = parser.Parse(caddyLog)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if event.ClientIP != "203.0.113.1" {
		t.Errorf("Expected ClientIP '203.0.113.1', got '%s'", event.ClientIP)
	}
}

func TestParser_Parse_MissingFields(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	parser := NewParser(logger)

	noTimestamp := `{"level":"info","logger":"http.log.access","msg":"handled request","request":{"remote_ip":"192.168.1.100","method":"GET","uri":"/"},"status":200}`
	if _, err := parser.Parse(noTimestamp); !errors.Is(err, ErrMissingTimestamp) {
		t.Errorf("Expected ErrMissingTimestamp, got %v", err)
	}

	noRequest := `{"level":"info","ts":1767690562.5659065,"logger":"http.log.access","msg":"handled request","status":200}`
	if _, err := parser.Parse(noRequest); !errors.Is(err, ErrMissingRequest) {
		t.Errorf("Expected ErrMissingRequest, got %v", err)
	}
}

func TestParser_Parse_StringTimestamps(t *testing.T) {
	parser := NewParser(pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace))

	tests := []struct {
		ts   string
		want time.Time
	}{
		{`"1767690562"`, time.Unix(1767690562, 0).UTC()},
		{`"2026-01-06T09:09:22.5Z"`, time.Date(2026, 1, 6, 9, 9, 22, 500000000, time.UTC)},
	}
	for _, tt := range tests {
		line := `{"ts":` + tt.ts + `,"logger":"http.log.access","request":{"remote_ip":"1.2.3.4","method":"GET","uri":"/"},"status":200}`
		event, err := parser.Parse(line)
		if err != nil {
			t.Fatalf("Failed to parse ts %s: %v", tt.ts, err)
		}
		if !event.Timestamp.Equal(tt.want) {
			t.Errorf("ts %s: expected %v, got %v", tt.ts, tt.want, event.Timestamp)
		}
	}

	if _, err := parser.Parse(`{"ts":"yesterday","logger":"http.log.access","request":{"uri":"/"},"status":200}`); !errors.Is(err, ErrMissingTimestamp) {
		t.Errorf("Expected ErrMissingTimestamp for unparsable ts, got %v", err)
	}
}
