package traefik

import (
	"errors"
	"testing"
	"time"

	"github.com/pterm/pterm"
)

func TestParser_Parse_TraefikLog(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	parser := NewParser(logger)

	line := `{"ClientHost":"10.0.0.2","DownstreamContentSize":2048,"DownstreamStatus":404,"RequestMethod":"GET","RequestPath":"/docs/missing?ref=nav","RouterName":"web@docker","request_User-Agent":"Mozilla/5.0 (compatible; ClaudeBot/1.0; +claudebot@anthropic.com)","request_X-Real-Ip":"160.79.104.10","time":"2025-01-10T14:30:00Z"}`

	if !parser.CanParse(line) {
		t.Fatal("Expected parser to accept Traefik JSON log")
	}

	event, err := parser.Parse(line)
	if err != nil {
		t.Fatalf("Failed to parse Traefik log: %v", err)
	}

	if !event.Timestamp.Equal(time.Date(2025, 1, 10, 14, 30, 0, 0, time.UTC)) {
		t.Errorf("Unexpected timestamp %v", event.Timestamp)
	}
	if event.ClientIP != "160.79.104.10" {
		t.Errorf("Expected ClientIP '160.79.104.10', got '%s'", event.ClientIP)
	}
	if event.Path != "/docs/missing" || event.QueryString != "ref=nav" {
		t.Errorf("Expected path/query split, got '%s' / '%s'", event.Path, event.QueryString)
	}
	if event.StatusCode != 404 {
		t.Errorf("Expected StatusCode 404, got %d", event.StatusCode)
	}
	if event.ResponseSize != 2048 {
		t.Errorf("Expected ResponseSize 2048, got %d", event.ResponseSize)
	}
	if event.RouterName != "web@docker" {
		t.Errorf("Expected RouterName 'web@docker', got '%s'", event.RouterName)
	}
}

func TestParser_Parse_ClientAddrFallback(t *testing.T) {
	parser := NewParser(pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace))

	line := `{"ClientAddr":"[2001:db8::1]:5555","DownstreamStatus":200,"RequestPath":"/","time":"2025-01-10T14:30:00.123456789Z"}`
	event, err := parser.Parse(line)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if event.ClientIP != "2001:db8::1" {
		t.Errorf("Expected ClientIP '2001:db8::1', got '%s'", event.ClientIP)
	}
	if event.Method != "GET" {
		t.Errorf("Expected default method GET, got '%s'", event.Method)
	}
}

func TestParser_Parse_MissingTimestamp(t *testing.T) {
	parser := NewParser(pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace))

	_, err := parser.Parse(`{"DownstreamStatus":200,"RequestPath":"/"}`)
	if !errors.Is(err, ErrMissingTimestamp) {
		t.Errorf("Expected ErrMissingTimestamp, got %v", err)
	}
}

func TestParser_CanParse_RejectsOtherFormats(t *testing.T) {
	parser := NewParser(pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace))

	if parser.CanParse(`1.2.3.4 - - [10/Jan/2025:14:30:00 +0000] "GET / HTTP/1.1" 200 10 "-" "x"`) {
		t.Error("Expected parser to reject combined log line")
	}
	if parser.CanParse(`{"logger":"http.log.access","request":{}}`) {
		t.Error("Expected parser to reject Caddy log line")
	}
}
