package traefik

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pterm/pterm"
)

var ErrMissingTimestamp = errors.New("missing or invalid timestamp")

// Parser reads Traefik's JSON access log format.
type Parser struct {
	logger *pterm.Logger
}

func NewParser(logger *pterm.Logger) *Parser {
	return &Parser{logger: logger}
}

func (p *Parser) Name() string {
	return "traefik"
}

// CanParse accepts JSON objects carrying both DownstreamStatus and RequestPath,
// which Traefik writes on every access log entry.
func (p *Parser) CanParse(line string) bool {
	if !strings.HasPrefix(line, "{") {
		return false
	}
	var probe struct {
		Status *int    `json:"DownstreamStatus"`
		Path   *string `json:"RequestPath"`
	}
	if err := sonic.UnmarshalString(line, &probe); err != nil {
		return false
	}
	return probe.Status != nil && probe.Path != nil
}

func (p *Parser) Parse(line string) (*HTTPRequestEvent, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, errors.New("empty log line")
	}

	var entry accessEntry
	if err := sonic.UnmarshalString(line, &entry); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	ts := parseTime(entry.Time)
	if ts.IsZero() {
		ts = parseTime(entry.StartUTC)
	}
	if ts.IsZero() {
		return nil, ErrMissingTimestamp
	}

	status := 0
	if entry.Status != nil {
		status = *entry.Status
	}
	if status < 0 {
		return nil, fmt.Errorf("invalid status code: %d", status)
	}

	path, query, _ := strings.Cut(orDefault(entry.Path, "/"), "?")
	event := &HTTPRequestEvent{
		Timestamp:    ts,
		ClientIP:     clientIP(&entry),
		Method:       strings.ToUpper(orDefault(entry.Method, "GET")),
		Host:         strings.TrimSpace(entry.HostHdr),
		Path:         path,
		QueryString:  query,
		StatusCode:   status,
		ResponseSize: max(entry.Size, 0),
		UserAgent:    strings.TrimSpace(entry.UserAgent),
		Referer:      strings.TrimSpace(entry.Referer),
		RouterName:   entry.Router,
	}

	p.logger.Trace("Parsed Traefik log", p.logger.Args("client_ip", event.ClientIP, "path", event.Path, "status", event.StatusCode))
	return event, nil
}

// clientIP prefers X-Real-Ip set by an edge proxy, then the direct peer.
func clientIP(e *accessEntry) string {
	if ip := strings.TrimSpace(e.RealIP); ip != "" {
		return ip
	}
	if h := strings.TrimSpace(e.Host); h != "" {
		return h
	}
	if host, _, err := net.SplitHostPort(e.Addr); err == nil {
		return host
	}
	return e.Addr
}

// orDefault returns v trimmed, or def when that is empty.
func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
