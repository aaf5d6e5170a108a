package caddy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pterm/pterm"
)

var (
	ErrMissingTimestamp = errors.New("missing or invalid timestamp")
	ErrMissingRequest   = errors.New("missing request object")
)

const accessLoggerPrefix = "http.log.access"

// Parser reads Caddy's structured JSON access log.
type Parser struct {
	logger *pterm.Logger
}

func NewParser(logger *pterm.Logger) *Parser {
	return &Parser{logger: logger}
}

func (p *Parser) Name() string {
	return "caddy"
}

// CanParse accepts JSON objects emitted by an http.log.access logger that carry
// a request object.
func (p *Parser) CanParse(line string) bool {
	if !strings.HasPrefix(line, "{") {
		return false
	}
	var probe struct {
		Logger  string    `json:"logger"`
		Request *struct{} `json:"request"`
	}
	if err := sonic.UnmarshalString(line, &probe); err != nil {
		return false
	}
	return strings.HasPrefix(probe.Logger, accessLoggerPrefix) && probe.Request != nil
}

func (p *Parser) Parse(line string) (*CaddyRequestEvent, error) {
	var entry accessEntry
	if err := sonic.UnmarshalString(strings.TrimSpace(line), &entry); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if entry.TS.IsZero() {
		return nil, ErrMissingTimestamp
	}
	req := entry.Request
	if req == nil {
		return nil, ErrMissingRequest
	}
	if entry.Status < 0 {
		return nil, fmt.Errorf("invalid status code: %d", entry.Status)
	}

	path, query, _ := strings.Cut(req.URI, "?")
	event := &CaddyRequestEvent{
		Timestamp:    entry.TS.Time,
		ClientIP:     firstNonEmpty(req.ClientIP, req.RemoteIP, req.header("X-Forwarded-For")),
		Method:       strings.ToUpper(req.Method),
		Host:         req.Host,
		Path:         path,
		QueryString:  query,
		StatusCode:   entry.Status,
		ResponseSize: max(entry.Size, 0),
		UserAgent:    req.header("User-Agent"),
		Referer:      req.header("Referer"),
	}

	p.logger.Trace("Parsed Caddy log", p.logger.Args("client_ip", event.ClientIP, "path", event.Path, "status", event.StatusCode))
	return event, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
