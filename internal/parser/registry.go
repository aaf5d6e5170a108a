package parsers

import (
	"fmt"
	"strings"

	"botlynx/internal/parser/caddy"
	"botlynx/internal/parser/combined"
	"botlynx/internal/parser/traefik"

	"github.com/pterm/pterm"
)

const DefaultFormat = "combined"

// Registry manages all available log parsers
type Registry struct {
	parsers map[string]LogParser
	order   []string
	logger  *pterm.Logger
}

// combinedParserWrapper adapts combined.Parser to the LogParser interface
type combinedParserWrapper struct {
	*combined.Parser
}

func (w *combinedParserWrapper) Parse(line string) (*Record, error) {
	entry, err := w.Parser.Parse(line)
	if err != nil {
		return nil, err
	}
	return &Record{
		ClientIP:  entry.IP,
		Timestamp: entry.Timestamp,
		Method:    entry.Method,
		Path:      entry.URL,
		Status:    entry.Status,
		Size:      entry.Size,
		Referrer:  entry.Referrer,
		UserAgent: entry.UserAgent,
	}, nil
}

// caddyParserWrapper adapts caddy.Parser to the LogParser interface
type caddyParserWrapper struct {
	*caddy.Parser
}

func (w *caddyParserWrapper) Parse(line string) (*Record, error) {
	event, err := w.Parser.Parse(line)
	if err != nil {
		return nil, err
	}
	return &Record{
		ClientIP:  event.ClientIP,
		Timestamp: event.Timestamp,
		Method:    event.Method,
		Path:      joinPath(event.Path, event.QueryString),
		Status:    event.StatusCode,
		Size:      event.ResponseSize,
		Referrer:  refOrDash(event.Referer),
		UserAgent: event.UserAgent,
	}, nil
}

// traefikParserWrapper adapts traefik.Parser to the LogParser interface
type traefikParserWrapper struct {
	*traefik.Parser
}

func (w *traefikParserWrapper) Parse(line string) (*Record, error) {
	event, err := w.Parser.Parse(line)
	if err != nil {
		return nil, err
	}
	return &Record{
		ClientIP:  event.ClientIP,
		Timestamp: event.Timestamp,
		Method:    event.Method,
		Path:      joinPath(event.Path, event.QueryString),
		Status:    event.StatusCode,
		Size:      event.ResponseSize,
		Referrer:  refOrDash(event.Referer),
		UserAgent: event.UserAgent,
	}, nil
}

// NewRegistry creates a new parser registry with all built-in parsers
func NewRegistry(logger *pterm.Logger) *Registry {
	registry := &Registry{
		parsers: make(map[string]LogParser),
		logger:  logger,
	}

	// Detection order: combined first, JSON formats after
	registry.Register("combined", &combinedParserWrapper{combined.NewParser(logger)})
	registry.Register("caddy", &caddyParserWrapper{caddy.NewParser(logger)})
	registry.Register("traefik", &traefikParserWrapper{traefik.NewParser(logger)})
	logger.Debug("Registered parsers", logger.Args("types", strings.Join(registry.order, ",")))

	return registry
}

// Register adds a parser to the registry. Re-registering a name replaces the parser
// but keeps its detection position.
func (r *Registry) Register(name string, parser LogParser) {
	if _, exists := r.parsers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.parsers[name] = parser
}

// Get retrieves a parser by type
func (r *Registry) Get(parserType string) (LogParser, error) {
	parser, exists := r.parsers[parserType]
	if !exists {
		r.logger.WithCaller().Warn("Parser not found", r.logger.Args("type", parserType))
		return nil, fmt.Errorf("parser not found: %s", parserType)
	}
	return parser, nil
}

// Detect returns the first parser, in registration order, that accepts the line.
func (r *Registry) Detect(line string) (LogParser, error) {
	line = strings.TrimSpace(line)
	for _, name := range r.order {
		if r.parsers[name].CanParse(line) {
			r.logger.Debug("Detected log format", r.logger.Args("type", name))
			return r.parsers[name], nil
		}
	}
	return nil, ErrUnknownFormat
}

// Names returns registered parser names in detection order
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

func joinPath(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}

func refOrDash(referer string) string {
	if referer == "" {
		return "-"
	}
	return referer
}
