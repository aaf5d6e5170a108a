package discovery

import (
	parsers "botlynx/internal/parser"

	"github.com/pterm/pterm"
)

// NewCaddyDetector looks for Caddy JSON access logs, or CADDY_LOG_PATH when set.
func NewCaddyDetector(registry *parsers.Registry, logger *pterm.Logger) ServiceDetector {
	return newPathDetector("caddy", "CADDY_LOG_PATH", []string{
		"caddy/logs/access.log",
		"/var/log/caddy/access.log",
		"/var/log/caddy/access.json",
	}, registry, logger)
}
