package discovery

import (
	parsers "botlynx/internal/parser"

	"github.com/pterm/pterm"
)

func NewTraefikDetector(registry *parsers.Registry, logger *pterm.Logger) ServiceDetector {
	return newPathDetector("traefik", "TRAEFIK_LOG_PATH", []string{
		"traefik/logs/access.log",
		"/var/log/traefik/access.log",
		"/var/log/traefik/access.json",
	}, registry, logger)
}
