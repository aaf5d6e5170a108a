package discovery

import (
	parsers "botlynx/internal/parser"

	"github.com/pterm/pterm"
)

// NewCombinedDetector looks for nginx and Apache logs in combined format, or
// ACCESS_LOG_PATH when set.
func NewCombinedDetector(registry *parsers.Registry, logger *pterm.Logger) ServiceDetector {
	return newPathDetector("combined", "ACCESS_LOG_PATH", []string{
		"/var/log/nginx/access.log",
		"/var/log/apache2/access.log",
		"/var/log/httpd/access_log",
	}, registry, logger)
}
