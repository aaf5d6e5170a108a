package config

import (
	"strings"

	"github.com/pterm/pterm"
)

// NewLogger returns a pterm logger at the named level (trace, debug, info, warn, error).
// Unknown names fall back to info.
func NewLogger(level string) *pterm.Logger {
	return pterm.DefaultLogger.WithLevel(ParseLogLevel(level))
}

func ParseLogLevel(level string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	case "off", "disabled":
		return pterm.LogLevelDisabled
	default:
		return pterm.LogLevelInfo
	}
}
