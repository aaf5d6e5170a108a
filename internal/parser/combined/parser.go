package combined

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

var (
	ErrEmptyLine        = errors.New("empty line")
	ErrUnmatchedLine    = errors.New("line does not match combined or common log format")
	ErrInvalidTimestamp = errors.New("unparseable timestamp")
	ErrInvalidStatus    = errors.New("invalid status code")
)

var (
	// IP - - [timestamp] "METHOD URL HTTP/x.x" STATUS SIZE "referrer" "user-agent"
	combinedFormat = regexp.MustCompile(
		`^([\d.]+)\s+-\s+-\s+` +
			`\[([^\]]+)\]\s+` +
			`"(\w+)\s+(\S+)\s+HTTP/[\d.]+"\s+` +
			`(\d+)\s+` +
			`(\d+|-)\s+` +
			`"([^"]*)"\s+` +
			`"([^"]*)"`)

	// Common log format, tolerant of ident/auth fields and a garbled request line.
	simpleFormat = regexp.MustCompile(
		`^([\d.]+)\s+\S+\s+\S+\s+` +
			`\[([^\]]+)\]\s+` +
			`"(\w+)\s+(\S+)[^"]*"\s+` +
			`(\d+)\s+` +
			`(\d+|-)`)

	// Tried in order
	timestampLayouts = []string{
		"02/Jan/2006:15:04:05 -0700",
		"02/Jan/2006:15:04:05",
		"2006-01-02 15:04:05",
	}
)

const noOffsetLayout = "02/Jan/2006:15:04:05"

// Parser reads combined-format access log lines
type Parser struct {
	logger *pterm.Logger
}

func NewParser(logger *pterm.Logger) *Parser {
	return &Parser{
		logger: logger,
	}
}

func (p *Parser) Name() string {
	return "combined"
}

func (p *Parser) CanParse(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	return combinedFormat.MatchString(line) || simpleFormat.MatchString(line)
}

// Parse turns one log line into an Entry. Rejections are reported through the
// package's sentinel errors; a bad size field degrades to 0 instead.
func (p *Parser) Parse(line string) (*Entry, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, ErrEmptyLine
	}

	entry := &Entry{}
	var status, size string

	if m := combinedFormat.FindStringSubmatch(line); m != nil {
		entry.IP, entry.Method, entry.URL = m[1], m[3], m[4]
		entry.Referrer, entry.UserAgent = m[7], m[8]
		status, size = m[5], m[6]
		ts, err := ParseTimestamp(m[2])
		if err != nil {
			return nil, err
		}
		entry.Timestamp = ts
	} else if m := simpleFormat.FindStringSubmatch(line); m != nil {
		entry.IP, entry.Method, entry.URL = m[1], m[3], m[4]
		entry.Referrer, entry.UserAgent = "-", ""
		entry.Fallback = true
		status, size = m[5], m[6]
		ts, err := ParseTimestamp(m[2])
		if err != nil {
			return nil, err
		}
		entry.Timestamp = ts
		p.logger.Trace("Line matched common log fallback", p.logger.Args("ip", entry.IP, "url", entry.URL))
	} else {
		return nil, ErrUnmatchedLine
	}

	code, err := strconv.Atoi(status)
	if err != nil || code < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	entry.Status = code
	entry.Size = parseSize(size)

	return entry, nil
}

// ParseTimestamp tries each supported layout, then retries the no-offset layout with
// the trailing whitespace-delimited token (usually a zone name) removed.
func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	if idx := strings.LastIndex(value, " "); idx != -1 {
		if t, err := time.Parse(noOffsetLayout, value[:idx]); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
}

func parseSize(value string) int64 {
	if value == "-" {
		return 0
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
