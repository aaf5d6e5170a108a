package parsers

import (
	"errors"
	"time"
)

// ErrUnknownFormat is returned when no registered parser accepts a line.
var ErrUnknownFormat = errors.New("no parser recognizes the log format")

// Record is one parsed request. Status and Size are never negative; Size is 0 when the
// log did not carry a usable byte count.
type Record struct {
	ClientIP  string
	Timestamp time.Time
	Method    string
	Path      string // query string retained
	Status    int
	Size      int64
	Referrer  string
	UserAgent string
}

type LogParser interface {
	Name() string
	Parse(line string) (*Record, error)
	CanParse(line string) bool
}
