package combined

import "time"

// Entry is one line of an Apache/Nginx combined (or common) access log.
type Entry struct {
	IP        string
	Timestamp time.Time
	Method    string
	URL       string // path with query string
	Status    int
	Size      int64 // 0 when the log says "-"
	Referrer  string
	UserAgent string

	// Fallback is set when the line only matched the common-log grammar and the
	// referrer/user-agent fields were defaulted.
	Fallback bool
}
