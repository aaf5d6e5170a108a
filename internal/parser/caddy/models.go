package caddy

import (
	"bytes"
	"strconv"
	"time"
)

type CaddyRequestEvent struct {
	Timestamp time.Time

	ClientIP string
	Method   string
	Host     string
	Path     string
	// QueryString excludes the leading '?'
	QueryString string

	StatusCode   int
	ResponseSize int64

	UserAgent string
	Referer   string
}

// accessEntry is the subset of a Caddy access log entry that is read.
type accessEntry struct {
	Logger  string     `json:"logger"`
	TS      timestamp  `json:"ts"`
	Request *requestV2 `json:"request"`
	Status  int        `json:"status"`
	Size    int64      `json:"size"`
}

type requestV2 struct {
	RemoteIP string              `json:"remote_ip"`
	ClientIP string              `json:"client_ip"`
	Method   string              `json:"method"`
	Host     string              `json:"host"`
	URI      string              `json:"uri"`
	Headers  map[string][]string `json:"headers"`
}

func (r *requestV2) header(name string) string {
	if v := r.Headers[name]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// timestamp accepts Caddy's default unix float as well as the string forms
// produced by the time_format option (quoted unix seconds or RFC 3339).
type timestamp struct {
	time.Time
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(bytes.Trim(b, `"`))
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f > 0 {
			t.Time = fromUnix(f)
		}
		return nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = ts.UTC()
	}
	return nil
}

func fromUnix(ts float64) time.Time {
	sec := int64(ts)
	return time.Unix(sec, int64((ts-float64(sec))*1e9)).UTC()
}
