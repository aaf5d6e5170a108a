package traefik

import (
	"time"
)

type HTTPRequestEvent struct {
	Timestamp time.Time

	ClientIP    string
	Method      string
	Host        string
	Path        string
	QueryString string

	StatusCode   int
	ResponseSize int64

	UserAgent  string
	Referer    string
	RouterName string
}

// accessEntry holds the Traefik JSON access log fields that are read. Request
// headers appear flattened with a "request_" prefix when headers are kept.
type accessEntry struct {
	Time      string `json:"time"`
	StartUTC  string `json:"StartUTC"`
	RealIP    string `json:"request_X-Real-Ip"`
	Host      string `json:"ClientHost"`
	Addr      string `json:"ClientAddr"`
	Method    string `json:"RequestMethod"`
	Path      string `json:"RequestPath"`
	Status    *int   `json:"DownstreamStatus"`
	Size      int64  `json:"DownstreamContentSize"`
	HostHdr   string `json:"request_Host"`
	UserAgent string `json:"request_User-Agent"`
	Referer   string `json:"request_Referer"`
	Router    string `json:"RouterName"`
}
