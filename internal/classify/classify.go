// Package classify maps request fields onto the fixed reporting dimensions.
package classify

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

type ContentType int

const (
	HTML ContentType = iota
	CSS
	JavaScript
	Images
	JSONAPI
	XMLFeeds
	Documents
	Other
	NumContentTypes
)

var contentTypeNames = [NumContentTypes]string{"HTML", "CSS", "JavaScript", "Images", "JSON/API", "XML/Feeds", "Documents", "Other"}

func (c ContentType) String() string {
	if c < 0 || c >= NumContentTypes {
		return "Other"
	}
	return contentTypeNames[c]
}

var extensionTypes = map[string]ContentType{
	".html": HTML, ".htm": HTML, ".php": HTML, ".asp": HTML, ".aspx": HTML, ".jsp": HTML, ".shtml": HTML,
	".css": CSS,
	".js": JavaScript, ".mjs": JavaScript,
	".png": Images, ".jpg": Images, ".jpeg": Images, ".gif": Images, ".svg": Images,
	".webp": Images, ".ico": Images, ".avif": Images, ".bmp": Images,
	".json": JSONAPI,
	".xml": XMLFeeds, ".rss": XMLFeeds, ".atom": XMLFeeds,
	".pdf": Documents, ".doc": Documents, ".docx": Documents, ".xls": Documents, ".xlsx": Documents,
	".ppt": Documents, ".pptx": Documents, ".odt": Documents, ".rtf": Documents, ".epub": Documents,
}

// ContentTypeOf buckets a request path by its extension. Extension-less paths are pages.
func ContentTypeOf(rawPath string) ContentType {
	p := strings.ToLower(StripQuery(rawPath))

	ext := path.Ext(p)
	if ext == "" || strings.HasSuffix(p, "/") {
		if strings.HasPrefix(p, "/api/") || strings.Contains(p, "/wp-json/") {
			return JSONAPI
		}
		if strings.HasSuffix(p, "/feed") || strings.HasSuffix(p, "/feed/") {
			return XMLFeeds
		}
		return HTML
	}
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	return Other
}

type ReferrerSource int

const (
	Direct ReferrerSource = iota
	Search
	External
	NumReferrerSources
)

var referrerSourceNames = [NumReferrerSources]string{"direct", "search", "external"}

func (r ReferrerSource) String() string {
	if r < 0 || r >= NumReferrerSources {
		return "external"
	}
	return referrerSourceNames[r]
}

var searchEngines = []string{
	"google.", "bing.", "yahoo.", "duckduckgo.", "baidu.", "yandex.",
	"ecosia.", "qwant.", "startpage.", "ask.com", "search.brave.", "naver.",
}

// ReferrerSourceOf categorizes a referrer. A "-" or empty referrer is direct traffic.
func ReferrerSourceOf(referrer string) ReferrerSource {
	ref := strings.TrimSpace(referrer)
	if ref == "" || ref == "-" {
		return Direct
	}
	lower := strings.ToLower(ref)
	for _, engine := range searchEngines {
		if strings.Contains(lower, engine) {
			return Search
		}
	}
	return External
}

// Domain returns the host portion of a referrer URL, lowercased and without "www.".
func Domain(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" || cleaned == "-" {
		return ""
	}

	if parsed, err := url.Parse(cleaned); err == nil {
		host := parsed.Host
		if host == "" {
			host = parsed.Path
		}
		host = strings.TrimSpace(host)
		if host != "" {
			host = strings.Split(host, "/")[0]
			host = strings.Split(host, ":")[0]
			return strings.TrimPrefix(strings.ToLower(host), "www.")
		}
	}

	// Manual extraction fallback
	if idx := strings.Index(cleaned, "//"); idx != -1 {
		cleaned = cleaned[idx+2:]
	}
	cleaned = strings.Split(cleaned, "/")[0]
	cleaned = strings.Split(cleaned, "?")[0]
	cleaned = strings.Split(cleaned, "#")[0]
	cleaned = strings.Split(cleaned, ":")[0]
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(cleaned), "www.")
}

const (
	Homepage      = "homepage"
	AssetsSection = "/assets/"
)

var contentSections = map[string]bool{
	"blog": true, "news": true, "products": true, "product": true, "docs": true,
	"documentation": true, "articles": true, "article": true, "category": true,
	"categories": true, "tag": true, "tags": true, "shop": true, "store": true,
	"help": true, "support": true, "about": true, "contact": true, "api": true,
	"pricing": true, "services": true, "faq": true, "wiki": true, "guides": true,
	"tutorials": true, "posts": true, "events": true, "careers": true, "search": true,
}

var assetDirs = map[string]bool{
	"assets": true, "static": true, "images": true, "img": true, "css": true,
	"js": true, "media": true, "fonts": true, "uploads": true, "wp-content": true,
	"wp-includes": true, "dist": true, "build": true, "_next": true, "public": true,
}

// Section returns the normalized first path segment.
func Section(rawPath string) string {
	segments := Segments(rawPath)
	if len(segments) == 0 {
		return Homepage
	}

	first := segments[0]
	lower := strings.ToLower(first)
	switch {
	case contentSections[lower]:
		return "/" + lower + "/"
	case assetDirs[lower]:
		return AssetsSection
	default:
		return "/" + first + "/"
	}
}

// MaxDepth is the depth bucket holding every path with five or more segments.
const MaxDepth = 5

// Depth counts non-empty path segments, capped at MaxDepth.
func Depth(rawPath string) int {
	d := len(Segments(rawPath))
	if d > MaxDepth {
		return MaxDepth
	}
	return d
}

// Segments returns the non-empty segments of the path with the query string removed.
func Segments(rawPath string) []string {
	p := StripQuery(rawPath)
	parts := strings.Split(p, "/")
	segments := parts[:0]
	for _, s := range parts {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// StripQuery drops everything from the first '?'.
func StripQuery(rawPath string) string {
	if i := strings.IndexByte(rawPath, '?'); i >= 0 {
		return rawPath[:i]
	}
	return rawPath
}

// QueryParams returns the parameter names of the query string in first-seen order,
// without duplicates. ok is false when the path has no query string.
func QueryParams(rawPath string) (base string, names []string, ok bool) {
	i := strings.IndexByte(rawPath, '?')
	if i < 0 {
		return rawPath, nil, false
	}
	base = rawPath[:i]
	query := rawPath[i+1:]
	if j := strings.IndexByte(query, '#'); j >= 0 {
		query = query[:j]
	}

	seen := make(map[string]bool)
	for _, pair := range strings.Split(query, "&") {
		name, _, _ := strings.Cut(pair, "=")
		if decoded, err := url.QueryUnescape(name); err == nil {
			name = decoded
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return base, names, true
}

// IsRobots reports a robots.txt fetch.
func IsRobots(rawPath string) bool {
	return strings.Contains(strings.ToLower(rawPath), "robots.txt")
}

// IsSitemap reports a sitemap fetch: "sitemap" anywhere in the path and a .xml suffix.
func IsSitemap(rawPath string) bool {
	p := strings.ToLower(StripQuery(rawPath))
	return strings.Contains(p, "sitemap") && strings.HasSuffix(p, ".xml")
}

type StatusBucket int

const (
	Status2xx StatusBucket = iota
	Status3xx
	Status4xx
	Status5xx
	NumStatusBuckets
)

// BucketOf returns the coarse bucket for a status code. ok is false outside 200..599.
func BucketOf(status int) (StatusBucket, bool) {
	switch {
	case status >= 200 && status < 300:
		return Status2xx, true
	case status >= 300 && status < 400:
		return Status3xx, true
	case status >= 400 && status < 500:
		return Status4xx, true
	case status >= 500 && status < 600:
		return Status5xx, true
	}
	return 0, false
}

// FailureCategory names the failure type of a non-successful status code.
func FailureCategory(status int) string {
	switch {
	case status >= 300 && status < 400:
		return "Redirect"
	case status == 404:
		return "404 Not Found"
	case status == 500:
		return "500 Server Error"
	case status == 503:
		return "503 Service Unavailable"
	case status >= 400 && status < 500:
		return fmt.Sprintf("%d Client Error", status)
	case status >= 500 && status < 600:
		return fmt.Sprintf("%d Server Error", status)
	}
	return fmt.Sprintf("Unknown (%d)", status)
}
