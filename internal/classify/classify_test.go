package classify

import (
	"reflect"
	"testing"
)

func TestContentTypeOf(t *testing.T) {
	tests := []struct {
		path     string
		expected ContentType
	}{
		{"/", HTML},
		{"/blog/post-1", HTML},
		{"/index.PHP?x=1", HTML},
		{"/static/site.css", CSS},
		{"/app.min.js?v=3", JavaScript},
		{"/img/logo.PNG", Images},
		{"/api/v1/items", JSONAPI},
		{"/data.json", JSONAPI},
		{"/sitemap.xml", XMLFeeds},
		{"/blog/feed", XMLFeeds},
		{"/whitepaper.pdf", Documents},
		{"/fonts/inter.woff2", Other},
		{"/robots.txt", Other},
	}

	for _, tt := range tests {
		if got := ContentTypeOf(tt.path); got != tt.expected {
			t.Errorf("ContentTypeOf(%q): expected %s, got %s", tt.path, tt.expected, got)
		}
	}
}

func TestReferrerSourceOf(t *testing.T) {
	tests := []struct {
		ref      string
		expected ReferrerSource
	}{
		{"", Direct},
		{"-", Direct},
		{"https://www.google.com/search?q=test", Search},
		{"https://duckduckgo.com/", Search},
		{"https://news.ycombinator.com/item?id=1", External},
	}

	for _, tt := range tests {
		if got := ReferrerSourceOf(tt.ref); got != tt.expected {
			t.Errorf("ReferrerSourceOf(%q): expected %s, got %s", tt.ref, tt.expected, got)
		}
	}
}

func TestDomain(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"https://www.Example.com/page", "example.com"},
		{"http://blog.example.org:8080/x", "blog.example.org"},
		{"example.net/path", "example.net"},
		{"-", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Domain(tt.raw); got != tt.expected {
			t.Errorf("Domain(%q): expected '%s', got '%s'", tt.raw, tt.expected, got)
		}
	}
}

func TestSectionAndDepth(t *testing.T) {
	tests := []struct {
		path    string
		section string
		depth   int
	}{
		{"/", Homepage, 0},
		{"", Homepage, 0},
		{"/?utm_source=x", Homepage, 0},
		{"/Blog/2025/01/post", "/blog/", 4},
		{"/wp-content/uploads/a.png", AssetsSection, 3},
		{"/static/js/app.js", AssetsSection, 3},
		{"/team/alice", "/team/", 2},
		{"/a/b/c/d/e/f/g", "/a/", 5},
		{"//double//slash/", "/double/", 2},
	}

	for _, tt := range tests {
		if got := Section(tt.path); got != tt.section {
			t.Errorf("Section(%q): expected '%s', got '%s'", tt.path, tt.section, got)
		}
		if got := Depth(tt.path); got != tt.depth {
			t.Errorf("Depth(%q): expected %d, got %d", tt.path, tt.depth, got)
		}
	}
}

func TestQueryParams(t *testing.T) {
	base, names, ok := QueryParams("/search?q=go&page=2&q=rust&utm_source=x&=empty")
	if !ok {
		t.Fatal("Expected query string to be detected")
	}
	if base != "/search" {
		t.Errorf("Expected base '/search', got '%s'", base)
	}
	expected := []string{"q", "page", "utm_source"}
	if !reflect.DeepEqual(names, expected) {
		t.Errorf("Expected %v, got %v", expected, names)
	}

	if _, _, ok := QueryParams("/plain"); ok {
		t.Error("Expected no query string")
	}
}

func TestRobotsAndSitemap(t *testing.T) {
	if !IsRobots("/robots.txt") {
		t.Error("Expected robots.txt to be detected")
	}
	if !IsSitemap("/sitemap_index.xml") || !IsSitemap("/post-sitemap.XML?x=1") {
		t.Error("Expected sitemap variants to be detected")
	}
	if IsSitemap("/sitemap") || IsSitemap("/feed.xml") {
		t.Error("Expected non-sitemap paths to be rejected")
	}
}

func TestFailureCategory(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{301, "Redirect"},
		{308, "Redirect"},
		{404, "404 Not Found"},
		{500, "500 Server Error"},
		{503, "503 Service Unavailable"},
		{403, "403 Client Error"},
		{502, "502 Server Error"},
		{101, "Unknown (101)"},
		{999, "Unknown (999)"},
	}

	for _, tt := range tests {
		if got := FailureCategory(tt.status); got != tt.expected {
			t.Errorf("FailureCategory(%d): expected '%s', got '%s'", tt.status, tt.expected, got)
		}
	}
}

func TestBucketOf(t *testing.T) {
	if b, ok := BucketOf(204); !ok || b != Status2xx {
		t.Errorf("Expected 2xx bucket, got %v %v", b, ok)
	}
	if b, ok := BucketOf(503); !ok || b != Status5xx {
		t.Errorf("Expected 5xx bucket, got %v %v", b, ok)
	}
	if _, ok := BucketOf(101); ok {
		t.Error("Expected 1xx to be outside the buckets")
	}
}
