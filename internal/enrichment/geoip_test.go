package enrichment

import (
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
)

func TestGeoIPEnricher_DisabledWithoutDatabases(t *testing.T) {
	g := NewGeoIPEnricher("", filepath.Join(t.TempDir(), "missing.mmdb"), pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace), 0)
	defer g.Close()

	if g.IsEnabled() {
		t.Error("Expected enricher to be disabled")
	}
	if c := g.Country("8.8.8.8"); c != "" {
		t.Errorf("Expected empty country, got '%s'", c)
	}
	if g.GetCacheSize() != 0 {
		t.Errorf("Expected empty cache, got %d", g.GetCacheSize())
	}
}

func TestGeoIPEnricher_CacheEviction(t *testing.T) {
	g := &GeoIPEnricher{
		logger:   pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace),
		cache:    make(map[string]string),
		capacity: 10,
	}

	for i := 0; i < 10; i++ {
		g.remember(string(rune('a'+i)), "US")
	}
	if g.GetCacheSize() != 10 {
		t.Fatalf("Expected 10 entries, got %d", g.GetCacheSize())
	}

	g.remember("new", "DE")
	if g.GetCacheSize() != 10 {
		t.Errorf("Expected eviction to keep size at 10, got %d", g.GetCacheSize())
	}
	g.mu.RLock()
	code := g.cache["new"]
	g.mu.RUnlock()
	if code != "DE" {
		t.Errorf("Expected cached 'DE', got '%s'", code)
	}
}
