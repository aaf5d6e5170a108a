// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package enrichment

import (
	"net"
	"sync"

	"github.com/oschwald/geoip2-golang"
	"github.com/pterm/pterm"
)

const defaultGeoCacheSize = 10000

// geoSource is one opened MaxMind database and the query that extracts a country
// code from it.
type geoSource struct {
	name    string
	reader  *geoip2.Reader
	country func(*geoip2.Reader, net.IP) (string, error)
}

func cityCountry(r *geoip2.Reader, ip net.IP) (string, error) {
	rec, err := r.City(ip)
	if err != nil {
		return "", err
	}
	return rec.Country.IsoCode, nil
}

func countryCountry(r *geoip2.Reader, ip net.IP) (string, error) {
	rec, err := r.Country(ip)
	if err != nil {
		return "", err
	}
	return rec.Country.IsoCode, nil
}

// GeoIPEnricher resolves client IPs to ISO country codes. Sources are consulted in
// order (City before Country) and answers, including misses, are cached.
type GeoIPEnricher struct {
	sources []geoSource
	logger  *pterm.Logger

	mu       sync.RWMutex
	cache    map[string]string
	capacity int
}

// NewGeoIPEnricher opens whichever of the two databases exist. With neither the
// enricher is disabled and Country always returns "".
func NewGeoIPEnricher(cityDBPath, countryDBPath string, logger *pterm.Logger, cacheSize int) *GeoIPEnricher {
	if cacheSize <= 0 {
		cacheSize = defaultGeoCacheSize
	}
	g := &GeoIPEnricher{
		logger:   logger,
		cache:    make(map[string]string),
		capacity: cacheSize,
	}

	g.open("City", cityDBPath, cityCountry)
	g.open("Country", countryDBPath, countryCountry)
	if len(g.sources) == 0 {
		logger.Warn("GeoIP enrichment disabled, no database could be opened")
	}
	return g
}

func (g *GeoIPEnricher) open(name, path string, country func(*geoip2.Reader, net.IP) (string, error)) {
	if path == "" {
		return
	}
	r, err := geoip2.Open(path)
	if err != nil {
		g.logger.Warn("GeoIP "+name+" database not available", g.logger.Args("path", path, "error", err))
		return
	}
	g.sources = append(g.sources, geoSource{name: name, reader: r, country: country})
	g.logger.Info("Loaded GeoIP "+name+" database", g.logger.Args("path", path))
}

// Country returns the ISO country code for ip, or "" when disabled, invalid or unknown.
func (g *GeoIPEnricher) Country(ip string) string {
	if !g.IsEnabled() || ip == "" {
		return ""
	}

	g.mu.RLock()
	code, ok := g.cache[ip]
	g.mu.RUnlock()
	if ok {
		return code
	}

	code = g.resolve(ip)
	g.remember(ip, code)
	return code
}

func (g *GeoIPEnricher) resolve(raw string) string {
	ip := net.ParseIP(raw)
	if ip == nil {
		return ""
	}
	for _, src := range g.sources {
		code, err := src.country(src.reader, ip)
		if err != nil {
			g.logger.Trace("GeoIP lookup failed", g.logger.Args("db", src.name, "ip", raw, "error", err))
			continue
		}
		if code != "" {
			return code
		}
	}
	return ""
}

// remember caches a result. A full cache sheds a tenth of its entries, chosen by
// map iteration order.
func (g *GeoIPEnricher) remember(ip, code string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.cache) >= g.capacity {
		shed := max(g.capacity/10, 1)
		for k := range g.cache {
			delete(g.cache, k)
			if shed--; shed == 0 {
				break
			}
		}
	}
	g.cache[ip] = code
}

// Close releases the database readers.
func (g *GeoIPEnricher) Close() error {
	for _, src := range g.sources {
		src.reader.Close()
	}
	g.sources = nil
	return nil
}

// IsEnabled reports whether at least one database is open.
func (g *GeoIPEnricher) IsEnabled() bool {
	return len(g.sources) > 0
}

// GetCacheSize returns the number of cached lookups.
func (g *GeoIPEnricher) GetCacheSize() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.cache)
}
