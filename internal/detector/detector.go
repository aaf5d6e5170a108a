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
package detector

import (
	"fmt"
	"regexp"
	"sync"

	"botlynx/internal/config"

	"github.com/pterm/pterm"
)

const (
	defaultCategory = "AI Bot"
	defaultColor    = "#667eea"
)

// BotInfo describes the crawler family a user agent was attributed to.
type BotInfo struct {
	Name           string `json:"name"`
	Category       string `json:"category"`
	Color          string `json:"color"`
	MatchedPattern string `json:"matched_pattern"`
	UserAgent      string `json:"user_agent"`
}

// Family is the public view of one label and its raw patterns.
type Family struct {
	Label    string   `json:"label"`
	Category string   `json:"category"`
	Color    string   `json:"color"`
	Patterns []string `json:"patterns"`
}

type family struct {
	label    string
	category string
	color    string
	raw      []string
	compiled []*regexp.Regexp
}

// Classifier attributes user agents to bot families. Families are scanned in table order and
// patterns in list order; the first unanchored, case-insensitive match wins.
type Classifier struct {
	mu       sync.RWMutex
	families []*family
	index    map[string]int
	logger   *pterm.Logger
}

// New compiles the bot table once. Any invalid pattern fails construction.
func New(bots []config.BotPattern, logger *pterm.Logger) (*Classifier, error) {
	families, index, err := compileTable(bots)
	if err != nil {
		return nil, err
	}

	logger.Debug("Bot classifier ready", logger.Args("families", len(families)))

	return &Classifier{
		families: families,
		index:    index,
		logger:   logger,
	}, nil
}

func compileTable(bots []config.BotPattern) ([]*family, map[string]int, error) {
	families := make([]*family, 0, len(bots))
	index := make(map[string]int, len(bots))

	for _, b := range bots {
		label := b.DisplayName
		if label == "" {
			label = b.Name
		}
		compiled, err := compileAll(b.Patterns)
		if err != nil {
			return nil, nil, fmt.Errorf("bot %q: %w", label, err)
		}

		// A repeated label extends the earlier entry and keeps its position
		if i, ok := index[label]; ok {
			families[i].raw = append(families[i].raw, b.Patterns...)
			families[i].compiled = append(families[i].compiled, compiled...)
			continue
		}

		f := &family{
			label:    label,
			category: orDefault(b.Category, defaultCategory),
			color:    orDefault(b.Color, defaultColor),
			raw:      append([]string(nil), b.Patterns...),
			compiled: compiled,
		}
		index[label] = len(families)
		families = append(families, f)
	}

	return families, index, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := compilePattern(p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func compilePattern(p string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + p)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
	}
	return re, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Identify returns the bot label for a user agent, or "" for human traffic.
func (c *Classifier) Identify(userAgent string) string {
	f, _ := c.match(userAgent)
	if f == nil {
		return ""
	}
	return f.label
}

// IdentifyWithInfo returns the matched family with the pattern that triggered it.
func (c *Classifier) IdentifyWithInfo(userAgent string) (*BotInfo, bool) {
	f, pattern := c.match(userAgent)
	if f == nil {
		return nil, false
	}
	return &BotInfo{
		Name:           f.label,
		Category:       f.category,
		Color:          f.color,
		MatchedPattern: pattern,
		UserAgent:      userAgent,
	}, true
}

// IsBot reports whether the user agent matches any family.
func (c *Classifier) IsBot(userAgent string) bool {
	f, _ := c.match(userAgent)
	return f != nil
}

func (c *Classifier) match(userAgent string) (*family, string) {
	if userAgent == "" {
		return nil, ""
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, f := range c.families {
		for i, re := range f.compiled {
			if re.MatchString(userAgent) {
				return f, f.raw[i]
			}
		}
	}
	return nil, ""
}

// Info returns category and color for a label. Unknown labels get the defaults.
func (c *Classifier) Info(label string) (category, color string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i, ok := c.index[label]; ok {
		return c.families[i].category, c.families[i].color
	}
	return defaultCategory, defaultColor
}

// Patterns returns a copy of the table in matching order.
func (c *Classifier) Patterns() []Family {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Family, 0, len(c.families))
	for _, f := range c.families {
		out = append(out, Family{
			Label:    f.label,
			Category: f.category,
			Color:    f.color,
			Patterns: append([]string(nil), f.raw...),
		})
	}
	return out
}

// Register appends a pattern to label, creating the label at the end of the table when it
// is new. Only that label's pattern set is recompiled; an invalid pattern leaves the table
// unchanged.
func (c *Classifier) Register(label, pattern string) error {
	if label == "" {
		return fmt.Errorf("label must not be empty")
	}
	if _, err := compilePattern(pattern); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[label]
	if !ok {
		c.index[label] = len(c.families)
		c.families = append(c.families, &family{
			label:    label,
			category: defaultCategory,
			color:    defaultColor,
		})
		i = len(c.families) - 1
	}

	f := c.families[i]
	raw := append(append([]string(nil), f.raw...), pattern)
	compiled, err := compileAll(raw)
	if err != nil {
		return err
	}

	// Replace rather than mutate so snapshots keep their own slices
	c.families[i] = &family{
		label:    f.label,
		category: f.category,
		color:    f.color,
		raw:      raw,
		compiled: compiled,
	}

	c.logger.Info("Registered bot pattern", c.logger.Args("label", label, "pattern", pattern, "total_patterns", len(raw)))
	return nil
}

// Replace swaps the whole table, e.g. after the patterns file changed on disk. On error
// the current table stays in place.
func (c *Classifier) Replace(bots []config.BotPattern) error {
	families, index, err := compileTable(bots)
	if err != nil {
		return err
	}
	if len(families) == 0 {
		return fmt.Errorf("bot table is empty")
	}

	c.mu.Lock()
	c.families = families
	c.index = index
	c.mu.Unlock()

	c.logger.Info("Bot pattern table replaced", c.logger.Args("families", len(families)))
	return nil
}

// Snapshot returns a classifier frozen at the current table. Compiled patterns are shared;
// later Register or Replace calls on c do not affect the snapshot.
func (c *Classifier) Snapshot() *Classifier {
	c.mu.RLock()
	defer c.mu.RUnlock()

	families := make([]*family, len(c.families))
	copy(families, c.families)
	index := make(map[string]int, len(c.index))
	for k, v := range c.index {
		index[k] = v
	}

	return &Classifier{
		families: families,
		index:    index,
		logger:   c.logger,
	}
}

// Len returns the number of families.
func (c *Classifier) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.families)
}
