package useragent

import (
	"regexp"
)

const UnknownVersion = "unknown"

var (
	// Crawler version patterns (order matters - more specific first)
	versionPatterns = []struct {
		name    string
		pattern *regexp.Regexp
	}{
		{"GPTBot", regexp.MustCompile(`(?i)GPTBot/(\d+\.?\d*)`)},
		{"ChatGPT-User", regexp.MustCompile(`(?i)ChatGPT-User/(\d+\.?\d*)`)},
		{"OAI-SearchBot", regexp.MustCompile(`(?i)OAI-SearchBot/(\d+\.?\d*)`)},
		{"ClaudeBot", regexp.MustCompile(`(?i)ClaudeBot/(\d+\.?\d*)`)},
		{"Claude-Web", regexp.MustCompile(`(?i)Claude-Web/(\d+\.?\d*)`)},
		{"anthropic-ai", regexp.MustCompile(`(?i)anthropic-ai/(\d+\.?\d*)`)},
		{"PerplexityBot", regexp.MustCompile(`(?i)PerplexityBot/(\d+\.?\d*)`)},
		{"Perplexity-User", regexp.MustCompile(`(?i)Perplexity-User/(\d+\.?\d*)`)},
		{"Google-Extended", regexp.MustCompile(`(?i)Google-Extended/(\d+\.?\d*)`)},
		{"GoogleOther", regexp.MustCompile(`(?i)GoogleOther/(\d+\.?\d*)`)},
		{"Applebot", regexp.MustCompile(`(?i)Applebot(?:-Extended)?/(\d+\.?\d*)`)},
		{"CCBot", regexp.MustCompile(`(?i)CCBot/(\d+\.?\d*)`)},
		{"YouBot", regexp.MustCompile(`(?i)YouBot/(\d+\.?\d*)`)},
		{"AI2Bot", regexp.MustCompile(`(?i)AI2Bot/(\d+\.?\d*)`)},
		{"cohere-ai", regexp.MustCompile(`(?i)cohere-ai/(\d+\.?\d*)`)},
	}

	genericVersion = regexp.MustCompile(`/(\d+\.\d+)`)
)

// BotVersion extracts a crawler version from a user agent. Product-specific patterns are
// tried first, then the first "/major.minor" token; "unknown" when nothing matches.
func BotVersion(userAgent string) string {
	if userAgent == "" {
		return UnknownVersion
	}

	for _, vp := range versionPatterns {
		if matches := vp.pattern.FindStringSubmatch(userAgent); matches != nil {
			return matches[1]
		}
	}

	if matches := genericVersion.FindStringSubmatch(userAgent); matches != nil {
		return matches[1]
	}

	return UnknownVersion
}

// Product returns the name of the first product pattern matching the user agent, or ""
func Product(userAgent string) string {
	for _, vp := range versionPatterns {
		if vp.pattern.MatchString(userAgent) {
			return vp.name
		}
	}
	return ""
}
