package useragent

import "testing"

func TestBotVersion(t *testing.T) {
	tests := []struct {
		ua       string
		expected string
	}{
		{"Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko; compatible; GPTBot/1.2; +https://openai.com/gptbot)", "1.2"},
		{"GPTBot/1", "1"},
		{"Mozilla/5.0 (compatible; ClaudeBot/1.0; +claudebot@anthropic.com)", "1.0"},
		{"Mozilla/5.0 (compatible; PerplexityBot/1.0; +https://perplexity.ai/perplexitybot)", "1.0"},
		{"CCBot/2.0 (https://commoncrawl.org/faq/)", "2.0"},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Applebot-Extended/0.1", "0.1"},
		{"SomeCrawler/3.14 (anthropic-ai)", "3.14"},
		{"anthropic-ai", "unknown"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		if got := BotVersion(tt.ua); got != tt.expected {
			t.Errorf("BotVersion(%q): expected '%s', got '%s'", tt.ua, tt.expected, got)
		}
	}
}

func TestBotVersion_ProductPatternBeatsGeneric(t *testing.T) {
	// Mozilla/5.0 would win under the generic rule alone
	ua := "Mozilla/5.0 (compatible; GPTBot/1.1)"
	if got := BotVersion(ua); got != "1.1" {
		t.Errorf("Expected product version '1.1', got '%s'", got)
	}
}

func TestProduct(t *testing.T) {
	if p := Product("Mozilla/5.0 (compatible; ClaudeBot/1.0)"); p != "ClaudeBot" {
		t.Errorf("Expected 'ClaudeBot', got '%s'", p)
	}
	if p := Product("Mozilla/5.0 Firefox/120.0"); p != "" {
		t.Errorf("Expected empty product, got '%s'", p)
	}
}
