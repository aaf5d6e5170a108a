package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type patternsFile struct {
	Bots []BotPattern `yaml:"bots"`
}

// LoadPatterns reads a bot table from a YAML file of the form
//
//	bots:
//	  - name: chatgpt
//	    display_name: ChatGPT/OpenAI
//	    category: AI Assistant
//	    patterns: [GPTBot, ChatGPT-User]
func LoadPatterns(path string) ([]BotPattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read patterns file: %w", err)
	}
	return ParsePatterns(data)
}

// ParsePatterns decodes a YAML bot table. Entries missing a display name fall back to
// their name; entries without patterns are rejected.
func ParsePatterns(data []byte) ([]BotPattern, error) {
	var pf patternsFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("invalid patterns file: %w", err)
	}
	if len(pf.Bots) == 0 {
		return nil, fmt.Errorf("patterns file defines no bots")
	}

	for i := range pf.Bots {
		b := &pf.Bots[i]
		if b.DisplayName == "" {
			b.DisplayName = b.Name
		}
		if b.DisplayName == "" {
			return nil, fmt.Errorf("bot #%d has neither name nor display_name", i+1)
		}
		if len(b.Patterns) == 0 {
			return nil, fmt.Errorf("bot %q has no patterns", b.DisplayName)
		}
		if b.Category == "" {
			b.Category = "AI Bot"
		}
		if b.Color == "" {
			b.Color = "#667eea"
		}
	}
	return pf.Bots, nil
}
