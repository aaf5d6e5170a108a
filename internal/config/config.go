package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// BotPattern describes one AI crawler family and the user-agent patterns that identify it.
type BotPattern struct {
	Name        string   `yaml:"name"`
	DisplayName string   `yaml:"display_name"`
	Patterns    []string `yaml:"patterns"`
	Category    string   `yaml:"category"`
	Color       string   `yaml:"color"`
}

// FeatureToggles switches optional report sections on or off.
type FeatureToggles struct {
	ReferrerAnalysis    bool `yaml:"referrer_analysis"`
	SiteStructure       bool `yaml:"site_structure"`
	CrawlEfficiency     bool `yaml:"crawl_efficiency"`
	ComplianceTracking  bool `yaml:"compliance_tracking"`
	QueryParams         bool `yaml:"query_params"`
	AnomalyDetection    bool `yaml:"anomaly_detection"`
	BotVersions         bool `yaml:"bot_versions"`
	SEOHealth           bool `yaml:"seo_health"`
	CompetitiveAnalysis bool `yaml:"competitive_analysis"`
	GeographicAnalysis  bool `yaml:"geographic_analysis"` // needs a GeoIP database
}

type DatabaseConfig struct {
	Path          string        `yaml:"path"`
	MaxOpenConns  int           `yaml:"max_open_conns"`
	MaxIdleConns  int           `yaml:"max_idle_conns"`
	ConnMaxLife   time.Duration `yaml:"conn_max_life"`
	RetentionDays int           `yaml:"retention_days"`
	CleanupTime   string        `yaml:"cleanup_time"` // HH:MM, local time
	VacuumEnabled bool          `yaml:"vacuum_enabled"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	Mode string `yaml:"mode"` // gin mode: debug, release, test
	// LogRoot is the only directory tree the analyze endpoints may read from.
	LogRoot string `yaml:"log_root"`
}

type GeoIPConfig struct {
	CityDB    string `yaml:"city_db"`
	CountryDB string `yaml:"country_db"`
	CacheSize int    `yaml:"cache_size"`
}

type MySQLConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	Database       string        `yaml:"database"`
	ProjectID      int           `yaml:"project_id"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// Config is built once at startup and handed to every component that needs it.
type Config struct {
	Bots     []BotPattern   `yaml:"bots"`
	Features FeatureToggles `yaml:"features"`

	// Treat 3xx responses on a homepage path as successful crawls.
	IgnoreHomepageRedirects bool     `yaml:"ignore_homepage_redirects"`
	HomepagePaths           []string `yaml:"homepage_paths"`

	HealthGoodThreshold    float64 `yaml:"health_good_threshold"`
	HealthWarningThreshold float64 `yaml:"health_warning_threshold"`

	TopURLsCount       int `yaml:"top_urls_count"`
	TopFailedURLsCount int `yaml:"top_failed_urls_count"`
	ProgressInterval   int `yaml:"progress_interval"`

	// Access log format: a parser name, or "auto" to detect from the first line.
	LogFormat    string `yaml:"log_format"`
	LogLevel     string `yaml:"log_level"`
	PatternsFile string `yaml:"patterns_file"`

	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	GeoIP    GeoIPConfig    `yaml:"geoip"`
	MySQL    MySQLConfig    `yaml:"mysql"`
}

// DefaultBotPatterns returns the built-in crawler table. Order matters: the first
// matching family wins.
func DefaultBotPatterns() []BotPattern {
	return []BotPattern{
		{
			Name:        "chatgpt",
			DisplayName: "ChatGPT/OpenAI",
			Patterns:    []string{"GPTBot", "ChatGPT-User", "ChatGPT", "OpenAI"},
			Category:    "AI Assistant",
			Color:       "#10a37f",
		},
		{
			Name:        "perplexity",
			DisplayName: "Perplexity",
			Patterns:    []string{"PerplexityBot", "Perplexity"},
			Category:    "AI Search",
			Color:       "#20b2aa",
		},
		{
			Name:        "gemini",
			DisplayName: "Bard/Gemini",
			Patterns:    []string{"Google-Extended", "GoogleOther", "Bard", "Gemini"},
			Category:    "AI Assistant",
			Color:       "#4285f4",
		},
		{
			Name:        "claude",
			DisplayName: "Claude/Anthropic",
			Patterns:    []string{"ClaudeBot", "Claude-Web", "anthropic-ai", "Anthropic"},
			Category:    "AI Assistant",
			Color:       "#cc785c",
		},
		{
			Name:        "other_ai",
			DisplayName: "Other AI Bots",
			Patterns:    []string{"Applebot-Extended", "YouBot", "AI2Bot", "CCBot", "cohere-ai"},
			Category:    "Other AI",
			Color:       "#8b5cf6",
		},
	}
}

// Default returns a configuration with every section enabled except geographic analysis.
func Default() *Config {
	return &Config{
		Bots: DefaultBotPatterns(),
		Features: FeatureToggles{
			ReferrerAnalysis:    true,
			SiteStructure:       true,
			CrawlEfficiency:     true,
			ComplianceTracking:  true,
			QueryParams:         true,
			AnomalyDetection:    true,
			BotVersions:         true,
			SEOHealth:           true,
			CompetitiveAnalysis: true,
		},
		IgnoreHomepageRedirects: true,
		HomepagePaths:           []string{"/"},
		HealthGoodThreshold:     80,
		HealthWarningThreshold:  60,
		TopURLsCount:            10,
		TopFailedURLsCount:      10,
		ProgressInterval:        1000,
		LogFormat:               "auto",
		LogLevel:                "info",
		Database: DatabaseConfig{
			Path:         "botlynx.db",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			ConnMaxLife:  time.Hour,
			CleanupTime:  "02:00",
		},
		Server: ServerConfig{
			Addr:    ":8080",
			Mode:    "release",
			LogRoot: "/var/log",
		},
		GeoIP: GeoIPConfig{
			CacheSize: 10000,
		},
		MySQL: MySQLConfig{
			Host:           "127.0.0.1",
			Port:           3306,
			User:           "root",
			Database:       "botlynx",
			ConnectTimeout: 5 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the environment
// (including a .env file in the working directory, if present).
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv()

	if cfg.PatternsFile != "" {
		bots, err := LoadPatterns(cfg.PatternsFile)
		if err != nil {
			return nil, err
		}
		cfg.Bots = bots
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load() // optional

	c.LogLevel = getenv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getenv("LOG_FORMAT", c.LogFormat)
	c.PatternsFile = getenv("BOT_PATTERNS_FILE", c.PatternsFile)
	c.IgnoreHomepageRedirects = getenvBool("IGNORE_HOMEPAGE_REDIRECTS", c.IgnoreHomepageRedirects)

	c.Database.Path = getenv("DB_PATH", c.Database.Path)
	c.Database.RetentionDays = getenvInt("DB_RETENTION_DAYS", c.Database.RetentionDays)
	c.Database.CleanupTime = getenv("DB_CLEANUP_TIME", c.Database.CleanupTime)
	c.Database.VacuumEnabled = getenvBool("DB_VACUUM_ENABLED", c.Database.VacuumEnabled)

	c.Server.Addr = getenv("SERVER_ADDR", c.Server.Addr)
	c.Server.Mode = getenv("SERVER_MODE", c.Server.Mode)
	c.Server.LogRoot = getenv("SERVER_LOG_ROOT", c.Server.LogRoot)

	c.GeoIP.CityDB = getenv("GEOIP_CITY_DB", c.GeoIP.CityDB)
	c.GeoIP.CountryDB = getenv("GEOIP_COUNTRY_DB", c.GeoIP.CountryDB)
	c.GeoIP.CacheSize = getenvInt("GEOIP_CACHE_SIZE", c.GeoIP.CacheSize)
	if c.GeoIP.CityDB != "" || c.GeoIP.CountryDB != "" {
		c.Features.GeographicAnalysis = getenvBool("GEOGRAPHIC_ANALYSIS", true)
	}

	c.MySQL.Host = getenv("MYSQL_HOST", c.MySQL.Host)
	c.MySQL.Port = getenvInt("MYSQL_PORT", c.MySQL.Port)
	c.MySQL.User = getenv("MYSQL_USER", c.MySQL.User)
	c.MySQL.Password = getenv("MYSQL_PASSWORD", c.MySQL.Password)
	c.MySQL.Database = getenv("MYSQL_DB", c.MySQL.Database)
	c.MySQL.ProjectID = getenvInt("MYSQL_PROJECT_ID", c.MySQL.ProjectID)
	c.MySQL.ConnectTimeout = time.Duration(getenvInt("MYSQL_CONNECT_TIMEOUT", int(c.MySQL.ConnectTimeout/time.Second))) * time.Second
}

// Validate checks the values the analyzer relies on.
func (c *Config) Validate() error {
	if len(c.Bots) == 0 {
		return errors.New("config: at least one bot pattern is required")
	}
	for _, b := range c.Bots {
		if b.DisplayName == "" {
			return fmt.Errorf("config: bot %q has no display_name", b.Name)
		}
		if len(b.Patterns) == 0 {
			return fmt.Errorf("config: bot %q has no patterns", b.DisplayName)
		}
	}
	if c.HealthWarningThreshold > c.HealthGoodThreshold {
		return fmt.Errorf("config: health_warning_threshold (%.1f) exceeds health_good_threshold (%.1f)",
			c.HealthWarningThreshold, c.HealthGoodThreshold)
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("config: server mode %q must be debug, release or test", c.Server.Mode)
	}
	if strings.TrimSpace(c.Server.LogRoot) == "" {
		return errors.New("config: server log_root must not be empty")
	}
	if c.Database.CleanupTime != "" {
		if _, err := time.Parse("15:04", c.Database.CleanupTime); err != nil {
			return fmt.Errorf("config: cleanup_time %q is not HH:MM", c.Database.CleanupTime)
		}
	}
	if c.TopURLsCount <= 0 {
		c.TopURLsCount = 10
	}
	if c.TopFailedURLsCount <= 0 {
		c.TopFailedURLsCount = 10
	}
	if c.ProgressInterval <= 0 {
		c.ProgressInterval = 1000
	}
	return nil
}

// AutoDetectFormat reports whether the parser should be picked from the log content.
func (c *Config) AutoDetectFormat() bool {
	return c.LogFormat == "" || strings.EqualFold(c.LogFormat, "auto")
}

// IsHomepage reports whether path is one of the configured homepage paths.
func (c *Config) IsHomepage(path string) bool {
	for _, p := range c.HomepagePaths {
		if path == p {
			return true
		}
	}
	return false
}

// IsSuccess applies the success policy: any 2xx, or a 3xx on a homepage path when
// homepage redirects are ignored.
func (c *Config) IsSuccess(status int, path string) bool {
	if status >= 200 && status < 300 {
		return true
	}
	return c.IgnoreHomepageRedirects && status >= 300 && status < 400 && c.IsHomepage(path)
}

// HealthStatus maps a success rate to good, warning or critical.
func (c *Config) HealthStatus(successRate float64) string {
	switch {
	case successRate >= c.HealthGoodThreshold:
		return "good"
	case successRate >= c.HealthWarningThreshold:
		return "warning"
	default:
		return "critical"
	}
}

// HealthColor returns the display color for a success rate.
func (c *Config) HealthColor(successRate float64) string {
	switch c.HealthStatus(successRate) {
	case "good":
		return "#22c55e"
	case "warning":
		return "#eab308"
	default:
		return "#ef4444"
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return def
}
