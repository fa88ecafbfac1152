// ABOUTME: Configuration domain model for feeds, downloaders, webhooks and runtime settings
// ABOUTME: Mirrors the on-disk YAML document and carries the validation rules

package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Downloader identifies a download back-end variant.
type Downloader string

const (
	DownloaderAria2        Downloader = "aria2"
	DownloaderQBittorrent  Downloader = "qbittorrent"
	DownloaderTransmission Downloader = "transmission"
)

// ParseDownloader converts a string tag into a Downloader value.
func ParseDownloader(s string) (Downloader, error) {
	switch Downloader(strings.ToLower(strings.TrimSpace(s))) {
	case DownloaderAria2:
		return DownloaderAria2, nil
	case DownloaderQBittorrent:
		return DownloaderQBittorrent, nil
	case DownloaderTransmission:
		return DownloaderTransmission, nil
	}
	return "", fmt.Errorf("unknown downloader %q", s)
}

// Valid reports whether d is one of the known back-ends.
func (d Downloader) Valid() bool {
	switch d {
	case DownloaderAria2, DownloaderQBittorrent, DownloaderTransmission:
		return true
	}
	return false
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn/warning, error
	Level string `yaml:"level" json:"level"`
}

// WebConfig holds the optional web API settings and the scheduler interval.
type WebConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Host    string `yaml:"host" json:"host"`
	Port    int    `yaml:"port" json:"port"`

	// IntervalHours is the wall-clock interval between scheduled feed runs
	IntervalHours int `yaml:"interval_hours" json:"interval_hours"`
}

// CacheConfig selects the feed-document cache backend.
type CacheConfig struct {
	// Type specifies the cache backend (memory/redis)
	Type string `yaml:"type" json:"type"`

	Redis RedisConfig `yaml:"redis" json:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string `yaml:"address" json:"address"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
}

// Aria2Config holds aria2 JSON-RPC connection settings.
type Aria2Config struct {
	RPC    string `yaml:"rpc" json:"rpc"`
	Secret string `yaml:"secret" json:"secret"`
	Dir    string `yaml:"dir" json:"dir"`
}

// QBittorrentConfig holds qBittorrent WebUI connection settings.
type QBittorrentConfig struct {
	Host     string `yaml:"host" json:"host"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// TransmissionConfig holds Transmission RPC connection settings.
type TransmissionConfig struct {
	Host     string `yaml:"host" json:"host"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	Dir      string `yaml:"dir" json:"dir"`
}

// WebhookConfig describes one notification endpoint.
type WebhookConfig struct {
	Name    string `yaml:"name" json:"name"`
	URL     string `yaml:"url" json:"url"`
	Enabled bool   `yaml:"enabled" json:"enabled"`
}

// FeedConfig describes a single RSS feed subscription.
type FeedConfig struct {
	// Name uniquely identifies the feed (case-insensitive)
	Name string `yaml:"name" json:"name"`

	// URL is the feed document location
	URL string `yaml:"url" json:"url"`

	// Include patterns; an item matches when any of them matches its title.
	// Empty means match everything.
	Include []string `yaml:"include" json:"include"`

	// Exclude patterns; an item matching any of them is dropped
	Exclude []string `yaml:"exclude" json:"exclude"`

	// Downloader selects the back-end items are dispatched to
	Downloader Downloader `yaml:"downloader" json:"downloader"`

	// ContentExtractor selects the link-extraction rule; derived from the
	// feed host when left empty or "default"
	ContentExtractor string `yaml:"content_extractor" json:"content_extractor"`
}

// Config is the root configuration document.
type Config struct {
	Log          LogConfig           `yaml:"log" json:"log"`
	Web          WebConfig           `yaml:"web" json:"web"`
	Cache        CacheConfig         `yaml:"cache" json:"cache"`
	Aria2        *Aria2Config        `yaml:"aria2" json:"aria2"`
	QBittorrent  *QBittorrentConfig  `yaml:"qbittorrent" json:"qbittorrent"`
	Transmission *TransmissionConfig `yaml:"transmission" json:"transmission"`
	Webhooks     []WebhookConfig     `yaml:"webhooks" json:"webhooks"`
	Feeds        []FeedConfig        `yaml:"feeds" json:"feeds"`
}

// DefaultConfig returns a configuration with every field at its default.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Web: WebConfig{
			Enabled:       false,
			Host:          "127.0.0.1",
			Port:          8000,
			IntervalHours: 6,
		},
		Cache: CacheConfig{
			Type: "memory",
			Redis: RedisConfig{
				Address: "localhost:6379",
			},
		},
	}
}

// extractorDomains maps extractor rules to the feed hosts they were written for.
var extractorDomains = map[string][]string{
	"mikan": {"mikanime.tv", "mikanani.me"},
	"nyaa":  {"nyaa.si"},
	"dmhy":  {"dmhy.org"},
}

// ExtractorForHost returns the extraction rule derived from a feed host,
// falling back to "default" for unrecognized hosts.
func ExtractorForHost(host string) string {
	host = strings.ToLower(host)
	for name, domains := range extractorDomains {
		for _, domain := range domains {
			if host == domain || strings.HasSuffix(host, "."+domain) {
				return name
			}
		}
	}
	return "default"
}

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// Validate checks the configuration invariants. It does not mutate the
// config; defaults must be applied before calling it.
func (c *Config) Validate() error {
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return &ConfigError{Field: "log.level", Message: fmt.Sprintf("unknown level %q", c.Log.Level)}
	}

	if c.Web.Port < 0 || c.Web.Port > 65535 {
		return &ConfigError{Field: "web.port", Message: fmt.Sprintf("port %d out of range", c.Web.Port)}
	}
	if c.Web.IntervalHours <= 0 {
		return &ConfigError{Field: "web.interval_hours", Message: "must be positive"}
	}

	switch c.Cache.Type {
	case "memory", "redis":
	default:
		return &ConfigError{Field: "cache.type", Message: fmt.Sprintf("unknown cache backend %q", c.Cache.Type)}
	}

	seen := make(map[string]bool, len(c.Feeds))
	for i := range c.Feeds {
		feed := &c.Feeds[i]
		if strings.TrimSpace(feed.Name) == "" {
			return &ConfigError{Field: fmt.Sprintf("feeds[%d].name", i), Message: "feed name cannot be empty"}
		}
		key := strings.ToLower(strings.TrimSpace(feed.Name))
		if seen[key] {
			return &ConfigError{Field: fmt.Sprintf("feeds[%d].name", i), Message: fmt.Sprintf("duplicate feed name: %s", feed.Name)}
		}
		seen[key] = true

		if _, err := url.ParseRequestURI(feed.URL); err != nil {
			return &ConfigError{Field: fmt.Sprintf("feeds[%d].url", i), Message: fmt.Sprintf("invalid feed URL %q", feed.URL)}
		}

		if !feed.Downloader.Valid() {
			return &ConfigError{Field: fmt.Sprintf("feeds[%d].downloader", i), Message: fmt.Sprintf("unknown downloader %q", feed.Downloader)}
		}

		for _, pattern := range append(append([]string{}, feed.Include...), feed.Exclude...) {
			if _, err := regexp.Compile(pattern); err != nil {
				return &ConfigError{Field: fmt.Sprintf("feeds[%d]", i), Message: fmt.Sprintf("invalid filter pattern %q: %v", pattern, err)}
			}
		}

		// every used back-end needs its connection section
		switch feed.Downloader {
		case DownloaderAria2:
			if c.Aria2 == nil {
				return &ConfigError{Field: "aria2", Message: fmt.Sprintf("feed %q uses aria2 but no [aria2] section is configured", feed.Name)}
			}
		case DownloaderQBittorrent:
			if c.QBittorrent == nil {
				return &ConfigError{Field: "qbittorrent", Message: fmt.Sprintf("feed %q uses qbittorrent but no [qbittorrent] section is configured", feed.Name)}
			}
		case DownloaderTransmission:
			if c.Transmission == nil {
				return &ConfigError{Field: "transmission", Message: fmt.Sprintf("feed %q uses transmission but no [transmission] section is configured", feed.Name)}
			}
		}
	}

	for i, hook := range c.Webhooks {
		if strings.TrimSpace(hook.Name) == "" {
			return &ConfigError{Field: fmt.Sprintf("webhooks[%d].name", i), Message: "webhook name cannot be empty"}
		}
		if _, err := url.ParseRequestURI(hook.URL); err != nil {
			return &ConfigError{Field: fmt.Sprintf("webhooks[%d].url", i), Message: fmt.Sprintf("invalid webhook URL %q", hook.URL)}
		}
	}

	return nil
}

// FeedByName returns the feed config with the given name, or nil.
func (c *Config) FeedByName(name string) *FeedConfig {
	for i := range c.Feeds {
		if strings.EqualFold(c.Feeds[i].Name, name) {
			return &c.Feeds[i]
		}
	}
	return nil
}

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error on field '%s': %s", e.Field, e.Message)
}
