// ABOUTME: Configuration store with validated hot reload and version counter
// ABOUTME: Loads the YAML config file, fills defaults, and watches for external edits

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"rss-downloader-api/core/domain"
	"rss-downloader-api/core/interfaces"
)

// watchInterval is how often the backing file's mtime is polled.
const watchInterval = 5 * time.Second

// Store holds the validated configuration and its version counter.
// All access to the shared config goes through a single lock so readers
// never observe a partially-updated structure.
type Store struct {
	path   string
	logger interfaces.Logger

	mu        sync.Mutex
	config    domain.Config
	version   int
	lastMtime time.Time
	onChange  []func(domain.Config)
}

// NewStore loads the configuration from path, creating the file with
// defaults when it does not exist. Missing fields are filled with defaults
// and the completed document is written back.
func NewStore(path string, logger interfaces.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		logger: logger,
	}

	cfg, err := s.loadOrCreate()
	if err != nil {
		return nil, err
	}
	s.config = cfg

	if info, err := os.Stat(path); err == nil {
		s.lastMtime = info.ModTime()
	}

	return s, nil
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

// Get returns the current configuration snapshot.
func (s *Store) Get() domain.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Version returns the current config version. The counter increments once
// per successful reload or update; its only consumer is the pattern cache.
func (s *Store) Version() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// OnChange registers fn to run after every successful update or reload,
// with the new configuration. Callbacks run outside the store lock.
func (s *Store) OnChange(fn func(domain.Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Update deep-merges the partial document into the current configuration,
// validates the result, and commits it to memory and disk only when valid.
// On validation failure the previous config stays active and the error is
// returned.
func (s *Store) Update(partial map[string]interface{}) error {
	cfg, err := s.applyUpdate(partial)
	if err != nil {
		return err
	}
	s.notify(cfg)
	return nil
}

func (s *Store) applyUpdate(partial map[string]interface{}) (domain.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	currentDoc, err := toDocument(s.config)
	if err != nil {
		return domain.Config{}, fmt.Errorf("serialize current config: %w", err)
	}

	merged := deepMerge(currentDoc, partial)

	cfg, err := documentToConfig(merged)
	if err != nil {
		return domain.Config{}, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, err
	}

	if err := s.writeFile(cfg); err != nil {
		return domain.Config{}, fmt.Errorf("write config file: %w", err)
	}

	s.commit(cfg)
	s.logger.Info("Configuration updated", map[string]interface{}{
		"version": s.version,
	})
	return cfg, nil
}

// Watch polls the backing file every 5 seconds and reloads it when the
// modification time changes. Invalid reloads are logged and discarded; the
// previous valid config remains active. Watch blocks until ctx is done.
func (s *Store) Watch(ctx context.Context) {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkFile()
		}
	}
}

// checkFile reloads the config when the backing file changed on disk.
func (s *Store) checkFile() {
	cfg, reloaded := s.reloadIfChanged()
	if reloaded {
		s.notify(cfg)
	}
}

func (s *Store) reloadIfChanged() (domain.Config, bool) {
	info, err := os.Stat(s.path)
	if err != nil {
		return domain.Config{}, false
	}

	s.mu.Lock()
	changed := !info.ModTime().Equal(s.lastMtime)
	s.mu.Unlock()
	if !changed {
		return domain.Config{}, false
	}

	cfg, err := s.readFile()

	s.mu.Lock()
	defer s.mu.Unlock()
	// record the mtime either way so a bad file is not re-parsed every tick
	s.lastMtime = info.ModTime()

	if err != nil {
		s.logger.Error("Config reload failed, keeping previous config", map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		})
		return domain.Config{}, false
	}

	s.commit(cfg)
	s.logger.Info("Configuration reloaded", map[string]interface{}{
		"path":    s.path,
		"version": s.version,
	})
	return cfg, true
}

// notify runs the registered change callbacks with the lock released so a
// callback may call back into the store.
func (s *Store) notify(cfg domain.Config) {
	s.mu.Lock()
	callbacks := make([]func(domain.Config), len(s.onChange))
	copy(callbacks, s.onChange)
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}

// loadOrCreate reads the config file, filling defaults, or creates it.
func (s *Store) loadOrCreate() (domain.Config, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		cfg := domain.DefaultConfig()
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return domain.Config{}, fmt.Errorf("create config directory: %w", err)
		}
		if err := s.writeFile(cfg); err != nil {
			return domain.Config{}, fmt.Errorf("write default config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := s.readFile()
	if err != nil {
		return domain.Config{}, err
	}

	// write the filled-in document back so the file always shows every field
	if err := s.writeFile(cfg); err != nil {
		s.logger.Warn("Could not write completed config back", map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		})
	}

	return cfg, nil
}

// readFile parses and validates the backing file with defaults applied.
func (s *Store) readFile() (domain.Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.Config{}, fmt.Errorf("read config file: %w", err)
	}

	var userDoc map[string]interface{}
	if err := yaml.Unmarshal(data, &userDoc); err != nil {
		return domain.Config{}, fmt.Errorf("parse config file: %w", err)
	}

	defaultDoc, err := toDocument(domain.DefaultConfig())
	if err != nil {
		return domain.Config{}, err
	}

	cfg, err := documentToConfig(deepMerge(defaultDoc, userDoc))
	if err != nil {
		return domain.Config{}, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, err
	}

	return cfg, nil
}

// writeFile persists cfg and records the resulting mtime so the watcher
// does not treat the store's own write as an external change.
func (s *Store) writeFile(cfg domain.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return err
	}
	if info, err := os.Stat(s.path); err == nil {
		s.lastMtime = info.ModTime()
	}
	return nil
}

// commit swaps in a validated config and bumps the version. Caller holds the lock.
func (s *Store) commit(cfg domain.Config) {
	s.config = cfg
	s.version++
}

// applyDefaults fills per-feed fields that derive from other values.
func applyDefaults(cfg *domain.Config) {
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	for i := range cfg.Feeds {
		feed := &cfg.Feeds[i]
		if feed.Downloader == "" {
			feed.Downloader = domain.DownloaderAria2
		}
		if feed.ContentExtractor == "" || feed.ContentExtractor == "default" {
			feed.ContentExtractor = extractorFromURL(feed.URL)
		}
	}
}

// toDocument converts a config into its YAML map form for merging.
func toDocument(cfg domain.Config) (map[string]interface{}, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// documentToConfig converts a YAML map form back into a typed config.
func documentToConfig(doc map[string]interface{}) (domain.Config, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return domain.Config{}, err
	}
	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse config document: %w", err)
	}
	return cfg, nil
}
