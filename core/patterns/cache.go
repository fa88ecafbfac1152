// ABOUTME: Bounded cache of compiled per-feed include/exclude filter patterns
// ABOUTME: Keyed by (feed name, config version) so a config reload naturally misses

package patterns

import (
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"

	"rss-downloader-api/core/config"
	"rss-downloader-api/core/interfaces"
)

// cacheSize bounds the number of (feed, version) pattern sets held at once.
const cacheSize = 32

type cacheKey struct {
	feed    string
	version int
}

type compiledSet struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

// Cache compiles and caches filter patterns per feed and config version.
// Entries are immutable once compiled, so no locking is needed beyond the
// LRU's own bookkeeping.
type Cache struct {
	store   *config.Store
	logger  interfaces.Logger
	entries *lru.Cache[cacheKey, *compiledSet]
}

// NewCache creates a pattern cache backed by the given config store.
func NewCache(store *config.Store, logger interfaces.Logger) *Cache {
	entries, _ := lru.New[cacheKey, *compiledSet](cacheSize)
	return &Cache{
		store:   store,
		logger:  logger,
		entries: entries,
	}
}

// PatternsFor returns the compiled include and exclude patterns for a feed
// at a given config version, compiling and caching them on first use.
func (c *Cache) PatternsFor(feedName string, version int) ([]*regexp.Regexp, []*regexp.Regexp) {
	key := cacheKey{feed: feedName, version: version}
	if set, ok := c.entries.Get(key); ok {
		return set.include, set.exclude
	}

	set := c.compile(feedName, version)
	c.entries.Add(key, set)
	return set.include, set.exclude
}

// MatchFilters reports whether a title passes the feed's filter rules at
// the given config version: true when no include pattern exists or any
// include pattern matches, and no exclude pattern matches. Patterns are
// compiled as written; case-insensitivity belongs in the pattern itself.
func (c *Cache) MatchFilters(title, feedName string, version int) bool {
	include, exclude := c.PatternsFor(feedName, version)

	for _, pattern := range exclude {
		if pattern.MatchString(title) {
			return false
		}
	}

	if len(include) == 0 {
		return true
	}
	for _, pattern := range include {
		if pattern.MatchString(title) {
			return true
		}
	}
	return false
}

// compile builds the pattern set for a feed from the current config.
// Patterns that fail to compile are skipped; config validation normally
// rejects them before they get here.
func (c *Cache) compile(feedName string, version int) *compiledSet {
	c.logger.Debug("Compiling filter patterns", map[string]interface{}{
		"feed":    feedName,
		"version": version,
	})

	cfg := c.store.Get()
	feed := cfg.FeedByName(feedName)
	if feed == nil {
		return &compiledSet{}
	}

	set := &compiledSet{
		include: make([]*regexp.Regexp, 0, len(feed.Include)),
		exclude: make([]*regexp.Regexp, 0, len(feed.Exclude)),
	}
	for _, raw := range feed.Include {
		re, err := regexp.Compile(raw)
		if err != nil {
			c.logger.Warn("Skipping invalid include pattern", map[string]interface{}{
				"feed":    feedName,
				"pattern": raw,
				"error":   err.Error(),
			})
			continue
		}
		set.include = append(set.include, re)
	}
	for _, raw := range feed.Exclude {
		re, err := regexp.Compile(raw)
		if err != nil {
			c.logger.Warn("Skipping invalid exclude pattern", map[string]interface{}{
				"feed":    feedName,
				"pattern": raw,
				"error":   err.Error(),
			})
			continue
		}
		set.exclude = append(set.exclude, re)
	}
	return set
}
