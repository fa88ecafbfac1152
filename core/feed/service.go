// ABOUTME: Feed service fetches and parses one RSS/Atom feed and applies filter rules
// ABOUTME: Per-feed failures are recoverable; a bad feed yields zero items, never an abort

package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mmcdole/gofeed"

	"rss-downloader-api/core/config"
	"rss-downloader-api/core/domain"
	"rss-downloader-api/core/interfaces"
	"rss-downloader-api/core/patterns"
)

// feedCacheTTL is how long a fetched feed document stays cached, so an
// overlapping manual run does not refetch the same feed.
const feedCacheTTL = 5 * time.Minute

// Service fetches, parses, and filters feeds.
type Service struct {
	deps     interfaces.Dependencies
	store    *config.Store
	patterns *patterns.Cache
}

// NewService creates a new feed service instance.
func NewService(deps interfaces.Dependencies, store *config.Store, patternCache *patterns.Cache) *Service {
	return &Service{
		deps:     deps,
		store:    store,
		patterns: patternCache,
	}
}

// Parse fetches and parses the named feed, returning the pre-filter entry
// count and the items that passed the feed's filter rules. Fetch and parse
// failures are logged and yield (0, nil); they must not abort other feeds.
func (s *Service) Parse(ctx context.Context, feedName, feedURL string) (int, []domain.ParsedItem) {
	// pin the config version once so the whole parse filters under one rule set
	version := s.store.Version()

	body, err := s.fetch(ctx, feedURL)
	if err != nil {
		s.deps.Logger.Error("Feed fetch failed", map[string]interface{}{
			"feed":  feedName,
			"url":   feedURL,
			"error": err.Error(),
		})
		return 0, nil
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		s.deps.Logger.Error("Feed parse failed", map[string]interface{}{
			"feed":  feedName,
			"url":   feedURL,
			"error": err.Error(),
		})
		return 0, nil
	}

	if len(parsed.Items) == 0 && parsed.Title == "" {
		s.deps.Logger.Error("Feed is empty or unreachable", map[string]interface{}{
			"feed": feedName,
			"url":  feedURL,
		})
		return 0, nil
	}

	extractor := "default"
	cfg := s.store.Get()
	if feedCfg := cfg.FeedByName(feedName); feedCfg != nil {
		extractor = feedCfg.ContentExtractor
	}

	s.deps.Logger.Info("Fetched feed", map[string]interface{}{
		"feed":    feedName,
		"entries": len(parsed.Items),
	})

	matched := make([]domain.ParsedItem, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		item := extractItem(extractor, entry, time.Now())
		if err := item.Validate(); err != nil {
			s.deps.Logger.Error("Skipping invalid feed entry", map[string]interface{}{
				"feed":  feedName,
				"title": entry.Title,
				"error": err.Error(),
			})
			continue
		}
		if s.patterns.MatchFilters(item.Title, feedName, version) {
			matched = append(matched, item)
		}
	}

	s.deps.Logger.Info("Filtered feed entries", map[string]interface{}{
		"feed":    feedName,
		"total":   len(parsed.Items),
		"matched": len(matched),
	})

	return len(parsed.Items), matched
}

// fetch returns the raw feed document, consulting the cache first.
func (s *Service) fetch(ctx context.Context, feedURL string) ([]byte, error) {
	cacheKey := "feed:" + feedURL

	if s.deps.Cache != nil {
		if cached, err := s.deps.Cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	resp, err := s.deps.HTTPClient.Get(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body().Close()

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode())
	}

	body, err := io.ReadAll(resp.Body())
	if err != nil {
		return nil, err
	}

	if s.deps.Cache != nil {
		_ = s.deps.Cache.Set(ctx, cacheKey, body, feedCacheTTL)
	}

	return body, nil
}
