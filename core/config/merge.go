// ABOUTME: Deep-merge helper for partial config updates
// ABOUTME: User values win; nested maps merge recursively; everything else replaces

package config

import (
	"net/url"

	"rss-downloader-api/core/domain"
)

// deepMerge merges user over base without mutating either map. Nested maps
// are merged key by key; any other value (including lists) replaces the base
// value wholesale.
func deepMerge(base, user map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(base)+len(user))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range user {
		userMap, userOK := v.(map[string]interface{})
		baseMap, baseOK := result[k].(map[string]interface{})
		if userOK && baseOK {
			result[k] = deepMerge(baseMap, userMap)
			continue
		}
		result[k] = v
	}
	return result
}

// extractorFromURL derives the content-extractor rule from the feed host.
func extractorFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "default"
	}
	return domain.ExtractorForHost(u.Hostname())
}
