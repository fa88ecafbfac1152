package patterns

import (
	"os"
	"path/filepath"
	"testing"

	"rss-downloader-api/core/config"
)

type testLogger struct{}

func (testLogger) Debug(msg string, fields map[string]interface{}) {}
func (testLogger) Info(msg string, fields map[string]interface{})  {}
func (testLogger) Warn(msg string, fields map[string]interface{})  {}
func (testLogger) Error(msg string, fields map[string]interface{}) {}

func newTestStore(t *testing.T, content string) *config.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	store, err := config.NewStore(path, testLogger{})
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	return store
}

const filterConfig = `
aria2:
  rpc: http://localhost:6800/jsonrpc
feeds:
  - name: filtered
    url: https://example.com/feed.rss
    include:
      - "1080p"
      - "(?i)bdrip"
    exclude:
      - "720p"
    downloader: aria2
  - name: open
    url: https://example.com/open.rss
    downloader: aria2
`

func TestMatchFilters_IncludeAndExclude(t *testing.T) {
	cache := NewCache(newTestStore(t, filterConfig), testLogger{})

	tests := []struct {
		name  string
		title string
		want  bool
	}{
		{"include match", "[Group] Show - 01 [1080p]", true},
		{"case-insensitive include", "[Group] Show BDRIP", true},
		{"no include match", "[Group] Show - 01 [480p]", false},
		{"exclude wins", "[Group] Show - 01 [1080p][720p]", false},
		{"exclude without include", "[Group] Show - 01 [720p]", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cache.MatchFilters(tt.title, "filtered", 0)
			if got != tt.want {
				t.Errorf("MatchFilters(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestMatchFilters_EmptyIncludeMatchesEverything(t *testing.T) {
	cache := NewCache(newTestStore(t, filterConfig), testLogger{})

	if !cache.MatchFilters("anything at all", "open", 0) {
		t.Error("a feed without include patterns should match every title")
	}
}

func TestMatchFilters_UnknownFeedMatchesEverything(t *testing.T) {
	cache := NewCache(newTestStore(t, filterConfig), testLogger{})

	if !cache.MatchFilters("anything", "no-such-feed", 0) {
		t.Error("an unknown feed has no patterns and should match everything")
	}
}

func TestPatternsFor_CachesPerVersion(t *testing.T) {
	cache := NewCache(newTestStore(t, filterConfig), testLogger{})

	inc1, exc1 := cache.PatternsFor("filtered", 0)
	inc2, exc2 := cache.PatternsFor("filtered", 0)

	if len(inc1) != 2 || len(exc1) != 1 {
		t.Fatalf("compiled %d include / %d exclude patterns, want 2/1", len(inc1), len(exc1))
	}
	// same version must return the same cached compilation
	if inc1[0] != inc2[0] || exc1[0] != exc2[0] {
		t.Error("PatternsFor should return the cached compilation for the same version")
	}
}

func TestMatchFilters_NewVersionPicksUpNewPatterns(t *testing.T) {
	store := newTestStore(t, filterConfig)
	cache := NewCache(store, testLogger{})

	if !cache.MatchFilters("[Group] Show [1080p]", "filtered", store.Version()) {
		t.Fatal("1080p should match before the update")
	}

	err := store.Update(map[string]interface{}{
		"feeds": []interface{}{
			map[string]interface{}{
				"name":       "filtered",
				"url":        "https://example.com/feed.rss",
				"include":    []interface{}{"4K"},
				"downloader": "aria2",
			},
		},
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if cache.MatchFilters("[Group] Show [1080p]", "filtered", store.Version()) {
		t.Error("old include pattern should not match under the new version")
	}
	if !cache.MatchFilters("[Group] Show [4K]", "filtered", store.Version()) {
		t.Error("new include pattern should match under the new version")
	}
}
