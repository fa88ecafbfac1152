// ABOUTME: Tests for configuration validation rules
// ABOUTME: Covers log level aliases and the downloader enum

package domain

import "testing"

func TestValidate_LogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"warning", true},
		{"WARNING", true},
		{"error", true},
		{"shouting", false},
		{"", false},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Log.Level = tt.level
		err := cfg.Validate()
		if tt.valid && err != nil {
			t.Errorf("Validate rejected level %q: %v", tt.level, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("Validate accepted level %q", tt.level)
		}
	}
}

func TestParseDownloader(t *testing.T) {
	if d, err := ParseDownloader(" QBittorrent "); err != nil || d != DownloaderQBittorrent {
		t.Errorf("ParseDownloader = %v, %v", d, err)
	}
	if _, err := ParseDownloader("rsync"); err == nil {
		t.Error("ParseDownloader should reject unknown back-ends")
	}
}
