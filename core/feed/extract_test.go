package feed

import (
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestExtractItem_MikanPrefersBittorrentEnclosure(t *testing.T) {
	entry := &gofeed.Item{
		Title: "Episode 1",
		Link:  "https://mikanime.tv/Home/Episode/abc",
		Enclosures: []*gofeed.Enclosure{
			{URL: "https://mikanime.tv/Download/abc.torrent", Type: "application/x-bittorrent"},
		},
	}

	item := extractItem("mikan", entry, testNow)

	if item.DownloadURL != "https://mikanime.tv/Download/abc.torrent" {
		t.Errorf("download URL = %q, want the torrent enclosure", item.DownloadURL)
	}
	if item.URL != "https://mikanime.tv/Home/Episode/abc" {
		t.Errorf("item URL = %q, want the entry link", item.URL)
	}
}

func TestExtractItem_MikanFallsBackToLink(t *testing.T) {
	entry := &gofeed.Item{
		Title: "Episode 1",
		Link:  "https://mikanime.tv/Home/Episode/abc",
		Enclosures: []*gofeed.Enclosure{
			{URL: "https://example.com/image.png", Type: "image/png"},
		},
	}

	item := extractItem("mikan", entry, testNow)

	if item.DownloadURL != entry.Link {
		t.Errorf("download URL = %q, want the entry link when no torrent enclosure exists", item.DownloadURL)
	}
}

func TestExtractItem_DmhyUsesMikanRule(t *testing.T) {
	entry := &gofeed.Item{
		Title: "Episode 1",
		Link:  "https://dmhy.org/topics/view/1",
		Enclosures: []*gofeed.Enclosure{
			{URL: "magnet:?xt=urn:btih:abc", Type: "application/x-bittorrent"},
		},
	}

	item := extractItem("dmhy", entry, testNow)

	if item.DownloadURL != "magnet:?xt=urn:btih:abc" {
		t.Errorf("download URL = %q, want the magnet enclosure", item.DownloadURL)
	}
}

func TestExtractItem_NyaaLinkIsTorrentGuidIsPage(t *testing.T) {
	entry := &gofeed.Item{
		Title: "Episode 1",
		Link:  "https://nyaa.si/download/1.torrent",
		GUID:  "https://nyaa.si/view/1",
	}

	item := extractItem("nyaa", entry, testNow)

	if item.DownloadURL != "https://nyaa.si/download/1.torrent" {
		t.Errorf("download URL = %q, want the entry link", item.DownloadURL)
	}
	if item.URL != "https://nyaa.si/view/1" {
		t.Errorf("item URL = %q, want the guid", item.URL)
	}
}

func TestExtractItem_DefaultPrefersEnclosure(t *testing.T) {
	entry := &gofeed.Item{
		Title: "Episode 1",
		Link:  "https://example.com/items/1",
		GUID:  "https://example.com/guid/1",
		Enclosures: []*gofeed.Enclosure{
			{URL: "https://example.com/files/1.torrent", Type: "application/octet-stream"},
		},
	}

	item := extractItem("default", entry, testNow)

	if item.DownloadURL != "https://example.com/files/1.torrent" {
		t.Errorf("download URL = %q, want the first enclosure", item.DownloadURL)
	}
	if item.URL != "https://example.com/guid/1" {
		t.Errorf("item URL = %q, want the guid", item.URL)
	}
}

func TestExtractItem_DefaultWithoutEnclosureUsesLink(t *testing.T) {
	entry := &gofeed.Item{
		Title: "Episode 1",
		Link:  "https://example.com/items/1",
	}

	item := extractItem("default", entry, testNow)

	if item.DownloadURL != "https://example.com/items/1" {
		t.Errorf("download URL = %q, want the entry link", item.DownloadURL)
	}
	if item.URL != "https://example.com/items/1" {
		t.Errorf("item URL = %q, want the download URL when guid is empty", item.URL)
	}
}

func TestExtractItem_UnknownRuleFallsBackToDefault(t *testing.T) {
	entry := &gofeed.Item{
		Title: "Episode 1",
		Link:  "https://example.com/items/1",
	}

	item := extractItem("something-new", entry, testNow)

	if item.DownloadURL != "https://example.com/items/1" {
		t.Errorf("unknown rule should use the default extraction, got %q", item.DownloadURL)
	}
}

func TestExtractItem_PublishedTime(t *testing.T) {
	published := time.Date(2024, 4, 30, 8, 0, 0, 0, time.UTC)
	withTime := &gofeed.Item{
		Title:           "Episode 1",
		Link:            "https://example.com/items/1",
		PublishedParsed: &published,
	}
	withoutTime := &gofeed.Item{
		Title: "Episode 2",
		Link:  "https://example.com/items/2",
	}

	if got := extractItem("default", withTime, testNow).PublishedTime; !got.Equal(published) {
		t.Errorf("published time = %v, want the entry's own timestamp", got)
	}
	if got := extractItem("default", withoutTime, testNow).PublishedTime; !got.Equal(testNow) {
		t.Errorf("published time = %v, want now when the entry has none", got)
	}
}
