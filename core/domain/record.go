// ABOUTME: DownloadRecord and ParsedItem domain models for the dispatch ledger
// ABOUTME: Records are append-only; one is created per dispatch attempt and never mutated

package domain

import (
	"errors"
	"time"
)

// Dispatch status values stored in the ledger.
const (
	StatusFailure = 0
	StatusSuccess = 1
)

// Dispatch mode values stored in the ledger.
const (
	ModeAutomatic = 0
	ModeManual    = 1
)

// ParsedItem is a candidate extracted from one feed entry. It lives only for
// the duration of a parse; persistence happens through DownloadRecord.
type ParsedItem struct {
	// Title is the entry title used for filter matching
	Title string

	// URL is the human-facing page for the item
	URL string

	// DownloadURL is the retrievable resource, possibly a magnet URI
	DownloadURL string

	// PublishedTime is the entry's publish timestamp, or the parse time
	// when the feed omits one
	PublishedTime time.Time
}

// Validate checks the fields required before an item may be dispatched.
func (i *ParsedItem) Validate() error {
	if i.Title == "" {
		return errors.New("item title cannot be empty")
	}
	if i.DownloadURL == "" {
		return errors.New("item download URL cannot be empty")
	}
	return nil
}

// DownloadRecord is one dispatch attempt as persisted in the ledger.
type DownloadRecord struct {
	// ID is assigned by the ledger on insert; zero means unsaved
	ID int64

	Title       string
	URL         string
	DownloadURL string
	FeedName    string
	FeedURL     string

	// PublishedTime is when the feed claims the item appeared
	PublishedTime time.Time

	// DownloadTime is when the dispatch attempt happened
	DownloadTime time.Time

	// Downloader is the back-end the item was dispatched to
	Downloader Downloader

	// Status is StatusSuccess or StatusFailure
	Status int

	// Mode is ModeAutomatic or ModeManual
	Mode int
}
