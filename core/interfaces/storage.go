// ABOUTME: Storage interfaces for the download ledger
// ABOUTME: Defines the contract the dedup/dispatch record store must satisfy

package interfaces

import (
	"context"
	"time"

	"rss-downloader-api/core/domain"
)

// SearchFilters narrows a ledger search. Zero values mean "no constraint".
type SearchFilters struct {
	// Title matches records whose title contains this substring
	Title string

	// FeedName matches records whose feed name contains this substring
	FeedName string

	// Downloader matches the exact back-end used
	Downloader domain.Downloader

	// Status filters on dispatch status; nil means any
	Status *int

	// Mode filters on dispatch mode; nil means any
	Mode *int

	// Published/Download time ranges; zero times are open ends
	PublishedAfter  time.Time
	PublishedBefore time.Time
	DownloadAfter   time.Time
	DownloadBefore  time.Time
}

// Pagination bounds a ledger search result page.
type Pagination struct {
	Limit  int
	Offset int
}

// DownloadStore is the persistent ledger of dispatch attempts.
type DownloadStore interface {
	// IsDownloaded reports whether a record with the given download URL
	// exists with success status.
	IsDownloaded(ctx context.Context, downloadURL string) bool

	// Insert appends a record and returns its assigned id. Storage failures
	// are logged and reported as id 0; they never surface as an error so a
	// record-write failure cannot abort the dispatch loop.
	Insert(ctx context.Context, record domain.DownloadRecord) int64

	// FindByID returns the record with the given id, or a NotFoundError.
	FindByID(ctx context.Context, id int64) (*domain.DownloadRecord, error)

	// Search returns the records matching the filters, newest dispatch
	// first, plus the total match count ignoring pagination.
	Search(ctx context.Context, filters SearchFilters, page Pagination) ([]domain.DownloadRecord, int, error)

	// Reset drops and recreates the ledger. Administrative use only.
	Reset(ctx context.Context) error
}
