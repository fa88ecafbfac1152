// ABOUTME: Service interfaces for the core business logic
// ABOUTME: Defines contracts for collaborators used by the dispatch pipeline

package interfaces

import (
	"context"

	"rss-downloader-api/core/domain"
)

// Notifier receives every finished download record, successful or not.
// Implementations must swallow their own failures; a broken notification
// channel must never stall the dispatch loop.
type Notifier interface {
	Send(ctx context.Context, record domain.DownloadRecord)
}
