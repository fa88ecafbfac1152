// ABOUTME: Uniform download-client contract over three wire protocols plus the registry
// ABOUTME: A back-end that fails construction is disabled for the run, not process-fatal

package downloader

import (
	"context"
	"fmt"
	"time"

	"rss-downloader-api/core/domain"
	coreerrors "rss-downloader-api/core/errors"
	"rss-downloader-api/core/interfaces"
)

// Request timeouts shared by all back-ends: short for health probes,
// longer for add-link calls.
const (
	addTimeout    = 10 * time.Second
	healthTimeout = 5 * time.Second
)

// Client is the uniform contract every download back-end satisfies.
type Client interface {
	// Name identifies the back-end variant.
	Name() domain.Downloader

	// AddLink submits one download URL. A nil return is an acknowledged
	// dispatch; failures are *errors.DownloaderError values.
	AddLink(ctx context.Context, link string) error

	// Version probes the back-end and returns its reported version.
	// Used as the construction-time health check.
	Version(ctx context.Context) (string, error)
}

// Registry resolves a feed's configured back-end to a constructed client.
type Registry struct {
	clients map[domain.Downloader]Client
}

// BuildRegistry constructs a client for every configured back-end section.
// A back-end whose health check fails is logged and left out unless a feed
// requires it, in which case the error is returned so startup can surface it.
func BuildRegistry(ctx context.Context, cfg domain.Config, logger interfaces.Logger) (*Registry, error) {
	required := make(map[domain.Downloader]bool, len(cfg.Feeds))
	for _, feed := range cfg.Feeds {
		required[feed.Downloader] = true
	}

	reg := &Registry{clients: make(map[domain.Downloader]Client, 3)}

	if cfg.Aria2 != nil {
		client := NewAria2Client(*cfg.Aria2, logger)
		if err := reg.install(ctx, client, required[domain.DownloaderAria2], logger); err != nil {
			return nil, err
		}
	}

	if cfg.QBittorrent != nil {
		client, err := NewQBittorrentClient(ctx, *cfg.QBittorrent, logger)
		if err != nil {
			if required[domain.DownloaderQBittorrent] {
				return nil, fmt.Errorf("qbittorrent is required by a feed: %w", err)
			}
			logger.Warn("qBittorrent disabled for this run", map[string]interface{}{
				"error": err.Error(),
			})
		} else if err := reg.install(ctx, client, required[domain.DownloaderQBittorrent], logger); err != nil {
			return nil, err
		}
	}

	if cfg.Transmission != nil {
		client := NewTransmissionClient(*cfg.Transmission, logger)
		if err := reg.install(ctx, client, required[domain.DownloaderTransmission], logger); err != nil {
			return nil, err
		}
	}

	if len(reg.clients) == 0 {
		logger.Warn("No download back-end configured, nothing can be dispatched", nil)
	}

	return reg, nil
}

// install health-checks a client and registers it. A failed probe on an
// optional back-end only logs; on a required one it fails the build.
func (r *Registry) install(ctx context.Context, client Client, isRequired bool, logger interfaces.Logger) error {
	probeCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	version, err := client.Version(probeCtx)
	if err != nil {
		if isRequired {
			return fmt.Errorf("%s is required by a feed: %w", client.Name(), err)
		}
		logger.Warn("Download back-end unreachable, disabled for this run", map[string]interface{}{
			"downloader": string(client.Name()),
			"error":      err.Error(),
		})
		return nil
	}

	logger.Info("Download back-end connected", map[string]interface{}{
		"downloader": string(client.Name()),
		"version":    version,
	})
	r.clients[client.Name()] = client
	return nil
}

// Resolve returns the constructed client for a back-end, or a DownloaderError
// when that back-end is not available in this run.
func (r *Registry) Resolve(name domain.Downloader) (Client, error) {
	client, ok := r.clients[name]
	if !ok {
		return nil, &coreerrors.DownloaderError{
			Backend:   name,
			Message:   "back-end not configured or unavailable",
			Transport: true,
		}
	}
	return client, nil
}
