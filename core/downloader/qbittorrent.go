// ABOUTME: qBittorrent download client speaking the session-cookie WebUI REST API
// ABOUTME: Login happens at construction; the cookie jar keeps the session across calls

package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"rss-downloader-api/core/domain"
	coreerrors "rss-downloader-api/core/errors"
	"rss-downloader-api/core/interfaces"
)

// QBittorrentClient dispatches downloads to a qBittorrent WebUI.
type QBittorrentClient struct {
	baseURL    string
	httpClient *http.Client
	logger     interfaces.Logger
}

// NewQBittorrentClient creates a qBittorrent client and, when credentials
// are configured, logs in. An authentication rejection is a permanent
// construction failure. Without credentials construction succeeds with a
// warning that privileged calls may fail.
func NewQBittorrentClient(ctx context.Context, cfg domain.QBittorrentConfig, logger interfaces.Logger) (*QBittorrentClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	client := &QBittorrentClient{
		baseURL: strings.TrimRight(cfg.Host, "/"),
		httpClient: &http.Client{
			Timeout: addTimeout,
			Jar:     jar,
		},
		logger: logger,
	}

	if cfg.Username != "" && cfg.Password != "" {
		if err := client.login(ctx, cfg.Username, cfg.Password); err != nil {
			return nil, err
		}
		logger.Info("qBittorrent login succeeded", nil)
	} else {
		logger.Warn("qBittorrent has no credentials configured, privileged calls may fail", nil)
	}

	return client, nil
}

// Name identifies the back-end variant.
func (c *QBittorrentClient) Name() domain.Downloader {
	return domain.DownloaderQBittorrent
}

// login authenticates against the WebUI. Anything other than "Ok." in the
// response body is an authentication failure.
func (c *QBittorrentClient) login(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	body, err := c.postForm(ctx, "/api/v2/auth/login", form)
	if err != nil {
		return err
	}

	if !isOK(body) {
		return &coreerrors.DownloaderError{
			Backend: domain.DownloaderQBittorrent,
			Message: fmt.Sprintf("login rejected: %s", strings.TrimSpace(body)),
		}
	}
	return nil
}

// AddLink posts one URL to the torrents/add endpoint.
func (c *QBittorrentClient) AddLink(ctx context.Context, link string) error {
	form := url.Values{}
	form.Set("urls", link)

	body, err := c.postForm(ctx, "/api/v2/torrents/add", form)
	if err != nil {
		return err
	}

	if !isOK(body) {
		return &coreerrors.DownloaderError{
			Backend: domain.DownloaderQBittorrent,
			Message: strings.TrimSpace(body),
		}
	}
	return nil
}

// Version probes the WebUI's app/version endpoint.
func (c *QBittorrentClient) Version(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v2/app/version", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &coreerrors.DownloaderError{
			Backend:   domain.DownloaderQBittorrent,
			Message:   err.Error(),
			Transport: true,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", &coreerrors.DownloaderError{
			Backend: domain.DownloaderQBittorrent,
			Message: fmt.Sprintf("version probe returned %d", resp.StatusCode),
		}
	}
	return strings.TrimSpace(string(body)), nil
}

// postForm sends one form-encoded POST and returns the response body.
func (c *QBittorrentClient) postForm(ctx context.Context, path string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &coreerrors.DownloaderError{
			Backend:   domain.DownloaderQBittorrent,
			Message:   err.Error(),
			Transport: true,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// isOK matches the WebUI's "Ok." acknowledgement, case-insensitively.
func isOK(body string) bool {
	return strings.EqualFold(strings.TrimSpace(body), "ok.")
}
