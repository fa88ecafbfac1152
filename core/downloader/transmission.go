// ABOUTME: Transmission download client speaking session-token RPC with 409 renewal
// ABOUTME: On a 409 the cached token is replaced from the response and the call retried once

package downloader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"rss-downloader-api/core/domain"
	coreerrors "rss-downloader-api/core/errors"
	"rss-downloader-api/core/interfaces"
)

// sessionHeader carries the Transmission session token both ways.
const sessionHeader = "X-Transmission-Session-Id"

// TransmissionClient dispatches downloads to a Transmission daemon.
//
// The session token is ephemeral client state: it starts empty, the first
// call earns a 409 carrying the server's expected token, and the client
// retries that same request once with the renewed token before surfacing
// any error. A later call always starts from whatever token is cached.
type TransmissionClient struct {
	endpoint   string
	username   string
	password   string
	dir        string
	httpClient *http.Client
	logger     interfaces.Logger

	mu        sync.Mutex
	sessionID string
}

// NewTransmissionClient creates a Transmission client from its config section.
func NewTransmissionClient(cfg domain.TransmissionConfig, logger interfaces.Logger) *TransmissionClient {
	return &TransmissionClient{
		endpoint:   strings.TrimRight(cfg.Host, "/") + "/transmission/rpc",
		username:   cfg.Username,
		password:   cfg.Password,
		dir:        cfg.Dir,
		httpClient: &http.Client{Timeout: addTimeout},
		logger:     logger,
	}
}

// Name identifies the back-end variant.
func (c *TransmissionClient) Name() domain.Downloader {
	return domain.DownloaderTransmission
}

type transmissionRequest struct {
	Method    string                 `json:"method"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

type transmissionResponse struct {
	Result    string          `json:"result"`
	Arguments json.RawMessage `json:"arguments"`
}

// AddLink submits one link via torrent-add. A result other than "success"
// (a duplicate-torrent rejection, for example) is a dispatch failure
// carrying the result string.
func (c *TransmissionClient) AddLink(ctx context.Context, link string) error {
	args := map[string]interface{}{"filename": link}
	if c.dir != "" {
		args["download-dir"] = c.dir
	}

	_, err := c.call(ctx, "torrent-add", args)
	return err
}

// Version probes the daemon via session-get.
func (c *TransmissionClient) Version(ctx context.Context) (string, error) {
	resp, err := c.call(ctx, "session-get", nil)
	if err != nil {
		return "", err
	}

	var args struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(resp, &args); err != nil {
		return "", fmt.Errorf("parse session-get response: %w", err)
	}
	return args.Version, nil
}

// call issues one RPC request, renewing the session token and retrying
// exactly once when the server rejects the cached token with a 409.
func (c *TransmissionClient) call(ctx context.Context, method string, args map[string]interface{}) (json.RawMessage, error) {
	resp, err := c.send(ctx, method, args)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusConflict {
		renewed := resp.Header.Get(sessionHeader)
		resp.Body.Close()

		c.mu.Lock()
		c.sessionID = renewed
		c.mu.Unlock()

		c.logger.Debug("Transmission session renewed", map[string]interface{}{
			"method": method,
		})

		resp, err = c.send(ctx, method, args)
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &coreerrors.DownloaderError{
			Backend: domain.DownloaderTransmission,
			Message: fmt.Sprintf("RPC returned status %d", resp.StatusCode),
		}
	}

	var rpcResp transmissionResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, &coreerrors.DownloaderError{
			Backend:   domain.DownloaderTransmission,
			Message:   fmt.Sprintf("invalid RPC response: %v", err),
			Transport: true,
		}
	}

	if rpcResp.Result != "success" {
		return nil, &coreerrors.DownloaderError{
			Backend: domain.DownloaderTransmission,
			Message: rpcResp.Result,
		}
	}

	return rpcResp.Arguments, nil
}

// send performs one HTTP round trip with the currently cached token.
func (c *TransmissionClient) send(ctx context.Context, method string, args map[string]interface{}) (*http.Response, error) {
	body, err := json.Marshal(transmissionRequest{Method: method, Arguments: args})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	c.mu.Lock()
	req.Header.Set(sessionHeader, c.sessionID)
	c.mu.Unlock()

	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &coreerrors.DownloaderError{
			Backend:   domain.DownloaderTransmission,
			Message:   err.Error(),
			Transport: true,
		}
	}
	return resp, nil
}
