// ABOUTME: Downloader connectivity handlers for the Huma API
// ABOUTME: Provides an endpoint for probing back-end reachability with supplied settings

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"rss-downloader-api/core/domain"
	"rss-downloader-api/core/downloader"
	"rss-downloader-api/core/interfaces"
)

const testTimeout = 5 * time.Second

// DownloaderHandler handles back-end connectivity probes
type DownloaderHandler struct {
	logger interfaces.Logger
}

// NewDownloaderHandler creates a new downloader handler
func NewDownloaderHandler(logger interfaces.Logger) *DownloaderHandler {
	return &DownloaderHandler{logger: logger}
}

// RegisterRoutes registers all downloader routes
func (h *DownloaderHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "testDownloader",
		Method:      http.MethodPost,
		Path:        "/downloaders/{name}/test",
		Summary:     "Test connectivity to a download back-end",
		Description: "Builds a client from the supplied settings and asks the back-end for its version",
		Tags:        []string{"Downloaders"},
	}, h.TestDownloader)
}

// TestDownloaderInput defines the input for the TestDownloader operation
type TestDownloaderInput struct {
	Name string `path:"name" enum:"aria2,qbittorrent,transmission"`
	Body struct {
		RPC      string `json:"rpc,omitempty" doc:"aria2 JSON-RPC endpoint"`
		Host     string `json:"host,omitempty" doc:"qBittorrent or Transmission base URL"`
		Secret   string `json:"secret,omitempty" doc:"aria2 RPC secret"`
		Username string `json:"username,omitempty"`
		Password string `json:"password,omitempty"`
	}
}

// TestDownloaderOutput defines the output for the TestDownloader operation
type TestDownloaderOutput struct {
	Body struct {
		Downloader string `json:"downloader"`
		Version    string `json:"version"`
	}
}

// TestDownloader handles the POST /downloaders/{name}/test endpoint
func (h *DownloaderHandler) TestDownloader(ctx context.Context, input *TestDownloaderInput) (*TestDownloaderOutput, error) {
	name, err := domain.ParseDownloader(input.Name)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, testTimeout)
	defer cancel()

	client, err := h.buildClient(ctx, name, input)
	if err != nil {
		return nil, toHumaError(err)
	}

	version, err := client.Version(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}

	output := &TestDownloaderOutput{}
	output.Body.Downloader = string(name)
	output.Body.Version = version
	return output, nil
}

func (h *DownloaderHandler) buildClient(ctx context.Context, name domain.Downloader, input *TestDownloaderInput) (downloader.Client, error) {
	switch name {
	case domain.DownloaderAria2:
		if input.Body.RPC == "" {
			return nil, huma.Error400BadRequest("rpc is required for aria2")
		}
		return downloader.NewAria2Client(domain.Aria2Config{
			RPC:    input.Body.RPC,
			Secret: input.Body.Secret,
		}, h.logger), nil
	case domain.DownloaderQBittorrent:
		if input.Body.Host == "" {
			return nil, huma.Error400BadRequest("host is required for qbittorrent")
		}
		return downloader.NewQBittorrentClient(ctx, domain.QBittorrentConfig{
			Host:     input.Body.Host,
			Username: input.Body.Username,
			Password: input.Body.Password,
		}, h.logger)
	case domain.DownloaderTransmission:
		if input.Body.Host == "" {
			return nil, huma.Error400BadRequest("host is required for transmission")
		}
		return downloader.NewTransmissionClient(domain.TransmissionConfig{
			Host:     input.Body.Host,
			Username: input.Body.Username,
			Password: input.Body.Password,
		}, h.logger), nil
	default:
		return nil, huma.Error400BadRequest("unknown downloader: " + input.Name)
	}
}
