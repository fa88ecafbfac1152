// ABOUTME: Download ledger handlers for the Huma API
// ABOUTME: Provides HTTP endpoints for searching records and re-dispatching downloads

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"rss-downloader-api/core/domain"
	"rss-downloader-api/core/interfaces"
)

// RedownloadService interface defines the methods needed from the orchestrator
type RedownloadService interface {
	Redownload(ctx context.Context, id int64, name domain.Downloader) error
}

// DownloadHandler handles download-ledger HTTP requests
type DownloadHandler struct {
	store   interfaces.DownloadStore
	service RedownloadService
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(store interfaces.DownloadStore, service RedownloadService) *DownloadHandler {
	return &DownloadHandler{
		store:   store,
		service: service,
	}
}

// RegisterRoutes registers all download-related routes
func (h *DownloadHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "searchDownloads",
		Method:      http.MethodGet,
		Path:        "/downloads",
		Summary:     "Search the download ledger",
		Description: "Returns download records matching the given filters, newest first",
		Tags:        []string{"Downloads"},
	}, h.SearchDownloads)

	huma.Register(api, huma.Operation{
		OperationID: "redownload",
		Method:      http.MethodPost,
		Path:        "/downloads/{id}/redownload",
		Summary:     "Re-dispatch a recorded download",
		Description: "Sends the record's download URL to a back-end again, recording a manual dispatch",
		Tags:        []string{"Downloads"},
	}, h.Redownload)
}

// DownloadRecordResponse is the JSON representation of a ledger record
type DownloadRecordResponse struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	DownloadURL   string    `json:"download_url"`
	FeedName      string    `json:"feed_name"`
	FeedURL       string    `json:"feed_url"`
	PublishedTime time.Time `json:"published_time"`
	DownloadTime  time.Time `json:"download_time"`
	Downloader    string    `json:"downloader"`
	Status        int       `json:"status"`
	Mode          int       `json:"mode"`
}

func toRecordResponse(r domain.DownloadRecord) DownloadRecordResponse {
	return DownloadRecordResponse{
		ID:            r.ID,
		Title:         r.Title,
		URL:           r.URL,
		DownloadURL:   r.DownloadURL,
		FeedName:      r.FeedName,
		FeedURL:       r.FeedURL,
		PublishedTime: r.PublishedTime,
		DownloadTime:  r.DownloadTime,
		Downloader:    string(r.Downloader),
		Status:        r.Status,
		Mode:          r.Mode,
	}
}

// SearchDownloadsInput defines the input for the SearchDownloads operation
type SearchDownloadsInput struct {
	Title           string    `query:"title" doc:"Substring match on record title"`
	FeedName        string    `query:"feed_name" doc:"Substring match on feed name"`
	Downloader      string    `query:"downloader" doc:"Exact back-end match: aria2, qbittorrent, or transmission"`
	Status          *int      `query:"status" minimum:"0" maximum:"1" doc:"0 failure, 1 success"`
	Mode            *int      `query:"mode" minimum:"0" maximum:"1" doc:"0 automatic, 1 manual"`
	PublishedAfter  time.Time `query:"published_after"`
	PublishedBefore time.Time `query:"published_before"`
	DownloadAfter   time.Time `query:"download_after"`
	DownloadBefore  time.Time `query:"download_before"`
	Limit           int       `query:"limit" minimum:"1" maximum:"200" default:"20"`
	Offset          int       `query:"offset" minimum:"0" default:"0"`
}

// SearchDownloadsOutput defines the output for the SearchDownloads operation
type SearchDownloadsOutput struct {
	Body struct {
		Records []DownloadRecordResponse `json:"records"`
		Total   int                      `json:"total" doc:"Total matching records across all pages"`
		Limit   int                      `json:"limit"`
		Offset  int                      `json:"offset"`
	}
}

// SearchDownloads handles the GET /downloads endpoint
func (h *DownloadHandler) SearchDownloads(ctx context.Context, input *SearchDownloadsInput) (*SearchDownloadsOutput, error) {
	filters := interfaces.SearchFilters{
		Title:           input.Title,
		FeedName:        input.FeedName,
		Downloader:      domain.Downloader(input.Downloader),
		Status:          input.Status,
		Mode:            input.Mode,
		PublishedAfter:  input.PublishedAfter,
		PublishedBefore: input.PublishedBefore,
		DownloadAfter:   input.DownloadAfter,
		DownloadBefore:  input.DownloadBefore,
	}
	page := interfaces.Pagination{Limit: input.Limit, Offset: input.Offset}

	records, total, err := h.store.Search(ctx, filters, page)
	if err != nil {
		return nil, toHumaError(err)
	}

	output := &SearchDownloadsOutput{}
	output.Body.Records = make([]DownloadRecordResponse, 0, len(records))
	for _, r := range records {
		output.Body.Records = append(output.Body.Records, toRecordResponse(r))
	}
	output.Body.Total = total
	output.Body.Limit = input.Limit
	output.Body.Offset = input.Offset
	return output, nil
}

// RedownloadInput defines the input for the Redownload operation
type RedownloadInput struct {
	ID   int64 `path:"id" minimum:"1"`
	Body struct {
		Downloader string `json:"downloader" enum:"aria2,qbittorrent,transmission" doc:"Back-end to dispatch to"`
	}
}

// RedownloadOutput defines the output for the Redownload operation
type RedownloadOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

// Redownload handles the POST /downloads/{id}/redownload endpoint
func (h *DownloadHandler) Redownload(ctx context.Context, input *RedownloadInput) (*RedownloadOutput, error) {
	name, err := domain.ParseDownloader(input.Body.Downloader)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	if err := h.service.Redownload(ctx, input.ID, name); err != nil {
		return nil, toHumaError(err)
	}

	output := &RedownloadOutput{}
	output.Body.Status = "dispatched"
	return output, nil
}
