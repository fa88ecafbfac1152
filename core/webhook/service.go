// ABOUTME: Webhook notifier posting a Discord-style embed per finished download record
// ABOUTME: Delivery goes to enabled endpoints only; failures are logged and swallowed

package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rss-downloader-api/core/config"
	"rss-downloader-api/core/domain"
	"rss-downloader-api/core/interfaces"
)

// sendTimeout bounds one webhook delivery.
const sendTimeout = 10 * time.Second

// Embed colors for success and failure notifications.
const (
	colorSuccess = 0x2ECC71
	colorFailure = 0xE74C3C
)

// Service implements interfaces.Notifier over the configured webhook list.
// The endpoint list is re-read from config on every send, so hot reloads
// apply without restart.
type Service struct {
	store  *config.Store
	client interfaces.HTTPClient
	logger interfaces.Logger
}

// NewService creates the webhook notifier.
func NewService(store *config.Store, client interfaces.HTTPClient, logger interfaces.Logger) *Service {
	return &Service{
		store:  store,
		client: client,
		logger: logger,
	}
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embed struct {
	Title     string       `json:"title"`
	URL       string       `json:"url,omitempty"`
	Color     int          `json:"color"`
	Timestamp string       `json:"timestamp"`
	Fields    []embedField `json:"fields"`
}

type payload struct {
	Embeds []embed `json:"embeds"`
}

// Send delivers the record to every enabled webhook. Failures inside Send
// never propagate: a broken endpoint is logged and the rest still receive
// the notification.
func (s *Service) Send(ctx context.Context, record domain.DownloadRecord) {
	hooks := s.store.Get().Webhooks
	if len(hooks) == 0 {
		return
	}

	body, err := json.Marshal(buildPayload(record))
	if err != nil {
		s.logger.Error("Webhook payload marshal failed", map[string]interface{}{
			"title": record.Title,
			"error": err.Error(),
		})
		return
	}

	for _, hook := range hooks {
		if !hook.Enabled {
			continue
		}
		s.deliver(ctx, hook, body)
	}
}

// deliver posts the payload to one endpoint.
func (s *Service) deliver(ctx context.Context, hook domain.WebhookConfig, body []byte) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, err := s.client.Post(sendCtx, hook.URL, bytes.NewReader(body))
	if err != nil {
		s.logger.Error("Webhook delivery failed", map[string]interface{}{
			"webhook": hook.Name,
			"error":   err.Error(),
		})
		return
	}
	defer resp.Body().Close()

	if resp.StatusCode() >= 300 {
		s.logger.Error("Webhook endpoint rejected notification", map[string]interface{}{
			"webhook": hook.Name,
			"status":  resp.StatusCode(),
		})
		return
	}

	s.logger.Info("Webhook notification sent", map[string]interface{}{
		"webhook": hook.Name,
	})
}

// buildPayload renders the record as a single-embed notification.
func buildPayload(record domain.DownloadRecord) payload {
	statusText := "Failed"
	color := colorFailure
	if record.Status == domain.StatusSuccess {
		statusText = "Success"
		color = colorSuccess
	}

	modeText := "Automatic"
	if record.Mode == domain.ModeManual {
		modeText = "Manual"
	}

	return payload{
		Embeds: []embed{
			{
				Title:     fmt.Sprintf("New download: %s", record.Title),
				URL:       record.URL,
				Color:     color,
				Timestamp: record.DownloadTime.UTC().Format(time.RFC3339),
				Fields: []embedField{
					{Name: "Feed", Value: record.FeedName, Inline: true},
					{Name: "Downloader", Value: string(record.Downloader), Inline: true},
					{Name: "Status", Value: statusText, Inline: true},
					{Name: "Mode", Value: modeText, Inline: true},
				},
			},
		},
	}
}
