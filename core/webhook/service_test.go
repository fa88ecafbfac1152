package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rss-downloader-api/core/config"
	"rss-downloader-api/core/domain"
	"rss-downloader-api/core/interfaces"
)

type testLogger struct{}

func (testLogger) Debug(msg string, fields map[string]interface{}) {}
func (testLogger) Info(msg string, fields map[string]interface{})  {}
func (testLogger) Warn(msg string, fields map[string]interface{})  {}
func (testLogger) Error(msg string, fields map[string]interface{}) {}

type mockHTTPClient struct {
	postFunc func(ctx context.Context, url string, body io.Reader) (interfaces.Response, error)
}

func (m *mockHTTPClient) Get(ctx context.Context, url string) (interfaces.Response, error) {
	return nil, errors.New("not used")
}

func (m *mockHTTPClient) Post(ctx context.Context, url string, body io.Reader) (interfaces.Response, error) {
	if m.postFunc != nil {
		return m.postFunc(ctx, url, body)
	}
	return &mockResponse{statusCode: 204}, nil
}

type mockResponse struct {
	statusCode int
	body       string
}

func (m *mockResponse) StatusCode() int { return m.statusCode }

func (m *mockResponse) Body() io.ReadCloser { return io.NopCloser(strings.NewReader(m.body)) }

func (m *mockResponse) Header(key string) string { return "" }

const webhookConfig = `
webhooks:
  - name: discord
    url: https://discord.example.com/api/webhooks/1
    enabled: true
  - name: disabled-hook
    url: https://discord.example.com/api/webhooks/2
    enabled: false
`

func newWebhookStore(t *testing.T, content string) *config.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	store, err := config.NewStore(path, testLogger{})
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	return store
}

func testRecord() domain.DownloadRecord {
	return domain.DownloadRecord{
		ID:           7,
		Title:        "[Group] Show - 01 [1080p]",
		URL:          "https://example.com/items/1",
		DownloadURL:  "https://example.com/items/1.torrent",
		FeedName:     "anime",
		Downloader:   domain.DownloaderAria2,
		Status:       domain.StatusSuccess,
		Mode:         domain.ModeAutomatic,
		DownloadTime: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSend_DeliversToEnabledHooksOnly(t *testing.T) {
	var posted []string
	client := &mockHTTPClient{
		postFunc: func(ctx context.Context, url string, body io.Reader) (interfaces.Response, error) {
			posted = append(posted, url)
			return &mockResponse{statusCode: 204}, nil
		},
	}

	svc := NewService(newWebhookStore(t, webhookConfig), client, testLogger{})
	svc.Send(context.Background(), testRecord())

	if len(posted) != 1 {
		t.Fatalf("posted to %d endpoints, want 1", len(posted))
	}
	if posted[0] != "https://discord.example.com/api/webhooks/1" {
		t.Errorf("posted to %q, want the enabled hook", posted[0])
	}
}

func TestSend_PayloadIsDiscordEmbed(t *testing.T) {
	var raw []byte
	client := &mockHTTPClient{
		postFunc: func(ctx context.Context, url string, body io.Reader) (interfaces.Response, error) {
			raw, _ = io.ReadAll(body)
			return &mockResponse{statusCode: 204}, nil
		},
	}

	svc := NewService(newWebhookStore(t, webhookConfig), client, testLogger{})
	svc.Send(context.Background(), testRecord())

	var got payload
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if len(got.Embeds) != 1 {
		t.Fatalf("embeds = %d, want 1", len(got.Embeds))
	}
	e := got.Embeds[0]
	if e.Title != "New download: [Group] Show - 01 [1080p]" {
		t.Errorf("embed title = %q", e.Title)
	}
	if e.Color != colorSuccess {
		t.Errorf("embed color = %#x, want success color", e.Color)
	}
	if len(e.Fields) != 4 {
		t.Fatalf("embed fields = %d, want 4", len(e.Fields))
	}
	if e.Fields[0].Value != "anime" {
		t.Errorf("feed field = %q", e.Fields[0].Value)
	}
	if e.Fields[2].Value != "Success" {
		t.Errorf("status field = %q", e.Fields[2].Value)
	}
	if e.Fields[3].Value != "Automatic" {
		t.Errorf("mode field = %q", e.Fields[3].Value)
	}
}

func TestSend_FailureRecordUsesFailureColor(t *testing.T) {
	var raw []byte
	client := &mockHTTPClient{
		postFunc: func(ctx context.Context, url string, body io.Reader) (interfaces.Response, error) {
			raw, _ = io.ReadAll(body)
			return &mockResponse{statusCode: 204}, nil
		},
	}

	record := testRecord()
	record.Status = domain.StatusFailure
	record.Mode = domain.ModeManual

	svc := NewService(newWebhookStore(t, webhookConfig), client, testLogger{})
	svc.Send(context.Background(), record)

	var got payload
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	e := got.Embeds[0]
	if e.Color != colorFailure {
		t.Errorf("embed color = %#x, want failure color", e.Color)
	}
	if e.Fields[2].Value != "Failed" {
		t.Errorf("status field = %q", e.Fields[2].Value)
	}
	if e.Fields[3].Value != "Manual" {
		t.Errorf("mode field = %q", e.Fields[3].Value)
	}
}

func TestSend_DeliveryFailureIsSwallowed(t *testing.T) {
	client := &mockHTTPClient{
		postFunc: func(ctx context.Context, url string, body io.Reader) (interfaces.Response, error) {
			return nil, errors.New("connection refused")
		},
	}

	svc := NewService(newWebhookStore(t, webhookConfig), client, testLogger{})
	// must not panic or propagate
	svc.Send(context.Background(), testRecord())
}

func TestSend_RejectedDeliveryIsSwallowed(t *testing.T) {
	client := &mockHTTPClient{
		postFunc: func(ctx context.Context, url string, body io.Reader) (interfaces.Response, error) {
			return &mockResponse{statusCode: 400, body: "bad payload"}, nil
		},
	}

	svc := NewService(newWebhookStore(t, webhookConfig), client, testLogger{})
	svc.Send(context.Background(), testRecord())
}

func TestSend_NoHooksNoPost(t *testing.T) {
	called := false
	client := &mockHTTPClient{
		postFunc: func(ctx context.Context, url string, body io.Reader) (interfaces.Response, error) {
			called = true
			return &mockResponse{statusCode: 204}, nil
		},
	}

	svc := NewService(newWebhookStore(t, "log:\n  level: info\n"), client, testLogger{})
	svc.Send(context.Background(), testRecord())

	if called {
		t.Error("Send should not post when no webhooks are configured")
	}
}
