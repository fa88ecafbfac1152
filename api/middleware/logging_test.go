package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type capturedLog struct {
	msg    string
	fields map[string]interface{}
}

type recordingLogger struct {
	infos  []capturedLog
	errors []capturedLog
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {}
func (l *recordingLogger) Info(msg string, fields map[string]interface{}) {
	l.infos = append(l.infos, capturedLog{msg, fields})
}
func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {}
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.errors = append(l.errors, capturedLog{msg, fields})
}

func TestRequestLoggingMiddleware_LogsCompletedRequest(t *testing.T) {
	logger := &recordingLogger{}
	middleware := RequestLoggingMiddleware(logger)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest("POST", "/downloads/1/redownload", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Len(t, logger.infos, 1)
	entry := logger.infos[0]
	assert.Equal(t, "Request completed", entry.msg)
	assert.Equal(t, "POST", entry.fields["method"])
	assert.Equal(t, "/downloads/1/redownload", entry.fields["path"])
	assert.Equal(t, http.StatusCreated, entry.fields["status"])
	assert.NotEmpty(t, entry.fields["request_id"])
	assert.Empty(t, logger.errors)
}

func TestRequestLoggingMiddleware_SetsRequestIDHeader(t *testing.T) {
	middleware := RequestLoggingMiddleware(&recordingLogger{})

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/config", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestLoggingMiddleware_LogsServerErrors(t *testing.T) {
	logger := &recordingLogger{}
	middleware := RequestLoggingMiddleware(logger)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/downloads", nil))

	assert.Len(t, logger.errors, 1)
	assert.Equal(t, "Request failed with server error", logger.errors[0].msg)
}

func TestResponseWriter_DefaultsTo200OnWrite(t *testing.T) {
	logger := &recordingLogger{}
	middleware := RequestLoggingMiddleware(logger)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("implicit status"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/downloads", nil))

	assert.Equal(t, http.StatusOK, logger.infos[0].fields["status"])
}
