package downloader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"rss-downloader-api/core/domain"
	coreerrors "rss-downloader-api/core/errors"
)

func TestNewQBittorrentClient_LoginSetsCookie(t *testing.T) {
	loggedIn := false
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("username") != "admin" || r.FormValue("password") != "pass" {
			w.Write([]byte("Fails."))
			return
		}
		loggedIn = true
		// qBittorrent scopes the session cookie to the whole WebUI
		http.SetCookie(w, &http.Cookie{Name: "SID", Value: "session123", Path: "/"})
		w.Write([]byte("Ok."))
	})
	mux.HandleFunc("/api/v2/torrents/add", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("SID")
		if err != nil || cookie.Value != "session123" {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("Forbidden"))
			return
		}
		w.Write([]byte("Ok."))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewQBittorrentClient(context.Background(), domain.QBittorrentConfig{
		Host:     server.URL,
		Username: "admin",
		Password: "pass",
	}, testLogger{})
	if err != nil {
		t.Fatalf("NewQBittorrentClient returned error: %v", err)
	}
	if !loggedIn {
		t.Fatal("construction should log in when credentials are configured")
	}

	// the session cookie from login must ride along on later calls
	if err := client.AddLink(context.Background(), "magnet:?xt=urn:btih:abc"); err != nil {
		t.Errorf("AddLink returned error: %v", err)
	}
}

func TestNewQBittorrentClient_LoginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Fails."))
	}))
	defer server.Close()

	_, err := NewQBittorrentClient(context.Background(), domain.QBittorrentConfig{
		Host:     server.URL,
		Username: "admin",
		Password: "wrong",
	}, testLogger{})
	if err == nil {
		t.Fatal("a rejected login must fail construction")
	}
	if !coreerrors.IsDownloader(err) {
		t.Errorf("error should be a DownloaderError, got %T", err)
	}
}

func TestNewQBittorrentClient_NoCredentialsSkipsLogin(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	_, err := NewQBittorrentClient(context.Background(), domain.QBittorrentConfig{
		Host: server.URL,
	}, testLogger{})
	if err != nil {
		t.Fatalf("construction without credentials should succeed: %v", err)
	}
	if called {
		t.Error("no login request should be sent without credentials")
	}
}

func TestQBittorrentAddLink_NonOkBodyIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Fails."))
	}))
	defer server.Close()

	client, err := NewQBittorrentClient(context.Background(), domain.QBittorrentConfig{
		Host: server.URL,
	}, testLogger{})
	if err != nil {
		t.Fatalf("NewQBittorrentClient returned error: %v", err)
	}

	err = client.AddLink(context.Background(), "magnet:?xt=urn:btih:abc")
	if err == nil {
		t.Fatal("a body other than Ok. should be a dispatch failure")
	}
	var dlErr *coreerrors.DownloaderError
	if !errors.As(err, &dlErr) {
		t.Fatalf("error should be a DownloaderError, got %T", err)
	}
	if dlErr.Transport {
		t.Error("a rejection body is not a transport failure")
	}
}

func TestQBittorrentVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/app/version" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte("v4.6.3\n"))
	}))
	defer server.Close()

	client, err := NewQBittorrentClient(context.Background(), domain.QBittorrentConfig{
		Host: server.URL,
	}, testLogger{})
	if err != nil {
		t.Fatalf("NewQBittorrentClient returned error: %v", err)
	}

	version, err := client.Version(context.Background())
	if err != nil {
		t.Fatalf("Version returned error: %v", err)
	}
	if version != "v4.6.3" {
		t.Errorf("version = %q, want v4.6.3", version)
	}
}
