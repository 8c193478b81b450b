package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"filmkeep/internal/config"
	"filmkeep/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyFilmLoaded(context.Background(), "Portra 400 35mm", "Nikon FM2"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceSendsHeaders(t *testing.T) {
	type captured struct {
		title   string
		tags    string
		body    string
		agent   string
		method  string
		hasBody bool
	}
	var got captured

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = captured{
			title:   r.Header.Get("Title"),
			tags:    r.Header.Get("Tags"),
			body:    string(body),
			agent:   r.Header.Get("User-Agent"),
			method:  r.Method,
			hasBody: len(body) > 0,
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyFilmFinished(context.Background(), "Tri-X 400 35mm", "Leica M6"); err != nil {
		t.Fatalf("NotifyFilmFinished: %v", err)
	}

	if got.method != http.MethodPost {
		t.Errorf("method = %s", got.method)
	}
	if got.title != "Filmkeep - Roll Finished" {
		t.Errorf("title = %q", got.title)
	}
	if got.tags != "filmkeep,finish" {
		t.Errorf("tags = %q", got.tags)
	}
	if got.body != "Finished Tri-X 400 35mm from Leica M6, ready to develop" {
		t.Errorf("body = %q", got.body)
	}
	if got.agent == "" {
		t.Error("user agent header missing")
	}
}

func TestNtfyServiceReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic rejected", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error from 403 response")
	}
}
