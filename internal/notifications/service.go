package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"filmkeep/internal/config"
)

const userAgent = "Filmkeep/0.1.0"

// Service defines the notification surface exposed to the engines.
type Service interface {
	NotifyFilmLoaded(ctx context.Context, filmLabel, cameraName string) error
	NotifyFilmFinished(ctx context.Context, filmLabel, cameraName string) error
	NotifyLoadedChanged(ctx context.Context, loadedCount int) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// NewNoop returns a Service that discards every notification.
func NewNoop() Service {
	return noopService{}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyFilmLoaded(ctx context.Context, filmLabel, cameraName string) error {
	filmLabel = strings.TrimSpace(filmLabel)
	cameraName = strings.TrimSpace(cameraName)
	data := payload{
		title:   "Filmkeep - Film Loaded",
		message: fmt.Sprintf("Loaded %s into %s", filmLabel, cameraName),
		tags:    []string{"filmkeep", "load"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFilmFinished(ctx context.Context, filmLabel, cameraName string) error {
	filmLabel = strings.TrimSpace(filmLabel)
	cameraName = strings.TrimSpace(cameraName)
	data := payload{
		title:   "Filmkeep - Roll Finished",
		message: fmt.Sprintf("Finished %s from %s, ready to develop", filmLabel, cameraName),
		tags:    []string{"filmkeep", "finish"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyLoadedChanged(ctx context.Context, loadedCount int) error {
	data := payload{
		title:   "Filmkeep - Cameras Updated",
		message: fmt.Sprintf("%d film(s) currently loaded", loadedCount),
		tags:    []string{"filmkeep", "loaded"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Filmkeep - Test",
		message:  "Notification system test",
		tags:     []string{"filmkeep", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyFilmLoaded(context.Context, string, string) error   { return nil }
func (noopService) NotifyFilmFinished(context.Context, string, string) error { return nil }
func (noopService) NotifyLoadedChanged(context.Context, int) error           { return nil }
func (noopService) TestNotification(context.Context) error                   { return nil }
