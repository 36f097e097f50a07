package announcer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const webhookAnnouncePath = "/announcements"

type Option func(*webhookAnnouncer)

type Service interface {
	Announce(ctx context.Context, a Announcement) error
}

// Announcement describes one resolved notification.
type Announcement struct {
	Message   string `json:"message"`
	URL       string `json:"url,omitempty"`
	PostID    string `json:"post_id,omitempty"`
	CommentID string `json:"comment_id,omitempty"`
	Excerpt   string `json:"excerpt,omitempty"`
}

func WithWebhookURL(webhookURL string) Option {
	return func(w *webhookAnnouncer) {
		w.baseURL = strings.TrimSpace(webhookURL)
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(w *webhookAnnouncer) {
		if client != nil {
			w.client = client
		}
	}
}

type webhookAnnouncer struct {
	baseURL string
	client  *http.Client
}

func New(opts ...Option) *webhookAnnouncer {
	announcer := &webhookAnnouncer{
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(announcer)
	}
	return announcer
}

// Enabled reports whether a webhook URL is configured.
func (w *webhookAnnouncer) Enabled() bool {
	return w.baseURL != ""
}

func (w *webhookAnnouncer) Announce(ctx context.Context, a Announcement) error {
	if w.baseURL == "" {
		return nil
	}
	baseURL := strings.TrimRight(w.baseURL, "/")
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+webhookAnnouncePath, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("reporting webhook returned status %s", resp.Status)
	}
	return nil
}

// Resolved builds the announcement for a notification that led to a thread.
func Resolved(subject, url, postID, commentID, excerpt string) Announcement {
	target := "post " + postID
	if commentID != "" {
		target = "comment " + commentID + " on post " + postID
	}
	return Announcement{
		Message:   fmt.Sprintf("F5Bot match %q resolved to %s", subject, target),
		URL:       url,
		PostID:    postID,
		CommentID: commentID,
		Excerpt:   truncate(excerpt, 280),
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
