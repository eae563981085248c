package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/pingsantohq/statusnotify/internal/logging"
	"github.com/pingsantohq/statusnotify/pkg/types"
)

// UserAgent identifies outbound requests.
const UserAgent = "statusnotify/0.1.0"

const maxErrorBody = 4 << 10

// Sender delivers a message to a notification channel.
type Sender interface {
	Send(ctx context.Context, msg types.Message) error
}

// StatusError reports a non-2xx response from a notification endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// WebhookConfig holds the static configuration for a Webhook.
type WebhookConfig struct {
	URL  string
	Type string
}

// Dependencies allow test overrides for the HTTP client and logging.
type Dependencies struct {
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Webhook posts rendered messages to an incoming-webhook URL.
type Webhook struct {
	httpClient *http.Client
	url        string
	renderer   Renderer
	logger     *log.Logger
}

// NewWebhook builds a webhook sender. A nil HTTP client uses http.DefaultClient.
func NewWebhook(cfg WebhookConfig, deps Dependencies) (*Webhook, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("webhook URL is required")
	}
	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Webhook{
		httpClient: httpClient,
		url:        cfg.URL,
		renderer:   RendererFor(cfg.Type),
		logger:     logging.OrDiscard(deps.Logger),
	}, nil
}

// Renderer reports the payload shape the webhook sends.
func (w *Webhook) Renderer() Renderer {
	return w.renderer
}

// Send renders msg and issues a single POST. There is no retry.
func (w *Webhook) Send(ctx context.Context, msg types.Message) error {
	payload, err := w.renderer.Render(msg)
	if err != nil {
		return err
	}
	if err := postJSON(ctx, w.httpClient, w.url, nil, payload); err != nil {
		return fmt.Errorf("send %s webhook: %w", w.renderer.Name(), err)
	}
	w.logger.Printf("webhook delivered kind=%s type=%s", msg.Kind, w.renderer.Name())
	return nil
}

func postJSON(ctx context.Context, client *http.Client, url string, header http.Header, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	return do(client, req, nil)
}

// do executes req. Non-2xx responses become a StatusError; otherwise the body is copied to out.
func do(client *http.Client, req *http.Request, out io.Writer) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		out = io.Discard
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	return nil
}

var _ Sender = (*Webhook)(nil)
