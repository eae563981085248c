package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func TestWebhookSendPostsRenderedPayload(t *testing.T) {
	var mu sync.Mutex
	var bodies []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type %q", ct)
		}
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(data))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	hook, err := NewWebhook(WebhookConfig{URL: server.URL, Type: "discord"}, Dependencies{HTTPClient: server.Client()})
	if err != nil {
		t.Fatalf("NewWebhook: %v", err)
	}
	if err := hook.Send(context.Background(), outageMessage(t)); err != nil {
		t.Fatalf("Send: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(bodies))
	}
	if !strings.Contains(bodies[0], `"embeds"`) {
		t.Fatalf("expected discord payload, got %s", bodies[0])
	}
}

func TestWebhookSendNon2xx(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("invalid payload\n"))
	}))
	defer server.Close()

	hook, err := NewWebhook(WebhookConfig{URL: server.URL, Type: "slack"}, Dependencies{HTTPClient: server.Client()})
	if err != nil {
		t.Fatalf("NewWebhook: %v", err)
	}
	err = hook.Send(context.Background(), outageMessage(t))
	if err == nil {
		t.Fatalf("expected error")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusBadRequest || statusErr.Body != "invalid payload" {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
	if !strings.Contains(err.Error(), "HTTP 400: invalid payload") {
		t.Fatalf("unexpected error text %q", err.Error())
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected no retry, got %d calls", n)
	}
}

func TestWebhookSendNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	hook, err := NewWebhook(WebhookConfig{URL: url}, Dependencies{})
	if err != nil {
		t.Fatalf("NewWebhook: %v", err)
	}
	if err := hook.Send(context.Background(), outageMessage(t)); err == nil {
		t.Fatalf("expected network error")
	}
}

func TestNewWebhookRequiresURL(t *testing.T) {
	if _, err := NewWebhook(WebhookConfig{Type: "slack"}, Dependencies{}); err == nil {
		t.Fatalf("expected error for missing URL")
	}
}
