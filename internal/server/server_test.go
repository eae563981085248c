package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pingsantohq/statusnotify/internal/health"
	"github.com/pingsantohq/statusnotify/internal/history"
	"github.com/pingsantohq/statusnotify/internal/metrics"
	"github.com/pingsantohq/statusnotify/pkg/types"
)

func TestRouterEndpoints(t *testing.T) {
	dir := t.TempDir()
	store := history.NewStore(filepath.Join(dir, "history.json"))
	if err := store.Save(context.Background(), types.History{
		"API": {Status: types.StatusUp, LastChecked: "2024-03-01T12:00:00Z", ResponseTime: "120", Uptime: "99%"},
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	now := time.Unix(100000, 0)
	ms := metrics.NewStore()
	checker := health.NewChecker(ms, time.Minute)
	router := NewRouter(Dependencies{
		Metrics:   ms,
		Checker:   checker,
		Histories: []*history.Store{store},
		Now:       func() time.Time { return now },
	})

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	if rec := get("/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
	rec := get("/readyz")
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "no check pass completed") {
		t.Fatalf("readyz before run = %d %q", rec.Code, rec.Body.String())
	}
	checker.ObserveRun(health.RunOutcome{Finished: now})
	if rec := get("/readyz"); rec.Code != http.StatusOK {
		t.Fatalf("readyz after run = %d", rec.Code)
	}
	if rec := get("/metrics"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "statusnotify_ready 1") {
		t.Fatalf("metrics = %d %q", rec.Code, rec.Body.String())
	}

	rec = get("/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("history = %d", rec.Code)
	}
	var hist types.History
	if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if hist["API"].Status != types.StatusUp {
		t.Fatalf("unexpected history %+v", hist)
	}

	if rec := get("/history/API"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"responseTime":"120"`) {
		t.Fatalf("history/API = %d %q", rec.Code, rec.Body.String())
	}
	if rec := get("/history/nope"); rec.Code != http.StatusNotFound {
		t.Fatalf("history/nope = %d", rec.Code)
	}
}

func TestRouterReportsCorruptHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	router := NewRouter(Dependencies{Histories: []*history.Store{history.NewStore(path)}})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for corrupt history, got %d", rec.Code)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler(), nil) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve did not stop")
	}
}
