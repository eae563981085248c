package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pingsantohq/statusnotify/internal/health"
	"github.com/pingsantohq/statusnotify/internal/history"
	"github.com/pingsantohq/statusnotify/internal/logging"
	"github.com/pingsantohq/statusnotify/internal/metrics"
	"github.com/pingsantohq/statusnotify/pkg/types"
)

// Dependencies wire the monitoring endpoints. Checker and Histories may be nil.
type Dependencies struct {
	Metrics   *metrics.Store
	Checker   *health.Checker
	Histories []*history.Store
	Now       func() time.Time
}

// NewRouter serves /metrics, /healthz, /readyz and the read-only history views.
func NewRouter(deps Dependencies) http.Handler {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	if deps.Metrics != nil {
		r.Handle("/metrics", metrics.NewHTTPHandler(deps.Metrics))
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Checker == nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		ready, reasons := deps.Checker.Ready(now().UTC())
		if !ready {
			http.Error(w, strings.Join(reasons, "; "), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/history", func(w http.ResponseWriter, r *http.Request) {
		merged, err := loadHistories(r.Context(), deps.Histories)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, merged)
	})
	r.Get("/history/{endpoint}", func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "endpoint")
		merged, err := loadHistories(r.Context(), deps.Histories)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		rec, ok := merged[name]
		if !ok {
			http.Error(w, "endpoint not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})
	return r
}

// loadHistories merges every history file. A corrupt file is reported rather than shown empty.
func loadHistories(ctx context.Context, stores []*history.Store) (types.History, error) {
	merged := make(types.History)
	for _, s := range stores {
		hist, err := s.Load(ctx)
		if err != nil {
			return nil, err
		}
		for name, rec := range hist {
			merged[name] = rec
		}
	}
	return merged, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Serve runs handler on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *log.Logger) error {
	logger = logging.OrDiscard(logger)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("monitoring listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
