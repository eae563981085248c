package history

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pingsantohq/statusnotify/pkg/types"
)

func newTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	now := time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC)
	clock := &now
	store := NewStore(filepath.Join(t.TempDir(), "status-history.json"), WithNow(func() time.Time { return *clock }))
	return store, clock
}

func detect(t *testing.T, s *Store, key string, status types.Status) types.Transition {
	t.Helper()
	tr, err := s.Detect(context.Background(), key, Observation{Status: status, ResponseTime: "120", Uptime: "99.9%"})
	if err != nil {
		t.Fatalf("Detect(%s, %s): %v", key, status, err)
	}
	return tr
}

func TestDetectFirstCheck(t *testing.T) {
	store, _ := newTestStore(t)
	tr := detect(t, store, "primary-api", types.StatusUp)
	want := types.Transition{Changed: true, CurrentStatus: types.StatusUp}
	if tr != want {
		t.Fatalf("unexpected first transition: %+v", tr)
	}
	if tr.HasPrevious() {
		t.Fatalf("expected no previous status on first check")
	}
}

func TestDetectOutageThenRecovery(t *testing.T) {
	store, _ := newTestStore(t)
	detect(t, store, "primary-api", types.StatusUp)

	tr := detect(t, store, "primary-api", types.StatusDown)
	if !tr.Changed || tr.PreviousStatus != types.StatusUp || !tr.IsOutage || tr.IsRecovery {
		t.Fatalf("expected outage, got %+v", tr)
	}

	tr = detect(t, store, "primary-api", types.StatusUp)
	if !tr.Changed || tr.PreviousStatus != types.StatusDown || !tr.IsRecovery || tr.IsOutage {
		t.Fatalf("expected recovery, got %+v", tr)
	}
}

func TestDetectUnchanged(t *testing.T) {
	store, _ := newTestStore(t)
	detect(t, store, "primary-api", types.StatusUp)
	tr := detect(t, store, "primary-api", types.StatusUp)
	if tr.Changed || tr.IsOutage || tr.IsRecovery || tr.PreviousStatus != types.StatusUp {
		t.Fatalf("expected unchanged transition, got %+v", tr)
	}
}

func TestDetectSlowTransitionsAreNeitherRecoveryNorOutage(t *testing.T) {
	seq := []types.Status{types.StatusUp, types.StatusSlow, types.StatusDown, types.StatusSlow, types.StatusUp}
	store, _ := newTestStore(t)
	detect(t, store, "api", seq[0])
	for i := 1; i < len(seq); i++ {
		tr := detect(t, store, "api", seq[i])
		if !tr.Changed {
			t.Fatalf("step %d: expected change", i)
		}
		if tr.IsRecovery || tr.IsOutage {
			t.Fatalf("step %d: slow transition flagged %+v", i, tr)
		}
	}
}

func TestDetectThreadsPreviousStatus(t *testing.T) {
	seq := []types.Status{
		types.StatusUp, types.StatusUp, types.StatusDown, types.StatusSlow,
		types.StatusUnknown, types.StatusDown, types.StatusUp, types.StatusUp,
	}
	store, _ := newTestStore(t)
	var prev types.Status
	for i, status := range seq {
		tr := detect(t, store, "api", status)
		if tr.PreviousStatus != prev {
			t.Fatalf("call %d: previous %q, want %q", i, tr.PreviousStatus, prev)
		}
		if tr.Changed != (prev != status) {
			t.Fatalf("call %d: changed=%t for %q -> %q", i, tr.Changed, prev, status)
		}
		if tr.IsRecovery != (prev == types.StatusDown && status == types.StatusUp) {
			t.Fatalf("call %d: recovery flag wrong %+v", i, tr)
		}
		if tr.IsOutage != (prev == types.StatusUp && status == types.StatusDown) {
			t.Fatalf("call %d: outage flag wrong %+v", i, tr)
		}
		prev = status
	}
}

func TestDetectKeysAreIndependent(t *testing.T) {
	store, _ := newTestStore(t)
	detect(t, store, "a", types.StatusDown)
	tr := detect(t, store, "b", types.StatusUp)
	if tr.HasPrevious() || !tr.Changed {
		t.Fatalf("expected first check for b, got %+v", tr)
	}
	tr = detect(t, store, "a", types.StatusUp)
	if !tr.IsRecovery {
		t.Fatalf("expected recovery for a, got %+v", tr)
	}
}

func TestDetectOverwritesRecord(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Detect(ctx, "api", Observation{Status: types.StatusUp, ResponseTime: "120", Uptime: "99.9%"}); err != nil {
		t.Fatalf("Detect: %v", err)
	}
	*clock = clock.Add(5 * time.Minute)
	checked := time.Date(2025, 10, 1, 8, 4, 0, 0, time.UTC)
	if _, err := store.Detect(ctx, "api", Observation{Status: types.StatusUp, ResponseTime: "95", Uptime: "99.8%", CheckedAt: checked}); err != nil {
		t.Fatalf("Detect: %v", err)
	}

	hist, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("expected one record, got %d", len(hist))
	}
	rec := hist["api"]
	if rec.ResponseTime != "95" || rec.Uptime != "99.8%" || rec.Status != types.StatusUp {
		t.Fatalf("record not overwritten: %+v", rec)
	}
	if rec.Timestamp != clock.UnixMilli() {
		t.Fatalf("unexpected timestamp %d", rec.Timestamp)
	}
	if rec.LastChecked != "2025-10-01T08:04:00Z" {
		t.Fatalf("unexpected lastChecked %q", rec.LastChecked)
	}
}

func TestHistoryFileShape(t *testing.T) {
	store, _ := newTestStore(t)
	detect(t, store, "primary-api", types.StatusSlow)

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	rec := raw["primary-api"]
	for _, key := range []string{"status", "lastChecked", "responseTime", "uptime", "timestamp"} {
		if _, ok := rec[key]; !ok {
			t.Fatalf("history record missing %q: %v", key, rec)
		}
	}
	if rec["status"] != "slow" {
		t.Fatalf("unexpected stored status %v", rec["status"])
	}
}

func TestDetectCorruptHistoryStartsFresh(t *testing.T) {
	store, _ := newTestStore(t)
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt history: %v", err)
	}

	tr, err := store.Detect(context.Background(), "api", Observation{Status: types.StatusDown})
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if !tr.Changed || tr.HasPrevious() || tr.IsOutage {
		t.Fatalf("expected fresh baseline transition, got %+v", tr)
	}

	hist, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("history should be rewritten cleanly: %v", err)
	}
	if hist["api"].Status != types.StatusDown {
		t.Fatalf("unexpected history after recovery: %+v", hist)
	}
}

func TestLoadMissingAndEmpty(t *testing.T) {
	store, _ := newTestStore(t)
	hist, err := store.Load(context.Background())
	if err != nil || len(hist) != 0 {
		t.Fatalf("expected empty history for missing file, got %v %v", hist, err)
	}
	if err := os.WriteFile(store.Path(), []byte("  \n"), 0o644); err != nil {
		t.Fatalf("write empty history: %v", err)
	}
	hist, err = store.Load(context.Background())
	if err != nil || len(hist) != 0 {
		t.Fatalf("expected empty history for blank file, got %v %v", hist, err)
	}
}

func TestDetectSaveFailureStillReturnsTransition(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	store := NewStore(filepath.Join(blocker, "status-history.json"))

	tr, err := store.Detect(context.Background(), "api", Observation{Status: types.StatusUp})
	if err == nil {
		t.Fatalf("expected save error when parent is a file")
	}
	if !tr.Changed || tr.CurrentStatus != types.StatusUp {
		t.Fatalf("expected transition despite save failure, got %+v", tr)
	}
}

func TestCompare(t *testing.T) {
	if tr := Compare("", types.StatusDown); !tr.Changed || tr.IsOutage {
		t.Fatalf("first-ever down must not be an outage: %+v", tr)
	}
	if tr := Compare(types.StatusDown, types.StatusDown); tr.Changed {
		t.Fatalf("expected no change: %+v", tr)
	}
}
