package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pingsantohq/statusnotify/pkg/types"
)

// Store maintains in-memory gauges and counters for notifier telemetry.
type Store struct {
	runs                atomic.Uint64
	lastRunUnix         atomic.Int64
	lastRunMillis       atomic.Int64
	lastRunEndpoints    atomic.Int64
	checks              atomic.Uint64
	skipped             atomic.Uint64
	suppressed          atomic.Uint64
	sendFailures        atomic.Uint64
	historyErrors       atomic.Uint64
	readinessState      atomic.Int64
	readinessReason     atomic.Value
	readinessCategories atomic.Value
	readyTransitions    atomic.Uint64
	notReadyTransitions atomic.Uint64
	notified            sync.Map // types.MessageKind -> *atomic.Uint64
	endpointStatus      sync.Map // endpoint name -> types.Status
}

// ReadinessCategory captures a categorized readiness reason with severity.
type ReadinessCategory struct {
	Name     string
	Severity string
}

// NewStore constructs a Store with zeroed metrics.
func NewStore() *Store {
	store := &Store{}
	store.readinessReason.Store("")
	store.readinessCategories.Store([]ReadinessCategory(nil))
	return store
}

// Snapshot captures the current metric values in a plain struct.
type Snapshot struct {
	Runs                uint64
	LastRun             time.Time
	LastRunDuration     time.Duration
	LastRunEndpoints    int64
	ChecksTotal         uint64
	SkippedTotal        uint64
	SuppressedTotal     uint64
	SendFailuresTotal   uint64
	HistoryErrorsTotal  uint64
	Notified            map[types.MessageKind]uint64
	EndpointStatus      map[string]types.Status
	Ready               bool
	ReadyReason         string
	ReadyTransitions    uint64
	NotReadyTransitions uint64
	ReadyCategories     []ReadinessCategory
}

// Snapshot returns a point-in-time copy of the metrics.
func (s *Store) Snapshot() Snapshot {
	readyReason, _ := s.readinessReason.Load().(string)
	rawCategories, _ := s.readinessCategories.Load().([]ReadinessCategory)
	categories := make([]ReadinessCategory, len(rawCategories))
	copy(categories, rawCategories)

	notified := make(map[types.MessageKind]uint64)
	s.notified.Range(func(key, value any) bool {
		kind, ok := key.(types.MessageKind)
		if !ok {
			return true
		}
		if counter, ok := value.(*atomic.Uint64); ok && counter != nil {
			notified[kind] = counter.Load()
		}
		return true
	})
	statuses := make(map[string]types.Status)
	s.endpointStatus.Range(func(key, value any) bool {
		name, _ := key.(string)
		status, _ := value.(types.Status)
		statuses[name] = status
		return true
	})

	var lastRun time.Time
	if unix := s.lastRunUnix.Load(); unix > 0 {
		lastRun = time.Unix(unix, 0).UTC()
	}
	return Snapshot{
		Runs:                s.runs.Load(),
		LastRun:             lastRun,
		LastRunDuration:     time.Duration(s.lastRunMillis.Load()) * time.Millisecond,
		LastRunEndpoints:    s.lastRunEndpoints.Load(),
		ChecksTotal:         s.checks.Load(),
		SkippedTotal:        s.skipped.Load(),
		SuppressedTotal:     s.suppressed.Load(),
		SendFailuresTotal:   s.sendFailures.Load(),
		HistoryErrorsTotal:  s.historyErrors.Load(),
		Notified:            notified,
		EndpointStatus:      statuses,
		Ready:               s.readinessState.Load() == 1,
		ReadyReason:         readyReason,
		ReadyTransitions:    s.readyTransitions.Load(),
		NotReadyTransitions: s.notReadyTransitions.Load(),
		ReadyCategories:     categories,
	}
}

// Record implements events.Recorder.
func (s *Store) Record(event types.Event) {
	switch event.Type {
	case types.EventChecked:
		s.checks.Add(1)
		if event.Endpoint != "" {
			s.endpointStatus.Store(event.Endpoint, event.Status)
		}
	case types.EventSkipped:
		s.skipped.Add(1)
	case types.EventSuppressed:
		s.suppressed.Add(1)
	case types.EventNotified:
		s.notifiedCounter(event.Kind).Add(1)
	case types.EventSendFailed:
		s.sendFailures.Add(1)
	case types.EventHistoryError:
		s.historyErrors.Add(1)
	}
}

// ObserveRun implements RunRecorder.
func (s *Store) ObserveRun(finished time.Time, duration time.Duration, endpoints int) {
	s.runs.Add(1)
	s.lastRunUnix.Store(finished.Unix())
	s.lastRunMillis.Store(duration.Milliseconds())
	s.lastRunEndpoints.Store(int64(endpoints))
}

func (s *Store) notifiedCounter(kind types.MessageKind) *atomic.Uint64 {
	if value, ok := s.notified.Load(kind); ok {
		if counter, ok := value.(*atomic.Uint64); ok && counter != nil {
			return counter
		}
	}
	counter := &atomic.Uint64{}
	actual, _ := s.notified.LoadOrStore(kind, counter)
	if existing, ok := actual.(*atomic.Uint64); ok && existing != nil {
		return existing
	}
	return counter
}

func (s *Store) ObserveReadiness(ready bool, reason string, categories []ReadinessCategory) {
	prev := s.readinessState.Load()
	if ready {
		if prev == 0 {
			s.readyTransitions.Add(1)
		}
		s.readinessState.Store(1)
		s.readinessReason.Store("")
		s.readinessCategories.Store([]ReadinessCategory(nil))
		return
	}
	if prev == 1 {
		s.notReadyTransitions.Add(1)
	}
	s.readinessState.Store(0)
	s.readinessReason.Store(reason)
	s.readinessCategories.Store(dedupeCategories(categories))
}

func dedupeCategories(categories []ReadinessCategory) []ReadinessCategory {
	if len(categories) == 0 {
		return nil
	}
	seen := make(map[ReadinessCategory]struct{}, len(categories))
	result := make([]ReadinessCategory, 0, len(categories))
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		key := ReadinessCategory{Name: name, Severity: normalizeSeverity(c.Severity)}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, key)
	}
	return result
}

func normalizeSeverity(severity string) string {
	severity = strings.TrimSpace(strings.ToLower(severity))
	switch severity {
	case "":
		return "unknown"
	case "warn", "warning":
		return "warning"
	case "critical", "crit":
		return "critical"
	default:
		return severity
	}
}

// statusValue maps a status onto the endpoint gauge: up=1, slow=0.5, down=0, unknown=-1.
// Explicit statuses are matched case-insensitively.
func statusValue(s types.Status) float64 {
	switch types.ParseStatus(string(s)) {
	case types.StatusUp:
		return 1
	case types.StatusSlow:
		return 0.5
	case types.StatusDown:
		return 0
	default:
		return -1
	}
}

// WritePrometheus renders the current metrics using the Prometheus text format.
func (s *Store) WritePrometheus(w io.Writer) error {
	snap := s.Snapshot()
	readyValue := 0
	if snap.Ready {
		readyValue = 1
	}
	reason := snap.ReadyReason
	if reason == "" {
		reason = "ready"
		if !snap.Ready {
			reason = "unknown"
		}
	}
	lastRun := int64(0)
	if !snap.LastRun.IsZero() {
		lastRun = snap.LastRun.Unix()
	}
	lines := []string{
		"# HELP statusnotify_runs_total Completed check passes.",
		"# TYPE statusnotify_runs_total counter",
		fmt.Sprintf("statusnotify_runs_total %d", snap.Runs),
		"# HELP statusnotify_last_run_timestamp_seconds Unix time the most recent pass finished.",
		"# TYPE statusnotify_last_run_timestamp_seconds gauge",
		fmt.Sprintf("statusnotify_last_run_timestamp_seconds %d", lastRun),
		"# HELP statusnotify_last_run_duration_seconds Duration of the most recent pass.",
		"# TYPE statusnotify_last_run_duration_seconds gauge",
		fmt.Sprintf("statusnotify_last_run_duration_seconds %.3f", snap.LastRunDuration.Seconds()),
		"# HELP statusnotify_checks_total Endpoints classified.",
		"# TYPE statusnotify_checks_total counter",
		fmt.Sprintf("statusnotify_checks_total %d", snap.ChecksTotal),
		"# HELP statusnotify_skipped_total Endpoints skipped for missing or invalid input.",
		"# TYPE statusnotify_skipped_total counter",
		fmt.Sprintf("statusnotify_skipped_total %d", snap.SkippedTotal),
		"# HELP statusnotify_suppressed_total Checks that produced no notification.",
		"# TYPE statusnotify_suppressed_total counter",
		fmt.Sprintf("statusnotify_suppressed_total %d", snap.SuppressedTotal),
		"# HELP statusnotify_send_failures_total Notifications that failed to deliver.",
		"# TYPE statusnotify_send_failures_total counter",
		fmt.Sprintf("statusnotify_send_failures_total %d", snap.SendFailuresTotal),
		"# HELP statusnotify_history_errors_total History load or save failures.",
		"# TYPE statusnotify_history_errors_total counter",
		fmt.Sprintf("statusnotify_history_errors_total %d", snap.HistoryErrorsTotal),
		"# HELP statusnotify_notifications_total Delivered notifications by kind.",
		"# TYPE statusnotify_notifications_total counter",
	}
	kinds := make([]string, 0, len(snap.Notified))
	for kind := range snap.Notified {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		lines = append(lines, fmt.Sprintf("statusnotify_notifications_total{kind=%q} %d", kind, snap.Notified[types.MessageKind(kind)]))
	}

	lines = append(lines,
		"# HELP statusnotify_endpoint_status Last classified status (1=up, 0.5=slow, 0=down, -1=unknown).",
		"# TYPE statusnotify_endpoint_status gauge",
	)
	names := make([]string, 0, len(snap.EndpointStatus))
	for name := range snap.EndpointStatus {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		status := snap.EndpointStatus[name]
		lines = append(lines, fmt.Sprintf("statusnotify_endpoint_status{endpoint=%q,status=%q} %g", name, status, statusValue(status)))
	}

	lines = append(lines,
		"# HELP statusnotify_ready Whether the notifier considers itself ready (1=ready).",
		"# TYPE statusnotify_ready gauge",
		fmt.Sprintf("statusnotify_ready %d", readyValue),
		"# HELP statusnotify_ready_info Reason associated with the most recent readiness evaluation.",
		"# TYPE statusnotify_ready_info gauge",
		fmt.Sprintf("statusnotify_ready_info{reason=%q} 1", reason),
		"# HELP statusnotify_ready_transitions_total Count of readiness state transitions by resulting state.",
		"# TYPE statusnotify_ready_transitions_total counter",
		fmt.Sprintf("statusnotify_ready_transitions_total{state=%q} %d", "ready", snap.ReadyTransitions),
		fmt.Sprintf("statusnotify_ready_transitions_total{state=%q} %d", "not_ready", snap.NotReadyTransitions),
		"# HELP statusnotify_ready_categories_info Categories associated with the most recent readiness evaluation.",
		"# TYPE statusnotify_ready_categories_info gauge",
	)
	if len(snap.ReadyCategories) == 0 {
		lines = append(lines, fmt.Sprintf("statusnotify_ready_categories_info{category=%q,severity=%q} 1", "none", "none"))
	} else {
		cats := append([]ReadinessCategory(nil), snap.ReadyCategories...)
		sort.Slice(cats, func(i, j int) bool {
			if cats[i].Name == cats[j].Name {
				return cats[i].Severity < cats[j].Severity
			}
			return cats[i].Name < cats[j].Name
		})
		for _, cat := range cats {
			lines = append(lines, fmt.Sprintf("statusnotify_ready_categories_info{category=%q,severity=%q} 1", cat.Name, cat.Severity))
		}
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// NewHTTPHandler returns an http.Handler that serves Prometheus formatted metrics.
func NewHTTPHandler(store *Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		if r.Method == http.MethodHead {
			return
		}
		if err := store.WritePrometheus(w); err != nil {
			http.Error(w, "metrics unavailable", http.StatusInternalServerError)
		}
	})
}
