package health

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pingsantohq/statusnotify/internal/metrics"
)

const defaultRunStale = 15 * time.Minute

const (
	categoryRunPending   = "RUN_PENDING"
	categoryRunStale     = "RUN_STALE"
	categoryHistoryError = "HISTORY_ERROR"
	categorySendFailing  = "SEND_FAILING"
)

const (
	severityInfo     = "info"
	severityWarning  = "warning"
	severityCritical = "critical"
)

// RunOutcome summarizes one completed check pass.
type RunOutcome struct {
	Finished      time.Time
	SendFailures  int
	HistoryErrors int
}

// Checker evaluates readiness of the watch loop.
type Checker struct {
	metrics    *metrics.Store
	staleAfter time.Duration

	mu   sync.RWMutex
	last RunOutcome
}

// NewChecker constructs a readiness checker bound to the provided metrics store. staleAfter
// should exceed the schedule interval.
func NewChecker(store *metrics.Store, staleAfter time.Duration) *Checker {
	if staleAfter <= 0 {
		staleAfter = defaultRunStale
	}
	return &Checker{
		metrics:    store,
		staleAfter: staleAfter,
	}
}

// ObserveRun records the outcome of a check pass.
func (c *Checker) ObserveRun(outcome RunOutcome) {
	c.mu.Lock()
	c.last = outcome
	c.mu.Unlock()
}

// Ready evaluates all readiness conditions and returns the overall status and reasons for failure.
func (c *Checker) Ready(now time.Time) (bool, []string) {
	reasons := make([]string, 0, 3)
	categories := make([]metrics.ReadinessCategory, 0, 3)
	appendCategory := func(name, severity string) {
		categories = append(categories, metrics.ReadinessCategory{
			Name:     name,
			Severity: severity,
		})
	}

	c.mu.RLock()
	last := c.last
	staleAfter := c.staleAfter
	c.mu.RUnlock()

	if last.Finished.IsZero() {
		reasons = append(reasons, "no check pass completed")
		appendCategory(categoryRunPending, severityInfo)
	} else {
		if age := now.Sub(last.Finished); age > staleAfter {
			reasons = append(reasons, fmt.Sprintf("last check pass stale (%s)", age.Round(time.Second)))
			appendCategory(categoryRunStale, severityWarning)
		}
		if last.HistoryErrors > 0 {
			reasons = append(reasons, fmt.Sprintf("history file errors: %d", last.HistoryErrors))
			appendCategory(categoryHistoryError, severityCritical)
		}
		if last.SendFailures > 0 {
			reasons = append(reasons, fmt.Sprintf("notification sends failing: %d", last.SendFailures))
			appendCategory(categorySendFailing, severityWarning)
		}
	}

	ready := len(reasons) == 0
	if c.metrics != nil {
		if ready {
			c.metrics.ObserveReadiness(true, "", nil)
		} else {
			c.metrics.ObserveReadiness(false, strings.Join(reasons, "; "), categories)
		}
	}
	if !ready {
		return false, reasons
	}
	return true, nil
}
