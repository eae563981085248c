package history

import (
	"context"
	"errors"
	"time"

	"github.com/pingsantohq/statusnotify/pkg/types"
)

// Observation is the freshly classified state of one endpoint.
type Observation struct {
	Status       types.Status
	ResponseTime string
	Uptime       string
	// CheckedAt defaults to the store clock when zero.
	CheckedAt time.Time
}

// Compare computes the transition from previous (empty when unknown) to current.
// Only direct up/down moves count as recovery or outage.
func Compare(previous, current types.Status) types.Transition {
	return types.Transition{
		Changed:        previous != current,
		PreviousStatus: previous,
		CurrentStatus:  current,
		IsRecovery:     previous == types.StatusDown && current == types.StatusUp,
		IsOutage:       previous == types.StatusUp && current == types.StatusDown,
	}
}

// Detect compares obs with the endpoint's stored record, then overwrites the record and
// persists the mapping whether or not anything changed.
//
// The transition is always valid. The returned error reports a corrupt history file (the
// check proceeds against an empty baseline) or a failed save; both are joined when both occur.
func (s *Store) Detect(ctx context.Context, key string, obs Observation) (types.Transition, error) {
	hist, loadErr := s.Load(ctx)

	var previous types.Status
	if rec, ok := hist[key]; ok {
		previous = rec.Status
	}
	tr := Compare(previous, obs.Status)

	now := s.now()
	checkedAt := obs.CheckedAt
	if checkedAt.IsZero() {
		checkedAt = now
	}
	hist[key] = types.HistoryRecord{
		Status:       obs.Status,
		LastChecked:  checkedAt.UTC().Format(time.RFC3339Nano),
		ResponseTime: obs.ResponseTime,
		Uptime:       obs.Uptime,
		Timestamp:    now.UnixMilli(),
	}

	saveErr := s.Save(ctx, hist)
	return tr, errors.Join(loadErr, saveErr)
}
