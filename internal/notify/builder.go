package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pingsantohq/statusnotify/pkg/types"
)

const (
	footerRecovery = "Upptime Monitor - Service Recovery"
	footerOutage   = "Upptime Monitor - Service Outage"
	footerChange   = "Upptime Monitor - Status Change"
	footerRoutine  = "Upptime Monitor - Routine Check"
	footerReport   = "Upptime Monitor - Status Report"
	footerAlert    = "Upptime Monitor - Urgent Alert"

	// TimestampLayout is used for the human-readable check time field.
	TimestampLayout = "2006-01-02 15:04:05 MST"
)

// Metrics are the display figures that accompany a check.
type Metrics struct {
	ResponseTime string
	Uptime       string
	CheckedAt    time.Time
}

// Options tune the builder; the zero value renders times in UTC.
type Options struct {
	NotifyOnEveryCheck bool
	Location           *time.Location
	NewID              func() string
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func (o Options) newID() string {
	if o.NewID != nil {
		return o.NewID()
	}
	return uuid.NewString()
}

// Build turns a transition into a platform-neutral message. It returns false when the check is
// a no-op (unchanged and not notifying on every check), independently of ShouldNotify.
func Build(tr types.Transition, ep types.Endpoint, m Metrics, opts Options) (types.Message, bool) {
	kind, ok := KindOf(tr, opts.NotifyOnEveryCheck)
	if !ok {
		return types.Message{}, false
	}

	current := Present(tr.CurrentStatus)
	var description, footer string
	severity := current.Severity

	switch kind {
	case types.KindRecovery:
		description = fmt.Sprintf("🎉 Service recovered! %s is back online", ep.Name)
		footer = footerRecovery
		severity = types.SeveritySuccess
	case types.KindOutage:
		description = fmt.Sprintf("🚨 Service outage! %s is currently unreachable", ep.Name)
		footer = footerOutage
		severity = types.SeverityError
	case types.KindChange:
		footer = footerChange
		switch tr.CurrentStatus {
		case types.StatusUp:
			description = fmt.Sprintf("✅ Status change - %s is now operational", ep.Name)
			severity = types.SeverityInfo
		case types.StatusSlow:
			description = fmt.Sprintf("⚠️ Status change - %s is now responding slowly", ep.Name)
			severity = types.SeverityWarning
		default:
			description = fmt.Sprintf("⚠️ Status change - %s is %s", ep.Name, current.Label)
			severity = types.SeverityWarning
		}
	case types.KindRoutine:
		footer = footerRoutine
		switch tr.CurrentStatus {
		case types.StatusUp:
			description = fmt.Sprintf("📊 Routine check complete - %s is operational", ep.Name)
		case types.StatusSlow:
			description = fmt.Sprintf("📊 Routine check complete - %s is slow but available", ep.Name)
		default:
			description = fmt.Sprintf("📊 Routine check complete - %s is %s", ep.Name, current.Label)
		}
	}

	checkedAt := m.CheckedAt
	if checkedAt.IsZero() {
		checkedAt = time.Now()
	}

	fields := []types.Field{
		{Name: "Current Status", Value: current.Label, Inline: true},
		{Name: "Response Time", Value: m.ResponseTime + "ms", Inline: true},
		{Name: "Uptime", Value: m.Uptime, Inline: true},
		{Name: "Checked At", Value: checkedAt.In(opts.location()).Format(TimestampLayout), Inline: true},
	}
	if tr.HasPrevious() {
		fields = append(fields, types.Field{Name: "Previous Status", Value: Present(tr.PreviousStatus).Label, Inline: true})
	}

	trCopy := tr
	return types.Message{
		ID:          opts.newID(),
		Kind:        kind,
		Title:       fmt.Sprintf("%s %s - %s", current.Emoji, ep.Name, current.Label),
		URL:         ep.URL,
		Description: description,
		Status:      tr.CurrentStatus,
		Severity:    severity,
		Color:       current.Color,
		Footer:      footer,
		Fields:      fields,
		Sites: []types.SiteSnapshot{{
			Name:           ep.Name,
			URL:            ep.URL,
			Status:         tr.CurrentStatus,
			ResponseTime:   m.ResponseTime,
			Uptime:         m.Uptime,
			PreviousStatus: tr.PreviousStatus,
			CheckedAt:      checkedAt,
		}},
		Transition: &trCopy,
		CheckedAt:  checkedAt,
	}, true
}
