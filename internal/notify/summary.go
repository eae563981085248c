package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/pingsantohq/statusnotify/pkg/types"
)

// Counts tallies endpoints per state.
type Counts struct {
	Up, Slow, Down, Unknown int
}

func Tally(sites []types.SiteSnapshot) Counts {
	var c Counts
	for _, s := range sites {
		switch s.Status {
		case types.StatusUp:
			c.Up++
		case types.StatusSlow:
			c.Slow++
		case types.StatusDown:
			c.Down++
		default:
			c.Unknown++
		}
	}
	return c
}

// Summarize builds the overall status report covering every checked endpoint.
func Summarize(sites []types.SiteSnapshot, now time.Time, opts Options) types.Message {
	counts := Tally(sites)

	var title, overall string
	var status types.Status
	switch {
	case counts.Down > 0:
		title, overall, status = "🚨 Service disruption", "🔴 Some services are down", types.StatusDown
	case counts.Slow > 0:
		title, overall, status = "⚠️ Service degraded", "🟡 Some services are slow", types.StatusSlow
	default:
		title, overall, status = "✅ All services operational", "🟢 All services operational", types.StatusUp
	}
	p := Present(status)

	fields := make([]types.Field, 0, len(sites)+1)
	for _, s := range sites {
		sp := Present(s.Status)
		fields = append(fields, types.Field{
			Name: s.Name,
			Value: fmt.Sprintf("**Status**: %s %s\n**Response Time**: %sms\n**Uptime**: %s",
				sp.Emoji, sp.Label, s.ResponseTime, s.Uptime),
			Inline: true,
		})
	}
	countLine := fmt.Sprintf("🟢 Up: %d\n🟡 Slow: %d\n🔴 Down: %d", counts.Up, counts.Slow, counts.Down)
	if counts.Unknown > 0 {
		countLine += fmt.Sprintf("\n⚪ Unknown: %d", counts.Unknown)
	}
	fields = append(fields, types.Field{Name: "📊 Summary", Value: countLine})

	return types.Message{
		ID:    opts.newID(),
		Kind:  types.KindSummary,
		Title: title,
		Description: fmt.Sprintf("**Overall**: %s\n**Checked At**: %s",
			overall, now.In(opts.location()).Format(TimestampLayout)),
		Status:    status,
		Severity:  p.Severity,
		Color:     p.Color,
		Footer:    footerReport,
		Fields:    fields,
		Sites:     append([]types.SiteSnapshot(nil), sites...),
		CheckedAt: now,
	}
}

// Alert builds the urgent follow-up listing down endpoints. It returns false when none are down.
func Alert(sites []types.SiteSnapshot, now time.Time, opts Options) (types.Message, bool) {
	var down []types.SiteSnapshot
	for _, s := range sites {
		if s.Status == types.StatusDown {
			down = append(down, s)
		}
	}
	if len(down) == 0 {
		return types.Message{}, false
	}

	p := Present(types.StatusDown)
	fields := make([]types.Field, 0, len(down))
	names := make([]string, 0, len(down))
	for _, s := range down {
		names = append(names, s.Name)
		fields = append(fields, types.Field{
			Name:   fmt.Sprintf("%s %s", p.Emoji, s.Name),
			Value:  fmt.Sprintf("Status: %s\nResponse Time: %sms", p.Label, s.ResponseTime),
			Inline: true,
		})
	}
	return types.Message{
		ID:          opts.newID(),
		Kind:        types.KindAlert,
		Title:       "🚨 Urgent alert",
		Description: fmt.Sprintf("Service outage detected, check immediately: %s", strings.Join(names, ", ")),
		Status:      types.StatusDown,
		Severity:    types.SeverityError,
		Color:       p.Color,
		Footer:      footerAlert,
		Fields:      fields,
		Sites:       down,
		CheckedAt:   now,
	}, true
}
