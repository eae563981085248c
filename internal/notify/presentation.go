package notify

import "github.com/pingsantohq/statusnotify/pkg/types"

// Presentation is how a status is shown to humans.
type Presentation struct {
	Emoji      string
	Label      string
	Short      string
	Color      int
	SlackColor string
	Severity   types.Severity
}

var presentations = map[types.Status]Presentation{
	types.StatusUp: {
		Emoji: "🟢", Label: "Operational", Short: "Up",
		Color: 0x00ff00, SlackColor: "good", Severity: types.SeverityInfo,
	},
	types.StatusSlow: {
		Emoji: "🟡", Label: "Slow", Short: "Slow",
		Color: 0xffa500, SlackColor: "warning", Severity: types.SeverityWarning,
	},
	types.StatusDown: {
		Emoji: "🔴", Label: "Down", Short: "Down",
		Color: 0xff0000, SlackColor: "danger", Severity: types.SeverityError,
	},
}

var unknownPresentation = Presentation{
	Emoji: "⚪", Label: "Unknown", Short: "Unknown",
	Color: 0x9e9e9e, SlackColor: "#9e9e9e", Severity: types.SeverityWarning,
}

// Present returns the presentation for s; unrecognized statuses render as unknown.
func Present(s types.Status) Presentation {
	if !s.Known() {
		return unknownPresentation
	}
	return presentations[s]
}
