package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/pingsantohq/statusnotify/pkg/types"
)

var testEndpoint = types.Endpoint{Name: "API", URL: "https://api.example.com"}

func fixedOptions(notifyEvery bool) Options {
	return Options{NotifyOnEveryCheck: notifyEvery, NewID: func() string { return "id-1" }}
}

func TestShouldNotify(t *testing.T) {
	if ShouldNotify(types.Transition{Changed: false}, false) {
		t.Fatalf("expected no notification for unchanged status")
	}
	if !ShouldNotify(types.Transition{Changed: false}, true) {
		t.Fatalf("expected notification when notifying on every check")
	}
	if !ShouldNotify(types.Transition{Changed: true}, false) {
		t.Fatalf("expected notification on change")
	}
}

func TestBuildVariants(t *testing.T) {
	tests := []struct {
		name     string
		tr       types.Transition
		kind     types.MessageKind
		severity types.Severity
		footer   string
	}{
		{
			name:     "recovery",
			tr:       types.Transition{Changed: true, PreviousStatus: types.StatusDown, CurrentStatus: types.StatusUp, IsRecovery: true},
			kind:     types.KindRecovery,
			severity: types.SeveritySuccess,
			footer:   footerRecovery,
		},
		{
			name:     "outage",
			tr:       types.Transition{Changed: true, PreviousStatus: types.StatusUp, CurrentStatus: types.StatusDown, IsOutage: true},
			kind:     types.KindOutage,
			severity: types.SeverityError,
			footer:   footerOutage,
		},
		{
			name:     "change to slow",
			tr:       types.Transition{Changed: true, PreviousStatus: types.StatusUp, CurrentStatus: types.StatusSlow},
			kind:     types.KindChange,
			severity: types.SeverityWarning,
			footer:   footerChange,
		},
		{
			name:     "change to up",
			tr:       types.Transition{Changed: true, PreviousStatus: types.StatusSlow, CurrentStatus: types.StatusUp},
			kind:     types.KindChange,
			severity: types.SeverityInfo,
			footer:   footerChange,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg, ok := Build(tc.tr, testEndpoint, Metrics{ResponseTime: "120", Uptime: "99.9%"}, fixedOptions(false))
			if !ok {
				t.Fatalf("expected a message")
			}
			if msg.Kind != tc.kind {
				t.Fatalf("kind = %s, want %s", msg.Kind, tc.kind)
			}
			if msg.Severity != tc.severity {
				t.Fatalf("severity = %s, want %s", msg.Severity, tc.severity)
			}
			if msg.Footer != tc.footer {
				t.Fatalf("footer = %q, want %q", msg.Footer, tc.footer)
			}
			if msg.ID != "id-1" {
				t.Fatalf("unexpected id %q", msg.ID)
			}
			if msg.URL != testEndpoint.URL || !strings.Contains(msg.Title, testEndpoint.Name) {
				t.Fatalf("message does not identify endpoint: %+v", msg)
			}
			if msg.Transition == nil || *msg.Transition != tc.tr {
				t.Fatalf("transition not carried: %+v", msg.Transition)
			}
		})
	}
}

func TestBuildUnchangedWithoutEveryCheck(t *testing.T) {
	tr := types.Transition{PreviousStatus: types.StatusUp, CurrentStatus: types.StatusUp}
	if _, ok := Build(tr, testEndpoint, Metrics{}, fixedOptions(false)); ok {
		t.Fatalf("expected no message for unchanged status")
	}
}

func TestBuildRoutine(t *testing.T) {
	tr := types.Transition{PreviousStatus: types.StatusSlow, CurrentStatus: types.StatusSlow}
	msg, ok := Build(tr, testEndpoint, Metrics{ResponseTime: "4000", Uptime: "97%"}, fixedOptions(true))
	if !ok {
		t.Fatalf("expected routine message")
	}
	if msg.Kind != types.KindRoutine {
		t.Fatalf("kind = %s, want routine", msg.Kind)
	}
	if msg.Severity != types.SeverityWarning {
		t.Fatalf("severity = %s, want warning", msg.Severity)
	}
	if msg.Color != 0xffa500 {
		t.Fatalf("color = %#x", msg.Color)
	}
}

func TestBuildFields(t *testing.T) {
	checked := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	loc := time.FixedZone("EST", -5*3600)
	tr := types.Transition{Changed: true, PreviousStatus: types.StatusUp, CurrentStatus: types.StatusDown, IsOutage: true}

	msg, _ := Build(tr, testEndpoint, Metrics{ResponseTime: "0", Uptime: "80%", CheckedAt: checked},
		Options{Location: loc})

	values := map[string]string{}
	for _, f := range msg.Fields {
		values[f.Name] = f.Value
	}
	if values["Current Status"] != "Down" {
		t.Fatalf("current status field = %q", values["Current Status"])
	}
	if values["Previous Status"] != "Operational" {
		t.Fatalf("previous status field = %q", values["Previous Status"])
	}
	if values["Response Time"] != "0ms" || values["Uptime"] != "80%" {
		t.Fatalf("unexpected metric fields: %v", values)
	}
	if values["Checked At"] != "2024-03-01 07:00:00 EST" {
		t.Fatalf("checked at = %q", values["Checked At"])
	}
	if msg.ID == "" {
		t.Fatalf("expected generated id")
	}
	if len(msg.Sites) != 1 || msg.Sites[0].PreviousStatus != types.StatusUp {
		t.Fatalf("unexpected site snapshot: %+v", msg.Sites)
	}
}

func TestBuildFirstCheckOmitsPrevious(t *testing.T) {
	tr := types.Transition{Changed: true, CurrentStatus: types.StatusUp}
	msg, ok := Build(tr, testEndpoint, Metrics{}, fixedOptions(false))
	if !ok {
		t.Fatalf("expected message")
	}
	for _, f := range msg.Fields {
		if f.Name == "Previous Status" {
			t.Fatalf("unexpected previous status field")
		}
	}
}

func TestPresentUnknown(t *testing.T) {
	p := Present(types.Status("Maintenance"))
	if p.Label != "Unknown" || p.Emoji != "⚪" || p.Color != 0x9e9e9e {
		t.Fatalf("unexpected presentation %+v", p)
	}
	if Present(types.StatusDown).SlackColor != "danger" {
		t.Fatalf("expected danger for down")
	}
	if p := Present(types.StatusUnknown); p.Label != "Unknown" || p.Severity != types.SeverityWarning {
		t.Fatalf("unexpected presentation for unknown %+v", p)
	}
	if p := Present(types.Status("UP")); p.Label != "Unknown" {
		t.Fatalf("presentation is exact-match, got %+v", p)
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sites := []types.SiteSnapshot{
		{Name: "a", Status: types.StatusUp, ResponseTime: "100", Uptime: "100%"},
		{Name: "b", Status: types.StatusSlow, ResponseTime: "9000", Uptime: "99%"},
	}

	msg := Summarize(sites, now, fixedOptions(false))
	if msg.Kind != types.KindSummary || msg.Status != types.StatusSlow {
		t.Fatalf("unexpected summary %+v", msg)
	}
	if !strings.Contains(msg.Title, "degraded") {
		t.Fatalf("title = %q", msg.Title)
	}
	if len(msg.Fields) != 3 {
		t.Fatalf("expected per-site fields plus counts, got %d", len(msg.Fields))
	}
	if !strings.Contains(msg.Fields[2].Value, "Slow: 1") {
		t.Fatalf("counts field = %q", msg.Fields[2].Value)
	}

	sites = append(sites, types.SiteSnapshot{Name: "c", Status: types.StatusDown})
	if got := Summarize(sites, now, fixedOptions(false)); got.Status != types.StatusDown || !strings.Contains(got.Title, "disruption") {
		t.Fatalf("expected disruption summary, got %+v", got)
	}
	if got := Summarize(sites[:1], now, fixedOptions(false)); got.Status != types.StatusUp {
		t.Fatalf("expected operational summary, got %s", got.Status)
	}
}

func TestAlert(t *testing.T) {
	now := time.Now()
	if _, ok := Alert([]types.SiteSnapshot{{Name: "a", Status: types.StatusUp}}, now, fixedOptions(false)); ok {
		t.Fatalf("expected no alert without down sites")
	}
	msg, ok := Alert([]types.SiteSnapshot{
		{Name: "a", Status: types.StatusUp},
		{Name: "b", Status: types.StatusDown, ResponseTime: "0"},
	}, now, fixedOptions(false))
	if !ok {
		t.Fatalf("expected alert")
	}
	if len(msg.Sites) != 1 || msg.Sites[0].Name != "b" {
		t.Fatalf("unexpected alert sites %+v", msg.Sites)
	}
	if !strings.Contains(msg.Description, "b") || msg.Severity != types.SeverityError {
		t.Fatalf("unexpected alert %+v", msg)
	}
}
