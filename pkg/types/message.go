package types

import "time"

// MessageKind selects the notification variant.
type MessageKind string

const (
	KindRecovery MessageKind = "recovery"
	KindOutage   MessageKind = "outage"
	KindChange   MessageKind = "change"
	KindRoutine  MessageKind = "routine"
	KindSummary  MessageKind = "summary"
	KindAlert    MessageKind = "alert"
)

// Severity grades a message for platforms that surface it.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Field is a labelled value shown in a message body.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// SiteSnapshot is the per-endpoint state a message reports on.
type SiteSnapshot struct {
	Name           string
	URL            string
	Status         Status
	ResponseTime   string
	Uptime         string
	PreviousStatus Status
	CheckedAt      time.Time
}

// Message is a platform-neutral notification. Transport renderers turn it into a wire payload.
type Message struct {
	ID          string
	Kind        MessageKind
	Title       string
	URL         string
	Description string
	Status      Status
	Severity    Severity
	Color       int
	Footer      string
	Fields      []Field
	Sites       []SiteSnapshot
	Transition  *Transition
	CheckedAt   time.Time
}
