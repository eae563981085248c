package types

import "time"

type EventType string

const (
	EventChecked      EventType = "Checked"
	EventSkipped      EventType = "Skipped"
	EventSuppressed   EventType = "Suppressed"
	EventNotified     EventType = "Notified"
	EventSendFailed   EventType = "SendFailed"
	EventHistoryError EventType = "HistoryError"
)

type Event struct {
	Type      EventType         `json:"type"`
	Timestamp time.Time         `json:"ts"`
	Endpoint  string            `json:"endpoint,omitempty"`
	Status    Status            `json:"status,omitempty"`
	Kind      MessageKind       `json:"kind,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
}
