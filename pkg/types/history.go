package types

// HistoryRecord is the persisted last-known state of one endpoint.
type HistoryRecord struct {
	Status       Status `json:"status" yaml:"status"`
	LastChecked  string `json:"lastChecked" yaml:"lastChecked"`
	ResponseTime string `json:"responseTime" yaml:"responseTime"`
	Uptime       string `json:"uptime" yaml:"uptime"`
	Timestamp    int64  `json:"timestamp" yaml:"timestamp"`
}

// History maps endpoint names to their latest record.
type History map[string]HistoryRecord

// Transition describes how an endpoint's status moved between two checks.
// PreviousStatus is empty when the endpoint had no prior record.
type Transition struct {
	Changed        bool   `json:"changed"`
	PreviousStatus Status `json:"previousStatus,omitempty"`
	CurrentStatus  Status `json:"currentStatus"`
	IsRecovery     bool   `json:"isRecovery"`
	IsOutage       bool   `json:"isOutage"`
}

// HasPrevious reports whether a prior status was known.
func (t Transition) HasPrevious() bool {
	return t.PreviousStatus != ""
}
