package types

// Badge is a shields.io style endpoint badge as written by the uptime monitor.
type Badge struct {
	SchemaVersion int    `json:"schemaVersion" yaml:"schemaVersion"`
	Label         string `json:"label" yaml:"label"`
	Message       string `json:"message" yaml:"message"`
	Color         string `json:"color" yaml:"color"`
	Status        string `json:"status,omitempty" yaml:"status,omitempty"`
}

// BadgePair holds the response-time and uptime badges for one endpoint.
type BadgePair struct {
	ResponseTime Badge
	Uptime       Badge
}

// StructuredRecord is the alternate single-record snapshot shape.
type StructuredRecord struct {
	Status       string   `json:"status,omitempty" yaml:"status,omitempty"`
	Code         *int     `json:"code,omitempty" yaml:"code,omitempty"`
	ResponseTime *float64 `json:"responseTime,omitempty" yaml:"responseTime,omitempty"`
	StartTime    string   `json:"startTime,omitempty" yaml:"startTime,omitempty"`
	LastUpdated  string   `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`
}

// SignalKind tags which variant a Signal carries.
type SignalKind int

const (
	SignalBadges SignalKind = iota + 1
	SignalRecord
)

func (k SignalKind) String() string {
	switch k {
	case SignalBadges:
		return "badges"
	case SignalRecord:
		return "record"
	default:
		return "invalid"
	}
}

// Signal is the raw health input for one check. Exactly one of Badges or Record is set,
// matching Kind.
type Signal struct {
	Kind   SignalKind
	Badges *BadgePair
	Record *StructuredRecord
}

// BadgeSignal wraps a badge pair.
func BadgeSignal(responseTime, uptime Badge) Signal {
	return Signal{
		Kind:   SignalBadges,
		Badges: &BadgePair{ResponseTime: responseTime, Uptime: uptime},
	}
}

// RecordSignal wraps a structured record.
func RecordSignal(rec StructuredRecord) Signal {
	return Signal{Kind: SignalRecord, Record: &rec}
}
