package types

// Source selects how an endpoint's snapshot is ingested.
type Source string

const (
	SourceBadges Source = "badges"
	SourceRecord Source = "record"
)

// Endpoint is one monitored service. Name doubles as the history key.
type Endpoint struct {
	Name        string `json:"name" yaml:"name"`
	URL         string `json:"url" yaml:"url"`
	DataPath    string `json:"data_path,omitempty" yaml:"data_path,omitempty"`
	Source      Source `json:"source,omitempty" yaml:"source,omitempty"`
	RecordFile  string `json:"record_file,omitempty" yaml:"record_file,omitempty"`
	HistoryFile string `json:"history_file,omitempty" yaml:"history_file,omitempty"`
}
