package events

import (
	"log"
	"sort"
	"strings"

	"github.com/pingsantohq/statusnotify/internal/logging"
	"github.com/pingsantohq/statusnotify/pkg/types"
)

type Recorder interface {
	Record(event types.Event)
}

type NoopRecorder struct{}

func (NoopRecorder) Record(event types.Event) {}

type Multi struct {
	recorders []Recorder
}

func NewMulti(recorders ...Recorder) Multi {
	return Multi{recorders: recorders}
}

func (m Multi) Record(event types.Event) {
	for _, rec := range m.recorders {
		if rec != nil {
			rec.Record(event)
		}
	}
}

// LogRecorder writes each event as a single key=value line.
type LogRecorder struct {
	logger *log.Logger
}

func NewLogRecorder(logger *log.Logger) LogRecorder {
	return LogRecorder{logger: logging.OrDiscard(logger)}
}

func (r LogRecorder) Record(event types.Event) {
	var b strings.Builder
	b.WriteString("event=")
	b.WriteString(string(event.Type))
	if event.Endpoint != "" {
		b.WriteString(" endpoint=")
		b.WriteString(event.Endpoint)
	}
	if event.Status != "" {
		b.WriteString(" status=")
		b.WriteString(string(event.Status))
	}
	if event.Kind != "" {
		b.WriteString(" kind=")
		b.WriteString(string(event.Kind))
	}
	keys := make([]string, 0, len(event.Labels))
	for k := range event.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(event.Labels[k])
	}
	r.logger.Print(b.String())
}
