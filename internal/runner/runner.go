package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/pingsantohq/statusnotify/internal/classify"
	"github.com/pingsantohq/statusnotify/internal/config"
	"github.com/pingsantohq/statusnotify/internal/events"
	"github.com/pingsantohq/statusnotify/internal/history"
	"github.com/pingsantohq/statusnotify/internal/logging"
	"github.com/pingsantohq/statusnotify/internal/metrics"
	"github.com/pingsantohq/statusnotify/internal/notify"
	"github.com/pingsantohq/statusnotify/internal/reader"
	"github.com/pingsantohq/statusnotify/internal/transport"
	"github.com/pingsantohq/statusnotify/pkg/types"
)

// SnapshotReader loads an endpoint's raw status signal.
type SnapshotReader interface {
	Read(ctx context.Context, ep types.Endpoint) (reader.Snapshot, error)
}

type Option func(*settings)

type settings struct {
	reader      SnapshotReader
	sender      transport.Sender
	recorder    events.Recorder
	runs        metrics.RunRecorder
	logger      *log.Logger
	pacing      time.Duration
	notifyEvery bool
	location    *time.Location
	historyPath func(types.Endpoint) string
	now         func() time.Time
	newID       func() string
}

func WithReader(r SnapshotReader) Option {
	return func(c *settings) {
		if r != nil {
			c.reader = r
		}
	}
}

// WithSender sets the per-endpoint notification channel. Without one, transitions are
// detected and recorded but nothing is sent.
func WithSender(s transport.Sender) Option {
	return func(c *settings) {
		c.sender = s
	}
}

func WithRecorder(r events.Recorder) Option {
	return func(c *settings) {
		if r != nil {
			c.recorder = r
		}
	}
}

func WithRunRecorder(r metrics.RunRecorder) Option {
	return func(c *settings) {
		if r != nil {
			c.runs = r
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(c *settings) {
		c.logger = logging.OrDiscard(logger)
	}
}

// WithPacing spaces consecutive endpoint checks; zero disables pacing.
func WithPacing(d time.Duration) Option {
	return func(c *settings) {
		if d >= 0 {
			c.pacing = d
		}
	}
}

func WithNotifyOnEveryCheck(enabled bool) Option {
	return func(c *settings) {
		c.notifyEvery = enabled
	}
}

func WithLocation(loc *time.Location) Option {
	return func(c *settings) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithHistoryPath picks the history file for each endpoint.
func WithHistoryPath(fn func(types.Endpoint) string) Option {
	return func(c *settings) {
		if fn != nil {
			c.historyPath = fn
		}
	}
}

func WithNow(now func() time.Time) Option {
	return func(c *settings) {
		if now != nil {
			c.now = now
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(c *settings) {
		c.newID = fn
	}
}

// Result is the outcome of checking one endpoint.
type Result struct {
	Endpoint     types.Endpoint
	Status       types.Status
	ResponseTime string
	Uptime       string
	CheckedAt    time.Time
	Transition   types.Transition
	// Skipped is set when the endpoint's input was missing or invalid.
	Skipped bool
	// Kind is the message kind built for this check; empty when suppressed.
	Kind     types.MessageKind
	Notified bool
	// HistoryErr and SendErr are logged and do not stop the pass.
	HistoryErr error
	SendErr    error
	ReadErr    error
}

// Runner checks endpoints one at a time and notifies on status transitions.
type Runner struct {
	endpoints []types.Endpoint
	cfg       settings
	limiter   *rate.Limiter
	stores    map[string]*history.Store
}

func New(endpoints []types.Endpoint, opts ...Option) *Runner {
	cfg := settings{
		reader:      reader.New(),
		recorder:    events.NoopRecorder{},
		runs:        metrics.NoopRunRecorder{},
		logger:      logging.OrDiscard(nil),
		pacing:      time.Second,
		location:    time.UTC,
		historyPath: func(types.Endpoint) string { return config.DefaultHistoryFile },
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Runner{
		endpoints: append([]types.Endpoint(nil), endpoints...),
		cfg:       cfg,
		stores:    make(map[string]*history.Store),
	}
	if cfg.pacing > 0 {
		r.limiter = rate.NewLimiter(rate.Every(cfg.pacing), 1)
	}
	return r
}

// Run checks every endpoint in configuration order. Per-endpoint failures are isolated in the
// returned results; only cancellation stops the pass early.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	started := r.cfg.now()
	results := make([]Result, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return results, err
			}
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, r.Check(ctx, ep))
	}
	finished := r.cfg.now()
	r.cfg.runs.ObserveRun(finished, finished.Sub(started), len(results))
	return results, nil
}

// Check runs the read, classify, detect, notify pipeline for one endpoint.
func (r *Runner) Check(ctx context.Context, ep types.Endpoint) Result {
	res := Result{Endpoint: ep, CheckedAt: r.cfg.now()}

	snap, err := r.cfg.reader.Read(ctx, ep)
	if err != nil {
		res.Skipped = true
		res.ReadErr = err
		if reader.Skippable(err) {
			r.cfg.logger.Printf("endpoint %s skipped: %v", ep.Name, err)
		} else {
			r.cfg.logger.Printf("endpoint %s read failed: %v", ep.Name, err)
		}
		r.record(types.EventSkipped, ep.Name, "", "", map[string]string{"reason": err.Error()})
		return res
	}

	res.Status = classify.Classify(snap.Signal)
	res.ResponseTime = snap.ResponseTime
	res.Uptime = snap.Uptime
	r.record(types.EventChecked, ep.Name, res.Status, "", nil)

	return r.detectAndNotify(ctx, res, r.cfg.sender)
}

// Notify handles one pre-classified observation. Unlike Check, a send failure is returned.
func (r *Runner) Notify(ctx context.Context, site config.SiteCheck) (Result, error) {
	if r.cfg.sender == nil {
		return Result{}, errors.New("no notification sender configured")
	}
	checkedAt := site.CheckedAt
	if checkedAt.IsZero() {
		checkedAt = r.cfg.now()
	}
	res := Result{
		Endpoint:     site.Endpoint,
		Status:       site.Status,
		ResponseTime: site.ResponseTime,
		Uptime:       site.Uptime,
		CheckedAt:    checkedAt,
	}
	r.record(types.EventChecked, site.Endpoint.Name, site.Status, "", nil)
	res = r.detectAndNotify(ctx, res, r.cfg.sender)
	if res.SendErr != nil {
		return res, res.SendErr
	}
	return res, nil
}

func (r *Runner) detectAndNotify(ctx context.Context, res Result, sender transport.Sender) Result {
	ep := res.Endpoint
	tr, err := r.store(ep).Detect(ctx, ep.Name, history.Observation{
		Status:       res.Status,
		ResponseTime: res.ResponseTime,
		Uptime:       res.Uptime,
		CheckedAt:    res.CheckedAt,
	})
	res.Transition = tr
	if err != nil {
		res.HistoryErr = err
		r.cfg.logger.Printf("endpoint %s history: %v", ep.Name, err)
		r.record(types.EventHistoryError, ep.Name, res.Status, "", map[string]string{"error": err.Error()})
	}

	if !notify.ShouldNotify(tr, r.cfg.notifyEvery) {
		r.record(types.EventSuppressed, ep.Name, res.Status, "", nil)
		return res
	}
	msg, ok := notify.Build(tr, ep, notify.Metrics{
		ResponseTime: res.ResponseTime,
		Uptime:       res.Uptime,
		CheckedAt:    res.CheckedAt,
	}, notify.Options{
		NotifyOnEveryCheck: r.cfg.notifyEvery,
		Location:           r.cfg.location,
		NewID:              r.cfg.newID,
	})
	if !ok {
		r.record(types.EventSuppressed, ep.Name, res.Status, "", nil)
		return res
	}
	res.Kind = msg.Kind
	if sender == nil {
		return res
	}

	if err := sender.Send(ctx, msg); err != nil {
		res.SendErr = fmt.Errorf("endpoint %s: %w", ep.Name, err)
		r.cfg.logger.Printf("endpoint %s notification failed: %v", ep.Name, err)
		r.record(types.EventSendFailed, ep.Name, res.Status, msg.Kind, map[string]string{"error": err.Error()})
		return res
	}
	res.Notified = true
	r.record(types.EventNotified, ep.Name, res.Status, msg.Kind, nil)
	return res
}

func (r *Runner) store(ep types.Endpoint) *history.Store {
	path := r.cfg.historyPath(ep)
	if s, ok := r.stores[path]; ok {
		return s
	}
	s := history.NewStore(path, history.WithNow(r.cfg.now))
	r.stores[path] = s
	return s
}

func (r *Runner) record(typ types.EventType, endpoint string, status types.Status, kind types.MessageKind, labels map[string]string) {
	r.cfg.recorder.Record(types.Event{
		Type:      typ,
		Timestamp: r.cfg.now().UTC(),
		Endpoint:  endpoint,
		Status:    status,
		Kind:      kind,
		Labels:    labels,
	})
}

// Snapshots lists the classified endpoints of a pass for summary reporting.
func Snapshots(results []Result) []types.SiteSnapshot {
	out := make([]types.SiteSnapshot, 0, len(results))
	for _, res := range results {
		if res.Skipped {
			continue
		}
		out = append(out, types.SiteSnapshot{
			Name:           res.Endpoint.Name,
			URL:            res.Endpoint.URL,
			Status:         res.Status,
			ResponseTime:   res.ResponseTime,
			Uptime:         res.Uptime,
			PreviousStatus: res.Transition.PreviousStatus,
			CheckedAt:      res.CheckedAt,
		})
	}
	return out
}

// Tally counts the failures of a pass.
func Tally(results []Result) (skipped, historyErrors, sendFailures int) {
	for _, res := range results {
		if res.Skipped {
			skipped++
		}
		if res.HistoryErr != nil {
			historyErrors++
		}
		if res.SendErr != nil {
			sendFailures++
		}
	}
	return skipped, historyErrors, sendFailures
}
