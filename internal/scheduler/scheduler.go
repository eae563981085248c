package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pingsantohq/statusnotify/internal/logging"
)

// Job is one scheduled check pass.
type Job func(ctx context.Context)

type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	job       Job
	logger    *log.Logger
	immediate bool

	mu    sync.Mutex
	entry cron.EntryID
}

type Option func(*Scheduler)

func WithLogger(logger *log.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logging.OrDiscard(logger)
	}
}

// WithImmediate runs the job once as soon as Run starts, before the first scheduled tick.
func WithImmediate() Option {
	return func(s *Scheduler) {
		s.immediate = true
	}
}

// New validates schedule, a standard five-field cron expression or descriptor such as
// "@every 5m", and builds a scheduler whose runs never overlap.
func New(schedule string, job Job, loc *time.Location, opts ...Option) (*Scheduler, error) {
	if job == nil {
		return nil, errors.New("scheduler job is required")
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", schedule, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		schedule: schedule,
		job:      job,
		logger:   logging.OrDiscard(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cron.PrintfLogger(s.logger)), cron.SkipIfStillRunning(cron.PrintfLogger(s.logger))),
	)
	return s, nil
}

// Run schedules the job and blocks until ctx is cancelled, then waits for a running job to
// finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	id, err := s.cron.AddFunc(s.schedule, func() { s.job(ctx) })
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("schedule job: %w", err)
	}
	s.entry = id
	s.mu.Unlock()

	if s.immediate {
		s.cron.Entry(id).WrappedJob.Run()
	}
	s.cron.Start()
	s.logger.Printf("scheduler started schedule=%q next=%s", s.schedule, s.Next().Format(time.RFC3339))

	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	s.logger.Printf("scheduler stopped")
	return nil
}

// Next reports when the job will run next; zero before Run.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	id := s.entry
	s.mu.Unlock()
	if id == 0 {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}
