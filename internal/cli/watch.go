package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pingsantohq/statusnotify/internal/config"
	"github.com/pingsantohq/statusnotify/internal/health"
	"github.com/pingsantohq/statusnotify/internal/history"
	"github.com/pingsantohq/statusnotify/internal/metrics"
	"github.com/pingsantohq/statusnotify/internal/runner"
	"github.com/pingsantohq/statusnotify/internal/scheduler"
	"github.com/pingsantohq/statusnotify/internal/server"
)

func (a *App) watchCommand() *cobra.Command {
	var (
		schedule    string
		metricsAddr string
		noServer    bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run checks on a cron schedule and serve metrics and readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			if schedule != "" {
				cfg.Watch.Schedule = schedule
			}
			if metricsAddr != "" {
				cfg.Watch.MetricsAddr = metricsAddr
			}
			if noServer {
				cfg.Watch.MetricsAddr = ""
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.watch(runCtx, cfg)
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule overriding watch.schedule (e.g. \"*/5 * * * *\" or \"@every 2m\")")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Monitoring listen address overriding watch.metrics_addr")
	cmd.Flags().BoolVar(&noServer, "no-server", false, "Do not start the monitoring HTTP server")
	return cmd
}

func (a *App) watch(ctx context.Context, cfg config.Config) error {
	rd, err := a.newReader(cfg)
	if err != nil {
		return err
	}
	hook, err := a.newWebhook(cfg)
	if err != nil {
		return err
	}

	store := metrics.NewStore()
	checker := health.NewChecker(store, staleAfter(cfg.Watch.Schedule, cfg.Location()))
	r := a.newRunner(cfg, rd, hook, store, runner.WithRunRecorder(store))

	job := func(ctx context.Context) {
		results, err := r.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			a.Logger.Printf("check pass failed: %v", err)
			return
		}
		_, historyErrors, sendFailures := runner.Tally(results)
		checker.ObserveRun(health.RunOutcome{
			Finished:      a.Now(),
			SendFailures:  sendFailures,
			HistoryErrors: historyErrors,
		})
		checker.Ready(a.Now())
	}
	sched, err := scheduler.New(cfg.Watch.Schedule, job, cfg.Location(),
		scheduler.WithLogger(a.Logger), scheduler.WithImmediate())
	if err != nil {
		return err
	}

	grp, groupCtx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		return sched.Run(groupCtx)
	})
	if cfg.Watch.MetricsAddr != "" {
		handler := server.NewRouter(server.Dependencies{
			Metrics:   store,
			Checker:   checker,
			Histories: historyStores(cfg),
			Now:       a.Now,
		})
		grp.Go(func() error {
			return server.Serve(groupCtx, cfg.Watch.MetricsAddr, handler, a.Logger)
		})
	}

	if err := grp.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.Logger.Printf("watch stopped")
	return nil
}

// staleAfter allows two missed schedule ticks before readiness fails.
func staleAfter(schedule string, loc *time.Location) time.Duration {
	sched, err := cron.ParseStandard(schedule)
	if err != nil {
		return 0
	}
	now := time.Now().In(loc)
	first := sched.Next(now)
	second := sched.Next(first)
	return 2*second.Sub(first) + time.Minute
}

// historyStores returns one store per distinct history file in cfg.
func historyStores(cfg config.Config) []*history.Store {
	seen := make(map[string]bool)
	var stores []*history.Store
	add := func(path string) {
		if path == "" || seen[path] {
			return
		}
		seen[path] = true
		stores = append(stores, history.NewStore(path))
	}
	add(cfg.HistoryFile)
	for _, ep := range cfg.Endpoints {
		add(cfg.HistoryPath(ep))
	}
	return stores
}
