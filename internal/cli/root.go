package cli

import (
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pingsantohq/statusnotify/internal/config"
	"github.com/pingsantohq/statusnotify/internal/logging"
)

// App carries the process-wide dependencies shared by every command.
type App struct {
	Stdout     io.Writer
	Stderr     io.Writer
	Lookup     config.LookupFunc
	HTTPClient *http.Client
	Now        func() time.Time
	Logger     *log.Logger

	configPath string
	quiet      bool
}

// New returns an App bound to the real process environment.
func New() *App {
	return &App{
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Lookup:     os.LookupEnv,
		HTTPClient: http.DefaultClient,
		Now:        time.Now,
		Logger:     logging.New(),
	}
}

// Command builds the cobra command tree.
func (a *App) Command() *cobra.Command {
	a.defaults()
	root := &cobra.Command{
		Use:   "statusnotify",
		Short: "Turn uptime status snapshots into change notifications",
		Long: `statusnotify reads per-endpoint status snapshots, classifies each endpoint as up, slow,
or down, remembers the last known status in a history file, and posts a webhook (Slack, Discord,
or custom JSON) when an endpoint's status changes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.quiet {
				a.Logger = logging.OrDiscard(nil)
			}
		},
	}
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to configuration file (default $STATUSNOTIFY_CONFIG or statusnotify.yaml)")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Suppress log output")

	root.AddCommand(
		a.runCommand(),
		a.notifyCommand(),
		a.reportCommand(),
		a.watchCommand(),
		a.historyCommand(),
		a.diagCommand(),
		a.testCommand(),
		a.initCommand(),
	)
	return root
}

func (a *App) defaults() {
	if a.Stdout == nil {
		a.Stdout = io.Discard
	}
	if a.Stderr == nil {
		a.Stderr = io.Discard
	}
	if a.Lookup == nil {
		a.Lookup = os.LookupEnv
	}
	if a.HTTPClient == nil {
		a.HTTPClient = http.DefaultClient
	}
	if a.Now == nil {
		a.Now = time.Now
	}
	a.Logger = logging.OrDiscard(a.Logger)
}
