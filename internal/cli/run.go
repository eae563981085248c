package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pingsantohq/statusnotify/internal/runner"
	"github.com/pingsantohq/statusnotify/internal/style"
	"github.com/pingsantohq/statusnotify/internal/transport"
)

func (a *App) runCommand() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Check every configured endpoint once and notify on status changes",
		Long: `Check every configured endpoint once, in order. Endpoints with missing or invalid snapshots
are skipped; a failed notification is logged and the pass continues. The command exits zero
unless configuration cannot be loaded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := a.loadConfig(ctx)
			if err != nil {
				return err
			}
			rd, err := a.newReader(cfg)
			if err != nil {
				return err
			}
			var sender transport.Sender
			if !dryRun {
				hook, err := a.newWebhook(cfg)
				if err != nil {
					return err
				}
				sender = hook
			}

			results, err := a.newRunner(cfg, rd, sender, nil).Run(ctx)
			if err != nil {
				return err
			}
			printResults(a.Stdout, results, dryRun)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Detect and record transitions without sending notifications")
	return cmd
}

func printResults(w io.Writer, results []runner.Result, dryRun bool) {
	fmt.Fprintln(w, style.Banner.Render("STATUS CHECK"))
	for _, res := range results {
		note := ""
		switch {
		case res.Skipped:
			note = style.DimText.Render("skipped: " + res.ReadErr.Error())
		case res.SendErr != nil:
			note = style.Down.Render("send failed")
		case res.Notified:
			note = style.Up.Render("notified " + string(res.Kind))
		case res.Kind != "" && dryRun:
			note = style.Warning.Render("would notify " + string(res.Kind))
		case res.Transition.Changed:
			note = style.Warning.Render("changed")
		default:
			note = style.DimText.Render("unchanged")
		}
		fmt.Fprintf(w, "  %s  %-24s %-8s %s\n", style.Dot(res.Status), res.Endpoint.Name, style.Status(res.Status), note)
	}

	skipped, historyErrors, sendFailures := runner.Tally(results)
	var problems []string
	if skipped > 0 {
		problems = append(problems, fmt.Sprintf("%d skipped", skipped))
	}
	if historyErrors > 0 {
		problems = append(problems, fmt.Sprintf("%d history errors", historyErrors))
	}
	if sendFailures > 0 {
		problems = append(problems, fmt.Sprintf("%d failed notifications", sendFailures))
	}
	if len(problems) == 0 {
		fmt.Fprintln(w, style.SuccessBox.Render(fmt.Sprintf("%d endpoints checked", len(results))))
		return
	}
	fmt.Fprintln(w, style.WarningBox.Render(fmt.Sprintf("%d endpoints checked, %s", len(results), strings.Join(problems, ", "))))
}
