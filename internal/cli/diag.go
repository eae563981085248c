package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pingsantohq/statusnotify/internal/diag"
	"github.com/pingsantohq/statusnotify/internal/style"
)

func (a *App) diagCommand() *cobra.Command {
	var (
		output         string
		metricsURL     string
		metricsTimeout time.Duration
		asJSON         bool
	)
	cmd := &cobra.Command{
		Use:   "diag",
		Short: "Inspect configuration, snapshots and history without sending anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := diag.Run(cmd.Context(), diag.Options{
				ConfigPath:     a.resolvedConfigPath(),
				Output:         output,
				MetricsURL:     metricsURL,
				MetricsTimeout: metricsTimeout,
			}, diag.Dependencies{
				Now:        a.Now,
				HTTPClient: a.HTTPClient,
				Lookup:     a.Lookup,
			})
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(a.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printDiag(a, report)
			return nil
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "Write a tar.gz diagnostics bundle to this path")
	cmd.Flags().StringVar(&metricsURL, "metrics-url", "", "Scrape a running watch process, e.g. http://127.0.0.1:9320/metrics")
	cmd.Flags().DurationVar(&metricsTimeout, "metrics-timeout", 3*time.Second, "HTTP timeout when scraping metrics")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func printDiag(a *App, r diag.Report) {
	out := a.Stdout
	fmt.Fprintln(out, style.Banner.Render("STATUSNOTIFY DIAGNOSTICS"))
	fmt.Fprintln(out, style.KV("Config", orDash(r.ConfigPath)))
	if r.Webhook != nil {
		fmt.Fprintln(out, style.KV("Webhook", r.Webhook.Type+" "+r.Webhook.URL))
	}
	if r.Bot != nil {
		fmt.Fprintln(out, style.KV("Bot channel", fmt.Sprintf("%s (token set: %t)", orDash(r.Bot.ChannelID), r.Bot.TokenSet)))
	}
	fmt.Fprintln(out, style.KV("Notify on check", fmt.Sprintf("%t", r.NotifyOnCheck)))
	fmt.Fprintln(out, style.KV("Pacing", orDash(r.Pacing)))
	fmt.Fprintln(out, style.KV("Timezone", orDash(r.Timezone)))
	fmt.Fprintln(out, style.KV("Signatures", fmt.Sprintf("%t", r.Verified)))
	fmt.Fprintln(out)

	for _, ep := range r.Endpoints {
		if ep.Error != "" {
			fmt.Fprintf(out, "  %s  %-24s %s\n", style.Dot(""), ep.Name, style.Down.Render(ep.Error))
			continue
		}
		fmt.Fprintf(out, "  %s  %-24s %-8s previous %s  %sms  %s\n",
			style.Dot(ep.Status), ep.Name, style.Status(ep.Status), style.Status(ep.PreviousStatus), ep.ResponseTime, ep.Uptime)
	}
	for _, h := range r.History {
		line := fmt.Sprintf("%s (%d entries)", h.Path, h.Entries)
		if h.Error != "" {
			line += " " + style.Down.Render(h.Error)
		}
		fmt.Fprintln(out, style.KV("History", line))
	}
	if r.OutputPath != "" {
		fmt.Fprintln(out, style.KV("Bundle", r.OutputPath))
	}

	if len(r.Warnings) == 0 {
		fmt.Fprintln(out, style.SuccessBox.Render("No problems found"))
		return
	}
	msg := ""
	for i, w := range r.Warnings {
		if i > 0 {
			msg += "\n"
		}
		msg += "• " + w
	}
	fmt.Fprintln(out, style.WarningBox.Render(msg))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
