package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pingsantohq/statusnotify/internal/config"
	"github.com/pingsantohq/statusnotify/internal/history"
	"github.com/pingsantohq/statusnotify/internal/notify"
	"github.com/pingsantohq/statusnotify/internal/transport"
	"github.com/pingsantohq/statusnotify/pkg/types"
)

// sampleTransitions are the variants exercised by the test command.
var sampleTransitions = []types.Transition{
	history.Compare(types.StatusDown, types.StatusUp),
	history.Compare(types.StatusUp, types.StatusDown),
	history.Compare(types.StatusUp, types.StatusSlow),
}

func (a *App) testCommand() *cobra.Command {
	var (
		send        bool
		webhookType string
	)
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Render sample recovery, outage and change payloads, optionally sending them",
		Long: `Builds one recovery, one outage and one status-change message for a sample site and prints
the payload the configured webhook type would receive. With --send the messages are posted to the
configured webhook. History is never touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := a.loadConfig(ctx)
			if err != nil {
				return err
			}
			if webhookType != "" {
				cfg.Webhook.Type = strings.ToLower(webhookType)
			}
			renderer := transport.RendererFor(cfg.Webhook.Type)

			var hook *transport.Webhook
			if send {
				if hook, err = a.newWebhook(cfg); err != nil {
					return err
				}
			}

			site, err := config.SiteFromEnv(a.Lookup, a.Now())
			if err != nil {
				return err
			}
			if _, ok := a.Lookup(config.EnvSiteName); !ok {
				site.Endpoint = types.Endpoint{Name: "Sample Site", URL: "https://example.com"}
				site.ResponseTime, site.Uptime = "250", "99.95%"
			}

			for _, tr := range sampleTransitions {
				msg, _ := notify.Build(tr, site.Endpoint, notify.Metrics{
					ResponseTime: site.ResponseTime,
					Uptime:       site.Uptime,
					CheckedAt:    site.CheckedAt,
				}, notify.Options{Location: cfg.Location()})

				payload, err := renderer.Render(msg)
				if err != nil {
					return err
				}
				var pretty map[string]any
				if err := json.Unmarshal(payload, &pretty); err != nil {
					return fmt.Errorf("decode rendered payload: %w", err)
				}
				data, _ := json.MarshalIndent(pretty, "", "  ")
				fmt.Fprintf(a.Stdout, "# %s (%s)\n%s\n", msg.Kind, renderer.Name(), data)

				if hook != nil {
					if err := hook.Send(ctx, msg); err != nil {
						return err
					}
					fmt.Fprintf(a.Stdout, "sent %s message\n", msg.Kind)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&send, "send", false, "Post the sample messages to the configured webhook")
	cmd.Flags().StringVar(&webhookType, "type", "", "Render for this webhook type instead of the configured one")
	return cmd
}
