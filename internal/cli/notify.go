package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pingsantohq/statusnotify/internal/config"
)

func (a *App) notifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Notify for one pre-classified site described by environment variables",
		Long: `Reads SITE_NAME, SITE_URL, SITE_STATUS, RESPONSE_TIME, UPTIME and LAST_CHECKED, compares the
status with the history file, and sends a webhook when it changed (or on every check when
NOTIFY_ON_CHECK=true). A failed send exits non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := a.loadConfig(ctx)
			if err != nil {
				return err
			}
			site, err := config.SiteFromEnv(a.Lookup, a.Now())
			if err != nil {
				return err
			}
			hook, err := a.newWebhook(cfg)
			if err != nil {
				return err
			}
			a.Logger.Printf("checking %s status=%s response=%sms", site.Endpoint.Name, site.Status, site.ResponseTime)

			res, err := a.newRunner(cfg, nil, hook, nil).Notify(ctx, site)
			if err != nil {
				return err
			}
			switch {
			case res.Notified:
				fmt.Fprintf(a.Stdout, "%s: %s notification sent\n", site.Endpoint.Name, res.Kind)
			default:
				fmt.Fprintf(a.Stdout, "%s: status %s unchanged, no notification\n", site.Endpoint.Name, res.Status)
			}
			return nil
		},
	}
}
