package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pingsantohq/statusnotify/internal/notify"
	"github.com/pingsantohq/statusnotify/internal/runner"
)

func (a *App) reportCommand() *cobra.Command {
	var perEndpoint bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Post an overall status report to a Discord channel through the bot",
		Long: `Checks every endpoint, records transitions in history, then opens a Discord bot session and
posts one summary embed, followed by an urgent alert when any endpoint is down. The bot token is
read from BOT_TOKEN.`,
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
			bot, err := a.newBot(cfg)
			if err != nil {
				return err
			}
			if _, err := bot.Open(ctx); err != nil {
				return err
			}
			defer bot.Close()

			r := a.newRunner(cfg, rd, nil, nil)
			if perEndpoint {
				r = a.newRunner(cfg, rd, bot, nil)
			}
			results, err := r.Run(ctx)
			if err != nil {
				return err
			}
			opts := notify.Options{Location: cfg.Location()}
			if err := runner.Report(ctx, bot, results, a.Now(), opts); err != nil {
				return err
			}
			fmt.Fprintf(a.Stdout, "status report posted for %d endpoints\n", len(runner.Snapshots(results)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&perEndpoint, "per-endpoint", false, "Also post each endpoint's transition message to the channel")
	return cmd
}
