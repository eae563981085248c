package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/pingsantohq/statusnotify/internal/notify"
	"github.com/pingsantohq/statusnotify/internal/transport"
)

// Report sends the overall status summary for a pass, followed by an urgent alert when any
// endpoint is down. Nothing is sent when no endpoint was classified.
func Report(ctx context.Context, sender transport.Sender, results []Result, now time.Time, opts notify.Options) error {
	sites := Snapshots(results)
	if len(sites) == 0 {
		return nil
	}
	if err := sender.Send(ctx, notify.Summarize(sites, now, opts)); err != nil {
		return fmt.Errorf("send status report: %w", err)
	}
	if alert, ok := notify.Alert(sites, now, opts); ok {
		if err := sender.Send(ctx, alert); err != nil {
			return fmt.Errorf("send urgent alert: %w", err)
		}
	}
	return nil
}
