package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pingsantohq/statusnotify/internal/history"
	"github.com/pingsantohq/statusnotify/internal/style"
	"github.com/pingsantohq/statusnotify/pkg/types"
)

func (a *App) historyCommand() *cobra.Command {
	var (
		file   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the last known status of every endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var stores []*history.Store
			if file != "" {
				stores = []*history.Store{history.NewStore(file)}
			} else {
				cfg, err := a.loadConfig(ctx)
				if err != nil {
					return err
				}
				stores = historyStores(cfg)
			}

			merged := make(types.History)
			for _, s := range stores {
				hist, err := s.Load(ctx)
				if err != nil {
					return fmt.Errorf("history %s: %w", s.Path(), err)
				}
				for name, rec := range hist {
					merged[name] = rec
				}
			}

			if asJSON {
				enc := json.NewEncoder(a.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(merged)
			}
			printHistory(a, merged)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Read this history file instead of the configured ones")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw history mapping as JSON")
	return cmd
}

func printHistory(a *App, hist types.History) {
	fmt.Fprintln(a.Stdout, style.Banner.Render("STATUS HISTORY"))
	if len(hist) == 0 {
		fmt.Fprintln(a.Stdout, style.DimText.Render("  no endpoints recorded yet"))
		return
	}
	names := make([]string, 0, len(hist))
	for name := range hist {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(a.Stdout, "  %s%s%s%s%s\n",
		style.TableHeader.Width(26).Render("ENDPOINT"),
		style.TableHeader.Width(10).Render("STATUS"),
		style.TableHeader.Width(12).Render("RESPONSE"),
		style.TableHeader.Width(10).Render("UPTIME"),
		style.TableHeader.Render("LAST CHECKED"),
	)
	for _, name := range names {
		rec := hist[name]
		fmt.Fprintf(a.Stdout, "  %s %-24s %-8s  %-10s  %-8s  %s\n",
			style.Dot(rec.Status), name, style.Status(rec.Status), rec.ResponseTime+"ms", rec.Uptime, rec.LastChecked)
	}
}
