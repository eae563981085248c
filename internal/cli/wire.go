package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/pingsantohq/statusnotify/internal/config"
	"github.com/pingsantohq/statusnotify/internal/events"
	"github.com/pingsantohq/statusnotify/internal/reader"
	"github.com/pingsantohq/statusnotify/internal/runner"
	"github.com/pingsantohq/statusnotify/internal/transport"
	"github.com/pingsantohq/statusnotify/internal/verify"
)

func (a *App) resolvedConfigPath() string {
	return config.Path(a.configPath, a.Lookup)
}

func (a *App) loadConfig(ctx context.Context) (config.Config, error) {
	path := a.resolvedConfigPath()
	cfg, err := config.Resolve(ctx, path, a.Lookup)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (a *App) newReader(cfg config.Config) (*reader.Reader, error) {
	v, err := verify.FromConfig(cfg.Verify.PublicKey, cfg.Verify.PublicKeyFile)
	if err != nil {
		return nil, fmt.Errorf("init snapshot verifier: %w", err)
	}
	if v == nil {
		return reader.New(), nil
	}
	return reader.New(reader.WithVerifier(v, verify.SignaturePath)), nil
}

func (a *App) newWebhook(cfg config.Config) (*transport.Webhook, error) {
	if err := cfg.RequireWebhook(); err != nil {
		return nil, err
	}
	return transport.NewWebhook(
		transport.WebhookConfig{URL: cfg.Webhook.URL, Type: cfg.Webhook.Type},
		transport.Dependencies{HTTPClient: a.HTTPClient, Logger: a.Logger},
	)
}

func (a *App) newBot(cfg config.Config) (*transport.DiscordBot, error) {
	if err := cfg.RequireBot(); err != nil {
		return nil, err
	}
	return transport.NewDiscordBot(
		transport.BotConfig{Token: cfg.Bot.Token, ChannelID: cfg.Bot.ChannelID, APIBase: cfg.Bot.APIBase},
		transport.Dependencies{HTTPClient: a.HTTPClient, Logger: a.Logger},
	)
}

// newRunner wires the pipeline for cfg. A nil sender records transitions without sending.
func (a *App) newRunner(cfg config.Config, rd runner.SnapshotReader, sender transport.Sender, rec events.Recorder, opts ...runner.Option) *runner.Runner {
	base := []runner.Option{
		runner.WithReader(rd),
		runner.WithRecorder(events.NewMulti(events.NewLogRecorder(a.Logger), rec)),
		runner.WithLogger(a.Logger),
		runner.WithPacing(cfg.PacingInterval()),
		runner.WithNotifyOnEveryCheck(cfg.NotifyOnCheck),
		runner.WithLocation(cfg.Location()),
		runner.WithHistoryPath(cfg.HistoryPath),
		runner.WithNow(a.Now),
	}
	if sender != nil {
		base = append(base, runner.WithSender(sender))
	}
	return runner.New(cfg.Endpoints, append(base, opts...)...)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
