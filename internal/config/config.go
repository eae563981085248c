package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pingsantohq/statusnotify/pkg/types"
)

const (
	envConfigPath     = "STATUSNOTIFY_CONFIG"
	DefaultConfigPath = "statusnotify.yaml"

	DefaultHistoryFile  = "status-history.json"
	DefaultWebhookType  = WebhookSlack
	DefaultPacing       = time.Second
	DefaultSchedule     = "*/5 * * * *"
	DefaultMetricsAddr  = "127.0.0.1:9320"
	DefaultDiscordAPI   = "https://discord.com/api/v10"
	defaultTimezoneName = "UTC"
)

const (
	WebhookSlack   = "slack"
	WebhookDiscord = "discord"
	WebhookCustom  = "custom"
)

// Config is built once per invocation and passed explicitly to every component.
type Config struct {
	Webhook       WebhookConfig    `yaml:"webhook"`
	NotifyOnCheck bool             `yaml:"notify_on_check"`
	HistoryFile   string           `yaml:"history_file"`
	Pacing        *time.Duration   `yaml:"pacing"`
	Timezone      string           `yaml:"timezone"`
	Verify        VerifyConfig     `yaml:"verify"`
	Bot           BotConfig        `yaml:"bot"`
	Watch         WatchConfig      `yaml:"watch"`
	Endpoints     []types.Endpoint `yaml:"endpoints"`
}

type WebhookConfig struct {
	URL  string `yaml:"url"`
	Type string `yaml:"type"`
}

type VerifyConfig struct {
	PublicKey     string `yaml:"public_key"`
	PublicKeyFile string `yaml:"public_key_file"`
}

type BotConfig struct {
	ChannelID string `yaml:"channel_id"`
	APIBase   string `yaml:"api_base"`
	// Token is only ever taken from the environment.
	Token string `yaml:"-"`
}

type WatchConfig struct {
	Schedule    string `yaml:"schedule"`
	MetricsAddr string `yaml:"metrics_addr"`
}

func Load(ctx context.Context, path string) (Config, error) {
	var cfg Config

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("open config %q: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}

	return cfg, nil
}

// Path resolves the config path from an explicit flag value, STATUSNOTIFY_CONFIG, or the default.
func Path(flagValue string, lookup LookupFunc) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if path, ok := nonEmpty(lookup, envConfigPath); ok {
		return path
	}
	return DefaultConfigPath
}

// Resolve is the full load pipeline used by the CLI. A missing file at the default path is not an
// error; the environment alone may carry a usable configuration.
func Resolve(ctx context.Context, path string, lookup LookupFunc) (Config, error) {
	cfg, err := Load(ctx, path)
	if err != nil {
		if !(errors.Is(err, os.ErrNotExist) && path == DefaultConfigPath) {
			return Config{}, err
		}
		cfg = Config{}
	}
	cfg.ApplyEnv(lookup)
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// PacingInterval is the minimum spacing between two endpoint checks.
func (c Config) PacingInterval() time.Duration {
	if c.Pacing == nil {
		return DefaultPacing
	}
	if *c.Pacing < 0 {
		return 0
	}
	return *c.Pacing
}

// Location returns the time zone used when rendering check timestamps.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HistoryPath returns the history file an endpoint's record lives in.
func (c Config) HistoryPath(ep types.Endpoint) string {
	if ep.HistoryFile != "" {
		return ep.HistoryFile
	}
	return c.HistoryFile
}

// RequireWebhook reports whether a webhook destination is configured.
func (c Config) RequireWebhook() error {
	if strings.TrimSpace(c.Webhook.URL) == "" {
		return errors.New("webhook url is required (set webhook.url or WEBHOOK_URL)")
	}
	return nil
}

// RequireBot reports whether a bot session can be opened.
func (c Config) RequireBot() error {
	if strings.TrimSpace(c.Bot.Token) == "" {
		return errors.New("bot token is required (set BOT_TOKEN)")
	}
	if strings.TrimSpace(c.Bot.ChannelID) == "" {
		return errors.New("bot channel_id is required")
	}
	return nil
}
