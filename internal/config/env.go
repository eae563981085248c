package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pingsantohq/statusnotify/pkg/types"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

const (
	EnvWebhookURL        = "WEBHOOK_URL"
	EnvDiscordWebhookURL = "NOTIFICATION_DISCORD_WEBHOOK_URL"
	EnvWebhookType       = "WEBHOOK_TYPE"
	EnvNotifyOnCheck     = "NOTIFY_ON_CHECK"
	EnvHistoryFile       = "STATUS_HISTORY_FILE"
	EnvBotToken          = "BOT_TOKEN"
	envBotTokenLegacy    = "bot_token"

	EnvSiteName     = "SITE_NAME"
	EnvSiteURL      = "SITE_URL"
	EnvSiteStatus   = "SITE_STATUS"
	EnvResponseTime = "RESPONSE_TIME"
	EnvUptime       = "UPTIME"
	EnvLastChecked  = "LAST_CHECKED"
)

// ApplyEnv overlays environment keys onto the file configuration. Set keys win.
func (c *Config) ApplyEnv(lookup LookupFunc) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := nonEmpty(lookup, EnvWebhookURL); ok {
		c.Webhook.URL = v
	} else if v, ok := nonEmpty(lookup, EnvDiscordWebhookURL); ok && c.Webhook.URL == "" {
		c.Webhook.URL = v
		if c.Webhook.Type == "" {
			c.Webhook.Type = WebhookDiscord
		}
	}
	if v, ok := nonEmpty(lookup, EnvWebhookType); ok {
		c.Webhook.Type = v
	}
	if v, ok := lookup(EnvNotifyOnCheck); ok {
		c.NotifyOnCheck = v == "true"
	}
	if v, ok := nonEmpty(lookup, EnvHistoryFile); ok {
		c.HistoryFile = v
	}
	if v, ok := nonEmpty(lookup, EnvBotToken); ok {
		c.Bot.Token = v
	} else if v, ok := nonEmpty(lookup, envBotTokenLegacy); ok {
		c.Bot.Token = v
	}
}

// SiteCheck is a single pre-classified observation handed over through the environment.
type SiteCheck struct {
	Endpoint     types.Endpoint
	Status       types.Status
	ResponseTime string
	Uptime       string
	CheckedAt    time.Time
}

// SiteFromEnv reads the single-site keys used by the notify command.
func SiteFromEnv(lookup LookupFunc, now time.Time) (SiteCheck, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	site := SiteCheck{
		Endpoint: types.Endpoint{
			Name: envOr(lookup, EnvSiteName, "Unknown Site"),
			URL:  envOr(lookup, EnvSiteURL, ""),
		},
		Status:       types.Status(strings.TrimSpace(envOr(lookup, EnvSiteStatus, string(types.StatusUp)))),
		ResponseTime: envOr(lookup, EnvResponseTime, "0"),
		Uptime:       envOr(lookup, EnvUptime, "0%"),
		CheckedAt:    now.UTC(),
	}
	if raw, ok := nonEmpty(lookup, EnvLastChecked); ok {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return SiteCheck{}, fmt.Errorf("parse %s %q: %w", EnvLastChecked, raw, err)
		}
		site.CheckedAt = ts.UTC()
	}
	return site, nil
}

func nonEmpty(lookup LookupFunc, key string) (string, bool) {
	v, ok := lookup(key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func envOr(lookup LookupFunc, key, fallback string) string {
	if v, ok := nonEmpty(lookup, key); ok {
		return v
	}
	return fallback
}
