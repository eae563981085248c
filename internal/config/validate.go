package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pingsantohq/statusnotify/pkg/types"
)

// Normalize fills defaults and canonicalizes enumerated values in place.
func (c *Config) Normalize() {
	c.Webhook.URL = strings.TrimSpace(c.Webhook.URL)
	c.Webhook.Type = strings.ToLower(strings.TrimSpace(c.Webhook.Type))
	if c.Webhook.Type == "" {
		c.Webhook.Type = DefaultWebhookType
	}
	if strings.TrimSpace(c.HistoryFile) == "" {
		c.HistoryFile = DefaultHistoryFile
	}
	if strings.TrimSpace(c.Timezone) == "" {
		c.Timezone = defaultTimezoneName
	}
	if strings.TrimSpace(c.Bot.APIBase) == "" {
		c.Bot.APIBase = DefaultDiscordAPI
	}
	if strings.TrimSpace(c.Watch.Schedule) == "" {
		c.Watch.Schedule = DefaultSchedule
	}
	if strings.TrimSpace(c.Watch.MetricsAddr) == "" {
		c.Watch.MetricsAddr = DefaultMetricsAddr
	}
	for i := range c.Endpoints {
		ep := &c.Endpoints[i]
		ep.Name = strings.TrimSpace(ep.Name)
		ep.Source = types.Source(strings.ToLower(strings.TrimSpace(string(ep.Source))))
		if ep.Source == "" {
			ep.Source = types.SourceBadges
		}
	}
}

// Validate checks a normalized configuration.
func (c Config) Validate() error {
	var errs []error

	switch c.Webhook.Type {
	case WebhookSlack, WebhookDiscord, WebhookCustom:
	default:
		errs = append(errs, fmt.Errorf("webhook.type %q is not one of slack, discord, custom", c.Webhook.Type))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
	}

	if c.Pacing != nil && *c.Pacing < 0 {
		errs = append(errs, errors.New("pacing must not be negative"))
	}

	seen := make(map[string]struct{}, len(c.Endpoints))
	for i, ep := range c.Endpoints {
		if ep.Name == "" {
			errs = append(errs, fmt.Errorf("endpoints[%d]: name is required", i))
			continue
		}
		if _, dup := seen[ep.Name]; dup {
			errs = append(errs, fmt.Errorf("endpoints[%d]: duplicate name %q", i, ep.Name))
		}
		seen[ep.Name] = struct{}{}

		switch ep.Source {
		case types.SourceBadges:
			if strings.TrimSpace(ep.DataPath) == "" {
				errs = append(errs, fmt.Errorf("endpoint %q: data_path is required for badge source", ep.Name))
			}
		case types.SourceRecord:
			if strings.TrimSpace(ep.RecordFile) == "" {
				errs = append(errs, fmt.Errorf("endpoint %q: record_file is required for record source", ep.Name))
			}
		default:
			errs = append(errs, fmt.Errorf("endpoint %q: unknown source %q", ep.Name, ep.Source))
		}
	}

	return errors.Join(errs...)
}
