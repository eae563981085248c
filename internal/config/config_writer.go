package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pingsantohq/statusnotify/pkg/types"
)

// WriteFile atomically replaces path with data.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("ensure dir %q: %w", dir, err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write temp file %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit file %q: %w", path, err)
	}

	return nil
}

// WriteConfig serializes cfg as YAML to path.
func WriteConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return WriteFile(path, data, 0o640)
}

// Example returns the starter configuration written by `statusnotify init`.
func Example() Config {
	pacing := DefaultPacing
	return Config{
		Webhook:     WebhookConfig{URL: "", Type: WebhookDiscord},
		HistoryFile: DefaultHistoryFile,
		Pacing:      &pacing,
		Timezone:    defaultTimezoneName,
		Watch: WatchConfig{
			Schedule:    DefaultSchedule,
			MetricsAddr: DefaultMetricsAddr,
		},
		Endpoints: []types.Endpoint{
			{Name: "primary-api", URL: "https://api.example.com", DataPath: "api/primary-api", Source: types.SourceBadges},
			{Name: "upstream-data", URL: "https://data.example.com", DataPath: "api/upstream-data", Source: types.SourceBadges},
			{Name: "notify-page", URL: "https://notify.example.com", DataPath: "api/notify-page", Source: types.SourceBadges},
		},
	}
}
