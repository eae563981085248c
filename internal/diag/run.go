package diag

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pingsantohq/statusnotify/internal/classify"
	"github.com/pingsantohq/statusnotify/internal/config"
	"github.com/pingsantohq/statusnotify/internal/history"
	"github.com/pingsantohq/statusnotify/internal/reader"
	"github.com/pingsantohq/statusnotify/internal/verify"
	"github.com/pingsantohq/statusnotify/pkg/types"
)

// Options select what the diagnostics pass inspects and where the bundle goes.
type Options struct {
	ConfigPath string
	// Output is the tar.gz bundle path; empty skips the bundle.
	Output         string
	MetricsURL     string
	MetricsTimeout time.Duration
}

// Dependencies provides optional overrides for testing.
type Dependencies struct {
	Now        func() time.Time
	HTTPClient *http.Client
	Lookup     config.LookupFunc
}

// Report is the diagnostics summary, also written as diagnostics/info.json in the bundle.
type Report struct {
	GeneratedAt   string           `json:"generated_at"`
	GoVersion     string           `json:"go_version"`
	OutputPath    string           `json:"output_path,omitempty"`
	ConfigPath    string           `json:"config_path,omitempty"`
	Webhook       *WebhookSummary  `json:"webhook,omitempty"`
	Bot           *BotSummary      `json:"bot,omitempty"`
	NotifyOnCheck bool             `json:"notify_on_check"`
	Timezone      string           `json:"timezone,omitempty"`
	Pacing        string           `json:"pacing,omitempty"`
	Verified      bool             `json:"signature_verification"`
	Endpoints     []EndpointReport `json:"endpoints,omitempty"`
	History       []HistoryReport  `json:"history,omitempty"`
	Metrics       *MetricsSummary  `json:"metrics,omitempty"`
	Warnings      []string         `json:"warnings,omitempty"`
}

type WebhookSummary struct {
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

type BotSummary struct {
	ChannelID string `json:"channel_id,omitempty"`
	TokenSet  bool   `json:"token_set"`
}

// EndpointReport is the dry-run classification of one endpoint. History is not modified.
type EndpointReport struct {
	Name           string       `json:"name"`
	Source         types.Source `json:"source"`
	Input          string       `json:"input"`
	HistoryFile    string       `json:"history_file"`
	Status         types.Status `json:"status,omitempty"`
	PreviousStatus types.Status `json:"previous_status,omitempty"`
	ResponseTime   string       `json:"response_time,omitempty"`
	Uptime         string       `json:"uptime,omitempty"`
	Error          string       `json:"error,omitempty"`
}

type HistoryReport struct {
	Path    string `json:"path"`
	Entries int    `json:"entries"`
	Error   string `json:"error,omitempty"`
}

type MetricsSummary struct {
	URL          string   `json:"url"`
	Runs         *uint64  `json:"runs_total,omitempty"`
	SendFailures *uint64  `json:"send_failures_total,omitempty"`
	Ready        *float64 `json:"ready,omitempty"`
}

// Run inspects configuration, inputs, and history without sending anything. Problems are
// reported as warnings; only a failure to write the requested bundle is returned as an error.
func Run(ctx context.Context, opts Options, deps Dependencies) (Report, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Lookup == nil {
		deps.Lookup = os.LookupEnv
	}

	report := Report{
		GeneratedAt: deps.Now().UTC().Format(time.RFC3339),
		GoVersion:   runtime.Version(),
		OutputPath:  opts.Output,
		Warnings:    make([]string, 0, 4),
	}
	var files []bundleFile

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigPath
	}
	cfg, err := config.Resolve(ctx, configPath, deps.Lookup)
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("config unavailable (%s): %v", configPath, err))
	} else {
		report.ConfigPath = configPath
		summarizeConfig(&report, cfg)
	}
	if data, err := os.ReadFile(configPath); err == nil {
		files = append(files, bundleFile{
			name: filepath.ToSlash(filepath.Join(configDirName, filepath.Base(configPath))),
			data: []byte(RedactText(string(data))),
		})
	} else if !errors.Is(err, os.ErrNotExist) {
		report.Warnings = append(report.Warnings, fmt.Sprintf("unable to read config %q: %v", configPath, err))
	}

	var readerOpts []reader.Option
	verifier, err := verify.FromConfig(cfg.Verify.PublicKey, cfg.Verify.PublicKeyFile)
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("signature verifier unavailable: %v", err))
	} else if verifier != nil {
		report.Verified = true
		readerOpts = append(readerOpts, reader.WithVerifier(verifier, verify.SignaturePath))
	}
	rd := reader.New(readerOpts...)

	histories := make(map[string]types.History)
	for _, ep := range cfg.Endpoints {
		path := cfg.HistoryPath(ep)
		hist, seen := histories[path]
		if !seen {
			var herr error
			hist, herr = history.NewStore(path).Load(ctx)
			histories[path] = hist
			hr := HistoryReport{Path: path, Entries: len(hist)}
			if herr != nil {
				hr.Error = herr.Error()
				report.Warnings = append(report.Warnings, fmt.Sprintf("history %q: %v", path, herr))
			}
			report.History = append(report.History, hr)
			if data, err := os.ReadFile(path); err == nil {
				files = append(files, bundleFile{
					name: filepath.ToSlash(filepath.Join(historyDirName, sanitizeFilename(path))),
					data: data,
				})
			}
		}
		report.Endpoints = append(report.Endpoints, inspectEndpoint(ctx, rd, ep, path, hist))
	}

	if opts.MetricsURL != "" {
		data, err := scrapeMetrics(ctx, deps.HTTPClient, opts.MetricsURL, opts.MetricsTimeout)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("metrics scrape failed: %v", err))
		} else {
			files = append(files, bundleFile{name: filepath.ToSlash(filepath.Join(observabilityDir, "metrics.prom")), data: data})
			summary, warns := summarizeMetrics(data, opts.MetricsURL)
			report.Metrics = summary
			report.Warnings = append(report.Warnings, warns...)
		}
	}

	if opts.Output != "" {
		if err := writeBundle(opts.Output, report, files); err != nil {
			return report, err
		}
	}
	return report, nil
}

func summarizeConfig(report *Report, cfg config.Config) {
	report.NotifyOnCheck = cfg.NotifyOnCheck
	report.Timezone = cfg.Location().String()
	report.Pacing = cfg.PacingInterval().String()
	if cfg.Webhook.URL != "" {
		report.Webhook = &WebhookSummary{Type: cfg.Webhook.Type, URL: RedactURL(cfg.Webhook.URL)}
	} else {
		report.Warnings = append(report.Warnings, "no webhook url configured")
	}
	if cfg.Bot.ChannelID != "" || cfg.Bot.Token != "" {
		report.Bot = &BotSummary{ChannelID: cfg.Bot.ChannelID, TokenSet: cfg.Bot.Token != ""}
	}
	if len(cfg.Endpoints) == 0 {
		report.Warnings = append(report.Warnings, "no endpoints configured")
	}
}

func inspectEndpoint(ctx context.Context, rd *reader.Reader, ep types.Endpoint, historyPath string, hist types.History) EndpointReport {
	out := EndpointReport{
		Name:        ep.Name,
		Source:      ep.Source,
		Input:       ep.DataPath,
		HistoryFile: historyPath,
	}
	if ep.Source == types.SourceRecord {
		out.Input = ep.RecordFile
	}
	if rec, ok := hist[ep.Name]; ok {
		out.PreviousStatus = rec.Status
	}
	snap, err := rd.Read(ctx, ep)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Status = classify.Classify(snap.Signal)
	out.ResponseTime = snap.ResponseTime
	out.Uptime = snap.Uptime
	return out
}

func scrapeMetrics(ctx context.Context, client *http.Client, url string, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/plain")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func summarizeMetrics(data []byte, url string) (*MetricsSummary, []string) {
	summary := &MetricsSummary{URL: url}
	var warnings []string
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		var target any
		switch fields[0] {
		case "statusnotify_runs_total":
			target = &summary.Runs
		case "statusnotify_send_failures_total":
			target = &summary.SendFailures
		case "statusnotify_ready":
			target = &summary.Ready
		default:
			continue
		}
		val, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("parse %s: %v", fields[0], err))
			continue
		}
		switch p := target.(type) {
		case **uint64:
			v := uint64(val)
			*p = &v
		case **float64:
			*p = &val
		}
	}
	return summary, warnings
}
