package diag

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func noEnv(string) (string, bool) { return "", false }

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestRunProducesBundle(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "api")
	writeFile(t, filepath.Join(data, "response-time.json"), `{"schemaVersion":1,"label":"response time","message":"240 ms","color":"green"}`)
	writeFile(t, filepath.Join(data, "uptime.json"), `{"schemaVersion":1,"label":"uptime","message":"100%","color":"brightgreen"}`)
	historyPath := filepath.Join(dir, "history.json")
	writeFile(t, historyPath, `{"API":{"status":"down","lastChecked":"2024-01-01T00:00:00Z","responseTime":"0","uptime":"90%","timestamp":1}}`)

	configPath := filepath.Join(dir, "statusnotify.yaml")
	writeFile(t, configPath, strings.Join([]string{
		"webhook:",
		"  url: https://hooks.slack.com/services/T000/B000/secretvalue",
		"  type: slack",
		"history_file: " + historyPath,
		"endpoints:",
		"  - name: API",
		"    data_path: " + data,
		"  - name: Missing",
		"    data_path: " + filepath.Join(dir, "missing"),
		"",
	}, "\n"))

	metricsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("statusnotify_runs_total 4\nstatusnotify_send_failures_total 1\nstatusnotify_ready 1\n"))
	}))
	defer metricsSrv.Close()

	output := filepath.Join(dir, "out", "diag.tar.gz")
	report, err := Run(context.Background(), Options{
		ConfigPath: configPath,
		Output:     output,
		MetricsURL: metricsSrv.URL,
	}, Dependencies{
		Now:        func() time.Time { return time.Unix(1700000000, 0) },
		HTTPClient: metricsSrv.Client(),
		Lookup:     noEnv,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Webhook == nil || report.Webhook.URL != "https://hooks.slack.com/REDACTED" {
		t.Fatalf("expected redacted webhook, got %+v", report.Webhook)
	}
	if len(report.Endpoints) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(report.Endpoints))
	}
	api := report.Endpoints[0]
	if api.Status != "up" || api.PreviousStatus != "down" || api.ResponseTime != "240" {
		t.Fatalf("unexpected endpoint report %+v", api)
	}
	if report.Endpoints[1].Error == "" {
		t.Fatalf("expected error for missing endpoint input")
	}
	if len(report.History) != 1 || report.History[0].Entries != 1 {
		t.Fatalf("unexpected history report %+v", report.History)
	}
	if report.Metrics == nil || report.Metrics.Runs == nil || *report.Metrics.Runs != 4 {
		t.Fatalf("unexpected metrics summary %+v", report.Metrics)
	}

	entries := readBundle(t, output)
	cfgData, ok := entries["config/statusnotify.yaml"]
	if !ok {
		t.Fatalf("bundle missing config, entries: %v", keys(entries))
	}
	if strings.Contains(cfgData, "secretvalue") {
		t.Fatalf("config in bundle was not redacted:\n%s", cfgData)
	}
	if _, ok := entries["observability/metrics.prom"]; !ok {
		t.Fatalf("bundle missing metrics snapshot")
	}
	var info Report
	if err := json.Unmarshal([]byte(entries[infoFileName]), &info); err != nil {
		t.Fatalf("decode info: %v", err)
	}
	if info.GeneratedAt != "2023-11-14T22:13:20Z" {
		t.Fatalf("unexpected generated_at %q", info.GeneratedAt)
	}

	after, err := os.ReadFile(historyPath)
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	if !strings.Contains(string(after), `"down"`) {
		t.Fatalf("diagnostics must not modify history")
	}
}

func TestRunWithoutConfig(t *testing.T) {
	report, err := Run(context.Background(), Options{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")}, Dependencies{Lookup: noEnv})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Warnings) == 0 || !strings.Contains(report.Warnings[0], "config unavailable") {
		t.Fatalf("expected config warning, got %v", report.Warnings)
	}
}

func TestRedactText(t *testing.T) {
	in := "url: https://discord.com/api/webhooks/123/abcDEF\nAuthorization: Bot xyz.123\nnext?token=abc"
	out := RedactText(in)
	for _, secret := range []string{"abcDEF", "xyz.123", "token=abc"} {
		if strings.Contains(out, secret) {
			t.Fatalf("expected %q to be redacted:\n%s", secret, out)
		}
	}
	if !strings.Contains(out, "https://discord.com/api/webhooks/REDACTED") {
		t.Fatalf("unexpected redaction:\n%s", out)
	}
}

func TestRedactURL(t *testing.T) {
	cases := map[string]string{
		"":                                  "",
		"https://example.com":               "https://example.com",
		"https://example.com/hooks/abc?x=1": "https://example.com/REDACTED",
		"not a url":                         "REDACTED",
	}
	for in, want := range cases {
		if got := RedactURL(in); got != want {
			t.Fatalf("RedactURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func readBundle(t *testing.T, path string) map[string]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open bundle: %v", err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}
	tr := tar.NewReader(gz)
	out := make(map[string]string)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("tar: %v", err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("read %s: %v", hdr.Name, err)
		}
		out[hdr.Name] = string(data)
	}
	return out
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
