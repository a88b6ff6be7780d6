package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type cliTestEnv struct {
	baseDir       string
	configPath    string
	cataloguePath string
}

func feedEntry(id, title string, published time.Time) string {
	return fmt.Sprintf(`<entry><id>yt:video:%[1]s</id><yt:videoId>%[1]s</yt:videoId><title>%[2]s</title><published>%[3]s</published></entry>`,
		id, title, published.Format(time.RFC3339))
}

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	now := time.Now().UTC()
	feeds := map[string][]string{
		"UClim":    {feedEntry("vid1", "NickA POV on Mirage", now.Add(-72*time.Hour))},
		"UCnebula": {feedEntry("vid2", "NickA POV on Nuke", now.Add(-48*time.Hour)), feedEntry("vid3", "mystery clip", now.Add(-24*time.Hour))},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/feeds/videos.xml", func(w http.ResponseWriter, r *http.Request) {
		entries, ok := feeds[r.URL.Query().Get("channel_id")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns="http://www.w3.org/2005/Atom"><title>channel</title>%s</feed>`,
			strings.Join(entries, ""))
	})
	mux.HandleFunc("/ranking", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"teams":[{"teamName":"TeamX","players":[{"nickname":"NickA"}]},{"name":"TeamY","players":["other"]}]}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	for _, key := range []string{"YT_API_KEY", "POVCAT_REDIS_ADDR", "POVCAT_THRESHOLD", "POVCAT_HORIZON_DAYS", "POVCAT_CATALOGUE_PATH", "POVCAT_S3_BUCKET"} {
		t.Setenv(key, "")
	}
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	server := newUpstream(t)

	env := &cliTestEnv{
		baseDir:       base,
		configPath:    filepath.Join(base, "config.toml"),
		cataloguePath: filepath.Join(base, "data", "videos.json"),
	}
	content := fmt.Sprintf(`[paths]
state_dir = %q
log_dir = %q

[youtube]
source = "feed"
feed_url = %q

[[channels]]
label = "lim"
handle = "UClim"

[[channels]]
label = "nebula"
handle = "UCnebula"

[ranking]
format = "json"
teams_url = %q

[gate]
threshold = 2

[catalogue]
path = %q

[logging]
level = "error"
`,
		filepath.Join(base, "state"),
		filepath.Join(base, "logs"),
		server.URL+"/feeds/videos.xml",
		server.URL+"/ranking",
		env.cataloguePath,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestRunBuildsCatalogue(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"run", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var report struct {
		Status   string `json:"status"`
		Entries  int    `json:"entries"`
		Resolved int    `json:"resolved"`
		Promoted []struct {
			Nickname string `json:"nickname"`
			Count    int    `json:"count"`
		} `json:"promoted"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if report.Status != "ok" || report.Entries != 3 || report.Resolved != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(report.Promoted) != 1 || report.Promoted[0].Nickname != "NickA" || report.Promoted[0].Count != 2 {
		t.Fatalf("unexpected promoted %+v", report.Promoted)
	}

	raw, err := os.ReadFile(env.cataloguePath)
	if err != nil {
		t.Fatalf("read catalogue: %v", err)
	}
	var entries []map[string]any
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("decode catalogue: %v", err)
	}
	if len(entries) != 3 || entries[0]["id"] != "vid3" || entries[0]["player"] != nil {
		t.Fatalf("unexpected catalogue %s", raw)
	}
	if entries[2]["player"] != "NickA" || entries[2]["team"] != "TeamX" || entries[2]["map"] != "mirage" {
		t.Fatalf("unexpected oldest entry %v", entries[2])
	}
}

func TestRootCommandRunsPipeline(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, nil, env.configPath)
	if err != nil {
		t.Fatalf("povcat: %v", err)
	}
	requireContains(t, out, "3 entries written")
	requireContains(t, out, "Promoted players")
	if _, err := os.Stat(env.cataloguePath); err != nil {
		t.Fatalf("expected catalogue: %v", err)
	}
}

func TestStatsAndHistoryAfterRun(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"run"}, env.configPath); err != nil {
		t.Fatalf("run: %v", err)
	}

	out, _, err := runCLI(t, []string{"stats", "--top", "5"}, env.configPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	requireContains(t, out, "NickA")
	requireContains(t, out, "TeamX")
	requireContains(t, out, "nebula")
	requireContains(t, out, "2 (67%)")

	out, _, err = runCLI(t, []string{"history", "--limit", "5"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "incremental")
	requireContains(t, out, "ok")
}

func TestWhitelistCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"whitelist", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("whitelist: %v", err)
	}
	var payload struct {
		Status  string             `json:"status"`
		Players map[string]*string `json:"players"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode whitelist: %v\n%s", err, out)
	}
	if payload.Status != "ok" || len(payload.Players) != 2 {
		t.Fatalf("unexpected whitelist %+v", payload)
	}
	if team := payload.Players["NickA"]; team == nil || *team != "TeamX" {
		t.Fatalf("unexpected team for NickA: %v", team)
	}

	out, _, err = runCLI(t, []string{"whitelist"}, env.configPath)
	if err != nil {
		t.Fatalf("whitelist table: %v", err)
	}
	requireContains(t, out, "2 players")
	requireContains(t, out, "TeamY")
}

func TestStatsOnEmptyCatalogue(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"stats"}, env.configPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	requireContains(t, out, "is empty")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Channels: 2")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Warning: youtube.api_key is required")
}

func TestRunRejectsMissingAPIKey(t *testing.T) {
	env := setupCLITestEnv(t)
	cfg, err := os.ReadFile(env.configPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	apiConfig := strings.Replace(string(cfg), `source = "feed"`, `source = "api"`, 1)
	if err := os.WriteFile(env.configPath, []byte(apiConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, err = runCLI(t, []string{"run"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "api_key") {
		t.Fatalf("expected missing key error, got %v", err)
	}
	if _, statErr := os.Stat(env.cataloguePath); !os.IsNotExist(statErr) {
		t.Fatal("catalogue must not be written without credentials")
	}
}
