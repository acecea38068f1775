package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

type cliTestEnv struct {
	server       *httptest.Server
	configPath   string
	inputPath    string
	outputPath   string
	anilistCalls atomic.Int32
	mappingCalls atomic.Int32

	mu            sync.Mutex
	notifications []string
}

func (env *cliTestEnv) sentNotifications() []string {
	env.mu.Lock()
	defer env.mu.Unlock()
	return append([]string(nil), env.notifications...)
}

// setupCLITestEnv serves a small mapping dataset, AniList, and TMDB from one
// httptest server and writes a config pointing at it.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("TMDB_API_KEY", "")

	env := &cliTestEnv{
		configPath: filepath.Join(base, "config.toml"),
		inputPath:  filepath.Join(base, "ids.txt"),
		outputPath: filepath.Join(base, "out", "results.json"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/mapping.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			env.mappingCalls.Add(1)
		}
		fmt.Fprint(w, `[
			{"anilist_id": 20958, "themoviedb_id": 1429},
			{"anilist_id": 30, "themoviedb_id": 300},
			{"anilist_id": 40}
		]`)
	})
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables struct {
				ID int64 `json:"id"`
			} `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Variables.ID != 0 {
			env.anilistCalls.Add(1)
		}
		switch req.Variables.ID {
		case 20958:
			fmt.Fprint(w, `{"data":{"Media":{"startDate":{"year":2017,"month":4,"day":1},"title":{"romaji":"Shingeki no Kyojin 2","english":"Attack on Titan Season 2"}}}}`)
		case 30:
			fmt.Fprint(w, `{"data":{"Media":{"startDate":{"year":2021,"month":6,"day":0},"title":{"romaji":"Upcoming"}}}}`)
		default:
			fmt.Fprint(w, `{"data":{"Media":null}}`)
		}
	})
	mux.HandleFunc("/ntfy", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		env.mu.Lock()
		env.notifications = append(env.notifications, r.Header.Get("Title")+": "+string(body))
		env.mu.Unlock()
	})
	mux.HandleFunc("/3/configuration", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			http.Error(w, `{"status_message":"Invalid API key"}`, http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"images":{}}`)
	})
	mux.HandleFunc("/3/tv/1429", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			http.Error(w, `{"status_message":"Invalid API key"}`, http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"id":1429,"seasons":[
			{"id":1,"name":"Season 1","season_number":1,"air_date":"2013-04-07","episode_count":25},
			{"id":2,"name":"Season 2","season_number":2,"air_date":"2017-04-01","episode_count":12}
		]}`)
	})
	env.server = httptest.NewServer(mux)
	t.Cleanup(env.server.Close)

	content := fmt.Sprintf(`[paths]
input_file = %q
output_file = %q
log_dir = %q

[tmdb]
api_key = "test-key"
base_url = %q

[anilist]
url = %q

[mapping]
url = %q

[notifications]
ntfy_topic = %q

[logging]
level = "error"
`,
		env.inputPath,
		env.outputPath,
		filepath.Join(base, "logs"),
		env.server.URL+"/3",
		env.server.URL+"/graphql",
		env.server.URL+"/mapping.json",
		env.server.URL+"/ntfy",
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (env *cliTestEnv) writeInput(t *testing.T, lines ...string) {
	t.Helper()
	if err := os.WriteFile(env.inputPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
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
