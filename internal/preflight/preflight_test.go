package preflight

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"seasonmap/internal/config"
	"seasonmap/internal/httpretry"
)

type stubChecker struct {
	err error
}

func (s stubChecker) HealthCheck(context.Context) error { return s.err }

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckService(t *testing.T) {
	if result := CheckService(context.Background(), "TMDB", stubChecker{}); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	result := CheckService(context.Background(), "TMDB", stubChecker{err: errors.New("tmdb rejected the api key (401)")})
	if result.Passed || result.Detail != "tmdb rejected the api key (401)" {
		t.Fatalf("unexpected result: %#v", result)
	}
	result = CheckService(context.Background(), "TMDB", stubChecker{err: context.DeadlineExceeded})
	if result.Detail != "health check timed out" {
		t.Fatalf("unexpected timeout detail: %q", result.Detail)
	}
}

func TestCheckReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	exec := httpretry.New(nil, httpretry.WithMaxAttempts(1))
	if result := CheckReachable(context.Background(), "Mapping", exec, srv.URL+"/list.json"); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckReachable(context.Background(), "Mapping", exec, srv.URL+"/missing"); result.Passed {
		t.Fatal("expected failure for 404")
	}
	if result := CheckReachable(context.Background(), "Mapping", exec, ""); result.Passed {
		t.Fatal("expected failure for missing url")
	}
}

func TestRunAllAndFailed(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputFile = filepath.Join(base, "results.json")
	cfg.Paths.LogDir = filepath.Join(base, "missing-logs")

	results := RunAll(context.Background(), &cfg, Services{
		TMDB:    stubChecker{},
		AniList: stubChecker{err: errors.New("anilist returned 503")},
	})
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d: %#v", len(results), results)
	}
	failed := Failed(results)
	if len(failed) != 2 {
		t.Fatalf("expected log dir and anilist to fail, got %#v", failed)
	}
	if failed[0].Name != "Log directory" || failed[1].Name != "AniList" {
		t.Fatalf("unexpected failures: %#v", failed)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, Services{}); results != nil {
		t.Fatalf("expected nil, got %#v", results)
	}
}
