package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"seasonmap/internal/httpretry"
)

const checkTimeout = 15 * time.Second

// HealthChecker is implemented by the TMDB and AniList clients.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Requester is the subset of httpretry.Executor used for reachability checks.
type Requester interface {
	Do(ctx context.Context, method, rawURL string, opts httpretry.Options) (*httpretry.Response, bool)
}

// CheckService runs a client health check with a bounded timeout.
func CheckService(ctx context.Context, name string, checker HealthChecker) Result {
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := checker.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckReachable issues a HEAD request and passes on a 2xx response.
func CheckReachable(ctx context.Context, name string, requester Requester, rawURL string) Result {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Result{Name: name, Detail: "missing url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	resp, ok := requester.Do(checkCtx, http.MethodHead, rawURL, httpretry.Options{})
	if !ok {
		return Result{Name: name, Detail: fmt.Sprintf("%s (unreachable)", rawURL)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (status %d)", rawURL, resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func parentDir(path string) string {
	if strings.TrimSpace(path) == "" {
		return "."
	}
	return filepath.Dir(path)
}

func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (unreachable)"
	}
	return err.Error()
}
