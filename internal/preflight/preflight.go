package preflight

import (
	"context"

	"seasonmap/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Services holds the remote checks. Nil fields are skipped.
type Services struct {
	TMDB      HealthChecker
	AniList   HealthChecker
	Requester Requester
}

// RunAll executes every applicable check for the given config.
func RunAll(ctx context.Context, cfg *config.Config, svc Services) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Output directory", parentDir(cfg.Paths.OutputFile)))
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	if svc.TMDB != nil {
		results = append(results, CheckService(ctx, "TMDB", svc.TMDB))
	}
	if svc.AniList != nil {
		results = append(results, CheckService(ctx, "AniList", svc.AniList))
	}
	if svc.Requester != nil {
		results = append(results, CheckReachable(ctx, "Mapping dataset", svc.Requester, cfg.Mapping.URL))
	}
	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
