// Package matcher picks the TMDB season whose air date is closest to an
// AniList premiere date.
package matcher

import (
	"time"

	"seasonmap/internal/tmdb"
)

// DefaultTolerance is the maximum day difference accepted as a match.
const DefaultTolerance = 7

// Month and day may be one or two digits, so "2017-4-1" parses too.
const dateLayout = "2006-1-2"

// Result is the chosen season and its distance from the anchor date.
type Result struct {
	Season    tmdb.Season
	DaysApart int
}

// Match returns the season whose air date is nearest to anchor, provided the
// distance is at most tolerance days. Seasons with missing or unparseable
// air dates are ignored. On equal distances the earlier season in input
// order wins. The boolean is false when no season qualifies or anchor itself
// cannot be parsed.
func Match(anchor string, seasons []tmdb.Season, tolerance int) (Result, bool) {
	target, ok := parseDate(anchor)
	if !ok {
		return Result{}, false
	}

	var best *Result
	for _, season := range seasons {
		aired, ok := parseDate(season.AirDate)
		if !ok {
			continue
		}
		diff := daysBetween(target, aired)
		if diff > tolerance {
			continue
		}
		if best == nil || diff < best.DaysApart {
			best = &Result{Season: season, DaysApart: diff}
		}
	}
	if best == nil {
		return Result{}, false
	}
	return *best, true
}

func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// daysBetween works on UTC midnights, so every day is exactly 24h.
func daysBetween(a, b time.Time) int {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return int(diff / (24 * time.Hour))
}
