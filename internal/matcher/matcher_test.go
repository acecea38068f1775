package matcher_test

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"seasonmap/internal/matcher"
	"seasonmap/internal/tmdb"
)

func TestMatchPicksExactSeason(t *testing.T) {
	seasons := []tmdb.Season{
		{ID: 1, SeasonNumber: 1, AirDate: "2013-04-07"},
		{ID: 2, SeasonNumber: 2, AirDate: "2017-04-01"},
	}
	got, ok := matcher.Match("2017-04-01", seasons, matcher.DefaultTolerance)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Season.ID != 2 || got.DaysApart != 0 {
		t.Fatalf("unexpected match: %#v", got)
	}
}

func TestMatchOutsideToleranceIsNoMatch(t *testing.T) {
	seasons := []tmdb.Season{{ID: 1, AirDate: "2020-01-01"}}
	if got, ok := matcher.Match("2017-04-01", seasons, matcher.DefaultTolerance); ok {
		t.Fatalf("expected no match, got %#v", got)
	}
}

func TestMatchToleranceIsInclusive(t *testing.T) {
	seasons := []tmdb.Season{{ID: 1, AirDate: "2017-04-08"}}
	got, ok := matcher.Match("2017-04-01", seasons, 7)
	if !ok || got.DaysApart != 7 {
		t.Fatalf("expected inclusive match at 7 days, got %#v ok=%v", got, ok)
	}
	if _, ok := matcher.Match("2017-04-01", []tmdb.Season{{ID: 1, AirDate: "2017-04-09"}}, 7); ok {
		t.Fatal("expected 8 days to exceed tolerance")
	}
}

func TestMatchSkipsBadAirDates(t *testing.T) {
	seasons := []tmdb.Season{
		{ID: 1, AirDate: ""},
		{ID: 2, AirDate: "2017-13-01"},
		{ID: 3, AirDate: "April 2017"},
		{ID: 4, AirDate: "2017-04-03"},
	}
	got, ok := matcher.Match("2017-04-01", seasons, 7)
	if !ok || got.Season.ID != 4 || got.DaysApart != 2 {
		t.Fatalf("expected season 4 at 2 days, got %#v ok=%v", got, ok)
	}
}

func TestMatchTieKeepsFirstSeen(t *testing.T) {
	seasons := []tmdb.Season{
		{ID: 10, AirDate: "2017-04-04"},
		{ID: 11, AirDate: "2017-03-29"},
		{ID: 12, AirDate: "2017-04-04"},
	}
	got, ok := matcher.Match("2017-04-01", seasons, 7)
	if !ok || got.Season.ID != 10 || got.DaysApart != 3 {
		t.Fatalf("expected first of tied seasons, got %#v ok=%v", got, ok)
	}
}

func TestMatchCrossesMonthAndLeapDay(t *testing.T) {
	seasons := []tmdb.Season{{ID: 1, AirDate: "2024-03-01"}}
	got, ok := matcher.Match("2024-02-27", seasons, 7)
	if !ok || got.DaysApart != 3 {
		t.Fatalf("expected 3 days across leap day, got %#v ok=%v", got, ok)
	}
}

func TestMatchInvalidAnchor(t *testing.T) {
	seasons := []tmdb.Season{{ID: 1, AirDate: "2017-04-01"}}
	if _, ok := matcher.Match("", seasons, 7); ok {
		t.Fatal("expected empty anchor to never match")
	}
}

func TestMatchAcceptsUnpaddedDates(t *testing.T) {
	seasons := []tmdb.Season{{ID: 1, AirDate: "2017-4-3"}, {ID: 2, AirDate: "2017-04-01"}}
	got, ok := matcher.Match("2017-4-1", seasons, 7)
	if !ok || got.Season.ID != 2 || got.DaysApart != 0 {
		t.Fatalf("expected season 2 at 0 days, got %#v ok=%v", got, ok)
	}
}

// dayDistance is a brute-force reference for the matcher's date arithmetic.
func dayDistance(a, b string) (int, bool) {
	first, err := time.Parse("2006-01-02", a)
	if err != nil {
		return 0, false
	}
	second, err := time.Parse("2006-01-02", b)
	if err != nil {
		return 0, false
	}
	days := int(first.Sub(second).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days, true
}

// Randomized check of the matcher's contract against a brute-force scan.
func TestMatchProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

	for iteration := 0; iteration < 500; iteration++ {
		anchor := base.AddDate(0, 0, rng.Intn(2000)).Format("2006-01-02")
		tolerance := rng.Intn(15)
		seasons := make([]tmdb.Season, rng.Intn(8))
		for i := range seasons {
			seasons[i] = tmdb.Season{ID: int64(i + 1), SeasonNumber: i}
			switch rng.Intn(6) {
			case 0:
				seasons[i].AirDate = ""
			case 1:
				seasons[i].AirDate = "garbage"
			default:
				anchorTime, _ := time.Parse("2006-01-02", anchor)
				seasons[i].AirDate = anchorTime.AddDate(0, 0, rng.Intn(41)-20).Format("2006-01-02")
			}
		}

		wantIndex, wantDiff := -1, 0
		for i, season := range seasons {
			diff, ok := dayDistance(anchor, season.AirDate)
			if !ok || diff > tolerance {
				continue
			}
			if wantIndex == -1 || diff < wantDiff {
				wantIndex, wantDiff = i, diff
			}
		}

		label := fmt.Sprintf("iteration %d anchor=%s tolerance=%d seasons=%v", iteration, anchor, tolerance, seasons)
		got, ok := matcher.Match(anchor, seasons, tolerance)
		again, okAgain := matcher.Match(anchor, seasons, tolerance)
		if ok != okAgain || got != again {
			t.Fatalf("%s: match is not idempotent", label)
		}
		if wantIndex == -1 {
			if ok {
				t.Fatalf("%s: expected no match, got %#v", label, got)
			}
			continue
		}
		if !ok {
			t.Fatalf("%s: expected a match", label)
		}
		if got.DaysApart > tolerance {
			t.Fatalf("%s: difference %d exceeds tolerance", label, got.DaysApart)
		}
		if got.DaysApart != wantDiff || got.Season.ID != seasons[wantIndex].ID {
			t.Fatalf("%s: got season %d at %d days, want season %d at %d days",
				label, got.Season.ID, got.DaysApart, seasons[wantIndex].ID, wantDiff)
		}
	}
}
