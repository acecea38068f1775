package mapper_test

import (
	"context"
	"errors"
	"testing"

	"seasonmap/internal/anilist"
	"seasonmap/internal/mapper"
	"seasonmap/internal/tmdb"
)

type fakeShows map[int64]int64

func (f fakeShows) Resolve(_ context.Context, id int64) (int64, bool) {
	show, ok := f[id]
	return show, ok
}

type fakeMedia struct {
	media map[int64]anilist.Media
	calls int
}

func (f *fakeMedia) FetchMedia(_ context.Context, id int64) anilist.Media {
	f.calls++
	return f.media[id]
}

type fakeSeasons struct {
	seasons map[int64][]tmdb.Season
	calls   []int64
}

func (f *fakeSeasons) FetchSeasons(_ context.Context, showID int64) []tmdb.Season {
	f.calls = append(f.calls, showID)
	return f.seasons[showID]
}

func attackOnTitan() (*fakeMedia, *fakeSeasons) {
	media := &fakeMedia{media: map[int64]anilist.Media{
		20958: {Title: "Attack on Titan Season 2", StartDate: "2017-04-01"},
	}}
	seasons := &fakeSeasons{seasons: map[int64][]tmdb.Season{
		1429: {
			{ID: 1, SeasonNumber: 1, AirDate: "2013-04-07"},
			{ID: 2, SeasonNumber: 2, AirDate: "2017-04-01"},
		},
	}}
	return media, seasons
}

func TestProcessItemExactMatch(t *testing.T) {
	media, seasons := attackOnTitan()
	m := mapper.New(fakeShows{20958: 1429}, media, seasons, nil)

	record, err := m.ProcessItem(context.Background(), mapper.Item{AniListID: 20958})
	if err != nil {
		t.Fatalf("ProcessItem: %v", err)
	}
	if record == nil || !record.Matched() {
		t.Fatalf("expected matched record, got %#v", record)
	}
	if *record.TMDBSeasonID != 2 || *record.TMDBSeasonNumber != 2 {
		t.Fatalf("unexpected season: id=%d number=%d", *record.TMDBSeasonID, *record.TMDBSeasonNumber)
	}
	if *record.DateDifferenceDays != 0 || *record.MatchedDate != "2017-04-01" {
		t.Fatalf("unexpected match details: %#v", record)
	}
	if record.TMDBShowID != 1429 || record.Title == nil || *record.Title != "Attack on Titan Season 2" {
		t.Fatalf("unexpected identity fields: %#v", record)
	}
}

func TestProcessItemUsesKnownShowID(t *testing.T) {
	media, seasons := attackOnTitan()
	m := mapper.New(nil, media, seasons, nil)

	record, err := m.ProcessItem(context.Background(), mapper.Item{AniListID: 20958, TMDBShowID: 1429})
	if err != nil {
		t.Fatalf("ProcessItem: %v", err)
	}
	if !record.Matched() {
		t.Fatalf("expected match, got %#v", record)
	}
	if len(seasons.calls) != 1 || seasons.calls[0] != 1429 {
		t.Fatalf("expected one season fetch for 1429, got %v", seasons.calls)
	}
}

func TestProcessItemOutsideToleranceRecordsUnresolved(t *testing.T) {
	media := &fakeMedia{media: map[int64]anilist.Media{
		7: {Title: "Movie", StartDate: "2017-04-01"},
	}}
	seasons := &fakeSeasons{seasons: map[int64][]tmdb.Season{
		70: {{ID: 1, SeasonNumber: 1, AirDate: "2020-01-01"}},
	}}
	m := mapper.New(fakeShows{7: 70}, media, seasons, nil)

	record, err := m.ProcessItem(context.Background(), mapper.Item{AniListID: 7})
	if err != nil {
		t.Fatalf("ProcessItem: %v", err)
	}
	if record == nil {
		t.Fatal("expected a record")
	}
	if record.Matched() || record.TMDBSeasonNumber != nil || record.MatchedDate != nil || record.DateDifferenceDays != nil {
		t.Fatalf("expected null season fields, got %#v", record)
	}
	if record.TMDBShowID != 70 {
		t.Fatalf("expected show id 70, got %d", record.TMDBShowID)
	}
}

func TestProcessItemNoSeasonsRecordsUnresolved(t *testing.T) {
	media := &fakeMedia{media: map[int64]anilist.Media{
		8: {Title: "Special", StartDate: "2019-10-10"},
	}}
	m := mapper.New(fakeShows{8: 80}, media, &fakeSeasons{}, nil)

	record, err := m.ProcessItem(context.Background(), mapper.Item{AniListID: 8})
	if err != nil {
		t.Fatalf("ProcessItem: %v", err)
	}
	if record == nil || record.Matched() {
		t.Fatalf("expected unresolved record, got %#v", record)
	}
}

func TestProcessItemNoMappingSkips(t *testing.T) {
	media := &fakeMedia{}
	seasons := &fakeSeasons{}
	m := mapper.New(fakeShows{}, media, seasons, nil)

	record, err := m.ProcessItem(context.Background(), mapper.Item{AniListID: 9})
	if !errors.Is(err, mapper.ErrNoMapping) {
		t.Fatalf("expected ErrNoMapping, got %v", err)
	}
	if record != nil {
		t.Fatalf("expected no record, got %#v", record)
	}
	if media.calls != 0 || len(seasons.calls) != 0 {
		t.Fatal("expected no downstream fetches")
	}
}

func TestProcessItemIncompleteDateSkips(t *testing.T) {
	// Title alone is not enough; the date anchor is required.
	media := &fakeMedia{media: map[int64]anilist.Media{
		10: {Title: "Upcoming"},
	}}
	seasons := &fakeSeasons{}
	m := mapper.New(fakeShows{10: 100}, media, seasons, nil)

	record, err := m.ProcessItem(context.Background(), mapper.Item{AniListID: 10})
	if !errors.Is(err, mapper.ErrNoStartDate) {
		t.Fatalf("expected ErrNoStartDate, got %v", err)
	}
	if record != nil {
		t.Fatalf("expected no record, got %#v", record)
	}
	if len(seasons.calls) != 0 {
		t.Fatal("expected seasons not to be fetched")
	}
}

func TestWithToleranceWidensWindow(t *testing.T) {
	media := &fakeMedia{media: map[int64]anilist.Media{
		11: {Title: "Late", StartDate: "2020-01-10"},
	}}
	seasons := &fakeSeasons{seasons: map[int64][]tmdb.Season{
		110: {{ID: 5, SeasonNumber: 1, AirDate: "2020-01-01"}},
	}}

	strict := mapper.New(fakeShows{11: 110}, media, seasons, nil)
	record, err := strict.ProcessItem(context.Background(), mapper.Item{AniListID: 11})
	if err != nil || record.Matched() {
		t.Fatalf("expected unresolved with default tolerance, got %#v, %v", record, err)
	}

	loose := mapper.New(fakeShows{11: 110}, media, seasons, nil, mapper.WithTolerance(14))
	record, err = loose.ProcessItem(context.Background(), mapper.Item{AniListID: 11})
	if err != nil || !record.Matched() {
		t.Fatalf("expected match with 14 day tolerance, got %#v, %v", record, err)
	}
	if *record.DateDifferenceDays != 9 {
		t.Fatalf("expected 9 days apart, got %d", *record.DateDifferenceDays)
	}
}
