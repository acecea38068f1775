package mapper

import (
	"context"
	"errors"
	"log/slog"

	"seasonmap/internal/anilist"
	"seasonmap/internal/logging"
	"seasonmap/internal/matcher"
	"seasonmap/internal/results"
	"seasonmap/internal/tmdb"
)

var (
	// ErrNoMapping means no TMDB show ID is known for the AniList ID.
	ErrNoMapping = errors.New("no tmdb show mapping")
	// ErrNoStartDate means AniList has no complete premiere date.
	ErrNoStartDate = errors.New("no complete start date")
)

// Item is one unit of work. TMDBShowID zero means "look it up".
type Item struct {
	AniListID  int64
	TMDBShowID int64
}

// ShowResolver maps AniList IDs to TMDB show IDs.
type ShowResolver interface {
	Resolve(ctx context.Context, anilistID int64) (int64, bool)
}

// MediaFetcher returns AniList premiere dates and titles.
type MediaFetcher interface {
	FetchMedia(ctx context.Context, anilistID int64) anilist.Media
}

// SeasonFetcher returns the seasons of a TMDB show.
type SeasonFetcher interface {
	FetchSeasons(ctx context.Context, showID int64) []tmdb.Season
}

// Mapper runs the single-item pipeline.
type Mapper struct {
	shows     ShowResolver
	media     MediaFetcher
	seasons   SeasonFetcher
	tolerance int
	logger    *slog.Logger
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithTolerance overrides the default 7-day match window.
func WithTolerance(days int) Option {
	return func(m *Mapper) {
		if days >= 0 {
			m.tolerance = days
		}
	}
}

// New creates a Mapper.
func New(shows ShowResolver, media MediaFetcher, seasons SeasonFetcher, logger *slog.Logger, opts ...Option) *Mapper {
	m := &Mapper{
		shows:     shows,
		media:     media,
		seasons:   seasons,
		tolerance: matcher.DefaultTolerance,
		logger:    logging.NewComponentLogger(logger, "mapper"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ProcessItem maps one AniList ID. It returns ErrNoMapping or ErrNoStartDate
// when the item should not be recorded at all. A record with nil season
// fields means the show exists but no season matched.
func (m *Mapper) ProcessItem(ctx context.Context, item Item) (*results.Record, error) {
	logger := m.logger.With(logging.Int64(logging.FieldAniListID, item.AniListID))

	showID := item.TMDBShowID
	if showID == 0 && m.shows != nil {
		showID, _ = m.shows.Resolve(ctx, item.AniListID)
	}
	if showID == 0 {
		logging.WarnWithContext(logger, "no mapping found", "mapping_missing",
			logging.String(logging.FieldErrorHint, "the anime-lists dataset has no tmdb id for this entry"))
		return nil, ErrNoMapping
	}
	logger = logger.With(logging.Int64(logging.FieldTMDBShowID, showID))

	media := m.media.FetchMedia(ctx, item.AniListID)
	if !media.HasStartDate() {
		logging.WarnWithContext(logger, "no start date found", "start_date_missing",
			logging.String("title", media.Title),
			logging.String(logging.FieldErrorHint, "anilist start date is missing or incomplete"))
		return nil, ErrNoStartDate
	}
	logger.Info("processing", logging.String("title", media.Title), logging.String("start_date", media.StartDate))

	seasons := m.seasons.FetchSeasons(ctx, showID)
	if len(seasons) == 0 {
		logger.Info("no seasons found; likely a movie or special",
			logging.String(logging.FieldEventType, "seasons_missing"))
		record := results.Unresolved(item.AniListID, media.Title, showID)
		return &record, nil
	}

	match, ok := matcher.Match(media.StartDate, seasons, m.tolerance)
	if !ok {
		logging.WarnWithContext(logger, "no season within tolerance; likely a movie or OVA", "season_unmatched",
			logging.String("start_date", media.StartDate),
			logging.Int("tolerance_days", m.tolerance),
			logging.Int("season_count", len(seasons)),
			logging.String(logging.FieldImpact, "recorded without a season"))
		record := results.Unresolved(item.AniListID, media.Title, showID)
		return &record, nil
	}

	logger.Info("season matched",
		logging.String(logging.FieldEventType, "season_matched"),
		logging.Int("season_number", match.Season.SeasonNumber),
		logging.Int64("season_id", match.Season.ID),
		logging.Int("days_apart", match.DaysApart))
	record := results.Resolved(item.AniListID, media.Title, showID,
		match.Season.ID, match.Season.SeasonNumber, match.Season.AirDate, match.DaysApart)
	return &record, nil
}
