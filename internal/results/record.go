package results

// Record is one AniList to TMDB season mapping. The season fields are all
// set or all nil; nil means the show exists but no season matched.
type Record struct {
	AniListID          int64   `json:"anilist_id"`
	Title              *string `json:"title"`
	TMDBShowID         int64   `json:"tmdb_show_id"`
	TMDBSeasonID       *int64  `json:"tmdb_season_id"`
	TMDBSeasonNumber   *int    `json:"tmdb_season_number"`
	MatchedDate        *string `json:"matched_date"`
	DateDifferenceDays *int    `json:"date_difference_days"`
}

// Matched reports whether the record identifies a season.
func (r Record) Matched() bool {
	return r.TMDBSeasonID != nil
}

// Unresolved builds a record for a show with no matching season.
func Unresolved(anilistID int64, title string, showID int64) Record {
	return Record{
		AniListID:  anilistID,
		Title:      optionalString(title),
		TMDBShowID: showID,
	}
}

// Resolved builds a record for a matched season.
func Resolved(anilistID int64, title string, showID, seasonID int64, seasonNumber int, airDate string, days int) Record {
	return Record{
		AniListID:          anilistID,
		Title:              optionalString(title),
		TMDBShowID:         showID,
		TMDBSeasonID:       &seasonID,
		TMDBSeasonNumber:   &seasonNumber,
		MatchedDate:        &airDate,
		DateDifferenceDays: &days,
	}
}

// ProcessedIDs returns the AniList IDs present in records. Zero IDs are
// ignored.
func ProcessedIDs(records []Record) map[int64]struct{} {
	ids := make(map[int64]struct{}, len(records))
	for _, record := range records {
		if record.AniListID != 0 {
			ids[record.AniListID] = struct{}{}
		}
	}
	return ids
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
