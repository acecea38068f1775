// Package results persists season match records as a JSON array.
//
// The file doubles as resume state: records already present are skipped on
// the next run. Writes are atomic (temp file + rename) and serialized with an
// advisory flock on a sibling ".lock" file so two runs cannot interleave
// output for the same path.
//
// Record fields follow the published format:
//
//	{
//	  "anilist_id": 20958,
//	  "title": "Attack on Titan Season 2",
//	  "tmdb_show_id": 1429,
//	  "tmdb_season_id": 85987,
//	  "tmdb_season_number": 2,
//	  "matched_date": "2017-04-01",
//	  "date_difference_days": 0
//	}
//
// Unresolved records carry null in the four season fields.
package results
