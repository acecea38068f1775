// Package showindex maps AniList media IDs to TMDB show IDs using the
// community-maintained Fribb anime-lists dataset.
//
// Build downloads the bulk JSON array once and produces an immutable Index.
// Loader memoizes the first non-empty Index for the life of the process so
// batch runs download the file a single time; an empty result (download or
// parse failure) is not cached and the next Load tries again.
package showindex
