// Package mapper turns AniList IDs into TMDB season records.
//
// Mapper runs the per-item pipeline: resolve the TMDB show (via the show
// index when the caller does not know it), fetch the AniList premiere date,
// fetch the show's seasons, and pick the season whose air date is closest.
// Items without a show mapping or a complete premiere date are skipped and
// produce no record. Shows without seasons, or whose seasons are all too far
// from the premiere date, produce an unresolved record instead.
//
// Runner drives a whole batch strictly sequentially with a fixed pause
// after each item. It drops repeated IDs, skips IDs already present in
// earlier output, and returns everything gathered so far when the context
// is cancelled.
package mapper
