// Package tmdb provides the minimal TMDB API client used for season lookup.
//
// It fetches the season list of a TV show and authenticates with either a v3
// API key (query parameter) or a v4 read access token (bearer header),
// choosing by credential length on every request. A 404 is the expected
// answer for IDs that point at movies or specials and is reported as an
// empty season list.
package tmdb
