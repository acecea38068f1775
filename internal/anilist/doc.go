// Package anilist fetches premiere dates and display titles from the AniList
// GraphQL API.
//
// Only one query is issued: Media(id, type: ANIME) with startDate and the
// english/romaji titles. Failures never surface as errors; a missing date or
// title is reported as absent so the mapper can decide whether to skip.
package anilist
