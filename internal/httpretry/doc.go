// Package httpretry executes the fixed set of outbound HTTP calls seasonmap
// makes (AniList, TMDB, and the bulk mapping download) with bounded retries.
//
// Each call runs as a small state machine: an attempt either succeeds, waits
// out a 429 using the Retry-After header, or backs off briefly after a
// network failure, all within a single three-attempt budget. Exhaustion is
// reported as a missing response rather than an error so callers can degrade
// to "not found" without special handling.
package httpretry
