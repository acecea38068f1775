// Package config loads, normalizes, and validates seasonmap configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the TMDB_API_KEY environment
// fallback. The Config type centralizes the endpoints, file locations, pacing,
// and logging knobs the CLI needs.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
