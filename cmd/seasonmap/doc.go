// Package main hosts the seasonmap CLI.
//
// The Cobra command tree resolves configuration and logging once, builds the
// request executor and catalog clients, and hands AniList IDs to the mapper.
// Batch runs write their records through the results store so an interrupted
// run can be resumed from the same output file.
package main
