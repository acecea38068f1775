// Package logs reads the seasonmap log file for the CLI.
//
// Last returns the trailing lines of the file with bounded memory, and Follow
// polls for appended lines so `seasonmap logs --follow` can watch a batch run
// from another terminal. Both treat a missing file as empty.
package logs
