// Package preflight provides readiness checks for the remote services and
// filesystem paths a mapping run depends on.
//
// The CLI "seasonmap check" command runs every check and prints the results.
// "seasonmap run" runs RunAll first and stops before touching the results file
// when a required check fails, so a long batch never starts against a bad
// credential or an unwritable output directory.
package preflight
