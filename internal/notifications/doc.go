// Package notifications delivers run summaries to ntfy.
//
// A batch over the full mapping dataset takes hours, so the CLI publishes a
// short message when a run completes or is interrupted. With no topic
// configured NewService returns a no-op implementation and callers never need
// to check.
package notifications
