// Package health implements the session workspace health audit behind the
// cleanup command.
//
// The service measures the session registry, counts recorded sessions, finds
// oversized transcripts, samples disk usage, archives stale session files, and
// appends a Markdown summary to the daily memory log. Alerts are evaluated
// against a configurable threshold table and reported on standard output
// without affecting the process exit code.
package health
