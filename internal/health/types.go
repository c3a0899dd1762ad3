package health

import "time"

// DiskUsageSummary captures the filesystem usage columns reported by df.
// All fields keep the human-readable representation produced by df -h.
type DiskUsageSummary struct {
	Total     string
	Used      string
	Available string
	Percent   string
}

// SessionCounts pairs the total number of registry entries with the number of
// cron-originated entries.
type SessionCounts struct {
	Total int64
	Cron  int64
}

// HealthReport aggregates the measurements of a single audit run. Reports are
// built fresh per invocation and never persisted beyond the daily log entry.
type HealthReport struct {
	Timestamp        time.Time
	RegistrySizeKB   int64
	TotalSessions    int64
	CronSessions     int64
	LargeTranscripts []string
	DiskUsage        DiskUsageSummary
	Alerts           []string
}
