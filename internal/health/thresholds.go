package health

// ThresholdStatus classifies a metric value against its threshold pair.
type ThresholdStatus string

// Threshold evaluation outcomes.
const (
	ThresholdStatusOK       ThresholdStatus = "OK"
	ThresholdStatusWarn     ThresholdStatus = "WARN"
	ThresholdStatusCritical ThresholdStatus = "CRITICAL"
)

// Metric names recognized by the threshold table.
const (
	MetricRegistrySizeKB   = "sessions_json_kb"
	MetricTotalSessions    = "total_sessions"
	MetricCronSessions     = "cron_sessions"
	MetricTranscriptSizeMB = "transcript_mb"
)

// Default threshold values applied when configuration provides no override.
const (
	defaultRegistryWarnKBConstant        int64 = 500
	defaultRegistryCriticalKBConstant    int64 = 1000
	defaultTotalSessionsWarnConstant     int64 = 50
	defaultTotalSessionsCriticalConstant int64 = 100
	defaultCronSessionsWarnConstant      int64 = 30
	defaultCronSessionsCriticalConstant  int64 = 80
	defaultTranscriptWarnMBConstant      int64 = 1
	defaultTranscriptCriticalMBConstant  int64 = 5
)

// ThresholdPair holds the warn and critical boundaries for one metric.
type ThresholdPair struct {
	Warn     int64
	Critical int64
}

// ThresholdTable maps metric names to their threshold pairs. The table is
// built once per run and treated as read-only afterwards.
type ThresholdTable map[string]ThresholdPair

// DefaultThresholdTable returns the baseline threshold table.
func DefaultThresholdTable() ThresholdTable {
	return ThresholdTable{
		MetricRegistrySizeKB:   {Warn: defaultRegistryWarnKBConstant, Critical: defaultRegistryCriticalKBConstant},
		MetricTotalSessions:    {Warn: defaultTotalSessionsWarnConstant, Critical: defaultTotalSessionsCriticalConstant},
		MetricCronSessions:     {Warn: defaultCronSessionsWarnConstant, Critical: defaultCronSessionsCriticalConstant},
		MetricTranscriptSizeMB: {Warn: defaultTranscriptWarnMBConstant, Critical: defaultTranscriptCriticalMBConstant},
	}
}

// EvaluateThreshold classifies the value against the pair, comparing the
// critical boundary before the warn boundary.
func EvaluateThreshold(value int64, pair ThresholdPair) ThresholdStatus {
	if value > pair.Critical {
		return ThresholdStatusCritical
	}
	if value > pair.Warn {
		return ThresholdStatusWarn
	}
	return ThresholdStatusOK
}
