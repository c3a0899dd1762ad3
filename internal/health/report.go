package health

import (
	"fmt"
	"strings"
	"time"
)

const (
	registryCriticalAlertTemplate      = "CRITICAL: sessions.json is %dKB"
	registryWarningAlertTemplate       = "WARNING: sessions.json is %dKB"
	totalSessionsCriticalAlertTemplate = "CRITICAL: %d total sessions"
	totalSessionsWarningAlertTemplate  = "WARNING: %d total sessions"
	cronSessionsCriticalAlertTemplate  = "CRITICAL: %d cron sessions"
	cronSessionsWarningAlertTemplate   = "WARNING: %d cron sessions"
	memoryEntryHeaderTemplateConstant  = "\n## Auto-Cleaner - %s\n"
	memoryEntryRegistryTemplate        = "- sessions.json: %dKB\n"
	memoryEntrySessionsTemplateConst   = "- Sessions: %d total, %d cron\n"
	memoryEntryAlertsTemplateConstant  = "- Alerts: %s\n"
	memoryEntryTimeLayoutConstant      = "15:04"
	alertListSeparatorConstant         = ", "
)

// EvaluateAlerts classifies the report's metered values against the threshold
// table and returns alert strings in a fixed order: registry size, total
// sessions, cron sessions. Only the most severe classification per metric is
// reported.
func EvaluateAlerts(report HealthReport, thresholds ThresholdTable) []string {
	alerts := make([]string, 0)

	switch EvaluateThreshold(report.RegistrySizeKB, thresholds[MetricRegistrySizeKB]) {
	case ThresholdStatusCritical:
		alerts = append(alerts, fmt.Sprintf(registryCriticalAlertTemplate, report.RegistrySizeKB))
	case ThresholdStatusWarn:
		alerts = append(alerts, fmt.Sprintf(registryWarningAlertTemplate, report.RegistrySizeKB))
	}

	switch EvaluateThreshold(report.TotalSessions, thresholds[MetricTotalSessions]) {
	case ThresholdStatusCritical:
		alerts = append(alerts, fmt.Sprintf(totalSessionsCriticalAlertTemplate, report.TotalSessions))
	case ThresholdStatusWarn:
		alerts = append(alerts, fmt.Sprintf(totalSessionsWarningAlertTemplate, report.TotalSessions))
	}

	switch EvaluateThreshold(report.CronSessions, thresholds[MetricCronSessions]) {
	case ThresholdStatusCritical:
		alerts = append(alerts, fmt.Sprintf(cronSessionsCriticalAlertTemplate, report.CronSessions))
	case ThresholdStatusWarn:
		alerts = append(alerts, fmt.Sprintf(cronSessionsWarningAlertTemplate, report.CronSessions))
	}

	return alerts
}

// FormatMemoryEntry renders the Markdown block appended to the daily memory
// log. The alerts line is present only when the report carries alerts.
func FormatMemoryEntry(report HealthReport, entryTime time.Time) string {
	var entryBuilder strings.Builder
	entryBuilder.WriteString(fmt.Sprintf(memoryEntryHeaderTemplateConstant, entryTime.Format(memoryEntryTimeLayoutConstant)))
	entryBuilder.WriteString(fmt.Sprintf(memoryEntryRegistryTemplate, report.RegistrySizeKB))
	entryBuilder.WriteString(fmt.Sprintf(memoryEntrySessionsTemplateConst, report.TotalSessions, report.CronSessions))
	if len(report.Alerts) > 0 {
		entryBuilder.WriteString(fmt.Sprintf(memoryEntryAlertsTemplateConstant, strings.Join(report.Alerts, alertListSeparatorConstant)))
	}
	return entryBuilder.String()
}
