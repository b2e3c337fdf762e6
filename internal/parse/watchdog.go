package parse

import (
	"regexp"
	"strings"
	"time"

	"github.com/openclaw/missionctl/internal/models"
)

// Watchdog log format: "2026-02-01 08:18:47 ALERT: message". The level is
// optional; unlabeled lines are informational.
var watchdogLineRE = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2})\s+(ALERT|WARN|INFO|OK)?:?\s*(.+)$`)

// WatchdogLine parses one watchdog log line. The timestamp has no zone
// marker and is interpreted as UTC.
func WatchdogLine(line string) (Event, bool) {
	m := watchdogLineRE.FindStringSubmatch(line)
	if m == nil {
		return Event{}, false
	}
	dateStr, level, message := m[1], m[2], m[3]

	at, err := time.ParseInLocation("2006-01-02 15:04:05", dateStr, time.UTC)
	if err != nil {
		return Event{}, false
	}

	severity := models.SeverityInfo
	eventType := models.EventSystem
	switch level {
	case "ALERT":
		severity = models.SeverityError
		eventType = models.EventHealthAlert
	case "WARN":
		severity = models.SeverityWarn
		eventType = models.EventHealthAlert
	}

	if strings.Contains(message, "restarted") || strings.Contains(message, "Restarted") {
		eventType = models.EventGatewayRestart
	}

	return Event{
		Type:       eventType,
		Source:     "watchdog",
		Title:      message,
		Severity:   severity,
		OccurredAt: at,
	}, true
}
