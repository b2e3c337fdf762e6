package parse

import (
	"fmt"
	"regexp"
	"time"

	"github.com/openclaw/missionctl/internal/models"
)

// Gateway log format: "2026-02-06T22:24:45.158Z [component] message".
var gatewayLineRE = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T[\d:.]+Z)\s+\[([^\]]+)\]\s+(.+)$`)

// Message patterns, dispatched per component.
var (
	botStartRE = regexp.MustCompile(`^\[([^\]]+)\]\s+starting provider\s+\((@[^)]+)\)`)
	listenRE   = regexp.MustCompile(`^listening on\s+(.+)\s+\(PID\s+(\d+)\)`)
	signalRE   = regexp.MustCompile(`^signal\s+(SIG\w+)\s+received`)
	reloadRE   = regexp.MustCompile(`^config change detected; evaluating reload\s+\((.+)\)`)
	pluginRE   = regexp.MustCompile(`^Plugin registered\s+\((.+)\)`)
	modelRE    = regexp.MustCompile(`^agent model:\s+(.+)`)
)

// gatewayRule recognizes one message shape under one component. Rules are
// evaluated in order; the first match wins. The generic fallback below the
// rule table guarantees a recognized-format line is never dropped.
type gatewayRule struct {
	component string
	re        *regexp.Regexp
	build     func(m []string, at time.Time) Event
}

var gatewayRules = []gatewayRule{
	{
		component: "telegram",
		re:        botStartRE,
		build: func(m []string, at time.Time) Event {
			return Event{
				AgentID:    strPtr(m[1]),
				Type:       models.EventBotStart,
				Source:     "gateway",
				Title:      m[2] + " started",
				Severity:   models.SeverityInfo,
				OccurredAt: at,
			}
		},
	},
	{
		component: "gateway",
		re:        listenRE,
		build: func(m []string, at time.Time) Event {
			return Event{
				Type:       models.EventSystem,
				Source:     "gateway",
				Title:      fmt.Sprintf("Gateway started (PID %s)", m[2]),
				Detail:     strPtr(m[1]),
				Severity:   models.SeverityInfo,
				OccurredAt: at,
			}
		},
	},
	{
		component: "gateway",
		re:        signalRE,
		build: func(m []string, at time.Time) Event {
			sig := m[1]
			ev := Event{
				Type:       models.EventReload,
				Source:     "gateway",
				Title:      "Gateway received " + sig,
				Severity:   models.SeverityInfo,
				OccurredAt: at,
			}
			if sig == "SIGTERM" {
				ev.Type = models.EventBotStop
				ev.Severity = models.SeverityWarn
			}
			return ev
		},
	},
	{
		component: "gateway",
		re:        modelRE,
		build: func(m []string, at time.Time) Event {
			return Event{
				Type:       models.EventSystem,
				Source:     "gateway",
				Title:      "Agent model: " + m[1],
				Severity:   models.SeverityInfo,
				OccurredAt: at,
			}
		},
	},
	{
		component: "reload",
		re:        reloadRE,
		build: func(m []string, at time.Time) Event {
			return Event{
				Type:       models.EventConfigChange,
				Source:     "gateway",
				Title:      "Config change detected",
				Detail:     strPtr(m[1]),
				Severity:   models.SeverityInfo,
				OccurredAt: at,
			}
		},
	},
	{
		component: "plugins",
		re:        pluginRE,
		build: func(m []string, at time.Time) Event {
			return Event{
				Type:       models.EventPluginLoad,
				Source:     "gateway",
				Title:      fmt.Sprintf("Plugin loaded (%s)", m[1]),
				Severity:   models.SeverityInfo,
				OccurredAt: at,
			}
		},
	},
}

// GatewayLine parses one gateway log line. Lines not matching the overall
// "timestamp [component] message" format return (Event{}, false).
func GatewayLine(line string) (Event, bool) {
	m := gatewayLineRE.FindStringSubmatch(line)
	if m == nil {
		return Event{}, false
	}
	ts, component, message := m[1], m[2], m[3]

	at, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return Event{}, false
	}

	for _, rule := range gatewayRules {
		if rule.component != component {
			continue
		}
		if sub := rule.re.FindStringSubmatch(message); sub != nil {
			return rule.build(sub, at), true
		}
	}

	if component == "heartbeat" {
		return Event{
			Type:       models.EventHeartbeat,
			Source:     "gateway",
			Title:      "Heartbeat " + message,
			Severity:   models.SeverityInfo,
			OccurredAt: at,
		}, true
	}

	// Generic fallback for any other recognized-format line.
	return Event{
		Type:       models.EventSystem,
		Source:     "gateway",
		Title:      fmt.Sprintf("[%s] %s", component, message),
		Severity:   models.SeverityInfo,
		OccurredAt: at,
	}, true
}
