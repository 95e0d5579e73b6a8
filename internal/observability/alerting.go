package observability

import (
	"fmt"
	"time"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts fire. A zero FailedActions or
// StaleDays disables that condition.
type AlertThresholds struct {
	// FailedActions is the number of dropped decisions within Window that
	// raises the action log alert.
	FailedActions int           `yaml:"failed_actions" json:"failed_actions"`
	Window        time.Duration `yaml:"window" json:"window"`
	// StaleDays is how long the inbox may go without a recorded decision.
	StaleDays int `yaml:"stale_days" json:"stale_days"`
}

// DefaultAlertThresholds returns the thresholds used when none are configured.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		FailedActions: 1,
		Window:        24 * time.Hour,
		StaleDays:     7,
	}
}

// AlertEngine evaluates alert conditions against the event log.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

type alertEngine struct {
	eventLog   EventLog
	thresholds AlertThresholds
	now        func() time.Time
}

// NewAlertEngine creates an AlertEngine reading from eventLog.
func NewAlertEngine(eventLog EventLog, thresholds AlertThresholds) AlertEngine {
	if thresholds.Window <= 0 {
		thresholds.Window = DefaultAlertThresholds().Window
	}
	return &alertEngine{eventLog: eventLog, thresholds: thresholds, now: time.Now}
}

// Evaluate checks every condition, returning the triggered alerts in
// severity order.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	now := ae.now().UTC()
	var alerts []Alert

	failing, err := ae.checkActionLogFailures(now)
	if err != nil {
		return nil, fmt.Errorf("checking action log failures: %w", err)
	}
	alerts = append(alerts, failing...)

	fallback, err := ae.checkActionsDirFallback(now)
	if err != nil {
		return nil, fmt.Errorf("checking actions dir: %w", err)
	}
	alerts = append(alerts, fallback...)

	stale, err := ae.checkStaleDecisions(now)
	if err != nil {
		return nil, fmt.Errorf("checking stale decisions: %w", err)
	}
	alerts = append(alerts, stale...)

	return alerts, nil
}

// checkActionLogFailures fires when too many decisions were dropped because
// actions.csv could not be written.
func (ae *alertEngine) checkActionLogFailures(now time.Time) ([]Alert, error) {
	if ae.thresholds.FailedActions <= 0 {
		return nil, nil
	}
	since := now.Add(-ae.thresholds.Window)
	events, err := ae.eventLog.Read(EventFilter{Since: &since, Types: []string{"action.failed"}})
	if err != nil {
		return nil, err
	}
	if len(events) < ae.thresholds.FailedActions {
		return nil, nil
	}

	last := events[len(events)-1]
	msg := fmt.Sprintf("%d decision(s) could not be written to the action log in the last %s", len(events), ae.thresholds.Window)
	if cause, ok := last.Data["error"].(string); ok && cause != "" {
		msg += ": " + cause
	}
	return []Alert{{
		ID:          "action-log-failing",
		Condition:   "action_log_failing",
		Severity:    SeverityHigh,
		Message:     msg,
		TriggeredAt: now,
	}}, nil
}

// checkActionsDirFallback fires when the configured actions directory was
// unwritable at startup and decisions went to the fallback directory.
func (ae *alertEngine) checkActionsDirFallback(now time.Time) ([]Alert, error) {
	since := now.Add(-ae.thresholds.Window)
	events, err := ae.eventLog.Read(EventFilter{Since: &since, Types: []string{"actions_dir.fallback"}})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}

	last := events[len(events)-1]
	preferred, _ := last.Data["preferred"].(string)
	fallback, _ := last.Data["fallback"].(string)
	return []Alert{{
		ID:          "actions-dir-fallback",
		Condition:   "actions_dir_fallback",
		Severity:    SeverityMedium,
		Message:     fmt.Sprintf("actions dir %s was not writable, decisions are going to %s", preferred, fallback),
		TriggeredAt: now,
	}}, nil
}

// checkStaleDecisions fires when the dataset has been in use for longer than
// StaleDays without a single recorded decision in that period.
func (ae *alertEngine) checkStaleDecisions(now time.Time) ([]Alert, error) {
	if ae.thresholds.StaleDays <= 0 {
		return nil, nil
	}
	events, err := ae.eventLog.Read(EventFilter{Types: []string{"dataset.loaded", "action.recorded"}})
	if err != nil {
		return nil, err
	}

	var firstLoad, lastDecision time.Time
	for _, e := range events {
		switch e.Type {
		case "dataset.loaded":
			if firstLoad.IsZero() || e.Time.Before(firstLoad) {
				firstLoad = e.Time
			}
		case "action.recorded":
			if e.Time.After(lastDecision) {
				lastDecision = e.Time
			}
		}
	}
	if firstLoad.IsZero() {
		return nil, nil
	}

	threshold := time.Duration(ae.thresholds.StaleDays) * 24 * time.Hour
	reference := lastDecision
	if reference.IsZero() {
		reference = firstLoad
	}
	if now.Sub(reference) <= threshold {
		return nil, nil
	}
	return []Alert{{
		ID:          "decisions-stale",
		Condition:   "decisions_stale",
		Severity:    SeverityLow,
		Message:     fmt.Sprintf("no decision recorded on any card for more than %d days", ae.thresholds.StaleDays),
		TriggeredAt: now,
	}}, nil
}
