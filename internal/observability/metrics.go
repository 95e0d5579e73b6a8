package observability

import (
	"fmt"
	"time"
)

// Metrics summarizes session activity derived from the event log.
type Metrics struct {
	ActionsRecorded   int            `json:"actions_recorded"`
	ActionsFailed     int            `json:"actions_failed"`
	ActionsByAction   map[string]int `json:"actions_by_action"`
	ActionsByCardType map[string]int `json:"actions_by_card_type"`
	CardsActioned     int            `json:"cards_actioned"`
	DatasetLoads      int            `json:"dataset_loads"`
	DatasetReplaced   int            `json:"dataset_replaced"`
	EventCount        int            `json:"event_count"`
	OldestEvent       *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent       *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator reading from eventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate aggregates every event since the given time.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		ActionsByAction:   make(map[string]int),
		ActionsByCardType: make(map[string]int),
		EventCount:        len(events),
	}
	actioned := make(map[string]struct{})

	for i, event := range events {
		t := event.Time
		if i == 0 {
			m.OldestEvent = &t
		}
		m.NewestEvent = &t

		switch event.Type {
		case "action.recorded":
			m.ActionsRecorded++
			if a, ok := event.Data["action"].(string); ok {
				m.ActionsByAction[a]++
			}
			if ct, ok := event.Data["type"].(string); ok {
				m.ActionsByCardType[ct]++
			}
			if id, ok := event.Data["match_id"].(string); ok {
				actioned[id] = struct{}{}
			}
		case "action.failed":
			m.ActionsFailed++
		case "dataset.loaded":
			m.DatasetLoads++
		case "dataset.replaced":
			m.DatasetReplaced++
		}
	}
	m.CardsActioned = len(actioned)

	return m, nil
}
