package core

// Event types emitted by core services.
const (
	EventActionRecorded  = "action.recorded"
	EventActionFailed    = "action.failed"
	EventDatasetLoaded   = "dataset.loaded"
	EventDatasetReplaced = "dataset.replaced"
)

// EventLogger is the subset of the observability event log that core
// services need. Defining it here avoids importing the observability package.
type EventLogger interface {
	LogEvent(level, eventType string, data map[string]any) error
}
