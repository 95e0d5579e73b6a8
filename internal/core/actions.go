package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/valter-silva-au/swarm/pkg/models"
)

var (
	// ErrCardNotFound is returned when a submitted match id is not loaded.
	ErrCardNotFound = errors.New("card not found")
	// ErrInvalidAction is returned for an action outside meet, adr, dismiss.
	ErrInvalidAction = errors.New("invalid action")
	// ErrActionNotRecorded wraps a failure to persist the record. The
	// session continues; callers show it as a warning.
	ErrActionNotRecorded = errors.New("action not recorded")
)

// SubmitCommand is one decision on one card, submitted as a unit.
type SubmitCommand struct {
	MatchID string
	Action  string
}

// ActionService records decisions on cards.
type ActionService interface {
	Submit(cmd SubmitCommand) (models.ActionRecord, error)
}

type actionService struct {
	data   DatasetProvider
	log    ActionAppender
	events EventLogger
	now    func() time.Time
}

// NewActionService creates an ActionService. events may be nil.
func NewActionService(data DatasetProvider, log ActionAppender, events EventLogger) ActionService {
	return &actionService{data: data, log: log, events: events, now: time.Now}
}

// newActionServiceWithClock is used by tests to pin the record timestamp.
func newActionServiceWithClock(data DatasetProvider, log ActionAppender, events EventLogger, now func() time.Time) *actionService {
	return &actionService{data: data, log: log, events: events, now: now}
}

func (s *actionService) Submit(cmd SubmitCommand) (models.ActionRecord, error) {
	action, err := models.ParseAction(cmd.Action)
	if err != nil {
		return models.ActionRecord{}, fmt.Errorf("%w: %s", ErrInvalidAction, err)
	}

	_, cards, err := s.data.Tables()
	if err != nil {
		return models.ActionRecord{}, fmt.Errorf("loading cards: %w", err)
	}
	card, ok := cards.Get(cmd.MatchID)
	if !ok {
		return models.ActionRecord{}, fmt.Errorf("submitting action for %s: %w", cmd.MatchID, ErrCardNotFound)
	}

	rec := models.ActionRecord{
		TS:      s.now().UTC(),
		MatchID: card.MatchID,
		Type:    card.Type,
		Action:  action,
		AID:     card.AID,
		BID:     card.BID,
	}

	data := map[string]any{
		"match_id": rec.MatchID,
		"type":     string(rec.Type),
		"action":   string(rec.Action),
	}
	if err := s.log.Append(rec); err != nil {
		data["error"] = err.Error()
		s.logEvent("WARN", EventActionFailed, data)
		return rec, fmt.Errorf("%w: %w", ErrActionNotRecorded, err)
	}
	s.logEvent("INFO", EventActionRecorded, data)
	return rec, nil
}

func (s *actionService) logEvent(level, eventType string, data map[string]any) {
	if s.events == nil {
		return
	}
	_ = s.events.LogEvent(level, eventType, data) // Non-fatal.
}
