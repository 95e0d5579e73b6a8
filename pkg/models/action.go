package models

import (
	"fmt"
	"strings"
	"time"
)

// Action is the decision a human records against a card.
type Action string

const (
	ActionMeet    Action = "meet"
	ActionADR     Action = "adr"
	ActionDismiss Action = "dismiss"
)

// Actions lists the valid actions in menu order.
var Actions = []Action{ActionMeet, ActionADR, ActionDismiss}

// Label returns the menu label shown next to the action.
func (a Action) Label() string {
	switch a {
	case ActionMeet:
		return "meet (20 min)"
	case ActionADR:
		return "adr (draft)"
	default:
		return string(a)
	}
}

// ParseAction accepts a bare action or a menu label; only the first word is
// significant.
func ParseAction(s string) (Action, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty action, must be one of: meet, adr, dismiss")
	}
	a := Action(strings.ToLower(fields[0]))
	for _, valid := range Actions {
		if a == valid {
			return a, nil
		}
	}
	return "", fmt.Errorf("invalid action %q, must be one of: meet, adr, dismiss", s)
}

// ActionLogColumns is the header of actions.csv.
var ActionLogColumns = []string{"ts", "match_id", "type", "action", "a_id", "b_id"}

// ActionTimeFormat is the layout of the ts column.
const ActionTimeFormat = "2006-01-02T15:04:05.000000Z07:00"

// ActionRecord is one append-only audit entry of a decision on a card.
type ActionRecord struct {
	TS      time.Time `json:"ts" yaml:"ts"`
	MatchID string    `json:"match_id" yaml:"match_id"`
	Type    CardType  `json:"type" yaml:"type"`
	Action  Action    `json:"action" yaml:"action"`
	AID     string    `json:"a_id" yaml:"a_id"`
	BID     string    `json:"b_id" yaml:"b_id"`
}

// Row returns the record as a CSV record in ActionLogColumns order.
func (r ActionRecord) Row() []string {
	return []string{
		r.TS.UTC().Format(ActionTimeFormat),
		r.MatchID,
		string(r.Type),
		string(r.Action),
		r.AID,
		r.BID,
	}
}
