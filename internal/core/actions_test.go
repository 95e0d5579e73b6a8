package core

import (
	"errors"
	"testing"
	"time"

	"github.com/valter-silva-au/swarm/pkg/models"
)

var fixedNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.FixedZone("CET", 3600))

func newTestActionService(data DatasetProvider, log ActionAppender, events EventLogger) *actionService {
	return newActionServiceWithClock(data, log, events, func() time.Time { return fixedNow })
}

func TestSubmit(t *testing.T) {
	log := &memLog{}
	events := &memEvents{}
	svc := newTestActionService(newMemData(), log, events)

	rec, err := svc.Submit(SubmitCommand{MatchID: "M2", Action: "adr"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := models.ActionRecord{
		TS:      fixedNow.UTC(),
		MatchID: "M2",
		Type:    models.CardConflict,
		Action:  models.ActionADR,
		AID:     "T1",
		BID:     "T2",
	}
	if rec != want {
		t.Errorf("record = %+v, want %+v", rec, want)
	}
	if rec.TS.Location() != time.UTC {
		t.Error("timestamp must be UTC")
	}
	if len(log.records) != 1 || log.records[0] != want {
		t.Errorf("log = %+v", log.records)
	}
	if len(events.events) != 1 || events.events[0].typ != EventActionRecorded {
		t.Errorf("events = %+v", events.events)
	}
}

func TestSubmit_MenuLabel(t *testing.T) {
	log := &memLog{}
	svc := newTestActionService(newMemData(), log, nil)

	rec, err := svc.Submit(SubmitCommand{MatchID: "M1", Action: "meet (20 min)"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Action != models.ActionMeet {
		t.Errorf("action = %q, want meet", rec.Action)
	}
}

func TestSubmit_RepeatedActionsAppend(t *testing.T) {
	log := &memLog{}
	svc := newTestActionService(newMemData(), log, nil)

	for _, a := range []string{"meet", "dismiss", "meet"} {
		if _, err := svc.Submit(SubmitCommand{MatchID: "M1", Action: a}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(log.records) != 3 {
		t.Errorf("expected 3 records, got %d", len(log.records))
	}
}

func TestSubmit_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    *memData
		cmd     SubmitCommand
		wantErr error
	}{
		{"unknown card", newMemData(), SubmitCommand{MatchID: "M404", Action: "meet"}, ErrCardNotFound},
		{"invalid action", newMemData(), SubmitCommand{MatchID: "M1", Action: "escalate"}, ErrInvalidAction},
		{"empty action", newMemData(), SubmitCommand{MatchID: "M1"}, ErrInvalidAction},
		{"load failure", &memData{err: errBoom}, SubmitCommand{MatchID: "M1", Action: "meet"}, errBoom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &memLog{}
			svc := newTestActionService(tt.data, log, nil)
			_, err := svc.Submit(tt.cmd)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if len(log.records) != 0 {
				t.Error("nothing should be logged on error")
			}
		})
	}
}

func TestSubmit_LogFailure(t *testing.T) {
	events := &memEvents{}
	svc := newTestActionService(newMemData(), &memLog{err: errBoom}, events)

	rec, err := svc.Submit(SubmitCommand{MatchID: "M1", Action: "meet"})
	if !errors.Is(err, ErrActionNotRecorded) || !errors.Is(err, errBoom) {
		t.Fatalf("expected ErrActionNotRecorded wrapping the cause, got %v", err)
	}
	if rec.MatchID != "M1" {
		t.Errorf("expected the dropped record to be returned, got %+v", rec)
	}
	if len(events.events) != 1 || events.events[0].typ != EventActionFailed || events.events[0].level != "WARN" {
		t.Errorf("events = %+v", events.events)
	}
}

func TestNewActionService_UsesWallClock(t *testing.T) {
	log := &memLog{}
	svc := NewActionService(newMemData(), log, nil)

	before := time.Now().UTC()
	rec, err := svc.Submit(SubmitCommand{MatchID: "M3", Action: "dismiss"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.TS.Before(before.Add(-time.Second)) {
		t.Errorf("timestamp %v is older than the call", rec.TS)
	}
}
