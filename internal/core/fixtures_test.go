package core

import (
	"errors"
	"sync"

	"github.com/valter-silva-au/swarm/pkg/models"
)

func card(id string, typ models.CardType, aProd, bProd, score, signals string) models.Card {
	c := models.Card{
		MatchID: id,
		Type:    typ,
		AID:     "T1",
		AProd:   aProd,
		ACap:    "payments",
		BID:     "T2",
		BProd:   bProd,
		BCap:    "ledger",
		Score:   score,
		Signals: signals,
	}
	c.Derive()
	return c
}

func sampleTasks() *models.TaskTable {
	return models.NewTaskTable([]models.Task{
		{ID: "T1", Product: "Alpha", Team: "core", Capability: "payments", Goal: "Ship card payments"},
		{ID: "T2", Product: "Beta", Team: "edge", Capability: "ledger", Goal: "Rebuild the ledger"},
	})
}

func sampleCards() *models.CardTable {
	return models.NewCardTable([]models.Card{
		card("M1", models.CardSynergy, "Alpha", "Beta", "80", "api, data"),
		card("M2", models.CardConflict, "Alpha", "Beta", "", "kpi"),
		card("M3", models.CardDuplicate, "Alpha", "Alpha", "40", "goal"),
	})
}

func ids(cards []models.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.MatchID
	}
	return out
}

// memData serves fixed tables and records replacements.
type memData struct {
	tasks    *models.TaskTable
	cards    *models.CardTable
	err      error
	replaced [][]byte
}

func newMemData() *memData {
	return &memData{tasks: sampleTasks(), cards: sampleCards()}
}

func (d *memData) Tables() (*models.TaskTable, *models.CardTable, error) {
	if d.err != nil {
		return nil, nil, d.err
	}
	return d.tasks, d.cards, nil
}

func (d *memData) Replace(tasksCSV, cardsCSV []byte) error {
	if d.err != nil {
		return d.err
	}
	d.replaced = append(d.replaced, tasksCSV, cardsCSV)
	return nil
}

// memLog collects appended records.
type memLog struct {
	records []models.ActionRecord
	err     error
}

func (l *memLog) Append(rec models.ActionRecord) error {
	if l.err != nil {
		return l.err
	}
	l.records = append(l.records, rec)
	return nil
}

type loggedEvent struct {
	level string
	typ   string
	data  map[string]any
}

// memEvents collects logged events.
type memEvents struct {
	mu     sync.Mutex
	events []loggedEvent
}

func (e *memEvents) LogEvent(level, eventType string, data map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, loggedEvent{level: level, typ: eventType, data: data})
	return nil
}

var errBoom = errors.New("boom")
