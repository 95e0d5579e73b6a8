package cli

import (
	"errors"
	"testing"

	"github.com/valter-silva-au/swarm/internal/core"
	"github.com/valter-silva-au/swarm/pkg/models"
)

// memDataset implements core.DatasetStore over in-memory tables.
type memDataset struct {
	tasks *models.TaskTable
	cards *models.CardTable
	err   error

	replacedTasks []byte
	replacedCards []byte
}

func (d *memDataset) Tables() (*models.TaskTable, *models.CardTable, error) {
	if d.err != nil {
		return nil, nil, d.err
	}
	return d.tasks, d.cards, nil
}

func (d *memDataset) Replace(tasksCSV, cardsCSV []byte) error {
	d.replacedTasks, d.replacedCards = tasksCSV, cardsCSV
	return nil
}

// memActionLog implements core.ActionAppender and records every append.
type memActionLog struct {
	records []models.ActionRecord
	err     error
}

func (l *memActionLog) Append(rec models.ActionRecord) error {
	if l.err != nil {
		return l.err
	}
	l.records = append(l.records, rec)
	return nil
}

var errDiskFull = errors.New("disk full")

func fixtureCard(id string, t models.CardType, a, aProd, b, bProd, score, signals string) models.Card {
	c := models.Card{
		MatchID: id, Type: t,
		AID: a, AProd: aProd, ACap: "payments",
		BID: b, BProd: bProd, BCap: "ledger",
		Score: score, Signals: signals,
	}
	c.Derive()
	return c
}

// fixtureDataset returns two tasks in different products and three cards,
// one of each type.
func fixtureDataset() *memDataset {
	tasks := models.NewTaskTable([]models.Task{
		{ID: "T1", Product: "Alpha", Team: "core", Capability: "payments", Goal: "Ship card payments"},
		{ID: "T2", Product: "Beta", Team: "edge", Capability: "ledger", Goal: "Rebuild the ledger"},
	})
	cards := models.NewCardTable([]models.Card{
		fixtureCard("M1", models.CardSynergy, "T1", "Alpha", "T2", "Beta", "80", "api, data"),
		fixtureCard("M2", models.CardConflict, "T1", "Alpha", "T2", "Beta", "", "kpi"),
		fixtureCard("M3", models.CardDuplicate, "T1", "Alpha", "T2", "Alpha", "40", "goal"),
	})
	return &memDataset{tasks: tasks, cards: cards}
}

// setupServices wires ViewModel and Actions over the fixture dataset and
// restores the package variables when the test ends.
func setupServices(t *testing.T) (*memDataset, *memActionLog) {
	t.Helper()
	data := fixtureDataset()
	log := &memActionLog{}

	origVM, origActions := ViewModel, Actions
	ViewModel = core.NewViewModelBuilder(data, nil, core.ViewOptions{DefaultMinScore: core.DefaultMinScore})
	Actions = core.NewActionService(data, log, nil)
	t.Cleanup(func() {
		ViewModel, Actions = origVM, origActions
	})
	return data, log
}
