package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/valter-silva-au/swarm/pkg/models"
)

const utf8BOM = "\ufeff"

func trimBOM(s string) string {
	return strings.TrimPrefix(s, utf8BOM)
}

// table is a parsed CSV source: a column index built from the header and the
// data records in source order.
type table struct {
	cols    map[string]int
	records [][]string
}

func (t table) get(rec []string, col string) string {
	return rec[t.cols[col]]
}

// readTable parses CSV from r and checks that every required column is
// present in the header. Column order is free and extra columns are ignored.
func readTable(r io.Reader, required []string) (table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return table{}, fmt.Errorf("empty table: missing header row")
		}
		return table{}, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = trimBOM(name)
		}
		cols[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range required {
		if _, ok := cols[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return table{}, fmt.Errorf("missing required column(s): %s", strings.Join(missing, ", "))
	}

	// The reader enforces the header's field count on every record.
	records, err := cr.ReadAll()
	if err != nil {
		return table{}, fmt.Errorf("parsing rows: %w", err)
	}
	return table{cols: cols, records: records}, nil
}

// ReadTasks parses a tasks table. Duplicate task ids are rejected.
func ReadTasks(r io.Reader) (*models.TaskTable, error) {
	t, err := readTable(r, models.TaskColumns)
	if err != nil {
		return nil, err
	}

	rows := make([]models.Task, 0, len(t.records))
	seen := make(map[string]int, len(t.records))
	for i, rec := range t.records {
		task := models.Task{
			ID:            t.get(rec, "task_id"),
			Product:       t.get(rec, "product"),
			Team:          t.get(rec, "team"),
			Capability:    t.get(rec, "capability"),
			Surface:       t.get(rec, "surface"),
			Entity:        t.get(rec, "entity"),
			Contract:      t.get(rec, "contract"),
			KPIFamily:     t.get(rec, "kpi_family"),
			Lever:         t.get(rec, "lever"),
			Goal:          t.get(rec, "goal"),
			TimelineStart: t.get(rec, "timeline_start"),
			TimelineEnd:   t.get(rec, "timeline_end"),
		}
		if prev, dup := seen[task.ID]; dup {
			return nil, fmt.Errorf("row %d: duplicate task_id %q (first seen on row %d)", i+2, task.ID, prev+2)
		}
		seen[task.ID] = i
		rows = append(rows, task)
	}
	return models.NewTaskTable(rows), nil
}

// ReadCards parses a cards table and computes the derived columns of every
// row. Duplicate match ids are rejected.
func ReadCards(r io.Reader) (*models.CardTable, error) {
	t, err := readTable(r, models.CardColumns)
	if err != nil {
		return nil, err
	}

	rows := make([]models.Card, 0, len(t.records))
	seen := make(map[string]int, len(t.records))
	for i, rec := range t.records {
		card := models.Card{
			MatchID: t.get(rec, "match_id"),
			Type:    models.CardType(t.get(rec, "type")),
			AID:     t.get(rec, "a_id"),
			AProd:   t.get(rec, "a_prod"),
			ACap:    t.get(rec, "a_cap"),
			BID:     t.get(rec, "b_id"),
			BProd:   t.get(rec, "b_prod"),
			BCap:    t.get(rec, "b_cap"),
			Score:   t.get(rec, "score"),
			Signals: t.get(rec, "signals"),
		}
		if prev, dup := seen[card.MatchID]; dup {
			return nil, fmt.Errorf("row %d: duplicate match_id %q (first seen on row %d)", i+2, card.MatchID, prev+2)
		}
		seen[card.MatchID] = i
		card.Derive()
		rows = append(rows, card)
	}
	return models.NewCardTable(rows), nil
}

// WriteTasks encodes tasks as CSV with the canonical header.
func WriteTasks(w io.Writer, tasks []models.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.TaskColumns); err != nil {
		return err
	}
	for _, t := range tasks {
		if err := cw.Write(t.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCards encodes the stored card columns as CSV; derived fields are not
// persisted.
func WriteCards(w io.Writer, cards []models.Card) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.CardColumns); err != nil {
		return err
	}
	for _, c := range cards {
		if err := cw.Write(c.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
