package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/valter-silva-au/swarm/pkg/models"
)

// ActionsFile is the name of the action log inside the actions directory.
const ActionsFile = "actions.csv"

// legacyActionTimeFormat matches timestamps written without a zone offset.
// They are read as UTC.
const legacyActionTimeFormat = "2006-01-02T15:04:05.999999999"

// ActionLog is the append-only audit trail of decisions made on cards.
type ActionLog interface {
	// Append persists rec after every existing record. On failure it returns
	// a *LogWriteError and the record is dropped.
	Append(rec models.ActionRecord) error
	// ReadAll returns every record in log order. A missing log is empty.
	ReadAll() ([]models.ActionRecord, error)
	Path() string
}

type csvActionLog struct {
	path string
}

// NewActionLog creates an ActionLog writing actions.csv inside dir.
func NewActionLog(dir string) ActionLog {
	return &csvActionLog{path: filepath.Join(dir, ActionsFile)}
}

func (l *csvActionLog) Path() string { return l.path }

// Append reads the whole log, concatenates the new row after the existing
// bytes and rewrites the file. The read-modify-write runs under an exclusive
// lock on a sidecar file so concurrent writers cannot lose each other's rows.
func (l *csvActionLog) Append(rec models.ActionRecord) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o750); err != nil {
		return &LogWriteError{Path: l.path, Err: err}
	}
	unlock, err := lockFile(l.path + ".lock")
	if err != nil {
		return &LogWriteError{Path: l.path, Err: err}
	}
	defer func() { _ = unlock() }()

	existing, err := os.ReadFile(l.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return &LogWriteError{Path: l.path, Err: err}
	}

	var buf bytes.Buffer
	if len(existing) == 0 {
		if err := encodeRows(&buf, models.ActionLogColumns); err != nil {
			return &LogWriteError{Path: l.path, Err: err}
		}
	} else {
		if err := checkActionHeader(existing); err != nil {
			return &LogWriteError{Path: l.path, Err: err}
		}
		buf.Write(existing)
		if existing[len(existing)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	if err := encodeRows(&buf, rec.Row()); err != nil {
		return &LogWriteError{Path: l.path, Err: err}
	}

	if err := writeFileAtomic(l.path, buf.Bytes(), 0o644); err != nil {
		return &LogWriteError{Path: l.path, Err: err}
	}
	return nil
}

func (l *csvActionLog) ReadAll() ([]models.ActionRecord, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading action log: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	t, err := readTable(bytes.NewReader(data), models.ActionLogColumns)
	if err != nil {
		return nil, fmt.Errorf("reading action log: %w", err)
	}

	records := make([]models.ActionRecord, 0, len(t.records))
	for i, row := range t.records {
		ts, err := parseActionTime(t.get(row, "ts"))
		if err != nil {
			return nil, fmt.Errorf("reading action log: row %d: %w", i+2, err)
		}
		records = append(records, models.ActionRecord{
			TS:      ts,
			MatchID: t.get(row, "match_id"),
			Type:    models.CardType(t.get(row, "type")),
			Action:  models.Action(t.get(row, "action")),
			AID:     t.get(row, "a_id"),
			BID:     t.get(row, "b_id"),
		})
	}
	return records, nil
}

func parseActionTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts.UTC(), nil
	}
	ts, err := time.ParseInLocation(legacyActionTimeFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ts %q", s)
	}
	return ts, nil
}

func checkActionHeader(existing []byte) error {
	header, err := csv.NewReader(bytes.NewReader(existing)).Read()
	if err != nil {
		return fmt.Errorf("reading existing header: %w", err)
	}
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}
	if !slices.Equal(header, models.ActionLogColumns) {
		return fmt.Errorf("unexpected header %v, want %v", header, models.ActionLogColumns)
	}
	return nil
}

func encodeRows(buf *bytes.Buffer, rows ...[]string) error {
	cw := csv.NewWriter(buf)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("encoding row: %w", err)
	}
	return nil
}
