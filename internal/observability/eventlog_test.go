package observability

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestLog(t *testing.T) (EventLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", EventsFile)
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })
	return log, path
}

func TestEventLog_WriteAndRead(t *testing.T) {
	log, _ := newTestLog(t)

	now := time.Now().UTC().Truncate(time.Millisecond)
	events := []Event{
		{
			Time:    now,
			Level:   LevelInfo,
			Type:    "action.recorded",
			Message: "decision recorded",
			Data:    map[string]any{"match_id": "M1", "action": "meet"},
		},
		{
			Time:    now.Add(time.Second),
			Level:   LevelWarn,
			Type:    "action.failed",
			Message: "decision dropped",
			Data:    map[string]any{"match_id": "M2", "error": "read-only file system"},
		},
	}

	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 events, got %d", len(result))
	}
	if result[0].Type != "action.recorded" || result[0].Data["match_id"] != "M1" {
		t.Errorf("unexpected first event: %+v", result[0])
	}
	if result[1].Level != LevelWarn {
		t.Errorf("expected level WARN, got %s", result[1].Level)
	}
	if !result[0].Time.Equal(now) {
		t.Errorf("expected time %v, got %v", now, result[0].Time)
	}
}

func TestEventLog_WriteDefaults(t *testing.T) {
	log, _ := newTestLog(t)

	before := time.Now().UTC()
	if err := log.Write(Event{Level: LevelInfo, Type: "dataset.loaded"}); err != nil {
		t.Fatalf("writing event: %v", err)
	}

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 event, got %d", len(result))
	}
	if result[0].Time.Before(before.Add(-time.Second)) {
		t.Errorf("expected zero time to be filled with now, got %v", result[0].Time)
	}
	if result[0].Message != "dataset.loaded" {
		t.Errorf("expected message to default to the type, got %q", result[0].Message)
	}
}

func TestEventLog_Filters(t *testing.T) {
	log, _ := newTestLog(t)

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{Time: base, Level: LevelInfo, Type: "dataset.loaded", Message: "first"},
		{Time: base.Add(time.Hour), Level: LevelInfo, Type: "action.recorded", Message: "second"},
		{Time: base.Add(2 * time.Hour), Level: LevelWarn, Type: "action.failed", Message: "third"},
		{Time: base.Add(3 * time.Hour), Level: LevelInfo, Type: "action.recorded", Message: "fourth"},
	}
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	since := base.Add(30 * time.Minute)
	until := base.Add(2*time.Hour + 30*time.Minute)

	tests := []struct {
		name   string
		filter EventFilter
		want   []string
	}{
		{"time range", EventFilter{Since: &since, Until: &until}, []string{"second", "third"}},
		{"single type", EventFilter{Types: []string{"action.recorded"}}, []string{"second", "fourth"}},
		{"several types", EventFilter{Types: []string{"dataset.loaded", "action.failed"}}, []string{"first", "third"}},
		{"level", EventFilter{Level: LevelWarn}, []string{"third"}},
		{"combined", EventFilter{Since: &since, Types: []string{"action.recorded"}}, []string{"second", "fourth"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := log.Read(tt.filter)
			if err != nil {
				t.Fatalf("reading events: %v", err)
			}
			if len(result) != len(tt.want) {
				t.Fatalf("expected %d events, got %d", len(tt.want), len(result))
			}
			for i, e := range result {
				if e.Message != tt.want[i] {
					t.Errorf("event %d: expected %q, got %q", i, tt.want[i], e.Message)
				}
			}
		})
	}
}

func TestEventLog_SkipsMalformedLines(t *testing.T) {
	log, path := newTestLog(t)

	if err := log.Write(Event{Level: LevelInfo, Type: "dataset.loaded"}); err != nil {
		t.Fatalf("writing event: %v", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("{not json\n\n")
	_ = f.Close()
	if err := log.Write(Event{Level: LevelInfo, Type: "dataset.replaced"}); err != nil {
		t.Fatalf("writing event: %v", err)
	}

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("expected the 2 valid events, got %d", len(result))
	}
}

func TestEventLog_EmptyLog(t *testing.T) {
	log, _ := newTestLog(t)

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading empty log: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("expected 0 events from empty log, got %d", len(result))
	}
}

func TestEventLog_ConcurrentWrites(t *testing.T) {
	log, _ := newTestLog(t)

	const goroutines = 10
	const eventsPerGoroutine = 20

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for g := 0; g < goroutines; g++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < eventsPerGoroutine; i++ {
				event := Event{
					Level: LevelInfo,
					Type:  "action.recorded",
					Data:  map[string]any{"goroutine": id, "index": i},
				}
				if err := log.Write(event); err != nil {
					t.Errorf("concurrent write error: %v", err)
				}
			}
		}(g)
	}

	wg.Wait()

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events after concurrent writes: %v", err)
	}

	expected := goroutines * eventsPerGoroutine
	if len(result) != expected {
		t.Errorf("expected %d events, got %d", expected, len(result))
	}
}
