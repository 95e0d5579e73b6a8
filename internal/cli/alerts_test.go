package cli

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/swarm/internal/observability"
)

type alertsMock struct {
	evaluateFn func() ([]observability.Alert, error)
}

func (m *alertsMock) Evaluate() ([]observability.Alert, error) {
	return m.evaluateFn()
}

type notifierMock struct {
	sent [][]observability.Alert
	err  error
}

func (m *notifierMock) Notify(_ context.Context, alerts []observability.Alert) error {
	m.sent = append(m.sent, alerts)
	return m.err
}

func withAlerts(t *testing.T, alerts []observability.Alert, err error) {
	t.Helper()
	origEngine, origNotifier := AlertEngine, Notifier
	origJSON, origNotify := alertsJSON, alertsNotify
	t.Cleanup(func() {
		AlertEngine, Notifier = origEngine, origNotifier
		alertsJSON, alertsNotify = origJSON, origNotify
	})
	AlertEngine = &alertsMock{evaluateFn: func() ([]observability.Alert, error) { return alerts, err }}
	Notifier = nil
	alertsJSON, alertsNotify = false, false
}

func fixtureAlerts() []observability.Alert {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []observability.Alert{
		{ID: "action-log-failing", Condition: "action_log_failing", Severity: observability.SeverityHigh, Message: "1 decision(s) could not be written", TriggeredAt: at},
		{ID: "decisions-stale", Condition: "decisions_stale", Severity: observability.SeverityLow, Message: "no decision recorded", TriggeredAt: at},
	}
}

func TestAlertsCmd_NilEngine(t *testing.T) {
	withAlerts(t, nil, nil)
	AlertEngine = nil

	_, _, err := run(t, alertsCmd)
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("expected not initialized error, got %v", err)
	}
}

func TestAlertsCmd_NoAlerts(t *testing.T) {
	withAlerts(t, nil, nil)

	out, _, err := run(t, alertsCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No active alerts.") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestAlertsCmd_WithAlerts(t *testing.T) {
	withAlerts(t, fixtureAlerts(), nil)

	out, _, err := run(t, alertsCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"2 active alert(s)", "[HIGH] 1 decision(s)", "[LOW] no decision recorded", "2025-06-01 12:00 UTC"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestAlertsCmd_JSON(t *testing.T) {
	withAlerts(t, fixtureAlerts(), nil)
	alertsJSON = true

	out, _, err := run(t, alertsCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []observability.Alert
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(got) != 2 || got[0].Condition != "action_log_failing" {
		t.Errorf("unexpected alerts: %+v", got)
	}
}

func TestAlertsCmd_EvaluateError(t *testing.T) {
	withAlerts(t, nil, errors.New("read failure"))

	_, _, err := run(t, alertsCmd)
	if err == nil || !strings.Contains(err.Error(), "evaluating alerts") {
		t.Fatalf("expected evaluating alerts error, got %v", err)
	}
}

func TestAlertsCmd_Notify(t *testing.T) {
	withAlerts(t, fixtureAlerts(), nil)
	n := &notifierMock{}
	Notifier = n
	alertsNotify = true

	_, stderr, err := run(t, alertsCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(n.sent) != 1 || len(n.sent[0]) != 2 {
		t.Errorf("expected one notification with 2 alerts, got %+v", n.sent)
	}
	if !strings.Contains(stderr, "Sent 2 alert(s)") {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestAlertsCmd_NotifySkipsWhenQuiet(t *testing.T) {
	withAlerts(t, nil, nil)
	n := &notifierMock{}
	Notifier = n
	alertsNotify = true

	if _, _, err := run(t, alertsCmd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(n.sent) != 0 {
		t.Error("no notification expected without alerts")
	}
}

func TestAlertsCmd_NotifyWithoutWebhook(t *testing.T) {
	withAlerts(t, fixtureAlerts(), nil)
	alertsNotify = true

	_, _, err := run(t, alertsCmd)
	if err == nil || !strings.Contains(err.Error(), "slack_webhook") {
		t.Fatalf("expected missing webhook error, got %v", err)
	}
}

func TestAlertsCmd_NotifyError(t *testing.T) {
	withAlerts(t, fixtureAlerts(), nil)
	Notifier = &notifierMock{err: errors.New("webhook down")}
	alertsNotify = true

	_, _, err := run(t, alertsCmd)
	if err == nil || !strings.Contains(err.Error(), "sending alerts") {
		t.Fatalf("expected sending alerts error, got %v", err)
	}
}
