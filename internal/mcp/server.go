// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the swarm cards, tasks and action log as tools for AI assistants.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/swarm/internal/core"
	"github.com/valter-silva-au/swarm/internal/observability"
	"github.com/valter-silva-au/swarm/pkg/models"
)

// Server wraps swarm services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	viewModel   core.ViewModelBuilder
	actions     core.ActionService
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
}

// NewServer creates a new MCP server over the given services. metricsCalc
// and alertEngine may be nil if observability is disabled.
func NewServer(viewModel core.ViewModelBuilder, actions core.ActionService, metricsCalc observability.MetricsCalculator, alertEngine observability.AlertEngine, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		viewModel:   viewModel,
		actions:     actions,
		metricsCalc: metricsCalc,
		alertEngine: alertEngine,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "swarm", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type listCardsInput struct {
	Types        []string `json:"types,omitempty" jsonschema:"card types to keep (synergy, conflict, duplicate); all observed types when empty"`
	Products     []string `json:"products,omitempty" jsonschema:"products to keep, matched on either side of the card; all when empty"`
	Capabilities []string `json:"capabilities,omitempty" jsonschema:"capabilities to keep, matched on either side of the card"`
	CrossOnly    bool     `json:"cross_only,omitempty" jsonschema:"only cards linking two different products"`
	MinScore     *int     `json:"min_score,omitempty" jsonschema:"minimum score (0-100) for synergy and duplicate cards; defaults to the configured minimum"`
	Query        string   `json:"query,omitempty" jsonschema:"case-insensitive search over match id, task ids and signals"`
}

type cardOutput struct {
	MatchID      string `json:"match_id"`
	Type         string `json:"type"`
	AID          string `json:"a_id"`
	ALine        string `json:"a_line"`
	BID          string `json:"b_id"`
	BLine        string `json:"b_line"`
	Score        string `json:"score,omitempty"`
	Signals      string `json:"signals"`
	SignalsCount int    `json:"signals_count"`
	CrossProduct bool   `json:"cross_product"`
}

type listCardsOutput struct {
	Found int          `json:"found"`
	Cards []cardOutput `json:"cards"`
}

type getTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"the task identifier (e.g. T1)"`
}

type taskOutput struct {
	Line string      `json:"line"`
	Task models.Task `json:"task"`
}

type capabilityOutput struct {
	Capability string `json:"capability"`
	Count      int    `json:"count"`
}

type overviewOutput struct {
	TotalCards      int                       `json:"total_cards"`
	TotalTasks      int                       `json:"total_tasks"`
	ByProduct       map[string]map[string]int `json:"by_product"`
	TopCapabilities []capabilityOutput        `json:"top_capabilities"`
}

type recordActionInput struct {
	MatchID string `json:"match_id" jsonschema:"the card to act on (e.g. M1)"`
	Action  string `json:"action" jsonschema:"the decision: meet, adr or dismiss"`
}

type recordActionOutput struct {
	Message string `json:"message"`
	TS      string `json:"ts"`
	Type    string `json:"type"`
	Action  string `json:"action"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	ActionsRecorded   int            `json:"actions_recorded"`
	ActionsFailed     int            `json:"actions_failed"`
	ActionsByAction   map[string]int `json:"actions_by_action"`
	ActionsByCardType map[string]int `json:"actions_by_card_type"`
	CardsActioned     int            `json:"cards_actioned"`
	DatasetLoads      int            `json:"dataset_loads"`
	DatasetReplaced   int            `json:"dataset_replaced"`
	EventCount        int            `json:"event_count"`
	OldestEvent       string         `json:"oldest_event,omitempty"`
	NewestEvent       string         `json:"newest_event,omitempty"`
}

type getAlertsInput struct{}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type alertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_cards",
		Description: "List synergy, conflict and duplicate cards matching the filters, in inbox order, with both tasks summarized.",
	}, s.handleListCards)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task",
		Description: "Get every field of a task by ID.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_overview",
		Description: "Portfolio overview of the filtered cards: counts per A-side product and type, and the most frequent capabilities.",
	}, s.handleGetOverview)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "record_action",
		Description: "Record a decision (meet, adr, dismiss) on a card in the append-only action log.",
	}, s.handleRecordAction)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get decision and dataset activity from the event log.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Get active alerts: failing action log writes, a fallback actions directory, and stale decision-making.",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleListCards(_ context.Context, _ *gomcp.CallToolRequest, input listCardsInput) (*gomcp.CallToolResult, listCardsOutput, error) {
	c, err := s.criteria(input)
	if err != nil {
		return errorResult(err.Error()), listCardsOutput{Cards: []cardOutput{}}, nil
	}
	filtered, err := s.viewModel.Cards(c)
	if err != nil {
		return errorResult(fmt.Sprintf("filtering cards: %s", err)), listCardsOutput{Cards: []cardOutput{}}, nil
	}
	inbox, err := s.viewModel.Inbox(c)
	if err != nil {
		return errorResult(fmt.Sprintf("ranking cards: %s", err)), listCardsOutput{Cards: []cardOutput{}}, nil
	}

	out := listCardsOutput{
		Found: len(filtered),
		Cards: make([]cardOutput, len(inbox)),
	}
	for i, card := range inbox {
		out.Cards[i] = s.cardToOutput(card)
	}
	return nil, out, nil
}

func (s *Server) handleGetTask(_ context.Context, _ *gomcp.CallToolRequest, input getTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), taskOutput{}, nil
	}

	task, err := s.viewModel.Task(input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting task %s: %s", input.TaskID, err)), taskOutput{}, nil
	}

	return nil, taskOutput{Line: s.viewModel.TaskLine(task.ID), Task: task}, nil
}

func (s *Server) handleGetOverview(_ context.Context, _ *gomcp.CallToolRequest, input listCardsInput) (*gomcp.CallToolResult, overviewOutput, error) {
	c, err := s.criteria(input)
	if err != nil {
		return errorResult(err.Error()), emptyOverviewOutput(), nil
	}
	stats, err := s.viewModel.Overview(c)
	if err != nil {
		return errorResult(fmt.Sprintf("building overview: %s", err)), emptyOverviewOutput(), nil
	}

	out := overviewOutput{
		TotalCards:      stats.TotalCards,
		TotalTasks:      stats.TotalTasks,
		ByProduct:       make(map[string]map[string]int, len(stats.Products)),
		TopCapabilities: make([]capabilityOutput, len(stats.TopCapabilities)),
	}
	for i, p := range stats.Products {
		row := make(map[string]int, len(stats.Types))
		for j, t := range stats.Types {
			row[string(t)] = stats.Grid[i][j]
		}
		out.ByProduct[p] = row
	}
	for i, cc := range stats.TopCapabilities {
		out.TopCapabilities[i] = capabilityOutput{Capability: cc.Capability, Count: cc.Count}
	}
	return nil, out, nil
}

func (s *Server) handleRecordAction(_ context.Context, _ *gomcp.CallToolRequest, input recordActionInput) (*gomcp.CallToolResult, recordActionOutput, error) {
	if input.MatchID == "" {
		return errorResult("match_id is required"), recordActionOutput{}, nil
	}
	if input.Action == "" {
		return errorResult("action is required"), recordActionOutput{}, nil
	}

	rec, err := s.actions.Submit(core.SubmitCommand{MatchID: input.MatchID, Action: input.Action})
	if err != nil {
		if errors.Is(err, core.ErrActionNotRecorded) {
			return errorResult(fmt.Sprintf("warning: decision on %s was not recorded: %s", input.MatchID, err)), recordActionOutput{}, nil
		}
		return errorResult(fmt.Sprintf("recording action on %s: %s", input.MatchID, err)), recordActionOutput{}, nil
	}

	out := recordActionOutput{
		Message: fmt.Sprintf("recorded %s on %s (%s, %s)", rec.Action, rec.MatchID, rec.AID, rec.BID),
		TS:      rec.TS.Format(models.ActionTimeFormat),
		Type:    string(rec.Type),
		Action:  string(rec.Action),
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (observability may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		ActionsRecorded:   metrics.ActionsRecorded,
		ActionsFailed:     metrics.ActionsFailed,
		ActionsByAction:   metrics.ActionsByAction,
		ActionsByCardType: metrics.ActionsByCardType,
		CardsActioned:     metrics.CardsActioned,
		DatasetLoads:      metrics.DatasetLoads,
		DatasetReplaced:   metrics.DatasetReplaced,
		EventCount:        metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, alertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available (observability may be disabled)"), alertsOutput{Alerts: []alertOutput{}}, nil
	}

	alerts, err := s.alertEngine.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), alertsOutput{Alerts: []alertOutput{}}, nil
	}

	out := alertsOutput{Alerts: make([]alertOutput, 0, len(alerts)), Count: len(alerts)}
	for _, a := range alerts {
		out.Alerts = append(out.Alerts, alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		})
	}
	return nil, out, nil
}

// --- Helpers ---

// criteria applies the tool filters on top of the default filter state.
func (s *Server) criteria(in listCardsInput) (core.Criteria, error) {
	c, err := s.viewModel.DefaultCriteria()
	if err != nil {
		return core.Criteria{}, fmt.Errorf("loading data: %w", err)
	}
	if len(in.Types) > 0 {
		c.Types = make([]models.CardType, len(in.Types))
		for i, t := range in.Types {
			c.Types[i] = models.CardType(t)
		}
	}
	if len(in.Products) > 0 {
		c.Products = in.Products
	}
	if len(in.Capabilities) > 0 {
		c.Capabilities = in.Capabilities
	}
	if in.MinScore != nil {
		if *in.MinScore < 0 || *in.MinScore > 100 {
			return core.Criteria{}, fmt.Errorf("min_score must be between 0 and 100, got %d", *in.MinScore)
		}
		c.MinScore = *in.MinScore
	}
	c.CrossProductOnly = in.CrossOnly
	c.Query = in.Query
	return c, nil
}

func (s *Server) cardToOutput(c models.Card) cardOutput {
	return cardOutput{
		MatchID:      c.MatchID,
		Type:         string(c.Type),
		AID:          c.AID,
		ALine:        s.viewModel.TaskLine(c.AID),
		BID:          c.BID,
		BLine:        s.viewModel.TaskLine(c.BID),
		Score:        c.Score,
		Signals:      c.Signals,
		SignalsCount: c.SignalsCount,
		CrossProduct: c.CrossProduct,
	}
}

func emptyOverviewOutput() overviewOutput {
	return overviewOutput{
		ByProduct:       make(map[string]map[string]int),
		TopCapabilities: []capabilityOutput{},
	}
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{
		ActionsByAction:   make(map[string]int),
		ActionsByCardType: make(map[string]int),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
