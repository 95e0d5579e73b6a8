package server

import (
	"github.com/valter-silva-au/swarm/internal/core"
	"github.com/valter-silva-au/swarm/pkg/models"
)

// Request payloads

// FilterQuery carries the card filters shared by the listing endpoints.
// Empty parameters keep the default filter state.
type FilterQuery struct {
	Type       []string `query:"type" doc:"Card types to keep (default: all observed)"`
	Product    []string `query:"product" doc:"Products to keep, matched on either side (default: all)"`
	Capability []string `query:"capability" doc:"Capabilities to keep, matched on either side"`
	CrossOnly  bool     `query:"cross_only" doc:"Only cards linking two different products"`
	MinScore   string   `query:"min_score" doc:"Minimum score for synergy and duplicate cards, 0-100"`
	Query      string   `query:"q" doc:"Search match id, task ids and signals"`
}

type SubmitActionRequest struct {
	MatchID string `json:"match_id" minLength:"1" example:"M1"`
	Action  string `json:"action" example:"meet" doc:"meet, adr or dismiss; a menu label such as \"meet (20 min)\" is accepted"`
}

type ReplaceDatasetRequest struct {
	Tasks *string `json:"tasks,omitempty" doc:"Replacement tasks.csv content"`
	Cards *string `json:"cards,omitempty" doc:"Replacement cards.csv content"`
}

// Response payloads

// CardView is a card with both task references resolved for display.
type CardView struct {
	models.Card
	ALine string `json:"a_line" example:"T1 · Alpha/core · payments · Ship card payments"`
	BLine string `json:"b_line"`
}

type CardListResponse struct {
	Found int        `json:"found"`
	Cards []CardView `json:"cards"`
}

type OverviewResponse struct {
	core.OverviewStats
}

type TaskListResponse struct {
	Tasks []models.Task `json:"tasks"`
}

type TaskResponse struct {
	Task models.Task `json:"task"`
	Line string      `json:"line"`
}

type ActionResponse struct {
	Record models.ActionRecord `json:"record"`
}

type DatasetResponse struct {
	Status        string `json:"status" example:"replaced"`
	TasksReplaced bool   `json:"tasks_replaced"`
	CardsReplaced bool   `json:"cards_replaced"`
}

func toCardViews(cards []models.Card, taskLine func(string) string) []CardView {
	out := make([]CardView, len(cards))
	for i, c := range cards {
		out[i] = CardView{Card: c, ALine: taskLine(c.AID), BLine: taskLine(c.BID)}
	}
	return out
}
