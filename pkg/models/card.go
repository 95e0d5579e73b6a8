package models

import "strings"

// CardType classifies the relationship a card describes. The set is open:
// any value found in cards.csv is accepted.
type CardType string

const (
	CardSynergy   CardType = "synergy"
	CardConflict  CardType = "conflict"
	CardDuplicate CardType = "duplicate"
)

// Scored reports whether cards of this type carry a meaningful score.
func (ct CardType) Scored() bool {
	return ct == CardSynergy || ct == CardDuplicate
}

// SignalSeparator joins the individual signals of a card.
const SignalSeparator = ", "

// CardColumns lists the required header of cards.csv.
var CardColumns = []string{
	"match_id", "type", "a_id", "a_prod", "a_cap", "b_id", "b_prod", "b_cap", "score", "signals",
}

// Card is a directed pairwise observation between two tasks. CrossProduct
// and SignalsCount are derived at load time and never written back.
type Card struct {
	MatchID string   `yaml:"match_id" json:"match_id"`
	Type    CardType `yaml:"type" json:"type"`
	AID     string   `yaml:"a_id" json:"a_id"`
	AProd   string   `yaml:"a_prod" json:"a_prod"`
	ACap    string   `yaml:"a_cap" json:"a_cap"`
	BID     string   `yaml:"b_id" json:"b_id"`
	BProd   string   `yaml:"b_prod" json:"b_prod"`
	BCap    string   `yaml:"b_cap" json:"b_cap"`
	Score   string   `yaml:"score" json:"score"`
	Signals string   `yaml:"signals" json:"signals"`

	CrossProduct bool `yaml:"cross_product" json:"cross_product"`
	SignalsCount int  `yaml:"signals_count" json:"signals_count"`
}

// Derive recomputes the derived fields from the stored ones.
func (c *Card) Derive() {
	c.CrossProduct = c.AProd != c.BProd
	c.SignalsCount = CountSignals(c.Signals)
}

// SignalList splits the signals column into its non-empty items.
func (c Card) SignalList() []string {
	var out []string
	for _, s := range strings.Split(c.Signals, SignalSeparator) {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CountSignals counts the non-empty items of a ", "-joined signals value.
func CountSignals(signals string) int {
	if signals == "" {
		return 0
	}
	n := 0
	for _, s := range strings.Split(signals, SignalSeparator) {
		if s != "" {
			n++
		}
	}
	return n
}

// Row returns the stored (non-derived) fields in CardColumns order.
func (c Card) Row() []string {
	return []string{
		c.MatchID, string(c.Type), c.AID, c.AProd, c.ACap, c.BID, c.BProd, c.BCap, c.Score, c.Signals,
	}
}

// CardTable is the loaded cards dataset in source order.
type CardTable struct {
	Rows  []Card
	Index map[string]int
}

// NewCardTable builds a CardTable and its match_id index from rows.
func NewCardTable(rows []Card) *CardTable {
	idx := make(map[string]int, len(rows))
	for i, c := range rows {
		idx[c.MatchID] = i
	}
	return &CardTable{Rows: rows, Index: idx}
}

// Get returns the card with the given match_id.
func (ct *CardTable) Get(matchID string) (Card, bool) {
	if ct == nil {
		return Card{}, false
	}
	i, ok := ct.Index[matchID]
	if !ok {
		return Card{}, false
	}
	return ct.Rows[i], true
}

// Len returns the number of cards, treating a nil table as empty.
func (ct *CardTable) Len() int {
	if ct == nil {
		return 0
	}
	return len(ct.Rows)
}
