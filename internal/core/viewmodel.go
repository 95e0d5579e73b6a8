package core

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/valter-silva-au/swarm/pkg/models"
)

// DefaultInboxLimit is the number of cards shown in the inbox.
const DefaultInboxLimit = 100

// DefaultMinScore is the initial minimum score for scored card types.
const DefaultMinScore = 50

// DefaultTopCapabilities is the length of the overview capability ranking.
const DefaultTopCapabilities = 15

var errScoreParse = errors.New("score is not an integer")

// Criteria selects cards for display. Groups combine with AND.
//
// A nil Types or Products slice means no restriction on that group; a
// non-nil slice is a membership test, so an empty one matches nothing. An
// empty Capabilities slice never restricts.
type Criteria struct {
	Types            []models.CardType
	Products         []string
	Capabilities     []string
	CrossProductOnly bool
	// MinScore applies to synergy and duplicate cards only.
	MinScore int
	// Query is a case-insensitive substring matched against the match id,
	// both task ids and the signals.
	Query string
}

// DefaultCriteria returns the initial filter state: every observed type and
// product selected, no capability restriction, and DefaultMinScore.
func DefaultCriteria(cards *models.CardTable, tasks *models.TaskTable) Criteria {
	return Criteria{
		Types:    ObservedTypes(cards),
		Products: ObservedProducts(cards, tasks),
		MinScore: DefaultMinScore,
	}
}

// Filter returns the cards matching c in source order. The input table is
// not modified.
func Filter(cards *models.CardTable, c Criteria) []models.Card {
	if cards == nil {
		return nil
	}
	m := newMatcher(c)
	out := make([]models.Card, 0, len(cards.Rows))
	for _, card := range cards.Rows {
		if m.match(card) {
			out = append(out, card)
		}
	}
	return out
}

type matcher struct {
	c        Criteria
	types    map[models.CardType]struct{}
	products map[string]struct{}
	caps     map[string]struct{}
	query    string
}

func newMatcher(c Criteria) matcher {
	m := matcher{c: c, query: strings.ToLower(strings.TrimSpace(c.Query))}
	if c.Types != nil {
		m.types = make(map[models.CardType]struct{}, len(c.Types))
		for _, t := range c.Types {
			m.types[t] = struct{}{}
		}
	}
	if c.Products != nil {
		m.products = toSet(c.Products)
	}
	if len(c.Capabilities) > 0 {
		m.caps = toSet(c.Capabilities)
	}
	return m
}

func (m matcher) match(card models.Card) bool {
	if m.types != nil {
		if _, ok := m.types[card.Type]; !ok {
			return false
		}
	}
	if m.products != nil && !containsEither(m.products, card.AProd, card.BProd) {
		return false
	}
	if m.caps != nil && !containsEither(m.caps, card.ACap, card.BCap) {
		return false
	}
	if m.c.CrossProductOnly && !card.CrossProduct {
		return false
	}
	if !passesMinScore(card, m.c.MinScore) {
		return false
	}
	if m.query != "" && !matchesQuery(card, m.query) {
		return false
	}
	return true
}

// passesMinScore fails closed: a scored card whose score does not parse is
// excluded. Unscored types are exempt.
func passesMinScore(card models.Card, min int) bool {
	if !card.Type.Scored() {
		return true
	}
	score, err := ParseScore(card.Score)
	if err != nil {
		return false
	}
	return score >= min
}

func matchesQuery(card models.Card, q string) bool {
	for _, field := range []string{card.MatchID, card.AID, card.BID, card.Signals} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// ParseScore parses a card score as a decimal integer. Surrounding
// whitespace is ignored and a zero fraction such as "70.0" is accepted.
// Exponent, hex and other float forms are rejected.
func ParseScore(s string) (int, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		frac := s[i+1:]
		if frac == "" || strings.Trim(frac, "0") != "" {
			return 0, errScoreParse
		}
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errScoreParse
	}
	return n, nil
}

// Rank orders cards for the inbox: type ascending, score descending,
// signals count descending. Missing or non-numeric scores sort lowest. The
// sort is stable and the input slice is not modified.
func Rank(cards []models.Card) []models.Card {
	type ranked struct {
		card     models.Card
		score    int
		hasScore bool
	}
	rs := make([]ranked, len(cards))
	for i, c := range cards {
		n, err := ParseScore(c.Score)
		rs[i] = ranked{card: c, score: n, hasScore: err == nil}
	}

	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if a.card.Type != b.card.Type {
			return a.card.Type < b.card.Type
		}
		if a.hasScore != b.hasScore {
			return a.hasScore
		}
		if a.hasScore && a.score != b.score {
			return a.score > b.score
		}
		return a.card.SignalsCount > b.card.SignalsCount
	})

	out := make([]models.Card, len(rs))
	for i, r := range rs {
		out[i] = r.card
	}
	return out
}

// Inbox ranks cards and keeps at most limit of them. A limit of zero or
// less means DefaultInboxLimit.
func Inbox(cards []models.Card, limit int) []models.Card {
	if limit <= 0 {
		limit = DefaultInboxLimit
	}
	ranked := Rank(cards)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// ByType returns the cards of one type in their original order.
func ByType(cards []models.Card, t models.CardType) []models.Card {
	var out []models.Card
	for _, c := range cards {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// CapabilityCount is one entry of the overview capability ranking.
type CapabilityCount struct {
	Capability string `json:"capability"`
	Count      int    `json:"count"`
}

// OverviewStats is the portfolio summary over a filtered set of cards.
type OverviewStats struct {
	// Products and Types label the rows and columns of Grid.
	Products []string          `json:"products"`
	Types    []models.CardType `json:"types"`
	// Grid[i][j] counts cards with a_prod Products[i] and type Types[j].
	Grid            [][]int           `json:"grid"`
	TopCapabilities []CapabilityCount `json:"top_capabilities"`
	TotalCards      int               `json:"total_cards"`
	TotalTasks      int               `json:"total_tasks"`
}

// Count returns the grid cell for a product and type, or zero.
func (s OverviewStats) Count(product string, t models.CardType) int {
	i := sort.SearchStrings(s.Products, product)
	if i == len(s.Products) || s.Products[i] != product {
		return 0
	}
	for j, typ := range s.Types {
		if typ == t {
			return s.Grid[i][j]
		}
	}
	return 0
}

// Aggregate builds the overview with the default capability ranking length.
func Aggregate(cards []models.Card, tasks *models.TaskTable) OverviewStats {
	return AggregateTop(cards, tasks, DefaultTopCapabilities)
}

// AggregateTop builds the overview: a dense a_prod x type count grid and the
// top n capabilities pooled from both sides of every card. Capability ties
// keep first-encountered order, scanning all a_cap values before b_cap.
func AggregateTop(cards []models.Card, tasks *models.TaskTable, n int) OverviewStats {
	prodSet := make(map[string]struct{})
	typeSet := make(map[models.CardType]struct{})
	for _, c := range cards {
		prodSet[c.AProd] = struct{}{}
		typeSet[c.Type] = struct{}{}
	}
	products := sortedKeys(prodSet)
	types := make([]models.CardType, 0, len(typeSet))
	for t := range typeSet {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	prodIdx := make(map[string]int, len(products))
	for i, p := range products {
		prodIdx[p] = i
	}
	typeIdx := make(map[models.CardType]int, len(types))
	for j, t := range types {
		typeIdx[t] = j
	}
	grid := make([][]int, len(products))
	for i := range grid {
		grid[i] = make([]int, len(types))
	}
	for _, c := range cards {
		grid[prodIdx[c.AProd]][typeIdx[c.Type]]++
	}

	return OverviewStats{
		Products:        products,
		Types:           types,
		Grid:            grid,
		TopCapabilities: topCapabilities(cards, n),
		TotalCards:      len(cards),
		TotalTasks:      tasks.Len(),
	}
}

func topCapabilities(cards []models.Card, n int) []CapabilityCount {
	counts := make(map[string]int)
	var order []string
	add := func(capability string) {
		if capability == "" {
			return
		}
		if _, seen := counts[capability]; !seen {
			order = append(order, capability)
		}
		counts[capability]++
	}
	for _, c := range cards {
		add(c.ACap)
	}
	for _, c := range cards {
		add(c.BCap)
	}

	out := make([]CapabilityCount, len(order))
	for i, capability := range order {
		out[i] = CapabilityCount{Capability: capability, Count: counts[capability]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ObservedTypes returns the distinct card types, sorted.
func ObservedTypes(cards *models.CardTable) []models.CardType {
	set := make(map[string]struct{})
	if cards != nil {
		for _, c := range cards.Rows {
			set[string(c.Type)] = struct{}{}
		}
	}
	keys := sortedKeys(set)
	out := make([]models.CardType, len(keys))
	for i, k := range keys {
		out[i] = models.CardType(k)
	}
	return out
}

// ObservedProducts returns the distinct products of tasks and of both card
// sides, sorted.
func ObservedProducts(cards *models.CardTable, tasks *models.TaskTable) []string {
	set := make(map[string]struct{})
	if tasks != nil {
		for _, t := range tasks.Rows {
			set[t.Product] = struct{}{}
		}
	}
	if cards != nil {
		for _, c := range cards.Rows {
			set[c.AProd] = struct{}{}
			set[c.BProd] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// ObservedCapabilities returns the distinct task capabilities, sorted.
func ObservedCapabilities(tasks *models.TaskTable) []string {
	set := make(map[string]struct{})
	if tasks != nil {
		for _, t := range tasks.Rows {
			set[t.Capability] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func containsEither(set map[string]struct{}, a, b string) bool {
	if _, ok := set[a]; ok {
		return true
	}
	_, ok := set[b]
	return ok
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
