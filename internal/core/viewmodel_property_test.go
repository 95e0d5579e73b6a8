package core

import (
	"fmt"
	"reflect"
	"strconv"
	"testing"

	"github.com/valter-silva-au/swarm/pkg/models"
	"pgregory.net/rapid"
)

var genProducts = []string{"Alpha", "Beta", "Gamma"}

func genCard(t *rapid.T, i int) models.Card {
	typ := rapid.SampledFrom([]models.CardType{models.CardSynergy, models.CardConflict, models.CardDuplicate}).Draw(t, fmt.Sprintf("type_%d", i))
	score := ""
	switch rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("scoreKind_%d", i)) {
	case 0:
	case 1:
		score = "n/a"
	default:
		score = strconv.Itoa(rapid.IntRange(0, 100).Draw(t, fmt.Sprintf("score_%d", i)))
	}
	nSignals := rapid.IntRange(0, 4).Draw(t, fmt.Sprintf("nSignals_%d", i))
	signals := ""
	for j := 0; j < nSignals; j++ {
		if j > 0 {
			signals += models.SignalSeparator
		}
		signals += rapid.SampledFrom([]string{"api", "data", "kpi", "goal"}).Draw(t, fmt.Sprintf("signal_%d_%d", i, j))
	}
	c := models.Card{
		MatchID: fmt.Sprintf("M%d", i),
		Type:    typ,
		AID:     "T1",
		AProd:   rapid.SampledFrom(genProducts).Draw(t, fmt.Sprintf("aProd_%d", i)),
		ACap:    rapid.SampledFrom([]string{"payments", "ledger", ""}).Draw(t, fmt.Sprintf("aCap_%d", i)),
		BID:     "T2",
		BProd:   rapid.SampledFrom(genProducts).Draw(t, fmt.Sprintf("bProd_%d", i)),
		BCap:    rapid.SampledFrom([]string{"payments", "search", ""}).Draw(t, fmt.Sprintf("bCap_%d", i)),
		Score:   score,
		Signals: signals,
	}
	c.Derive()
	return c
}

func genCardTable(t *rapid.T) *models.CardTable {
	n := rapid.IntRange(0, 30).Draw(t, "nCards")
	rows := make([]models.Card, n)
	for i := range rows {
		rows[i] = genCard(t, i)
	}
	return models.NewCardTable(rows)
}

func genCriteria(t *rapid.T) Criteria {
	c := Criteria{
		CrossProductOnly: rapid.Bool().Draw(t, "crossOnly"),
		MinScore:         rapid.IntRange(0, 100).Draw(t, "minScore"),
	}
	if rapid.Bool().Draw(t, "restrictTypes") {
		c.Types = []models.CardType{}
		for _, ct := range []models.CardType{models.CardConflict, models.CardDuplicate, models.CardSynergy} {
			if rapid.Bool().Draw(t, "type_"+string(ct)) {
				c.Types = append(c.Types, ct)
			}
		}
	}
	if rapid.Bool().Draw(t, "restrictProducts") {
		c.Products = []string{}
		for _, p := range genProducts {
			if rapid.Bool().Draw(t, "product_"+p) {
				c.Products = append(c.Products, p)
			}
		}
	}
	return c
}

// =============================================================================
// Property 1: Derived Columns
// =============================================================================

// Feature: card inbox, Property 1: Derived Columns
// *For any* card, CrossProduct SHALL equal a_prod != b_prod and SignalsCount
// SHALL equal the number of non-empty ", "-separated signals.
func TestProperty_DerivedColumns(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := genCard(rt, 0)
		if c.CrossProduct != (c.AProd != c.BProd) {
			rt.Errorf("CrossProduct = %v for %s/%s", c.CrossProduct, c.AProd, c.BProd)
		}
		if c.SignalsCount != len(c.SignalList()) {
			rt.Errorf("SignalsCount = %d, signals %q", c.SignalsCount, c.Signals)
		}
	})
}

// =============================================================================
// Property 2: Filter Is Idempotent And A Subset
// =============================================================================

// Feature: card inbox, Property 2: Filter Is Idempotent And A Subset
// *For any* cards and criteria, filtering the filtered result again SHALL
// return it unchanged, and every returned card SHALL satisfy each group.
func TestProperty_FilterIdempotentSubset(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cards := genCardTable(rt)
		c := genCriteria(rt)

		once := Filter(cards, c)
		twice := Filter(models.NewCardTable(once), c)
		if !reflect.DeepEqual(ids(once), ids(twice)) {
			rt.Fatalf("filter not idempotent: %v vs %v", ids(once), ids(twice))
		}

		for _, card := range once {
			if c.CrossProductOnly && !card.CrossProduct {
				rt.Errorf("%s is not cross-product", card.MatchID)
			}
			if card.Type.Scored() {
				n, err := ParseScore(card.Score)
				if err != nil || n < c.MinScore {
					rt.Errorf("%s score %q below %d", card.MatchID, card.Score, c.MinScore)
				}
			}
		}
	})
}

// =============================================================================
// Property 3: Raising Min Score Never Adds Cards
// =============================================================================

// Feature: card inbox, Property 3: Raising Min Score Never Adds Cards
// *For any* cards and criteria, the result at a higher min score SHALL be a
// subset of the result at a lower one, and conflict cards SHALL be unaffected.
func TestProperty_MinScoreMonotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cards := genCardTable(rt)
		c := genCriteria(rt)
		lo := rapid.IntRange(0, 100).Draw(rt, "lo")
		hi := rapid.IntRange(lo, 100).Draw(rt, "hi")

		c.MinScore = lo
		low := Filter(cards, c)
		c.MinScore = hi
		high := Filter(cards, c)

		inLow := make(map[string]bool, len(low))
		for _, card := range low {
			inLow[card.MatchID] = true
		}
		for _, card := range high {
			if !inLow[card.MatchID] {
				rt.Errorf("%s appears only at the higher min score", card.MatchID)
			}
		}
		if len(ByType(low, models.CardConflict)) != len(ByType(high, models.CardConflict)) {
			rt.Error("min score changed the conflict cards")
		}
	})
}

// =============================================================================
// Property 3b: Widening A Criterion Never Removes Cards
// =============================================================================

// Feature: card inbox, Property 3b: Widening A Criterion Never Removes Cards
// *For any* cards and criteria, adding a value to the allowed types, products
// or non-empty capabilities SHALL return a superset of the previous result.
func TestProperty_WideningNeverRemoves(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cards := genCardTable(rt)
		c := genCriteria(rt)
		if rapid.Bool().Draw(rt, "restrictCaps") {
			c.Capabilities = []string{rapid.SampledFrom([]string{"payments", "search"}).Draw(rt, "cap")}
		}

		narrow := Filter(cards, c)

		type widening struct {
			name string
			c    Criteria
		}
		var widened []widening
		if c.Types != nil {
			w := c
			extra := rapid.SampledFrom([]models.CardType{models.CardConflict, models.CardDuplicate, models.CardSynergy}).Draw(rt, "extraType")
			w.Types = append(append([]models.CardType{}, c.Types...), extra)
			widened = append(widened, widening{"types", w})
		}
		if c.Products != nil {
			w := c
			extra := rapid.SampledFrom(genProducts).Draw(rt, "extraProduct")
			w.Products = append(append([]string{}, c.Products...), extra)
			widened = append(widened, widening{"products", w})
		}
		if len(c.Capabilities) > 0 {
			w := c
			extra := rapid.SampledFrom([]string{"payments", "search"}).Draw(rt, "extraCap")
			w.Capabilities = append(append([]string{}, c.Capabilities...), extra)
			widened = append(widened, widening{"capabilities", w})
		}

		for _, wc := range widened {
			got := make(map[string]bool)
			for _, card := range Filter(cards, wc.c) {
				got[card.MatchID] = true
			}
			for _, card := range narrow {
				if !got[card.MatchID] {
					rt.Errorf("widening %s dropped %s", wc.name, card.MatchID)
				}
			}
		}
	})
}

// =============================================================================
// Property 4: Rank Is An Ordered Permutation
// =============================================================================

// Feature: card inbox, Property 4: Rank Is An Ordered Permutation
// *For any* cards, Rank SHALL return the same cards with types ascending and,
// within a type, parsed scores descending before unparseable ones.
func TestProperty_RankOrdered(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cards := genCardTable(rt).Rows
		ranked := Rank(cards)

		if len(ranked) != len(cards) {
			rt.Fatalf("Rank changed the card count: %d vs %d", len(ranked), len(cards))
		}
		seen := make(map[string]bool, len(ranked))
		for _, c := range ranked {
			seen[c.MatchID] = true
		}
		for _, c := range cards {
			if !seen[c.MatchID] {
				rt.Fatalf("Rank dropped %s", c.MatchID)
			}
		}

		for i := 1; i < len(ranked); i++ {
			a, b := ranked[i-1], ranked[i]
			if a.Type > b.Type {
				rt.Fatalf("types out of order at %d: %s > %s", i, a.Type, b.Type)
			}
			if a.Type != b.Type {
				continue
			}
			sa, errA := ParseScore(a.Score)
			sb, errB := ParseScore(b.Score)
			if errA != nil && errB == nil {
				rt.Fatalf("missing score ranked above %s", b.MatchID)
			}
			if errA == nil && errB == nil {
				if sa < sb {
					rt.Fatalf("scores out of order at %d: %d < %d", i, sa, sb)
				}
				if sa == sb && a.SignalsCount < b.SignalsCount {
					rt.Fatalf("signals out of order at %d", i)
				}
			}
		}
	})
}

// =============================================================================
// Property 5: Overview Grid Sums To Total
// =============================================================================

// Feature: overview, Property 5: Overview Grid Sums To Total
// *For any* cards, the grid cells SHALL sum to TotalCards and each row SHALL
// sum to the number of cards with that a_prod.
func TestProperty_OverviewGridSums(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cards := genCardTable(rt).Rows
		s := Aggregate(cards, nil)

		total := 0
		for i, row := range s.Grid {
			rowSum := 0
			for _, n := range row {
				rowSum += n
			}
			want := 0
			for _, c := range cards {
				if c.AProd == s.Products[i] {
					want++
				}
			}
			if rowSum != want {
				rt.Errorf("row %s sums to %d, want %d", s.Products[i], rowSum, want)
			}
			total += rowSum
		}
		if total != s.TotalCards || s.TotalCards != len(cards) {
			rt.Errorf("grid total %d, TotalCards %d, cards %d", total, s.TotalCards, len(cards))
		}
		for i := 1; i < len(s.TopCapabilities); i++ {
			if s.TopCapabilities[i-1].Count < s.TopCapabilities[i].Count {
				rt.Errorf("capabilities not sorted by count: %v", s.TopCapabilities)
			}
		}
	})
}

// =============================================================================
// Property 6: Unknown Task Lookup Falls Back To The ID
// =============================================================================

// Feature: task lookup, Property 6: Unknown Task Lookup Falls Back To The ID
// *For any* id not in the tasks table, TaskLine SHALL return the id itself
// and ResolveFull SHALL return ErrTaskNotFound.
func TestProperty_UnknownTaskLookup(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		id := rapid.StringMatching(`X[A-Za-z0-9-]{0,12}`).Draw(rt, "id")
		tasks := sampleTasks()

		if got := TaskLine(id, tasks); got != id {
			rt.Errorf("TaskLine(%q) = %q", id, got)
		}
		if _, err := ResolveFull(id, tasks); err == nil {
			rt.Errorf("expected an error for %q", id)
		}
	})
}
