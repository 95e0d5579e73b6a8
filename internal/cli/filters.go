package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/swarm/internal/core"
	"github.com/valter-silva-au/swarm/pkg/models"
)

// filterFlags are the card filter flags shared by every listing command.
type filterFlags struct {
	types        []string
	products     []string
	capabilities []string
	crossOnly    bool
	minScore     int
	query        string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.types, "type", nil, "Card types to keep (default: all observed)")
	cmd.Flags().StringSliceVar(&f.products, "product", nil, "Products to keep, matched on either side (default: all)")
	cmd.Flags().StringSliceVar(&f.capabilities, "capability", nil, "Capabilities to keep, matched on either side (default: no filter)")
	cmd.Flags().BoolVar(&f.crossOnly, "cross-only", false, "Only cards linking two different products")
	cmd.Flags().IntVar(&f.minScore, "min-score", core.DefaultMinScore, "Minimum score for synergy and duplicate cards")
	cmd.Flags().StringVar(&f.query, "query", "", "Search match id, task ids and signals")
	registerFilterCompletions(cmd)
}

// criteria starts from the default filter state and applies every flag the
// user set explicitly.
func (f *filterFlags) criteria(cmd *cobra.Command) (core.Criteria, error) {
	if ViewModel == nil {
		return core.Criteria{}, fmt.Errorf("view model not initialized")
	}
	c, err := ViewModel.DefaultCriteria()
	if err != nil {
		return core.Criteria{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("type") {
		c.Types = make([]models.CardType, len(f.types))
		for i, t := range f.types {
			c.Types[i] = models.CardType(t)
		}
	}
	if flags.Changed("product") {
		c.Products = f.products
	}
	if flags.Changed("capability") {
		c.Capabilities = f.capabilities
	}
	if flags.Changed("min-score") {
		if f.minScore < 0 || f.minScore > 100 {
			return core.Criteria{}, fmt.Errorf("--min-score must be between 0 and 100, got %d", f.minScore)
		}
		c.MinScore = f.minScore
	}
	c.CrossProductOnly = f.crossOnly
	c.Query = f.query
	return c, nil
}

// reset restores flag values between test runs of the shared command tree.
func (f *filterFlags) reset() {
	*f = filterFlags{minScore: core.DefaultMinScore}
}
