package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/swarm/internal/core"
	"github.com/valter-silva-au/swarm/pkg/models"
)

// completeTaskIDs lists task ids with their summary line as description.
func completeTaskIDs(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if ViewModel == nil || len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	tasks, err := ViewModel.Tasks()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var ids []string
	for _, t := range tasks.Rows {
		if strings.HasPrefix(t.ID, toComplete) {
			ids = append(ids, t.ID+"\t"+t.Product+"/"+t.Team+": "+t.Capability)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// completeActArgs completes the match id of every card, then the action.
func completeActArgs(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		if ViewModel == nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		// Every card, regardless of the score threshold.
		c, err := ViewModel.DefaultCriteria()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		c.MinScore = 0
		cards, err := ViewModel.Cards(c)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var ids []string
		for _, card := range cards {
			if strings.HasPrefix(card.MatchID, toComplete) {
				ids = append(ids, card.MatchID+"\t"+string(card.Type)+": "+card.AID+" / "+card.BID)
			}
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	case 1:
		out := make([]string, len(models.Actions))
		for i, a := range models.Actions {
			out[i] = string(a) + "\t" + a.Label()
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeCardTypeArg completes the single card type argument of cards.
func completeCardTypeArg(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completeCardTypes(cmd, args, toComplete)
}

// completeCardTypes lists the card types observed in the dataset.
func completeCardTypes(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return observedCriteriaValues(func(c core.Criteria) []string {
		out := make([]string, len(c.Types))
		for i, t := range c.Types {
			out[i] = string(t)
		}
		return out
	}), cobra.ShellCompDirectiveNoFileComp
}

func completeProducts(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return observedCriteriaValues(func(c core.Criteria) []string { return c.Products }), cobra.ShellCompDirectiveNoFileComp
}

func completeCapabilities(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	if ViewModel == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	tasks, err := ViewModel.Tasks()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return core.ObservedCapabilities(tasks), cobra.ShellCompDirectiveNoFileComp
}

func observedCriteriaValues(pick func(core.Criteria) []string) []string {
	if ViewModel == nil {
		return nil
	}
	c, err := ViewModel.DefaultCriteria()
	if err != nil {
		return nil
	}
	return pick(c)
}

// registerFilterCompletions registers flag completion functions on a
// command carrying the shared filter flags.
func registerFilterCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("type", completeCardTypes)
	_ = cmd.RegisterFlagCompletionFunc("product", completeProducts)
	_ = cmd.RegisterFlagCompletionFunc("capability", completeCapabilities)
}
