package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/swarm/internal/core"
	"github.com/valter-silva-au/swarm/pkg/models"
)

var (
	cardsFilters filterFlags
	cardsJSON    bool
)

var cardsCmd = &cobra.Command{
	Use:   "cards <synergy|conflict|duplicate|type>",
	Short: "List the filtered cards of one type",
	Long: `List every filtered card of one type in source order, as a table.

Conflict cards carry no score, so the score column is omitted for them.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeCardTypeArg,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cardsFilters.criteria(cmd)
		if err != nil {
			return err
		}
		filtered, err := ViewModel.Cards(c)
		if err != nil {
			return err
		}
		cardType := models.CardType(args[0])
		cards := core.ByType(filtered, cardType)

		out := cmd.OutOrStdout()
		if cardsJSON {
			return printJSON(out, cards)
		}
		fmt.Fprintf(out, "Total %s cards (after filters): %d\n", cardType, len(cards))
		renderCards(out, cards, cardColumns{score: cardType != models.CardConflict}, nil)
		return nil
	},
}

func init() {
	cardsFilters.register(cardsCmd)
	cardsCmd.Flags().BoolVar(&cardsJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(cardsCmd)
}
