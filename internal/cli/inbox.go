package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/swarm/pkg/models"
)

var (
	inboxFilters filterFlags
	inboxJSON    bool
)

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "List the highest-ranked cards matching the filters",
	Long: `List filtered cards in inbox order: by type, then score (highest first),
then number of signals. At most inbox.limit cards are shown.

Each card names both tasks with their product, team, capability and goal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := inboxFilters.criteria(cmd)
		if err != nil {
			return err
		}
		filtered, err := ViewModel.Cards(c)
		if err != nil {
			return err
		}
		inbox, err := ViewModel.Inbox(c)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if inboxJSON {
			return printJSON(out, map[string]any{"found": len(filtered), "cards": inbox})
		}

		fmt.Fprintf(out, "Found: %d\n\n", len(filtered))
		for _, card := range inbox {
			fmt.Fprintln(out, cardHeader(card, ViewModel.TaskLine))
		}
		return nil
	},
}

// cardHeader renders the one-line inbox entry of a card.
func cardHeader(c models.Card, taskLine func(string) string) string {
	return fmt.Sprintf("[%s] %s ⟷ %s (signals: %s | score: %s | cross: %s)",
		strings.ToUpper(string(c.Type)),
		taskLine(c.AID),
		taskLine(c.BID),
		c.Signals,
		c.Score,
		yesNo(c.CrossProduct),
	)
}

func init() {
	inboxFilters.register(inboxCmd)
	inboxCmd.Flags().BoolVar(&inboxJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(inboxCmd)
}
