package cli

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/swarm/internal/core"
)

var actCmd = &cobra.Command{
	Use:   "act <match-id> <meet|adr|dismiss>",
	Short: "Record a decision on a card",
	Long: `Record a decision on a card in the action log.

Actions: meet (20 min), adr (draft), dismiss. A card may be actioned more
than once; every decision is kept. If the log cannot be written a warning
is printed and the decision is dropped.`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeActArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Actions == nil {
			return fmt.Errorf("action service not initialized")
		}
		rec, err := Actions.Submit(core.SubmitCommand{MatchID: args[0], Action: args[1]})
		if err != nil {
			if errors.Is(err, core.ErrActionNotRecorded) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not record action: %v\n", err)
				return nil
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s on %s (%s ⟷ %s).\n", rec.Action, rec.MatchID, rec.AID, rec.BID)
		return nil
	},
}

var actionsJSON bool

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "Print the action log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ActionLog == nil {
			return fmt.Errorf("action log not initialized")
		}
		records, err := ActionLog.ReadAll()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if actionsJSON {
			return printJSON(out, records)
		}
		fmt.Fprintf(out, "%s (%d records)\n", ActionLog.Path(), len(records))
		if ActionsDirErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "note: %v\n", ActionsDirErr)
		}
		tw := newTable(out)
		tw.AppendHeader(table.Row{"ts", "match_id", "type", "action", "a_id", "b_id"})
		for _, r := range records {
			tw.AppendRow(table.Row(toRow(r.Row())))
		}
		tw.Render()
		return nil
	},
}

func toRow(fields []string) []any {
	row := make([]any, len(fields))
	for i, f := range fields {
		row[i] = f
	}
	return row
}

func init() {
	actionsCmd.Flags().BoolVar(&actionsJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(actCmd)
	rootCmd.AddCommand(actionsCmd)
}
