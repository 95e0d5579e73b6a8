package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	overviewFilters filterFlags
	overviewJSON    bool
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Portfolio overview of the filtered cards",
	Long: `Show card counts per A-side product and card type, and the most frequent
capabilities across both sides of the filtered cards.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := overviewFilters.criteria(cmd)
		if err != nil {
			return err
		}
		stats, err := ViewModel.Overview(c)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if overviewJSON {
			return printJSON(out, stats)
		}

		fmt.Fprintf(out, "Cards: %d  Tasks: %d\n\n", stats.TotalCards, stats.TotalTasks)

		fmt.Fprintln(out, "Cards by product (A side):")
		grid := newTable(out)
		header := table.Row{"a_prod"}
		for _, t := range stats.Types {
			header = append(header, t)
		}
		grid.AppendHeader(header)
		for i, p := range stats.Products {
			row := table.Row{p}
			for _, n := range stats.Grid[i] {
				row = append(row, n)
			}
			grid.AppendRow(row)
		}
		grid.Render()

		fmt.Fprintf(out, "\nCards by capability (top %d):\n", len(stats.TopCapabilities))
		caps := newTable(out)
		caps.AppendHeader(table.Row{"capability", "count"})
		for _, cc := range stats.TopCapabilities {
			caps.AppendRow(table.Row{cc.Capability, cc.Count})
		}
		caps.Render()
		return nil
	},
}

func init() {
	overviewFilters.register(overviewCmd)
	overviewCmd.Flags().BoolVar(&overviewJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(overviewCmd)
}
