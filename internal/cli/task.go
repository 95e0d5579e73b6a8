package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	taskShowJSON bool
	tasksJSON    bool
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Inspect tasks",
}

var taskShowCmd = &cobra.Command{
	Use:               "show <task-id>",
	Short:             "Show every field of a task",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeTaskIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ViewModel == nil {
			return fmt.Errorf("view model not initialized")
		}
		task, err := ViewModel.Task(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if taskShowJSON {
			return printJSON(out, task)
		}
		fmt.Fprintln(out, ViewModel.TaskLine(task.ID))
		fmt.Fprintln(out)
		return printYAML(out, task)
	},
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List all tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ViewModel == nil {
			return fmt.Errorf("view model not initialized")
		}
		tasks, err := ViewModel.Tasks()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if tasksJSON {
			return printJSON(out, tasks.Rows)
		}
		tw := newTable(out)
		tw.AppendHeader(table.Row{"ID", "Product", "Team", "Capability", "Surface", "Entity", "Contract", "KPI family", "Lever", "Goal", "Start", "End"})
		for _, t := range tasks.Rows {
			tw.AppendRow(table.Row{t.ID, t.Product, t.Team, t.Capability, t.Surface, t.Entity, t.Contract, t.KPIFamily, t.Lever, t.Goal, t.TimelineStart, t.TimelineEnd})
		}
		tw.Render()
		return nil
	},
}

func init() {
	taskShowCmd.Flags().BoolVar(&taskShowJSON, "json", false, "Output as JSON")
	tasksCmd.Flags().BoolVar(&tasksJSON, "json", false, "Output as JSON")
	taskCmd.AddCommand(taskShowCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(tasksCmd)
}
