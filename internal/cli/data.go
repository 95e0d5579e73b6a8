package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	replaceTasksPath string
	replaceCardsPath string
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Manage the tasks and cards datasets",
}

var dataReplaceCmd = &cobra.Command{
	Use:   "replace",
	Short: "Overwrite tasks.csv and/or cards.csv with new tables",
	Long: `Replace the backing tables with uploaded CSV files. The whole table is
overwritten, rows are not merged. Each file is validated against the required
columns first; nothing is written if either file is malformed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ViewModel == nil {
			return fmt.Errorf("view model not initialized")
		}
		if replaceTasksPath == "" && replaceCardsPath == "" {
			return fmt.Errorf("at least one of --tasks or --cards is required")
		}
		var tasksCSV, cardsCSV []byte
		var err error
		if replaceTasksPath != "" {
			if tasksCSV, err = os.ReadFile(replaceTasksPath); err != nil {
				return fmt.Errorf("reading --tasks: %w", err)
			}
		}
		if replaceCardsPath != "" {
			if cardsCSV, err = os.ReadFile(replaceCardsPath); err != nil {
				return fmt.Errorf("reading --cards: %w", err)
			}
		}
		if err := ViewModel.ReplaceDataset(tasksCSV, cardsCSV); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Dataset updated.")
		return nil
	},
}

func init() {
	dataReplaceCmd.Flags().StringVar(&replaceTasksPath, "tasks", "", "Path to the replacement tasks.csv")
	dataReplaceCmd.Flags().StringVar(&replaceCardsPath, "cards", "", "Path to the replacement cards.csv")
	dataCmd.AddCommand(dataReplaceCmd)
	rootCmd.AddCommand(dataCmd)
}
