package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/swarm/internal/core"
)

// ProjectInit is the ProjectInitializer used by the init command.
// Set during application wiring.
var ProjectInit core.ProjectInitializer

var (
	initDataDir    string
	initActionsDir string
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a swarm workspace",
	Long: `Initialize a directory as a swarm workspace: a .swarmconfig file and a
data directory holding header-only tasks.csv and cards.csv.

Safe to run on existing workspaces -- files and directories that already
exist are skipped and not overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ProjectInit == nil {
			return fmt.Errorf("project initializer not initialized")
		}

		basePath := "."
		if len(args) > 0 {
			basePath = args[0]
		}
		absPath, err := filepath.Abs(basePath)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		result, err := ProjectInit.Init(core.InitConfig{
			BasePath:   absPath,
			DataDir:    initDataDir,
			ActionsDir: initActionsDir,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(result.Created) > 0 {
			fmt.Fprintln(out, "Created:")
			for _, p := range result.Created {
				fmt.Fprintf(out, "  %s\n", relTo(absPath, p))
			}
		}
		if len(result.Skipped) > 0 {
			fmt.Fprintln(out, "Skipped (already exist):")
			for _, p := range result.Skipped {
				fmt.Fprintf(out, "  %s\n", relTo(absPath, p))
			}
		}

		fmt.Fprintf(out, "\nWorkspace initialized at %s\n", absPath)
		return nil
	},
}

func relTo(base, p string) string {
	rel, err := filepath.Rel(base, p)
	if err != nil {
		return p
	}
	return rel
}

func init() {
	initCmd.Flags().StringVar(&initDataDir, "data-dir", "data", "Directory for tasks.csv and cards.csv")
	initCmd.Flags().StringVar(&initActionsDir, "actions-dir", "", "Directory for the action log (defaults to the data directory)")
	rootCmd.AddCommand(initCmd)
}
