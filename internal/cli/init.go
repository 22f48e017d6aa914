package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/mdmerge/internal/scaffold"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter mdmerge.yaml and merge-rules.conf",
	Long: `Init writes the starter project configuration and merge rules into
the given directory (default: current directory). Existing files are
left untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}

	scaffolder := scaffold.NewScaffolder(getVerboseFlag(cmd))
	if err := scaffolder.InitProject(target); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "initialized mdmerge project in %s\n", target)
	return nil
}
