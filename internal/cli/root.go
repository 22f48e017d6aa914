// Package cli implements the mdmerge command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const asciiLogo = `            _
  _ __  ___| |_ __  ___ _ _ __ _ ___
 | '  \/ _  | '  \/ -_) '_/ _  / -_)
 |_|_|_\__,_|_|_|_\___|_| \__, \___|
                          |___/`

var rootCmd = &cobra.Command{
	Use:   "mdmerge",
	Short: "Metadata branch compare, merge, and packaging",
	Long: asciiLogo + `

mdmerge compares parallel branches of a metadata repository at entry
granularity, applies the resulting diff log to a target branch in place,
and assembles deployment packages with their manifests.

A compare run walks the source and target branch roots, parses every
metadata artifact into a position-independent leaf map, and writes one
CSV row per semantic change. A merge run replays those rows against the
target branch through the same tree engine, re-sorting siblings as
configured.

Exit Codes:
  0  - Success
  1  - General error (including invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or merge rules
  11 - Diff log missing or malformed
  12 - User declined a phase gate
  13 - File reconstruction failed`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for mdmerge")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
