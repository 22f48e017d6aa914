package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/mdmerge/internal/files/filesystem"
	"github.com/vvka-141/mdmerge/internal/logging"
	"github.com/vvka-141/mdmerge/internal/services"
	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Apply a diff log to the target branch",
	Long: `Merge reads a diff log, groups its rows by target file and request
timestamp, and applies them: file rows copy or delete whole files,
item rows are spliced into the target's section tree and the file is
reconstructed in place with sorted siblings.

Per-row failures are reported and do not stop the run; a failed file
reconstruction does.`,
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().String("diff-log", "", "Diff log to apply")
	mergeCmd.Flags().String("source", "", "Source branch root (default from mdmerge.yaml)")
	mergeCmd.Flags().String("target", "", "Target branch root (default: first target in mdmerge.yaml)")
	mergeCmd.Flags().String("rules", "", "Merge-rules file (default from mdmerge.yaml)")
	mergeCmd.Flags().BoolP("yes", "y", false, "Apply without the confirmation gate")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)

	project, err := loadProjectConfig()
	if err != nil {
		return fmt.Errorf("%w: %v", mdmerge.ErrInvalidConfig, err)
	}

	diffLog, _ := cmd.Flags().GetString("diff-log")
	source, _ := cmd.Flags().GetString("source")
	target, _ := cmd.Flags().GetString("target")
	rulesPath, _ := cmd.Flags().GetString("rules")
	assumeYes, _ := cmd.Flags().GetBool("yes")

	if target == "" && len(project.Targets) > 0 {
		target = project.Targets[0]
	}

	cfg := mdmerge.MergeConfig{
		DiffLogPath: firstNonEmpty(diffLog, reportPath(project, mdmerge.DefaultDiffLogName)),
		SourcePath:  firstNonEmpty(source, project.Source),
		TargetPath:  target,
		RulesPath:   firstNonEmpty(rulesPath, project.Rules),
		Verbose:     verbose,
	}

	approver := newApprover(assumeYes, verbose)
	approved, err := approver.RequestApproval(cmd.Context(), mdmerge.PhaseMerge)
	if err != nil {
		return err
	}
	if !approved {
		return fmt.Errorf("merge phase: %w", mdmerge.ErrApprovalDenied)
	}

	merger := services.NewMergeService(logger, filesystem.NewOSFileSystem())
	result, err := merger.Merge(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	logger.Info("merge: %d files reconstructed, %d copied, %d deleted, %d row errors",
		result.FilesUpdated, result.FilesCopied, result.FilesDeleted, len(result.RowErrors))
	return nil
}
