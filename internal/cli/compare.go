package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/mdmerge/internal/config"
	"github.com/vvka-141/mdmerge/internal/files/filesystem"
	"github.com/vvka-141/mdmerge/internal/logging"
	"github.com/vvka-141/mdmerge/internal/packaging"
	"github.com/vvka-141/mdmerge/internal/params"
	"github.com/vvka-141/mdmerge/internal/services"
	"github.com/vvka-141/mdmerge/internal/tui"
	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the source branch against target branches",
	Long: `Compare walks the source and target branch roots, parses every
metadata artifact, and writes one diff-log row per semantic change.

With --chain, the merge and package phases follow, each behind an
interactive gate. Declining a gate aborts cleanly and leaves the diff
log in place.`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().String("source", "", "Source branch root (default from mdmerge.yaml)")
	compareCmd.Flags().StringArray("target", nil, "Target branch root, repeatable; first is the merge target")
	compareCmd.Flags().String("rules", "", "Merge-rules file (default from mdmerge.yaml)")
	compareCmd.Flags().String("out", "", "Diff log output path")
	compareCmd.Flags().String("developer", "", "Developer name (pre-fills the wizard field)")
	compareCmd.Flags().String("team", "", "Work team (pre-fills the wizard field)")
	compareCmd.Flags().String("story", "", "User story reference")
	compareCmd.Flags().Bool("chain", false, "Continue into merge and package behind phase gates")
	compareCmd.Flags().BoolP("yes", "y", false, "Approve all phase gates without prompting")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)

	project, err := loadProjectConfig()
	if err != nil {
		return fmt.Errorf("%w: %v", mdmerge.ErrInvalidConfig, err)
	}

	sourceFlag, _ := cmd.Flags().GetString("source")
	targetFlags, _ := cmd.Flags().GetStringArray("target")
	rulesFlag, _ := cmd.Flags().GetString("rules")
	outFlag, _ := cmd.Flags().GetString("out")
	chain, _ := cmd.Flags().GetBool("chain")
	assumeYes, _ := cmd.Flags().GetBool("yes")

	targets := targetFlags
	if len(targets) == 0 {
		targets = project.Targets
	}

	work, err := resolveWorkItem(cmd, project.Work.Developer, project.Work.Team, project.Work.UserStory)
	if err != nil {
		return err
	}

	cfg := mdmerge.CompareConfig{
		SourcePath:     firstNonEmpty(sourceFlag, project.Source),
		TargetPaths:    targets,
		RulesPath:      firstNonEmpty(rulesFlag, project.Rules),
		DiffLogPath:    firstNonEmpty(outFlag, reportPath(project, mdmerge.DefaultDiffLogName)),
		DuplicatesPath: reportPath(project, mdmerge.DefaultDuplicatesName),
		Work:           work,
		Verbose:        verbose,
	}

	comparer := services.NewCompareService(logger, filesystem.NewOSFileSystem())
	result, err := comparer.Compare(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	logger.Info("compare: %d files scanned, %d rows, %d duplicate keys",
		result.FilesScanned, len(result.Rows), result.DuplicateKeys)

	if !chain {
		return nil
	}
	return runChainedPhases(cmd, logger, project, cfg, assumeYes, verbose)
}

// runChainedPhases drives the merge and package phases behind approver
// gates after a compare run.
func runChainedPhases(cmd *cobra.Command, logger mdmerge.Logger, project *config.ProjectConfig, cfg mdmerge.CompareConfig, assumeYes, verbose bool) error {
	approver := newApprover(assumeYes, verbose)

	approved, err := approver.RequestApproval(cmd.Context(), mdmerge.PhaseMerge)
	if err != nil {
		return err
	}
	if !approved {
		return fmt.Errorf("merge phase: %w", mdmerge.ErrApprovalDenied)
	}

	merger := services.NewMergeService(logger, filesystem.NewOSFileSystem())
	mergeResult, err := merger.Merge(cmd.Context(), mdmerge.MergeConfig{
		DiffLogPath: cfg.DiffLogPath,
		SourcePath:  cfg.SourcePath,
		TargetPath:  cfg.TargetPaths[0],
		RulesPath:   cfg.RulesPath,
		Verbose:     verbose,
	})
	if err != nil {
		return err
	}
	logger.Info("merge: %d files reconstructed, %d copied, %d deleted, %d row errors",
		mergeResult.FilesUpdated, mergeResult.FilesCopied, mergeResult.FilesDeleted, len(mergeResult.RowErrors))

	approved, err = approver.RequestApproval(cmd.Context(), mdmerge.PhasePackage)
	if err != nil {
		return err
	}
	if !approved {
		return fmt.Errorf("package phase: %w", mdmerge.ErrApprovalDenied)
	}

	assembler := packaging.NewAssembler(logger, filesystem.NewOSFileSystem())
	_, err = assembler.Assemble(cmd.Context(), mdmerge.PackageConfig{
		DiffLogPath: cfg.DiffLogPath,
		SourcePath:  cfg.SourcePath,
		OutputPath:  firstNonEmpty(project.PackageDir, "package"),
		APIVersion:  project.APIVersion,
		Verbose:     verbose,
	})
	return err
}

// resolveWorkItem fills the work item from flags, environment defaults,
// and, when a terminal is attached and fields are still missing, the
// interactive wizard.
func resolveWorkItem(cmd *cobra.Command, cfgDeveloper, cfgTeam, cfgStory string) (mdmerge.WorkItem, error) {
	developer, _ := cmd.Flags().GetString("developer")
	team, _ := cmd.Flags().GetString("team")
	story, _ := cmd.Flags().GetString("story")

	defaults := params.WorkItemDefaults(".")
	work := mdmerge.WorkItem{
		LogName:   mdmerge.NewWorkLogName(),
		Developer: firstNonEmpty(developer, defaults.Developer, cfgDeveloper),
		WorkTeam:  firstNonEmpty(team, defaults.WorkTeam, cfgTeam),
		UserStory: firstNonEmpty(story, defaults.UserStory, cfgStory),
	}

	if work.Developer != "" && work.WorkTeam != "" {
		return work, nil
	}
	if tui.DetectMode() == tui.ModeNonInteractive {
		// Missing fields stay empty in non-interactive runs.
		return work, nil
	}

	prompted, err := tui.PromptWorkItem(work)
	if err != nil {
		if errors.Is(err, tui.ErrWizardCancelled) {
			return mdmerge.WorkItem{}, fmt.Errorf("work item prompt: %w", mdmerge.ErrApprovalDenied)
		}
		return mdmerge.WorkItem{}, err
	}
	return prompted, nil
}
