package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/mdmerge/internal/files/filesystem"
	"github.com/vvka-141/mdmerge/internal/logging"
	"github.com/vvka-141/mdmerge/internal/packaging"
	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

var packageCmd = &cobra.Command{
	Use:   "package",
	Short: "Assemble a deployment package from a diff log",
	Long: `Package copies every artifact the diff log touches into the output
directory and writes package.xml. Deleted members go into
destructiveChanges.xml instead.`,
	RunE: runPackage,
}

func init() {
	packageCmd.Flags().String("diff-log", "", "Diff log describing the change set")
	packageCmd.Flags().String("source", "", "Source branch root (default from mdmerge.yaml)")
	packageCmd.Flags().String("out", "", "Package output directory")
	packageCmd.Flags().String("api-version", "", "Manifest API version")
	rootCmd.AddCommand(packageCmd)
}

func runPackage(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)

	project, err := loadProjectConfig()
	if err != nil {
		return fmt.Errorf("%w: %v", mdmerge.ErrInvalidConfig, err)
	}

	diffLog, _ := cmd.Flags().GetString("diff-log")
	source, _ := cmd.Flags().GetString("source")
	out, _ := cmd.Flags().GetString("out")
	apiVersion, _ := cmd.Flags().GetString("api-version")

	cfg := mdmerge.PackageConfig{
		DiffLogPath: firstNonEmpty(diffLog, reportPath(project, mdmerge.DefaultDiffLogName)),
		SourcePath:  firstNonEmpty(source, project.Source),
		OutputPath:  firstNonEmpty(out, project.PackageDir, "package"),
		APIVersion:  firstNonEmpty(apiVersion, project.APIVersion),
		Verbose:     verbose,
	}

	assembler := packaging.NewAssembler(logger, filesystem.NewOSFileSystem())
	_, err = assembler.Assemble(cmd.Context(), cfg)
	return err
}
