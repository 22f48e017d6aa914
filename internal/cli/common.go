package cli

import (
	"errors"
	"path/filepath"

	"github.com/vvka-141/mdmerge/internal/config"
	"github.com/vvka-141/mdmerge/internal/tui"
	"github.com/vvka-141/mdmerge/internal/ui"
	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

// loadProjectConfig reads mdmerge.yaml from the current directory. A
// missing file yields an empty config; other errors propagate.
func loadProjectConfig() (*config.ProjectConfig, error) {
	cfg, err := config.Load(".")
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return &config.ProjectConfig{}, nil
		}
		return nil, err
	}
	return cfg, nil
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// reportPath joins the configured report directory with a filename.
func reportPath(cfg *config.ProjectConfig, name string) string {
	if cfg.ReportDir == "" {
		return name
	}
	return filepath.Join(cfg.ReportDir, name)
}

// newApprover picks the phase-gate approver: forced when --yes was given
// or no terminal is attached, interactive otherwise.
func newApprover(assumeYes, verbose bool) mdmerge.Approver {
	if assumeYes || tui.DetectMode() == tui.ModeNonInteractive {
		return ui.NewForcedApprover(verbose)
	}
	return ui.NewInteractiveApprover(verbose)
}
