// Package config loads the mdmerge.yaml project configuration.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// WorkDefaults pre-fills the work-item prompt.
type WorkDefaults struct {
	Team      string `yaml:"team"`
	Developer string `yaml:"developer"`
	UserStory string `yaml:"user_story,omitempty"`
}

// ProjectConfig is the parsed mdmerge.yaml.
type ProjectConfig struct {
	// Source is the branch root holding the changed repository state.
	Source string `yaml:"source"`

	// Targets are the branch roots compared against; the first one is
	// the merge target.
	Targets []string `yaml:"targets"`

	// Rules is the merge-rules file path, relative to the project root.
	Rules string `yaml:"rules"`

	// ReportDir receives the diff log and duplicate-key report.
	ReportDir string `yaml:"report_dir"`

	// PackageDir receives assembled deployment packages.
	PackageDir string `yaml:"package_dir,omitempty"`

	// APIVersion is stamped into generated manifests.
	APIVersion string `yaml:"api_version,omitempty"`

	// Work pre-fills the work-item prompt.
	Work WorkDefaults `yaml:"work,omitempty"`
}

// ConfigFileName is looked up in the project root.
const ConfigFileName = "mdmerge.yaml"

// Load reads mdmerge.yaml from the project root.
func Load(projectPath string) (*ProjectConfig, error) {
	configPath := filepath.Join(projectPath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
