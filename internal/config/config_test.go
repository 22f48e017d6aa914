package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	content := `source: branches/develop
targets:
  - branches/release
  - branches/hotfix
rules: merge-rules.conf
report_dir: reports
package_dir: package
api_version: "59.0"
work:
  team: Platform
  developer: Sam
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "branches/develop", cfg.Source)
	assert.Equal(t, []string{"branches/release", "branches/hotfix"}, cfg.Targets)
	assert.Equal(t, "merge-rules.conf", cfg.Rules)
	assert.Equal(t, "reports", cfg.ReportDir)
	assert.Equal(t, "59.0", cfg.APIVersion)
	assert.Equal(t, "Platform", cfg.Work.Team)
	assert.Equal(t, "Sam", cfg.Work.Developer)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("source: [unclosed"), 0o644))
	_, err := Load(dir)
	assert.Error(t, err)
}
