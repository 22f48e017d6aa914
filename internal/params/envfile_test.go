package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkItemDefaults_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "MDMERGE_DEVELOPER=Sam\nMDMERGE_WORK_TEAM=Platform\nMDMERGE_USER_STORY=US-7\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644))

	work := WorkItemDefaults(dir)
	assert.Equal(t, "Sam", work.Developer)
	assert.Equal(t, "Platform", work.WorkTeam)
	assert.Equal(t, "US-7", work.UserStory)
}

func TestWorkItemDefaults_ProcessEnvWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MDMERGE_DEVELOPER=FileValue\n"), 0o644))
	t.Setenv(EnvDeveloper, "EnvValue")

	work := WorkItemDefaults(dir)
	assert.Equal(t, "EnvValue", work.Developer)
}

func TestWorkItemDefaults_NoSources(t *testing.T) {
	work := WorkItemDefaults(t.TempDir())
	assert.Empty(t, work.Developer)
	assert.Empty(t, work.WorkTeam)
	assert.Empty(t, work.UserStory)
}
