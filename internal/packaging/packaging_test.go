package packaging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/mdmerge/internal/files/filesystem"
	"github.com/vvka-141/mdmerge/internal/logging"
	"github.com/vvka-141/mdmerge/internal/report"
	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

func TestRenderManifest_SortedGroups(t *testing.T) {
	members := Members{}
	members.Add("CustomObject", "Lead")
	members.Add("CustomObject", "Account")
	members.Add("ApexClass", "Svc")

	data, err := RenderManifest(members, "58.0")
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `<Package xmlns="http://soap.sforce.com/2006/04/metadata">`)
	assert.Contains(t, out, "<version>58.0</version>")
	// ApexClass sorts before CustomObject; Account before Lead.
	assert.Less(t, strings.Index(out, "<name>ApexClass</name>"), strings.Index(out, "<name>CustomObject</name>"))
	assert.Less(t, strings.Index(out, "<members>Account</members>"), strings.Index(out, "<members>Lead</members>"))
}

func TestAssemble_SplitsDestructiveMembers(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "src")
	out := filepath.Join(dir, "pkg")
	require.NoError(t, os.MkdirAll(filepath.Join(source, "objects"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(source, "objects", "Account.object"), []byte("<CustomObject/>"), 0o644))

	rows := []mdmerge.DiffRow{
		{
			Action:   mdmerge.ActionUpdateItem,
			Metadata: "CustomObject=Account",
			Path:     "objects/Account.object",
		},
		{
			Action:   mdmerge.ActionDeleteFile,
			Metadata: "CustomObject=Obsolete",
			Path:     "objects/Obsolete.object",
		},
	}
	diffLog := filepath.Join(dir, "diff-log.csv")
	require.NoError(t, report.WriteDiffLog(diffLog, rows))

	assembler := NewAssembler(logging.NewConsoleLogger(false), filesystem.NewOSFileSystem())
	result, err := assembler.Assemble(context.Background(), mdmerge.PackageConfig{
		DiffLogPath: diffLog,
		SourcePath:  source,
		OutputPath:  out,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesCopied)
	assert.Equal(t, 1, result.PackageMembers)
	assert.Equal(t, 1, result.DestructiveCount)

	copied, err := os.ReadFile(filepath.Join(out, "objects", "Account.object"))
	require.NoError(t, err)
	assert.Equal(t, "<CustomObject/>", string(copied))

	pkg, err := os.ReadFile(filepath.Join(out, "package.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(pkg), "<members>Account</members>")
	assert.NotContains(t, string(pkg), "Obsolete")

	destructive, err := os.ReadFile(filepath.Join(out, "destructiveChanges.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(destructive), "<members>Obsolete</members>")
	assert.NotContains(t, string(destructive), "<members>Account</members>")
	assert.Contains(t, string(destructive), "58.0") // default API version
}
