package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

const sampleRules = `merge = objects profiles
overwrite = classes triggers
excludeFiles = .
excludeFiles = package
diffKeySeparator = |
metadatamap-classes = ApexClass #BASENAME#
metadatamap-triggers = ApexTrigger .trigger
sort = fullName

[CustomObject]
sort = fullName
reconstruct = #DONOTSORT#

[CustomObject-fields]
sort = fullName
delete = <trackHistory>false</trackHistory>

[CustomObject-fields-valueSet]
parser = #FULLSECTION#

[Profile-layoutAssignments]
sort = layout recordType

[Profile-loginHours]
filter = Admin.weekdaysOnly
`

func writeRules(t *testing.T, content string) *Resolver {
	t.Helper()
	path := filepath.Join(t.TempDir(), "merge-rules.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	r, err := Load(path)
	require.NoError(t, err)
	return r
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "absent.conf"))
	require.NoError(t, err)
	assert.Equal(t, mdmerge.DefaultDiffKeySeparator, r.Separator())
	assert.Equal(t, []string{".", "package", "destructiveChanges"}, r.ExcludedFilePrefixes())
	assert.Nil(t, r.Sort("CustomObject-fields"))
	assert.Equal(t, mdmerge.MarkerSort, r.Reconstruct("CustomObject-fields"))
}

func TestLookup_ScopeFallbackChain(t *testing.T) {
	r := writeRules(t, sampleRules)

	// Exact scope wins.
	assert.Equal(t, []string{"fullName"}, r.Sort("CustomObject-fields"))
	// Unknown sub-scope falls back to the metadata-type scope.
	assert.Equal(t, mdmerge.MarkerDoNotSort, r.Reconstruct("CustomObject-webLinks"))
	// Unknown type falls back to the global section.
	assert.Equal(t, []string{"fullName"}, r.Sort("Workflow-alerts"))
}

func TestSort_SpaceSeparatedList(t *testing.T) {
	r := writeRules(t, sampleRules)
	assert.Equal(t, []string{"layout", "recordType"}, r.Sort("Profile-layoutAssignments"))
}

func TestDeletePatterns(t *testing.T) {
	r := writeRules(t, sampleRules)
	assert.Equal(t, []string{"<trackHistory>false</trackHistory>"}, r.DeletePatterns("CustomObject-fields"))
	assert.Empty(t, r.DeletePatterns("Profile-userPermissions"))
}

func TestParserMode(t *testing.T) {
	r := writeRules(t, sampleRules)
	assert.Equal(t, mdmerge.MarkerFullSection, r.ParserMode("CustomObject-fields-valueSet"))
	assert.Equal(t, "", r.ParserMode("CustomObject-fields"))
}

func TestFilters(t *testing.T) {
	r := writeRules(t, sampleRules)
	filters := r.Filters("Profile-loginHours")
	require.Len(t, filters, 1)
	assert.Equal(t, Filter{Name: "Admin", Key: "weekdaysOnly"}, filters[0])
	assert.True(t, r.HasFilters("Profile-loginHours"))
	assert.False(t, r.HasFilters("Profile-userPermissions"))
}

func TestGlobalLists(t *testing.T) {
	r := writeRules(t, sampleRules)
	assert.Equal(t, []string{"objects", "profiles"}, r.MergeDirs())
	assert.Equal(t, []string{"classes", "triggers"}, r.OverwriteDirs())
	assert.Equal(t, []string{".", "package"}, r.ExcludedFilePrefixes())
	assert.Equal(t, "|", r.Separator())
}

func TestMetadataMap(t *testing.T) {
	r := writeRules(t, sampleRules)

	classRules := r.MetadataMap("classes")
	require.Len(t, classRules, 1)
	name, ok := classRules[0].Infer("AccountService.cls")
	require.True(t, ok)
	assert.Equal(t, "AccountService", name)
	assert.Equal(t, "ApexClass", classRules[0].Type)

	triggerRules := r.MetadataMap("triggers")
	require.Len(t, triggerRules, 1)
	name, ok = triggerRules[0].Infer("LeadTrigger.trigger")
	require.True(t, ok)
	assert.Equal(t, "LeadTrigger", name)
	_, ok = triggerRules[0].Infer("notes.txt")
	assert.False(t, ok)
}
