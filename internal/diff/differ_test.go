package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/mdmerge/internal/logging"
	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

const sep = "\x1e"

var stamp = Stamp{
	Work: mdmerge.WorkItem{
		LogName:   "WL-test",
		Developer: "dev",
		WorkTeam:  "team",
		UserStory: "US-1",
	},
	Timestamp: "2026-08-06 10:00:00",
}

func newDiffer() *Differ {
	return NewDiffer(logging.NewConsoleLogger(false))
}

func branchMap(leaves map[Key]string) *LeafMap {
	m := NewLeafMap(sep)
	for k, v := range leaves {
		m.Add(k, v)
	}
	return m
}

func TestCompare_EqualBranchesEmitNothing(t *testing.T) {
	k := NewKey("objects/Account.object", "fields=Status__c")
	src := branchMap(map[Key]string{k: "    <fields>x</fields>\n"})
	trg := branchMap(map[Key]string{k: "<fields>x</fields>\n"}) // same modulo indentation

	rows := newDiffer().Compare("CustomObject=Account", stamp, src, []*LeafMap{trg})
	assert.Empty(t, rows)
}

func TestCompare_UpdateItem(t *testing.T) {
	k := NewKey("objects/Account.object", "version=#PARAM#")
	src := branchMap(map[Key]string{k: "<version>2.0</version>\n"})
	trg := branchMap(map[Key]string{k: "<version>1.0</version>\n"})

	rows := newDiffer().Compare("CustomObject=Account", stamp, src, []*LeafMap{trg})
	require.Len(t, rows, 1)
	assert.Equal(t, mdmerge.ActionUpdateItem, rows[0].Action)
	assert.Equal(t, "version=#PARAM#", rows[0].Keys[0])
	assert.Equal(t, "<version>2.0</version>\n", rows[0].NewValue)
	assert.Equal(t, "<version>1.0</version>\n", rows[0].OldValue())
	assert.Equal(t, "WL-test", rows[0].LogName)
}

func TestCompare_CreateItemSuppressesChildRows(t *testing.T) {
	contents := NewKey("objects/Account.object", "fields=Foo__c", "#CONTENTS#")
	params := NewKey("objects/Account.object", "fields=Foo__c", "#PARAMS#")
	child := NewKey("objects/Account.object", "fields=Foo__c", "valueSet=V", "#CONTENTS#")
	src := branchMap(map[Key]string{
		contents: "<fields>whole</fields>\n",
		params:   "<fullName>Foo__c</fullName>\n",
		child:    "<valueSet>v</valueSet>\n",
	})
	trg := NewLeafMap(sep)
	trg.Add(NewKey("objects/Account.object", "fields=Bar__c", "#CONTENTS#"), "x")

	rows := newDiffer().Compare("CustomObject=Account", stamp, src, []*LeafMap{trg})
	// Exactly one Create Item for the whole block, plus the Delete Item
	// for Bar__c present only in the target.
	var creates, deletes int
	for _, row := range rows {
		switch row.Action {
		case mdmerge.ActionCreateItem:
			creates++
			assert.Equal(t, "#CONTENTS#", row.Keys[1])
		case mdmerge.ActionDeleteItem:
			deletes++
		}
	}
	assert.Equal(t, 1, creates)
	assert.Equal(t, 1, deletes)
}

func TestCompare_ContentsEqualParentNotReported(t *testing.T) {
	contents := NewKey("objects/Account.object", "fields=Foo__c", "#CONTENTS#")
	params := NewKey("objects/Account.object", "fields=Foo__c", "#PARAMS#")
	src := branchMap(map[Key]string{
		contents: "<fields>a</fields>\n",
		params:   "<fullName>Foo__c</fullName>\n<label>New</label>\n",
	})
	trg := branchMap(map[Key]string{
		contents: "<fields>b</fields>\n",
		params:   "<fullName>Foo__c</fullName>\n<label>Old</label>\n",
	})

	rows := newDiffer().Compare("CustomObject=Account", stamp, src, []*LeafMap{trg})
	// The #CONTENTS# difference is never reported directly; the #PARAMS#
	// leaf carries the change.
	require.Len(t, rows, 1)
	assert.Equal(t, mdmerge.ActionUpdateItem, rows[0].Action)
	assert.Equal(t, "#PARAMS#", rows[0].Keys[1])
}

func TestCompare_NewFile(t *testing.T) {
	meta := NewKey("objects/New.object", "#NEW_METADATA#")
	field := NewKey("objects/New.object", "fields=A", "#CONTENTS#")
	src := branchMap(map[Key]string{meta: "", field: "<fields>a</fields>\n"})

	rows := newDiffer().Compare("CustomObject=New", stamp, src, []*LeafMap{nil})
	require.Len(t, rows, 1)
	assert.Equal(t, mdmerge.ActionCreateFile, rows[0].Action)
	assert.Equal(t, mdmerge.MarkerNewMetadata, rows[0].Keys[0])
}

func TestCompare_DeletedFile(t *testing.T) {
	meta := NewKey("objects/Gone.object", "#NEW_METADATA#")
	field := NewKey("objects/Gone.object", "fields=A")
	trg := branchMap(map[Key]string{meta: "", field: "<fields>a</fields>\n"})

	rows := newDiffer().Compare("CustomObject=Gone", stamp, nil, []*LeafMap{trg})
	require.Len(t, rows, 1)
	assert.Equal(t, mdmerge.ActionDeleteFile, rows[0].Action)
}

func TestCompare_OverwriteFile(t *testing.T) {
	k := NewKey("classes/Svc.cls", "#OVERWRITE#")
	src := branchMap(map[Key]string{k: "aaaa"})
	changed := branchMap(map[Key]string{k: "bbbb"})
	same := branchMap(map[Key]string{k: "aaaa"})

	rows := newDiffer().Compare("ApexClass=Svc", stamp, src, []*LeafMap{changed})
	require.Len(t, rows, 1)
	assert.Equal(t, mdmerge.ActionUpdateFile, rows[0].Action)

	rows = newDiffer().Compare("ApexClass=Svc", stamp, src, []*LeafMap{nil})
	require.Len(t, rows, 1)
	assert.Equal(t, mdmerge.ActionCreateFile, rows[0].Action)

	rows = newDiffer().Compare("ApexClass=Svc", stamp, src, []*LeafMap{same})
	assert.Empty(t, rows)
}

func TestCompare_ExtraTargetsAddOldValues(t *testing.T) {
	k := NewKey("objects/Account.object", "version=#PARAM#")
	src := branchMap(map[Key]string{k: "<version>3.0</version>\n"})
	t1 := branchMap(map[Key]string{k: "<version>1.0</version>\n"})
	t2 := branchMap(map[Key]string{k: "<version>2.0</version>\n"})

	rows := newDiffer().Compare("CustomObject=Account", stamp, src, []*LeafMap{t1, t2})
	require.Len(t, rows, 1)
	require.Len(t, rows[0].OldValues, 2)
	assert.Equal(t, "<version>1.0</version>\n", rows[0].OldValues[0])
	assert.Equal(t, "<version>2.0</version>\n", rows[0].OldValues[1])
}
