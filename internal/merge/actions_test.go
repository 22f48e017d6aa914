package merge

import (
	"testing"

	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

func itemRow(action mdmerge.Action, newValue string, levels ...string) mdmerge.DiffRow {
	row := mdmerge.DiffRow{Action: action, NewValue: newValue, Path: "objects/Account.object"}
	copy(row.Keys[:], levels)
	return row
}

func TestAddRow_UpdateAndTakeChange(t *testing.T) {
	s := NewActionSet()
	if err := s.AddRow(itemRow(mdmerge.ActionUpdateItem, "<version>2.0</version>", "version=#PARAM#")); err != nil {
		t.Fatal(err)
	}

	payload, ok := s.TakeChange([]ChildRef{{Name: "version", Key: "#PARAM#"}})
	if !ok {
		t.Fatal("expected a change payload")
	}
	if payload != "<version>2.0</version>\n" {
		t.Errorf("expected payload with appended newline, got %q", payload)
	}

	// Consumed entries are cleared.
	if _, ok := s.TakeChange([]ChildRef{{Name: "version", Key: "#PARAM#"}}); ok {
		t.Error("change must be consumed on first take")
	}
	if !s.Empty() {
		t.Error("set must be empty after consumption")
	}
}

func TestAddRow_DeleteItem(t *testing.T) {
	s := NewActionSet()
	if err := s.AddRow(itemRow(mdmerge.ActionDeleteItem, "", "indexes=#SINGLE#")); err != nil {
		t.Fatal(err)
	}
	if !s.TakeDelete([]ChildRef{{Name: "indexes", Key: "#SINGLE#"}}) {
		t.Fatal("expected delete marker")
	}
	if s.TakeDelete([]ChildRef{{Name: "indexes", Key: "#SINGLE#"}}) {
		t.Error("delete must be consumed on first take")
	}
}

func TestAddRow_CreateStripsContentsMarker(t *testing.T) {
	s := NewActionSet()
	if err := s.AddRow(itemRow(mdmerge.ActionCreateItem, "<fields>x</fields>\n", "fields=Foo__c", "#CONTENTS#")); err != nil {
		t.Fatal(err)
	}

	creates := s.TakeSectionCreates("fields")
	if len(creates) != 1 {
		t.Fatalf("expected 1 create, got %d", len(creates))
	}
	if creates[0].SortKey != "Foo__c" || creates[0].Section != "fields" {
		t.Errorf("unexpected create %+v", creates[0])
	}
}

func TestTakeRootCreatesBefore_FlushOrdering(t *testing.T) {
	s := NewActionSet()
	s.AddRow(itemRow(mdmerge.ActionCreateItem, "<a>1</a>", "actionOverrides=x"))
	s.AddRow(itemRow(mdmerge.ActionCreateItem, "<z>1</z>", "webLinks=y"))

	// Entering section "fields": only names sorting before it flush.
	flushed := s.TakeRootCreatesBefore("fields")
	if len(flushed) != 1 || flushed[0].Section != "actionOverrides" {
		t.Fatalf("expected actionOverrides to flush before fields, got %+v", flushed)
	}

	remaining := s.TakeAllRootCreates()
	if len(remaining) != 1 || remaining[0].Section != "webLinks" {
		t.Fatalf("expected webLinks to flush at end of file, got %+v", remaining)
	}
}

func TestValueOnlyPathLevelMatchesQualifiedLookup(t *testing.T) {
	s := NewActionSet()
	// The diff log may give only the value form of a level.
	s.AddRow(itemRow(mdmerge.ActionUpdateItem, "new", "Foo__c"))

	if _, ok := s.TakeChange([]ChildRef{{Name: "fields", Key: "Foo__c"}}); !ok {
		t.Error("qualified lookup must match a value-only stored level")
	}
}

func TestNestedCreateAndHasChildActions(t *testing.T) {
	s := NewActionSet()
	s.AddRow(itemRow(mdmerge.ActionCreateItem, "<valueSet>v</valueSet>\n", "fields=Foo__c", "valueSet=VS", "#CONTENTS#"))

	parent := []ChildRef{{Name: "fields", Key: "Foo__c"}}
	if !s.HasChildActionsAt(parent) {
		t.Fatal("nested create must trigger descent into the parent")
	}

	creates := s.TakeChildCreates(parent)
	if len(creates) != 1 || creates[0].Section != "valueSet" || creates[0].SortKey != "VS" {
		t.Fatalf("unexpected creates %+v", creates)
	}
	if s.HasChildActionsAt(parent) {
		t.Error("consumed creates must not keep triggering descent")
	}
}

func TestDiscardCreate(t *testing.T) {
	s := NewActionSet()
	s.AddRow(itemRow(mdmerge.ActionCreateItem, "<fields>x</fields>\n", "fields=Foo__c", "#CONTENTS#"))

	if !s.DiscardCreate(nil, "fields", "Foo__c") {
		t.Fatal("expected matching create to be discarded")
	}
	if len(s.TakeSectionCreates("fields")) != 0 {
		t.Error("discarded create must not be taken again")
	}
	if len(s.AlreadyPresent()) != 1 {
		t.Error("discard must be recorded as an already-present note")
	}
}

func TestAddRow_RejectsFileLevelActions(t *testing.T) {
	s := NewActionSet()
	if err := s.AddRow(itemRow(mdmerge.ActionCreateFile, "", "#NEW_METADATA#")); err == nil {
		t.Error("file-level actions must be rejected")
	}
}

func TestGroupLog_OrdersByPathAndTimestamp(t *testing.T) {
	rows := []mdmerge.DiffRow{
		{Path: "b.object", Timestamp: "2026-02-01 00:00:00"},
		{Path: "a.object", Timestamp: "2026-03-01 00:00:00"},
		{Path: "a.object", Timestamp: "2026-01-01 00:00:00"},
	}
	logs := GroupLog(rows)
	if len(logs) != 2 || logs[0].Path != "a.object" || logs[1].Path != "b.object" {
		t.Fatalf("unexpected path order: %+v", logs)
	}
	if logs[0].Requests[0].Timestamp != "2026-01-01 00:00:00" {
		t.Error("older requests must apply first")
	}
}
