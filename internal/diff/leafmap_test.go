package diff

import "testing"

func TestLeafMap_AddAndDuplicate(t *testing.T) {
	m := NewLeafMap("\x1e")
	k := NewKey("objects/Account.object", "fields=Status__c")

	if !m.Add(k, "first") {
		t.Fatal("first Add must succeed")
	}
	if m.Add(k, "second") {
		t.Fatal("duplicate Add must report the collision")
	}

	v, ok := m.Get(k.Join(m.Separator()))
	if !ok || v != "first" {
		t.Errorf("expected first value to win, got %q (ok=%v)", v, ok)
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", m.Len())
	}
}

func TestKey_JoinParseRoundTrip(t *testing.T) {
	k := NewKey("objects/Account.object", "fields=Status__c", "#CONTENTS#")
	joined := k.Join("\x1e")
	back := ParseKey(joined, "\x1e")
	if back != k {
		t.Errorf("round trip mismatch: %+v vs %+v", back, k)
	}
}

func TestKey_Depth(t *testing.T) {
	if d := NewKey("p").Depth(); d != 0 {
		t.Errorf("expected depth 0, got %d", d)
	}
	if d := NewKey("p", "a=1", "b=2").Depth(); d != 2 {
		t.Errorf("expected depth 2, got %d", d)
	}
}

func TestLeafMap_SortedKeys(t *testing.T) {
	m := NewLeafMap("\x1e")
	m.Add(NewKey("p", "zz=1"), "z")
	m.Add(NewKey("p", "aa=1"), "a")
	keys := m.SortedKeys()
	if len(keys) != 2 || keys[0] > keys[1] {
		t.Errorf("keys not sorted: %v", keys)
	}
}
