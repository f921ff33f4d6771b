package quill

import "testing"

func TestArgMapFind(t *testing.T) {
	args := MakeArgs(1, Named("a", "first"), true, Named("b", 2))
	m := newArgMap(args)
	if len(m.entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(m.entries))
	}
	if s, _ := m.find("a").AsString(); s != "first" {
		t.Fatalf("find(a) = %q", s)
	}
	if v, _ := m.find("b").AsInt64(); v != 2 {
		t.Fatalf("find(b) = %d", v)
	}
}

func TestArgMapDuplicateNamesFirstWins(t *testing.T) {
	args := MakeArgs(Named("n", 1), Named("n", 2))
	m := newArgMap(args)
	if v, _ := m.find("n").AsInt64(); v != 1 {
		t.Fatalf("duplicate lookup = %d, want the earliest binding", v)
	}
}

func TestArgMapAbsentName(t *testing.T) {
	m := newArgMap(MakeArgs(Named("present", 1)))
	if m.find("absent").Valid() {
		t.Fatal("absent name should resolve to an empty argument")
	}
}

func TestArgMapNoNamedArgs(t *testing.T) {
	m := newArgMap(MakeArgs(1, "two", 3.0))
	if len(m.entries) != 0 {
		t.Fatalf("entries = %d, want none", len(m.entries))
	}
}

func TestArgMapUnpackedView(t *testing.T) {
	values := make([]any, 17)
	for i := range values {
		values[i] = i
	}
	values[16] = Named("tail", "end")
	m := newArgMap(MakeArgs(values...))
	if s, _ := m.find("tail").AsString(); s != "end" {
		t.Fatalf("find(tail) = %q", s)
	}
}
