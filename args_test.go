package quill

import "testing"

func TestMakeArgsPacked(t *testing.T) {
	args := MakeArgs(1, "two", 3.0, true)
	if !args.packed() {
		t.Fatal("four arguments should use the packed layout")
	}
	if args.MaxSize() != MaxPackedArgs {
		t.Fatalf("MaxSize = %d, want %d", args.MaxSize(), MaxPackedArgs)
	}
	if args.Len() != 4 {
		t.Fatalf("Len = %d, want 4", args.Len())
	}
	if s, _ := args.Get(1).AsString(); s != "two" {
		t.Fatalf("Get(1) = %q", s)
	}
	if v, _ := args.Get(2).AsFloat64(); v != 3.0 {
		t.Fatalf("Get(2) = %g", v)
	}
	if args.Get(4).Valid() {
		t.Fatal("index past arity should be empty")
	}
}

func TestMakeArgsUnpacked(t *testing.T) {
	values := make([]any, 16)
	for i := range values {
		values[i] = i
	}
	args := MakeArgs(values...)
	if args.packed() {
		t.Fatal("sixteen arguments should use the unpacked layout")
	}
	if args.MaxSize() != 16 {
		t.Fatalf("MaxSize = %d, want 16", args.MaxSize())
	}
	for i := 0; i < 16; i++ {
		v, ok := args.Get(i).AsInt64()
		if !ok || v != int64(i) {
			t.Fatalf("Get(%d) = %d, %v", i, v, ok)
		}
	}
	if args.Get(16).Valid() {
		t.Fatal("index past arity should be empty")
	}
	if args.Get(100).Valid() {
		t.Fatal("index far past arity should be empty")
	}
}

// The packed decoder must refuse to read tag bits past slot 14: the guard
// is index >= MaxPackedArgs, with no off-by-one at the word boundary.
func TestPackedIndexBoundary(t *testing.T) {
	args := MakeArgs(1, 2, 3)
	for _, index := range []int{14, 15, 16, 1 << 20} {
		if args.get(index).Valid() {
			t.Fatalf("packed get(%d) should be empty", index)
		}
	}
	if args.Get(-1).Valid() {
		t.Fatal("negative index should be empty")
	}
}

func TestGetResolvesNamedMarker(t *testing.T) {
	args := MakeArgs(Named("answer", 42), "plain")
	if got := args.get(0).Type(); got != TypeNamedArg {
		t.Fatalf("raw slot type = %s, want the marker", got)
	}
	resolved := args.Get(0)
	if resolved.Type() == TypeNamedArg {
		t.Fatal("Get must never expose the marker tag")
	}
	if v, _ := resolved.AsInt64(); v != 42 {
		t.Fatalf("resolved value = %d, want 42", v)
	}
}

func TestEmptyArgs(t *testing.T) {
	args := MakeArgs()
	if args.Len() != 0 {
		t.Fatalf("Len = %d, want 0", args.Len())
	}
	if args.Get(0).Valid() {
		t.Fatal("empty list should have no arguments")
	}
}
