package quill

import "testing"

// testCustom exercises the custom-dispatch path the way a caller-defined
// type would.
type testCustom struct {
	i int
}

func (c testCustom) FormatArg(pc *ParseContext, ctx *Context) error {
	pc.TakeSpec()
	return ctx.Format("cust={}", c.i)
}

func TestStoreBasic(t *testing.T) {
	store := NewStore()
	store.Push(42)
	store.Push("abc1")
	store.Push(float32(1.5))

	result, err := VFormat("{} and {} and {}", store.Args())
	if err != nil {
		t.Fatal(err)
	}
	if result != "42 and abc1 and 1.5" {
		t.Fatalf("result = %q", result)
	}
}

func TestStoreStringsAndRefs(t *testing.T) {
	store := NewStore()
	buf := []byte("1234567890")
	store.Push(buf)
	store.PushRef(buf)
	store.PushRef(buf)
	buf[0] = 'X'

	result, err := VFormat("{} and {} and {}", store.Args())
	if err != nil {
		t.Fatal(err)
	}
	if result != "1234567890 and X234567890 and X234567890" {
		t.Fatalf("result = %q", result)
	}
}

func TestStoreCustomFormat(t *testing.T) {
	store := NewStore()
	c := testCustom{}
	store.Push(c)
	c.i++
	store.Push(c)
	c.i++
	store.PushRef(&c)
	c.i++

	result, err := VFormat("{} and {} and {}", store.Args())
	if err != nil {
		t.Fatal(err)
	}
	if result != "cust=0 and cust=1 and cust=3" {
		t.Fatalf("result = %q", result)
	}
}

func TestStoreNamedInt(t *testing.T) {
	store := NewStore()
	store.PushNamed("a1", 42)
	result, err := VFormat("{a1}", store.Args())
	if err != nil {
		t.Fatal(err)
	}
	if result != "42" {
		t.Fatalf("result = %q", result)
	}
}

func TestStoreNamedStrings(t *testing.T) {
	store := NewStore()
	buf := []byte("1234567890")
	store.PushNamed("a1", buf)
	store.PushNamedRef("a2", buf)
	buf[0] = 'X'

	result, err := VFormat("{a1} and {a2}", store.Args())
	if err != nil {
		t.Fatal(err)
	}
	if result != "1234567890 and X234567890" {
		t.Fatalf("result = %q", result)
	}
}

func TestStoreNamedArgByRef(t *testing.T) {
	// The caller keeps both the name and the value alive; the store only
	// records the wrapper.
	store := NewStore()
	val := 42
	na := Named("a1_", val)
	store.PushRef(&na)

	result, err := VFormat("{a1_}", store.Args())
	if err != nil {
		t.Fatal(err)
	}
	if result != "42" {
		t.Fatalf("result = %q", result)
	}
}

func TestStoreNamedCustomFormat(t *testing.T) {
	store := NewStore()
	c := testCustom{}
	store.PushNamed("a1", c)
	c.i++
	store.PushNamed("a2", c)
	c.i++
	store.PushNamedRef("a3", &c)
	c.i++

	result, err := VFormat("{a1} and {a2} and {a3}", store.Args())
	if err != nil {
		t.Fatal(err)
	}
	if result != "cust=0 and cust=1 and cust=3" {
		t.Fatalf("result = %q", result)
	}
}

func TestStoreNamedIsPositionalToo(t *testing.T) {
	store := NewStore()
	store.PushNamed("a", 1)
	store.Push(2)
	result, err := VFormat("{0} then {1}", store.Args())
	if err != nil {
		t.Fatal(err)
	}
	if result != "1 then 2" {
		t.Fatalf("result = %q", result)
	}
}

func TestStorePushNamedArgByValue(t *testing.T) {
	store := NewStore()
	buf := []byte("1234567890")
	store.Push(Named("a1", buf))
	buf[0] = 'X'
	result, err := VFormat("{a1}", store.Args())
	if err != nil {
		t.Fatal(err)
	}
	if result != "1234567890" {
		t.Fatalf("pushed-by-value named bytes must snapshot, got %q", result)
	}
}

func TestStoreClearAndReuse(t *testing.T) {
	store := NewStore()
	store.Push(1)
	store.PushNamed("n", 2)
	if store.Len() != 2 {
		t.Fatalf("Len = %d, want 2", store.Len())
	}
	store.Clear()
	if store.Len() != 0 {
		t.Fatalf("Len after Clear = %d", store.Len())
	}
	store.Push("again")
	result, err := VFormat("{}", store.Args())
	if err != nil {
		t.Fatal(err)
	}
	if result != "again" {
		t.Fatalf("result = %q", result)
	}
	if _, err := VFormat("{n}", store.Args()); err == nil {
		t.Fatal("cleared named argument should not resolve")
	}
}

func TestStoreManyArgs(t *testing.T) {
	store := NewStore()
	for i := 0; i < 40; i++ {
		store.Push(i)
	}
	args := store.Args()
	if args.MaxSize() != 40 {
		t.Fatalf("MaxSize = %d, want 40", args.MaxSize())
	}
	for i := 0; i < 40; i++ {
		v, ok := args.Get(i).AsInt64()
		if !ok || v != int64(i) {
			t.Fatalf("Get(%d) = %d, %v", i, v, ok)
		}
	}
}
