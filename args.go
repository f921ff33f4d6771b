package quill

// Args is the indexable, type-erased view over one formatting call's
// arguments. Small calls use the packed layout: raw Values plus a single
// 64-bit word carrying every slot's 4-bit tag. Calls with MaxPackedArgs or
// more arguments fall back to a plain Arg slice with a TypeNone sentinel,
// flagged by storing the negated count in place of the tag word.
//
// The view references the underlying storage; it is valid for as long as
// the list or Store it was built from.
type Args struct {
	types  uint64
	values []Value
	args   []Arg
}

// MakeArgs erases values into an argument list, selecting the physical
// layout by arity.
func MakeArgs(values ...any) Args {
	n := len(values)
	if n < MaxPackedArgs {
		packed := make([]Arg, n)
		vals := make([]Value, n)
		for i, v := range values {
			packed[i] = argOf(v)
			vals[i] = packed[i].val
		}
		return Args{types: packTypes(packed), values: vals}
	}
	args := make([]Arg, n+1)
	for i, v := range values {
		args[i] = argOf(v)
	}
	// args[n] stays the zero Arg as the end sentinel.
	return Args{types: uint64(-int64(n)), args: args}
}

// makeArgList builds the unpacked view over an existing Arg slice. This is
// the Store's constructor path into the same view abstraction.
func makeArgList(args []Arg) Args {
	return Args{types: uint64(-int64(len(args))), args: args}
}

// packed reports whether the view uses the packed layout.
func (a Args) packed() bool { return int64(a.types) >= 0 }

// get returns the raw argument at index, or an empty Arg when the index is
// out of range. Named-argument markers are returned as-is.
func (a Args) get(index int) Arg {
	if index < 0 {
		return Arg{}
	}
	if !a.packed() {
		n := int(-int64(a.types))
		if index >= n {
			return Arg{}
		}
		return a.args[index]
	}
	if index >= MaxPackedArgs {
		return Arg{}
	}
	typ := typeAt(a.types, index)
	if typ == TypeNone {
		return Arg{}
	}
	return Arg{typ: typ, val: a.values[index]}
}

// Get returns the argument at index. Out-of-range indexes yield an empty
// Arg, never an error. A named-argument slot resolves to its bound value,
// so callers never observe the marker tag through indexed access.
func (a Args) Get(index int) Arg {
	arg := a.get(index)
	if arg.typ == TypeNamedArg {
		return arg.named().arg
	}
	return arg
}

// MaxSize returns the view's capacity: the packed slot count for packed
// lists, the actual argument count otherwise.
func (a Args) MaxSize() int {
	if a.packed() {
		return MaxPackedArgs
	}
	return int(-int64(a.types))
}

// Len returns the number of stored arguments.
func (a Args) Len() int {
	if !a.packed() {
		return int(-int64(a.types))
	}
	n := 0
	for n < MaxPackedArgs && typeAt(a.types, n) != TypeNone {
		n++
	}
	return n
}
