package quill

// Store is a runtime-growable argument sequence for call sites whose
// argument count or types are not fixed in the source. It is caller-
// managed: reuse it across formatting calls and Clear it explicitly.
//
// Push copies its value into store-owned storage; PushRef only records a
// reference, so the caller must keep the referenced object alive and
// unmutated (or deliberately mutated) until formatting is done. Violating
// that lifetime is undefined behavior the store does not detect.
//
// A Store is not synchronized; concurrent pushes or a push concurrent
// with formatting must be serialized by the caller.
type Store struct {
	args []Arg
	// named keeps synthesized wrappers alive for the store's lifetime, so
	// the view's marker slots always have a wrapper to resolve through.
	named []*NamedArg
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Push appends value by copy. The resulting argument stays valid for the
// store's whole lifetime regardless of what the caller does with value.
// Interface boxing already copies scalar and struct values to a stable
// address; byte slices are cloned explicitly. Pointer-typed values keep
// pointer semantics: copying a *T copies the pointer, not the pointee.
// A NamedArg pushes its binding with the same owning semantics.
func (s *Store) Push(value any) {
	switch x := value.(type) {
	case NamedArg:
		s.pushNamed(NamedArg{name: x.name, arg: x.arg.cloneOwned()})
	case *NamedArg:
		s.pushNamed(NamedArg{name: x.name, arg: x.arg.cloneOwned()})
	default:
		s.args = append(s.args, argOf(copyOwned(value)))
	}
}

// PushRef appends value by reference. The argument is valid only while
// the referenced object is; later mutations are observed at format time.
// A *NamedArg is recorded as-is, for callers that keep both the name and
// the value alive themselves.
func (s *Store) PushRef(value any) {
	switch x := value.(type) {
	case NamedArg:
		s.pushNamed(x)
	case *NamedArg:
		s.args = append(s.args, Arg{typ: TypeNamedArg, val: Value{box: x}})
	default:
		s.args = append(s.args, argOf(value))
	}
}

// PushNamed appends a named argument, copying the value like Push.
func (s *Store) PushNamed(name string, value any) {
	s.pushNamed(Named(name, copyOwned(value)))
}

// PushNamedRef appends a named argument that references the caller's
// value like PushRef.
func (s *Store) PushNamedRef(name string, value any) {
	s.pushNamed(Named(name, value))
}

func (s *Store) pushNamed(na NamedArg) {
	boxed := &na
	s.named = append(s.named, boxed)
	s.args = append(s.args, Arg{typ: TypeNamedArg, val: Value{box: boxed}})
}

// Len returns the number of pushed arguments.
func (s *Store) Len() int { return len(s.args) }

// Clear removes every argument while keeping allocated capacity.
func (s *Store) Clear() {
	s.args = s.args[:0]
	s.named = s.named[:0]
}

// Args returns the formatting view over the store in push order. The view
// shares the store's storage: it is invalidated by Clear and by further
// pushes that grow the backing array.
func (s *Store) Args() Args {
	return makeArgList(s.args)
}

// copyOwned snapshots values whose Go representation aliases caller
// storage even after interface boxing.
func copyOwned(value any) any {
	if b, ok := value.([]byte); ok {
		return append([]byte(nil), b...)
	}
	return value
}

// cloneOwned detaches an already-built argument from caller storage where
// that is possible without changing its meaning.
func (a Arg) cloneOwned() Arg {
	if a.typ == TypeBytes {
		a.val.bytes = append([]byte(nil), a.val.bytes...)
	}
	return a
}
