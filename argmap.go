package quill

// argMap resolves argument names to values. It is built on demand by
// scanning a view for named-argument slots and kept unsorted: call sites
// carry few arguments, so first-match linear lookup beats maintaining any
// sorted or hashed structure.
type argMap struct {
	entries []argMapEntry
}

type argMapEntry struct {
	name string
	arg  Arg
}

func newArgMap(args Args) *argMap {
	m := &argMap{}
	for i := 0; i < args.MaxSize(); i++ {
		raw := args.get(i)
		if !raw.Valid() {
			// TypeNone terminates both layouts.
			break
		}
		if raw.typ != TypeNamedArg {
			continue
		}
		na := raw.named()
		m.entries = append(m.entries, argMapEntry{name: na.name, arg: na.arg})
	}
	return m
}

// find returns the first entry bound to name, preserving insertion order
// when duplicates exist, or an empty Arg when the name is absent.
func (m *argMap) find(name string) Arg {
	for _, e := range m.entries {
		if e.name == name {
			return e.arg
		}
	}
	return Arg{}
}
