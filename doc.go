// Package quill is the argument-passing core of a typed text formatting
// engine: callers hand over heterogeneous values once, and the engine
// resolves types and names only at the point of use, without a heap
// allocation per argument in the common case.
//
// Each value is erased into an [Arg], a (type tag, value) pair. A call's
// arguments live in an [Args] view: up to 14 arguments use a packed
// layout whose tags share a single 64-bit word, larger calls fall back to
// a plain slice. [Store] is the runtime-growable counterpart for call
// sites whose argument count is not fixed, with an explicit split between
// owning pushes ([Store.Push]) and referencing pushes ([Store.PushRef]).
//
// Rendering goes through [Format] and its variants:
//
//	s, err := quill.Format("{} and {name:>8}", 42, quill.Named("name", "x"))
//
// Caller-defined types implement [Formatter]; their dispatch function is
// captured when the value is erased, so the set of formattable types
// stays open. Arguments can also be built from JSON ([StoreFromJSON]) or
// shipped as binary argument packs ([EncodeStore], [DecodeStore]).
package quill
