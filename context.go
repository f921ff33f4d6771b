package quill

import (
	"fmt"
	"strings"

	"github.com/delaneyj/toolbelt/bytebufferpool"
)

// Formatter is the extension point for caller-defined types. The engine
// invokes it through the dispatch function captured when the value was
// erased. An implementation must first consume its portion of the format
// specifier from pc (everything up to the closing brace) and then write
// its rendering through ctx; both steps run exactly once per formatted
// occurrence.
type Formatter interface {
	FormatArg(pc *ParseContext, ctx *Context) error
}

// ParseContext is a cursor into the format string plus the automatic
// argument counter. Mixing automatic {} and manual {0} indexing within one
// format string is an error.
type ParseContext struct {
	format string
	pos    int
	// nextArg is the next automatic index, or -1 once manual indexing
	// has been used.
	nextArg int
}

func newParseContext(format string) *ParseContext {
	return &ParseContext{format: format}
}

// Rest returns the unconsumed remainder of the format string.
func (pc *ParseContext) Rest() string { return pc.format[pc.pos:] }

// AtEnd reports whether the whole format string has been consumed.
func (pc *ParseContext) AtEnd() bool { return pc.pos >= len(pc.format) }

// Advance consumes n bytes.
func (pc *ParseContext) Advance(n int) { pc.pos += n }

// TakeSpec consumes and returns the specifier text up to, but not
// including, the next closing brace. Custom formatters call this to
// implement their parse step.
func (pc *ParseContext) TakeSpec() string {
	rest := pc.Rest()
	i := strings.IndexByte(rest, '}')
	if i < 0 {
		pc.pos = len(pc.format)
		return rest
	}
	pc.pos += i
	return rest[:i]
}

// nextArgID returns the next automatic argument index.
func (pc *ParseContext) nextArgID() (int, error) {
	if pc.nextArg < 0 {
		return 0, fmt.Errorf("cannot switch from manual to automatic argument indexing")
	}
	id := pc.nextArg
	pc.nextArg++
	return id, nil
}

// useManualIndexing flags the format string as manually indexed.
func (pc *ParseContext) useManualIndexing() error {
	if pc.nextArg > 0 {
		return fmt.Errorf("cannot switch from automatic to manual argument indexing")
	}
	pc.nextArg = -1
	return nil
}

// Context carries one formatting call's argument view and output buffer.
// Custom formatters write through it; the engine reads arguments from it.
type Context struct {
	out  *bytebufferpool.ByteBuffer
	args Args
	// m is the name lookup table, built on first named access.
	m *argMap
}

func newContext(out *bytebufferpool.ByteBuffer, args Args) *Context {
	return &Context{out: out, args: args}
}

// Args returns the argument view.
func (c *Context) Args() Args { return c.args }

// Arg returns the argument at index, empty when out of range. Named slots
// resolve to their bound values.
func (c *Context) Arg(index int) Arg {
	return c.args.Get(index)
}

// ArgNamed returns the argument bound to name, empty when absent. The
// lookup table is built on the first call and reused afterwards.
func (c *Context) ArgNamed(name string) Arg {
	if c.m == nil {
		c.m = newArgMap(c.args)
	}
	return c.m.find(name)
}

// Write appends p to the output.
func (c *Context) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

// WriteString appends s to the output.
func (c *Context) WriteString(s string) (int, error) {
	return c.out.WriteString(s)
}

// WriteByte appends b to the output.
func (c *Context) WriteByte(b byte) error {
	return c.out.WriteByte(b)
}

// Format renders a nested template into the same output buffer. Custom
// formatters use it to delegate their rendering back to the engine.
func (c *Context) Format(format string, values ...any) error {
	return vformatTo(c.out, format, MakeArgs(values...))
}
