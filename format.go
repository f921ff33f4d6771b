package quill

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/delaneyj/toolbelt/bytebufferpool"
	"golang.org/x/text/width"
)

// Format renders the template against the given values.
//
// Replacement fields are {} (automatic indexing), {2} (manual indexing),
// {name} (named arguments) and may carry a specifier after a colon:
// [[fill]align][width][.precision][verb] with align one of < ^ >. Doubled
// braces escape literal braces.
func Format(format string, values ...any) (string, error) {
	return VFormat(format, MakeArgs(values...))
}

// VFormat renders the template against an already-built argument view,
// such as one produced by Store.Args.
func VFormat(format string, args Args) (string, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := vformatTo(buf, format, args); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// AppendFormat appends the rendered template to dst and returns the
// extended slice.
func AppendFormat(dst []byte, format string, values ...any) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := vformatTo(buf, format, MakeArgs(values...)); err != nil {
		return dst, err
	}
	return append(dst, buf.Bytes()...), nil
}

// FormatInto renders the template into w.
func FormatInto(w io.Writer, format string, values ...any) error {
	return VFormatInto(w, format, MakeArgs(values...))
}

// VFormatInto renders an argument view into w.
func VFormatInto(w io.Writer, format string, args Args) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := vformatTo(buf, format, args); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// vformatTo is the engine loop: literal text is copied through, and each
// replacement field resolves an argument and renders it.
func vformatTo(out *bytebufferpool.ByteBuffer, format string, args Args) error {
	pc := newParseContext(format)
	ctx := newContext(out, args)
	for !pc.AtEnd() {
		rest := pc.Rest()
		i := strings.IndexAny(rest, "{}")
		if i < 0 {
			out.WriteString(rest)
			pc.Advance(len(rest))
			break
		}
		out.WriteString(rest[:i])
		pc.Advance(i)
		rest = rest[i:]

		if len(rest) >= 2 && rest[1] == rest[0] {
			// {{ or }} escapes a literal brace.
			out.WriteByte(rest[0])
			pc.Advance(2)
			continue
		}
		if rest[0] == '}' {
			return fmt.Errorf("unmatched '}' in format string")
		}
		pc.Advance(1)
		if err := formatField(pc, ctx); err != nil {
			return err
		}
	}
	return nil
}

// formatField handles one replacement field with the cursor just past the
// opening brace, leaving it past the closing brace.
func formatField(pc *ParseContext, ctx *Context) error {
	arg, err := resolveArg(pc, ctx)
	if err != nil {
		return err
	}
	rest := pc.Rest()
	if strings.HasPrefix(rest, ":") {
		pc.Advance(1)
	} else if !strings.HasPrefix(rest, "}") {
		return fmt.Errorf("missing '}' in format string")
	}

	if arg.Type() == TypeCustom {
		if err := arg.formatCustom(pc, ctx); err != nil {
			return err
		}
	} else {
		spec, err := parseSpec(pc.TakeSpec())
		if err != nil {
			return err
		}
		if err := renderArg(ctx, arg, spec); err != nil {
			return err
		}
	}
	if !strings.HasPrefix(pc.Rest(), "}") {
		return fmt.Errorf("missing '}' in format string")
	}
	pc.Advance(1)
	return nil
}

// resolveArg parses the argument id portion of a field and looks the
// argument up. Lookup misses come back from the view as empty Args; the
// engine turns them into user-visible errors here.
func resolveArg(pc *ParseContext, ctx *Context) (Arg, error) {
	rest := pc.Rest()
	end := strings.IndexAny(rest, ":}")
	if end < 0 {
		return Arg{}, fmt.Errorf("missing '}' in format string")
	}
	id := rest[:end]
	pc.Advance(end)

	if id == "" {
		index, err := pc.nextArgID()
		if err != nil {
			return Arg{}, err
		}
		arg := ctx.Arg(index)
		if !arg.Valid() {
			return Arg{}, fmt.Errorf("argument index %d out of range", index)
		}
		return arg, nil
	}
	if isDigits(id) {
		if err := pc.useManualIndexing(); err != nil {
			return Arg{}, err
		}
		index, err := strconv.Atoi(id)
		if err != nil {
			return Arg{}, fmt.Errorf("invalid argument index %q", id)
		}
		arg := ctx.Arg(index)
		if !arg.Valid() {
			return Arg{}, fmt.Errorf("argument index %d out of range", index)
		}
		return arg, nil
	}
	arg := ctx.ArgNamed(id)
	if !arg.Valid() {
		return Arg{}, fmt.Errorf("argument %q not found", id)
	}
	return arg, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// spec is a parsed built-in format specifier.
type spec struct {
	fill      rune
	align     byte // '<', '^', '>' or 0
	width     int
	precision int // -1 when absent
	verb      byte
}

func parseSpec(s string) (spec, error) {
	sp := spec{fill: ' ', precision: -1}
	runes := []rune(s)
	i := 0
	if len(runes) >= 2 && runes[1] < 0x80 && isAlign(byte(runes[1])) {
		sp.fill = runes[0]
		sp.align = byte(runes[1])
		i = 2
	} else if len(runes) >= 1 && runes[0] < 0x80 && isAlign(byte(runes[0])) {
		sp.align = byte(runes[0])
		i = 1
	}
	for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
		sp.width = sp.width*10 + int(runes[i]-'0')
		i++
	}
	if i < len(runes) && runes[i] == '.' {
		i++
		if i >= len(runes) || runes[i] < '0' || runes[i] > '9' {
			return sp, fmt.Errorf("missing precision in format specifier %q", s)
		}
		sp.precision = 0
		for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
			sp.precision = sp.precision*10 + int(runes[i]-'0')
			i++
		}
	}
	if i < len(runes) {
		if runes[i] > 0x7F || i+1 != len(runes) {
			return sp, fmt.Errorf("invalid format specifier %q", s)
		}
		sp.verb = byte(runes[i])
	}
	return sp, nil
}

func isAlign(b byte) bool { return b == '<' || b == '^' || b == '>' }

// renderArg renders a built-in argument and writes it padded.
func renderArg(ctx *Context, arg Arg, sp spec) error {
	rightAlign := arg.Type().IsArithmetic() || arg.Type() == TypePointer
	var rendered string
	switch arg.Type() {
	case TypeInt, TypeInt64:
		v, _ := arg.AsInt64()
		s, err := renderInt(v, sp)
		if err != nil {
			return err
		}
		rendered = s
	case TypeUint, TypeUint64:
		v, _ := arg.AsUint64()
		s, err := renderUint(v, sp)
		if err != nil {
			return err
		}
		rendered = s
	case TypeBool:
		v, _ := arg.AsBool()
		if err := rejectNumericSpec(sp, TypeBool); err != nil {
			return err
		}
		rendered = strconv.FormatBool(v)
	case TypeChar:
		r, _ := arg.AsRune()
		if sp.verb == 'd' {
			rendered = strconv.FormatInt(int64(r), 10)
		} else if sp.verb == 0 || sp.verb == 'c' {
			rendered = string(r)
			rightAlign = false
		} else {
			return fmt.Errorf("invalid verb %q for char argument", sp.verb)
		}
	case TypeFloat64:
		v, _ := arg.AsFloat64()
		s, err := renderFloat(v, sp)
		if err != nil {
			return err
		}
		rendered = s
	case TypeBigFloat:
		f, ok := arg.AsBigFloat()
		if !ok || f == nil {
			return fmt.Errorf("big float argument is nil")
		}
		verb, prec := floatVerb(sp)
		if verb == 0 {
			return fmt.Errorf("invalid verb %q for float argument", sp.verb)
		}
		rendered = f.Text(verb, prec)
	case TypeString, TypeBytes:
		s, _ := arg.AsString()
		if sp.verb != 0 && sp.verb != 's' {
			return fmt.Errorf("invalid verb %q for string argument", sp.verb)
		}
		if sp.precision >= 0 {
			s = truncateToWidth(s, sp.precision)
		}
		rendered = s
	case TypePointer:
		v, _ := arg.AsUint64()
		if err := rejectNumericSpec(sp, TypePointer); err != nil {
			return err
		}
		rendered = "0x" + strconv.FormatUint(v, 16)
	default:
		return fmt.Errorf("cannot format %s argument", arg.Type())
	}
	writePadded(ctx, rendered, sp, rightAlign)
	return nil
}

func rejectNumericSpec(sp spec, t Type) error {
	if sp.verb != 0 {
		return fmt.Errorf("invalid verb %q for %s argument", sp.verb, t)
	}
	if sp.precision >= 0 {
		return fmt.Errorf("precision is not allowed for %s argument", t)
	}
	return nil
}

func renderInt(v int64, sp spec) (string, error) {
	if sp.precision >= 0 {
		return "", fmt.Errorf("precision is not allowed for integer argument")
	}
	base, upper, err := intBase(sp.verb)
	if err != nil {
		return "", err
	}
	s := strconv.FormatInt(v, base)
	if upper {
		s = strings.ToUpper(s)
	}
	return s, nil
}

func renderUint(v uint64, sp spec) (string, error) {
	if sp.precision >= 0 {
		return "", fmt.Errorf("precision is not allowed for integer argument")
	}
	base, upper, err := intBase(sp.verb)
	if err != nil {
		return "", err
	}
	s := strconv.FormatUint(v, base)
	if upper {
		s = strings.ToUpper(s)
	}
	return s, nil
}

func intBase(verb byte) (base int, upper bool, err error) {
	switch verb {
	case 0, 'd':
		return 10, false, nil
	case 'b':
		return 2, false, nil
	case 'o':
		return 8, false, nil
	case 'x':
		return 16, false, nil
	case 'X':
		return 16, true, nil
	default:
		return 0, false, fmt.Errorf("invalid verb %q for integer argument", verb)
	}
}

func renderFloat(v float64, sp spec) (string, error) {
	if math.IsNaN(v) {
		return "nan", nil
	}
	if math.IsInf(v, 1) {
		return "inf", nil
	}
	if math.IsInf(v, -1) {
		return "-inf", nil
	}
	verb, prec := floatVerb(sp)
	if verb == 0 {
		return "", fmt.Errorf("invalid verb %q for float argument", sp.verb)
	}
	return strconv.FormatFloat(v, verb, prec, 64), nil
}

func floatVerb(sp spec) (verb byte, prec int) {
	prec = sp.precision
	switch sp.verb {
	case 0:
		if prec >= 0 {
			return 'f', prec
		}
		return 'g', -1
	case 'f', 'e', 'g':
		if sp.verb == 'g' && prec < 0 {
			prec = -1
		}
		if sp.verb != 'g' && prec < 0 {
			prec = 6
		}
		return sp.verb, prec
	default:
		return 0, 0
	}
}

// writePadded writes s into the output with fill and alignment applied.
// Widths count display cells: East Asian wide and fullwidth runes span
// two cells.
func writePadded(ctx *Context, s string, sp spec, rightAlign bool) {
	pad := sp.width - displayWidth(s)
	if pad <= 0 {
		ctx.WriteString(s)
		return
	}
	align := sp.align
	if align == 0 {
		if rightAlign {
			align = '>'
		} else {
			align = '<'
		}
	}
	left, right := 0, 0
	switch align {
	case '>':
		left = pad
	case '<':
		right = pad
	case '^':
		left = pad / 2
		right = pad - left
	}
	writeFill(ctx, sp.fill, left)
	ctx.WriteString(s)
	writeFill(ctx, sp.fill, right)
}

func writeFill(ctx *Context, fill rune, n int) {
	for i := 0; i < n; i++ {
		ctx.WriteString(string(fill))
	}
}

// displayWidth returns the number of terminal cells s occupies.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w += 2
		default:
			w++
		}
	}
	return w
}

// truncateToWidth cuts s to at most max display cells on a rune boundary.
func truncateToWidth(s string, max int) string {
	w := 0
	for i, r := range s {
		rw := 1
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			rw = 2
		}
		if w+rw > max {
			return s[:i]
		}
		w += rw
	}
	return s
}
