package quill

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"
	"reflect"
)

// Char is a single character argument. It is a distinct type because rune
// is an alias for int32 and would otherwise classify as an integer.
type Char rune

// Value is the type-erased payload of an Arg. Which field is meaningful is
// determined solely by the owning Arg's Type. A Value never owns what it
// references: str, bytes and box are views into caller storage unless a
// Store arranged otherwise.
type Value struct {
	// num holds integers (sign-extended), bool (0/1), Char, float64 bits
	// and pointer bits.
	num uint64
	// str holds TypeString.
	str string
	// bytes holds TypeBytes. The slice aliases the caller's backing array.
	bytes []byte
	// box holds *big.Float for TypeBigFloat, the caller's object for
	// TypeCustom and a *NamedArg for TypeNamedArg.
	box any
	// format renders a TypeCustom box. Bound once at construction; this is
	// the only dynamic dispatch point in the package.
	format FormatFunc
}

// FormatFunc renders a type-erased custom value. It must consume the
// value's portion of the format specifier from pc (up to the closing
// brace) and then write output through ctx.
type FormatFunc func(v any, pc *ParseContext, ctx *Context) error

// Arg is one formatting argument: a type tag plus a type-erased value.
// The zero Arg has TypeNone and reports Valid() == false.
type Arg struct {
	typ Type
	val Value
}

// Type returns the argument's type tag.
func (a Arg) Type() Type { return a.typ }

// Valid reports whether the argument holds a value.
func (a Arg) Valid() bool { return a.typ != TypeNone }

// IsIntegral reports whether the argument holds an integer type.
func (a Arg) IsIntegral() bool { return a.typ.IsIntegral() }

// IsArithmetic reports whether the argument holds a numeric type.
func (a Arg) IsArithmetic() bool { return a.typ.IsArithmetic() }

// IsPointer reports whether the argument holds a raw pointer value.
func (a Arg) IsPointer() bool { return a.typ == TypePointer }

// AsInt64 returns the signed integer payload.
func (a Arg) AsInt64() (int64, bool) {
	switch a.typ {
	case TypeInt, TypeInt64, TypeChar:
		return int64(a.val.num), true
	default:
		return 0, false
	}
}

// AsUint64 returns the unsigned integer payload.
func (a Arg) AsUint64() (uint64, bool) {
	switch a.typ {
	case TypeUint, TypeUint64, TypePointer:
		return a.val.num, true
	default:
		return 0, false
	}
}

// AsFloat64 returns the floating-point payload.
func (a Arg) AsFloat64() (float64, bool) {
	if a.typ != TypeFloat64 {
		return 0, false
	}
	return math.Float64frombits(a.val.num), true
}

// AsBool returns the boolean payload.
func (a Arg) AsBool() (bool, bool) {
	if a.typ != TypeBool {
		return false, false
	}
	return a.val.num != 0, true
}

// AsRune returns the character payload.
func (a Arg) AsRune() (rune, bool) {
	if a.typ != TypeChar {
		return 0, false
	}
	return rune(int64(a.val.num)), true
}

// AsString returns the textual payload. Bytes values convert without
// copying semantics concerns: the string is materialized at call time, so
// it observes the current contents of a referenced buffer.
func (a Arg) AsString() (string, bool) {
	switch a.typ {
	case TypeString:
		return a.val.str, true
	case TypeBytes:
		return string(a.val.bytes), true
	default:
		return "", false
	}
}

// AsBytes returns the byte-slice payload without copying.
func (a Arg) AsBytes() ([]byte, bool) {
	if a.typ != TypeBytes {
		return nil, false
	}
	return a.val.bytes, true
}

// AsBigFloat returns the arbitrary-precision float payload.
func (a Arg) AsBigFloat() (*big.Float, bool) {
	if a.typ != TypeBigFloat {
		return nil, false
	}
	f, ok := a.val.box.(*big.Float)
	return f, ok
}

// Custom returns the boxed caller object of a TypeCustom argument.
func (a Arg) Custom() (any, bool) {
	if a.typ != TypeCustom {
		return nil, false
	}
	return a.val.box, true
}

// formatCustom invokes the dispatch function captured at construction.
func (a Arg) formatCustom(pc *ParseContext, ctx *Context) error {
	return a.val.format(a.val.box, pc, ctx)
}

// named returns the boxed wrapper of a TypeNamedArg argument.
func (a Arg) named() *NamedArg {
	na, ok := a.val.box.(*NamedArg)
	if !ok {
		panic("quill: named-argument marker without wrapper")
	}
	return na
}

// NamedArg binds a name to an argument so the value can be looked up as
// {name} instead of by position. The underlying Arg is built eagerly at
// construction, so the binding survives being stored in a plain Value slot
// and recovered later by any consumer.
type NamedArg struct {
	name string
	arg  Arg
}

// Named binds name to value. The value is referenced, not copied; use
// Store.PushNamed for owning semantics. Nesting named arguments is not
// supported and panics.
func Named(name string, value any) NamedArg {
	switch value.(type) {
	case NamedArg, *NamedArg:
		panic("quill: nested named arguments are not supported")
	}
	return NamedArg{name: name, arg: argOf(value)}
}

// Name returns the binding's name.
func (na NamedArg) Name() string { return na.name }

// Arg returns the bound argument.
func (na NamedArg) Arg() Arg { return na.arg }

func intArg(v int64, t Type) Arg {
	return Arg{typ: t, val: Value{num: uint64(v)}}
}

func uintArg(v uint64, t Type) Arg {
	return Arg{typ: t, val: Value{num: v}}
}

// wordType mirrors the platform-sized integer split: like the original
// engine's long, Go's int collapses to the 32-bit or 64-bit tag depending
// on word size.
func wordType(signed bool) Type {
	if bits.UintSize == 32 {
		if signed {
			return TypeInt
		}
		return TypeUint
	}
	if signed {
		return TypeInt64
	}
	return TypeUint64
}

// argOf derives the type tag for a caller value and erases it into an Arg.
// The switch is the single exhaustive classification point: every
// supported source type appears here, and everything else becomes
// TypeCustom with a dispatch function bound to the concrete value.
func argOf(v any) Arg {
	switch x := v.(type) {
	case nil:
		return Arg{typ: TypePointer}
	case bool:
		var n uint64
		if x {
			n = 1
		}
		return Arg{typ: TypeBool, val: Value{num: n}}
	case int:
		return intArg(int64(x), wordType(true))
	case int8:
		return intArg(int64(x), TypeInt)
	case int16:
		return intArg(int64(x), TypeInt)
	case int32:
		return intArg(int64(x), TypeInt)
	case int64:
		return intArg(x, TypeInt64)
	case uint:
		return uintArg(uint64(x), wordType(false))
	case uint8:
		return uintArg(uint64(x), TypeUint)
	case uint16:
		return uintArg(uint64(x), TypeUint)
	case uint32:
		return uintArg(uint64(x), TypeUint)
	case uint64:
		return uintArg(x, TypeUint64)
	case uintptr:
		return Arg{typ: TypePointer, val: Value{num: uint64(x)}}
	case Char:
		return Arg{typ: TypeChar, val: Value{num: uint64(int64(x))}}
	case float32:
		return Arg{typ: TypeFloat64, val: Value{num: math.Float64bits(float64(x))}}
	case float64:
		return Arg{typ: TypeFloat64, val: Value{num: math.Float64bits(x)}}
	case *big.Float:
		return Arg{typ: TypeBigFloat, val: Value{box: x}}
	case string:
		return Arg{typ: TypeString, val: Value{str: x}}
	case []byte:
		return Arg{typ: TypeBytes, val: Value{bytes: x}}
	case NamedArg:
		na := x
		return Arg{typ: TypeNamedArg, val: Value{box: &na}}
	case *NamedArg:
		return Arg{typ: TypeNamedArg, val: Value{box: x}}
	case Arg:
		return x
	case Formatter:
		return Arg{typ: TypeCustom, val: Value{box: x, format: formatViaFormatter}}
	default:
		return argOfFallback(v)
	}
}

// argOfFallback classifies defined types whose underlying kind is integral
// (the enum path: one controlled conversion, no arithmetic widening).
// Anything left is a custom value without a Formatter, which reports an
// error when rendered rather than at construction.
func argOfFallback(v any) Arg {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intArg(rv.Int(), wordType(true))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return uintArg(rv.Uint(), wordType(false))
	case reflect.String:
		return Arg{typ: TypeString, val: Value{str: rv.String()}}
	}
	return Arg{typ: TypeCustom, val: Value{box: v, format: formatUnsupported}}
}

// formatViaFormatter is the one dispatch function for values implementing
// Formatter. It is a free function so every custom Arg stores the same
// shape: (boxed object, function), never a method table.
func formatViaFormatter(v any, pc *ParseContext, ctx *Context) error {
	return v.(Formatter).FormatArg(pc, ctx)
}

func formatUnsupported(v any, pc *ParseContext, ctx *Context) error {
	return fmt.Errorf("no formatter for value of type %T", v)
}
