package quill

// Type identifies which member of a Value is active. A Value's bits are
// meaningless without its Type; nothing in the Value self-describes.
type Type uint8

const (
	TypeNone Type = iota
	TypeNamedArg
	// Integer types form a contiguous range,
	TypeInt
	TypeUint
	TypeInt64
	TypeUint64
	TypeBool
	TypeChar
	// followed by the floating-point types.
	TypeFloat64
	TypeBigFloat
	TypeBytes
	TypeString
	TypePointer
	TypeCustom

	lastIntegerType = TypeChar
	lastNumericType = TypeBigFloat
)

var typeNames = [...]string{
	TypeNone:     "none",
	TypeNamedArg: "named",
	TypeInt:      "int",
	TypeUint:     "uint",
	TypeInt64:    "int64",
	TypeUint64:   "uint64",
	TypeBool:     "bool",
	TypeChar:     "char",
	TypeFloat64:  "float64",
	TypeBigFloat: "bigfloat",
	TypeBytes:    "bytes",
	TypeString:   "string",
	TypePointer:  "pointer",
	TypeCustom:   "custom",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "invalid"
}

// IsIntegral reports whether t is one of the integer types.
// Classifying a named-argument marker is an internal error.
func (t Type) IsIntegral() bool {
	if t == TypeNamedArg {
		panic("quill: cannot classify a named-argument marker")
	}
	return t > TypeNamedArg && t <= lastIntegerType
}

// IsArithmetic reports whether t is an integer or floating-point type.
func (t Type) IsArithmetic() bool {
	if t == TypeNamedArg {
		panic("quill: cannot classify a named-argument marker")
	}
	return t > TypeNamedArg && t <= lastNumericType
}

// MaxPackedArgs is the largest argument count stored in the packed layout.
// Each slot's Type occupies a 4-bit field of a single 64-bit word, so 15
// slots fit with the zero tag left over as a terminator.
const MaxPackedArgs = 15

// packTypes encodes argument tags into a 64-bit word, slot i occupying
// bits [4i, 4i+4). Unused high slots stay TypeNone.
func packTypes(args []Arg) uint64 {
	var word uint64
	for i, a := range args {
		word |= uint64(a.typ&0xF) << (4 * uint(i))
	}
	return word
}

// typeAt decodes the 4-bit tag for a packed slot.
func typeAt(word uint64, index int) Type {
	return Type((word >> (4 * uint(index))) & 0xF)
}
