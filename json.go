package quill

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/minio/simdjson-go"
)

// StoreFromJSON parses JSON using simdjson-go and builds an argument
// store from it. A top-level object pushes one named argument per member,
// a top-level array pushes positional arguments and a scalar pushes a
// single argument. Nested objects and arrays become custom arguments that
// render as compact JSON.
func StoreFromJSON(data []byte) (*Store, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("json input is empty")
	}
	s := NewStore()
	if trimmed[0] != '{' && trimmed[0] != '[' {
		v, err := scalarFromJSON(trimmed)
		if err != nil {
			return nil, err
		}
		s.Push(v)
		return s, nil
	}
	parsed, err := simdjson.Parse(data, nil)
	if err != nil {
		return nil, err
	}
	it := parsed.Iter()
	if it.Advance() != simdjson.TypeRoot {
		return nil, fmt.Errorf("json root not found")
	}
	typ, root, err := it.Root(nil)
	if err != nil {
		return nil, err
	}
	switch typ {
	case simdjson.TypeObject:
		obj, err := root.Object(nil)
		if err != nil {
			return nil, err
		}
		var parseErr error
		err = obj.ForEach(func(key []byte, elem simdjson.Iter) {
			if parseErr != nil {
				return
			}
			v, err := argValueFromJSONIter(elem.Type(), &elem)
			if err != nil {
				parseErr = err
				return
			}
			s.PushNamed(string(key), v)
		}, nil)
		if err != nil {
			return nil, err
		}
		if parseErr != nil {
			return nil, parseErr
		}
	case simdjson.TypeArray:
		arr, err := root.Array(nil)
		if err != nil {
			return nil, err
		}
		iter := arr.Iter()
		for {
			t := iter.Advance()
			if t == simdjson.TypeNone {
				break
			}
			elem := iter
			v, err := argValueFromJSONIter(t, &elem)
			if err != nil {
				return nil, err
			}
			s.Push(v)
		}
	default:
		return nil, fmt.Errorf("unsupported json root type: %v", typ)
	}
	return s, nil
}

func scalarFromJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err == nil || err != io.EOF {
		return nil, fmt.Errorf("invalid character after top-level value")
	}
	switch val := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return val, nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		if f, err := val.Float64(); err == nil {
			return f, nil
		}
		return nil, fmt.Errorf("invalid json number: %s", val)
	case string:
		return val, nil
	default:
		return nil, fmt.Errorf("unsupported scalar json type %T", v)
	}
}

// argValueFromJSONIter converts one JSON value into a pushable argument
// value. Whole-number floats collapse to int64 so they render without a
// fractional part.
func argValueFromJSONIter(typ simdjson.Type, it *simdjson.Iter) (any, error) {
	switch typ {
	case simdjson.TypeNull:
		return nil, nil
	case simdjson.TypeBool:
		return it.Bool()
	case simdjson.TypeInt:
		return it.Int()
	case simdjson.TypeUint:
		v, err := it.Uint()
		if err != nil {
			return nil, err
		}
		if v > math.MaxInt64 {
			return v, nil
		}
		return int64(v), nil
	case simdjson.TypeFloat:
		v, err := it.Float()
		if err != nil {
			return nil, err
		}
		if v >= math.MinInt64 && v <= math.MaxInt64 && math.Trunc(v) == v {
			return int64(v), nil
		}
		return v, nil
	case simdjson.TypeString:
		return it.String()
	case simdjson.TypeObject, simdjson.TypeArray:
		tree, err := jsonTreeFromIter(typ, it)
		if err != nil {
			return nil, err
		}
		return JSONValue{v: tree}, nil
	default:
		return nil, fmt.Errorf("unsupported json type: %v", typ)
	}
}

// jsonMember preserves object member order, which Go maps would not.
type jsonMember struct {
	key string
	val any
}

func jsonTreeFromIter(typ simdjson.Type, it *simdjson.Iter) (any, error) {
	switch typ {
	case simdjson.TypeObject:
		obj, err := it.Object(nil)
		if err != nil {
			return nil, err
		}
		var members []jsonMember
		var parseErr error
		err = obj.ForEach(func(key []byte, elem simdjson.Iter) {
			if parseErr != nil {
				return
			}
			v, err := jsonLeafOrTree(elem.Type(), &elem)
			if err != nil {
				parseErr = err
				return
			}
			members = append(members, jsonMember{key: string(key), val: v})
		}, nil)
		if err != nil {
			return nil, err
		}
		if parseErr != nil {
			return nil, parseErr
		}
		return members, nil
	case simdjson.TypeArray:
		arr, err := it.Array(nil)
		if err != nil {
			return nil, err
		}
		var elems []any
		iter := arr.Iter()
		for {
			t := iter.Advance()
			if t == simdjson.TypeNone {
				break
			}
			elem := iter
			v, err := jsonLeafOrTree(t, &elem)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		}
		return elems, nil
	default:
		return nil, fmt.Errorf("unsupported json tree type: %v", typ)
	}
}

func jsonLeafOrTree(typ simdjson.Type, it *simdjson.Iter) (any, error) {
	switch typ {
	case simdjson.TypeObject, simdjson.TypeArray:
		return jsonTreeFromIter(typ, it)
	case simdjson.TypeNull:
		return nil, nil
	case simdjson.TypeBool:
		return it.Bool()
	case simdjson.TypeInt:
		return it.Int()
	case simdjson.TypeUint:
		return it.Uint()
	case simdjson.TypeFloat:
		return it.Float()
	case simdjson.TypeString:
		return it.String()
	default:
		return nil, fmt.Errorf("unsupported json type: %v", typ)
	}
}

// JSONValue is a structured JSON value pushed into a store. It renders as
// compact JSON and accepts no format specifier.
type JSONValue struct {
	v any
}

// FormatArg implements Formatter.
func (j JSONValue) FormatArg(pc *ParseContext, ctx *Context) error {
	if spec := pc.TakeSpec(); spec != "" {
		return fmt.Errorf("json argument accepts no format specifier, got %q", spec)
	}
	return writeJSONTree(ctx, j.v)
}

func writeJSONTree(ctx *Context, v any) error {
	switch x := v.(type) {
	case nil:
		ctx.WriteString("null")
	case bool:
		if x {
			ctx.WriteString("true")
		} else {
			ctx.WriteString("false")
		}
	case int64:
		ctx.WriteString(strconv.FormatInt(x, 10))
	case uint64:
		ctx.WriteString(strconv.FormatUint(x, 10))
	case float64:
		ctx.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case string:
		writeJSONString(ctx, x)
	case []jsonMember:
		ctx.WriteByte('{')
		for i, m := range x {
			if i > 0 {
				ctx.WriteByte(',')
			}
			writeJSONString(ctx, m.key)
			ctx.WriteByte(':')
			if err := writeJSONTree(ctx, m.val); err != nil {
				return err
			}
		}
		ctx.WriteByte('}')
	case []any:
		ctx.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				ctx.WriteByte(',')
			}
			if err := writeJSONTree(ctx, e); err != nil {
				return err
			}
		}
		ctx.WriteByte(']')
	default:
		return fmt.Errorf("unknown json tree node %T", v)
	}
	return nil
}

func writeJSONString(ctx *Context, s string) {
	ctx.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			ctx.WriteByte('\\')
			ctx.WriteByte(c)
		case '\b':
			ctx.WriteString(`\b`)
		case '\f':
			ctx.WriteString(`\f`)
		case '\n':
			ctx.WriteString(`\n`)
		case '\r':
			ctx.WriteString(`\r`)
		case '\t':
			ctx.WriteString(`\t`)
		default:
			if c < 0x20 {
				ctx.WriteString(`\u00`)
				ctx.WriteByte(hexDigit(c >> 4))
				ctx.WriteByte(hexDigit(c & 0xF))
			} else {
				ctx.WriteByte(c)
			}
		}
	}
	ctx.WriteByte('"')
}

func hexDigit(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'A' + (n - 10)
}
