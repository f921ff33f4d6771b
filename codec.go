package quill

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/delaneyj/toolbelt/bytebufferpool"
)

// PackMagic terminates an encoded argument pack.
var PackMagic = [4]byte{'Q', 'A', 'R', 'G'}

// EncodeArg encodes an argument into its binary record: a tag byte
// followed by a tag-determined payload. The record is the opaque form a
// (tag, value) pair takes when it must cross a type-erased boundary;
// decoding it with DecodeArg reproduces the original pair exactly.
//
// Custom arguments cannot be encoded: their dispatch function does not
// survive a byte boundary.
func EncodeArg(a Arg) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := encodeArgTo(buf, a); err != nil {
		return nil, err
	}
	return append([]byte{}, buf.Bytes()...), nil
}

func encodeArgTo(buf *bytebufferpool.ByteBuffer, a Arg) error {
	buf.WriteByte(byte(a.typ))
	switch a.typ {
	case TypeNone:
		return nil
	case TypeInt, TypeUint, TypeInt64, TypeUint64, TypeBool, TypeChar, TypeFloat64, TypePointer:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], a.val.num)
		buf.Write(tmp[:])
		return nil
	case TypeBigFloat:
		f, ok := a.val.box.(*big.Float)
		if !ok || f == nil {
			return fmt.Errorf("big float argument is nil")
		}
		writeUvarint(buf, uint64(f.Prec()))
		return writeLenPrefixed(buf, []byte(f.Text('p', 0)))
	case TypeBytes:
		return writeLenPrefixed(buf, a.val.bytes)
	case TypeString:
		return writeLenPrefixed(buf, []byte(a.val.str))
	case TypeNamedArg:
		na := a.named()
		if err := writeLenPrefixed(buf, []byte(na.name)); err != nil {
			return err
		}
		return encodeArgTo(buf, na.arg)
	case TypeCustom:
		return fmt.Errorf("custom argument is not serializable")
	default:
		return fmt.Errorf("unknown argument type %d", a.typ)
	}
}

// DecodeArg decodes one argument record from b and returns the argument
// and the number of bytes consumed. Decoded strings and byte slices own
// their storage.
func DecodeArg(b []byte) (Arg, int, error) {
	if len(b) < 1 {
		return Arg{}, 0, fmt.Errorf("argument tag missing")
	}
	typ := Type(b[0])
	rest := b[1:]
	switch typ {
	case TypeNone:
		return Arg{}, 1, nil
	case TypeInt, TypeUint, TypeInt64, TypeUint64, TypeBool, TypeChar, TypeFloat64, TypePointer:
		if len(rest) < 8 {
			return Arg{}, 0, fmt.Errorf("argument payload too short")
		}
		num := binary.LittleEndian.Uint64(rest[:8])
		return Arg{typ: typ, val: Value{num: num}}, 9, nil
	case TypeBigFloat:
		prec, n := binary.Uvarint(rest)
		if n <= 0 {
			return Arg{}, 0, fmt.Errorf("big float precision missing")
		}
		text, m, err := readLenPrefixed(rest[n:])
		if err != nil {
			return Arg{}, 0, err
		}
		f, _, err := big.ParseFloat(string(text), 0, uint(prec), big.ToNearestEven)
		if err != nil {
			return Arg{}, 0, fmt.Errorf("invalid big float payload: %w", err)
		}
		return Arg{typ: TypeBigFloat, val: Value{box: f}}, 1 + n + m, nil
	case TypeBytes:
		payload, n, err := readLenPrefixed(rest)
		if err != nil {
			return Arg{}, 0, err
		}
		return Arg{typ: TypeBytes, val: Value{bytes: append([]byte{}, payload...)}}, 1 + n, nil
	case TypeString:
		payload, n, err := readLenPrefixed(rest)
		if err != nil {
			return Arg{}, 0, err
		}
		return Arg{typ: TypeString, val: Value{str: string(payload)}}, 1 + n, nil
	case TypeNamedArg:
		name, n, err := readLenPrefixed(rest)
		if err != nil {
			return Arg{}, 0, err
		}
		inner, m, err := DecodeArg(rest[n:])
		if err != nil {
			return Arg{}, 0, err
		}
		if inner.typ == TypeNamedArg {
			return Arg{}, 0, fmt.Errorf("nested named argument in pack")
		}
		na := &NamedArg{name: string(name), arg: inner}
		return Arg{typ: TypeNamedArg, val: Value{box: na}}, 1 + n + m, nil
	case TypeCustom:
		return Arg{}, 0, fmt.Errorf("custom argument is not serializable")
	default:
		return Arg{}, 0, fmt.Errorf("unknown argument type %d", typ)
	}
}

// EncodeStore encodes every argument in the store into an argument pack:
// a count, the argument records in push order and the PackMagic trailer.
// By-reference arguments are snapshotted at encode time; a pack is a wire
// form, not a view.
func EncodeStore(s *Store) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	writeUvarint(buf, uint64(len(s.args)))
	for _, a := range s.args {
		if err := encodeArgTo(buf, a); err != nil {
			return nil, err
		}
	}
	out := append([]byte{}, buf.Bytes()...)
	out = append(out, PackMagic[:]...)
	return out, nil
}

// DecodeStore decodes an argument pack into a fresh store.
func DecodeStore(doc []byte) (*Store, error) {
	if len(doc) < len(PackMagic) {
		return nil, fmt.Errorf("argument pack too short")
	}
	if !bytes.Equal(doc[len(doc)-len(PackMagic):], PackMagic[:]) {
		return nil, fmt.Errorf("missing QARG terminator")
	}
	payload := doc[:len(doc)-len(PackMagic)]
	count, n := binary.Uvarint(payload)
	if n <= 0 {
		return nil, fmt.Errorf("argument count missing")
	}
	payload = payload[n:]
	s := NewStore()
	for i := uint64(0); i < count; i++ {
		arg, m, err := DecodeArg(payload)
		if err != nil {
			return nil, err
		}
		payload = payload[m:]
		if arg.typ == TypeNamedArg {
			na := arg.named()
			s.pushNamed(*na)
			continue
		}
		s.args = append(s.args, arg)
	}
	if len(payload) != 0 {
		return nil, fmt.Errorf("extra bytes after argument pack")
	}
	return s, nil
}

func writeUvarint(buf *bytebufferpool.ByteBuffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func writeLenPrefixed(buf *bytebufferpool.ByteBuffer, payload []byte) error {
	writeUvarint(buf, uint64(len(payload)))
	buf.Write(payload)
	return nil
}

func readLenPrefixed(b []byte) ([]byte, int, error) {
	length, n := binary.Uvarint(b)
	if n <= 0 {
		return nil, 0, fmt.Errorf("length prefix missing")
	}
	if uint64(len(b)-n) < length {
		return nil, 0, fmt.Errorf("payload too short: need %d bytes", length)
	}
	return b[n : n+int(length)], n + int(length), nil
}
