package abicodec

import (
	"fmt"
)

// EncodeArgs encodes a list of values against their declared types
// using the standard ABI head/tail scheme (spec §4.4): static values
// are written inline, dynamic values are replaced in the head by a
// 32-byte offset and appended in order after all heads.
func EncodeArgs(args []Argument, values []any) ([]byte, error) {
	if len(values) != len(args) {
		return nil, fmt.Errorf("abicodec: expected %d argument(s), got %d", len(args), len(values))
	}
	types := make([]Type, len(args))
	for i, a := range args {
		types[i] = a.Type
	}
	return encodeList(types, values)
}

// EncodeFunctionCall renders the calldata for fn(values...): the
// 4-byte selector followed by the head/tail encoding of the inputs.
func EncodeFunctionCall(fn Function, values []any) ([]byte, error) {
	args, err := EncodeArgs(fn.Inputs, values)
	if err != nil {
		return nil, err
	}
	selector, err := hexDecodeSelector(Selector(fn.Signature()))
	if err != nil {
		return nil, err
	}
	return append(selector, args...), nil
}

func hexDecodeSelector(s string) ([]byte, error) {
	out := make([]byte, len(s)/2)
	for i := range out {
		hi := hexNibble(s[i*2])
		lo := hexNibble(s[i*2+1])
		if hi < 0 || lo < 0 {
			return nil, fmt.Errorf("abicodec: invalid selector %q", s)
		}
		out[i] = byte(hi<<4 | lo)
	}
	return out, nil
}

func hexNibble(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return -1
	}
}

// encodeList encodes a sequence of (type, value) pairs using the
// head/tail scheme. It is used for top-level argument lists, tuple
// component lists, and array element lists alike.
func encodeList(types []Type, values []any) ([]byte, error) {
	if len(types) != len(values) {
		return nil, fmt.Errorf("abicodec: expected %d value(s), got %d", len(types), len(values))
	}
	heads := make([][]byte, len(types))
	tails := make([][]byte, len(types))
	headTotal := 0

	for i, t := range types {
		if t.IsDynamic() {
			headTotal += wordSize
			continue
		}
		enc, err := encodeInline(t, values[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		heads[i] = enc
		headTotal += len(enc)
	}

	running := headTotal
	for i, t := range types {
		if !t.IsDynamic() {
			continue
		}
		enc, err := encodeInline(t, values[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		offsetWord, err := wordFromUnsigned(bigFromInt(running))
		if err != nil {
			return nil, err
		}
		heads[i] = offsetWord
		tails[i] = enc
		running += len(enc)
	}

	out := make([]byte, 0, running)
	for _, h := range heads {
		out = append(out, h...)
	}
	for _, tl := range tails {
		out = append(out, tl...)
	}
	return out, nil
}

// encodeInline encodes a single value as a self-contained blob: the
// literal word(s) for a static scalar/array/tuple, or the
// length-prefixed/head-tail content referenced by a dynamic value's
// offset.
func encodeInline(t Type, v any) ([]byte, error) {
	if len(t.Dims) > 0 {
		return encodeArray(t, v)
	}
	switch t.Base {
	case "tuple":
		values, err := toComponentValues(t.Components, v)
		if err != nil {
			return nil, err
		}
		types := make([]Type, len(t.Components))
		for i, c := range t.Components {
			types[i] = c.Type
		}
		return encodeList(types, values)
	case "bytes":
		data, err := toBytesValue(v)
		if err != nil {
			return nil, err
		}
		return encodeDynamicBytes(data), nil
	case "string":
		s, err := toStringValue(v)
		if err != nil {
			return nil, err
		}
		return encodeDynamicBytes([]byte(s)), nil
	case "address":
		b, err := toAddressBytes(v)
		if err != nil {
			return nil, err
		}
		return leftPad32(b), nil
	case "bool":
		b, err := toBool(v)
		if err != nil {
			return nil, err
		}
		word := make([]byte, wordSize)
		if b {
			word[wordSize-1] = 1
		}
		return word, nil
	default:
		return encodeNumericOrFixedBytes(t, v)
	}
}

func encodeArray(t Type, v any) ([]byte, error) {
	elemType := Type{Base: t.Base, Dims: t.Dims[1:], Components: t.Components}
	elems, err := toSliceValue(v)
	if err != nil {
		return nil, err
	}
	dim := t.Dims[0]
	if dim == dynamicDim {
		types := make([]Type, len(elems))
		for i := range types {
			types[i] = elemType
		}
		body, err := encodeList(types, elems)
		if err != nil {
			return nil, err
		}
		lenWord, err := wordFromUnsigned(bigFromInt(len(elems)))
		if err != nil {
			return nil, err
		}
		return append(lenWord, body...), nil
	}
	if len(elems) != dim {
		return nil, fmt.Errorf("abicodec: array expects %d element(s), got %d", dim, len(elems))
	}
	types := make([]Type, dim)
	for i := range types {
		types[i] = elemType
	}
	return encodeList(types, elems)
}

func encodeDynamicBytes(data []byte) []byte {
	lenWord, _ := wordFromUnsigned(bigFromInt(len(data)))
	return append(lenWord, padRight(data, wordSize)...)
}

func encodeNumericOrFixedBytes(t Type, v any) ([]byte, error) {
	switch {
	case t.Base == "uint" || isUintN(t.Base):
		n, err := toBigInt(v)
		if err != nil {
			return nil, err
		}
		return wordFromUnsigned(n)
	case t.Base == "int" || isIntN(t.Base):
		n, err := toBigInt(v)
		if err != nil {
			return nil, err
		}
		bits, err := t.BitWidth()
		if err != nil {
			return nil, err
		}
		return wordFromSigned(n, bits)
	default:
		n, err := t.BytesSize()
		if err != nil {
			return nil, fmt.Errorf("abicodec: unsupported type %q", t.Base)
		}
		b, err := toBytesValue(v)
		if err != nil {
			return nil, err
		}
		if len(b) > n {
			return nil, fmt.Errorf("abicodec: %s value has %d byte(s), expected at most %d", t.Base, len(b), n)
		}
		return rightPad32(b), nil
	}
}

func isUintN(base string) bool { return reUint.MatchString(base) }
func isIntN(base string) bool  { return reInt.MatchString(base) }
