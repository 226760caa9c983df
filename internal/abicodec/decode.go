package abicodec

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/evmscope/evmscope/internal/hexutil"
)

// DecodeArgs decodes ABI-encoded data against a declared argument
// list, returning one value per argument using JSON-friendly Go types
// (string for address/bytes/bytesN, *big.Int for integers, bool,
// []any for arrays, map[string]any for named tuples).
func DecodeArgs(args []Argument, data []byte) ([]any, error) {
	types := make([]Type, len(args))
	for i, a := range args {
		types[i] = a.Type
	}
	return decodeList(types, data)
}

// decodeList is the mirror of encodeList: it reads one head slot per
// type (32 bytes for dynamic types, StaticSize bytes otherwise),
// resolving dynamic slots via their offset into the tail region.
func decodeList(types []Type, data []byte) ([]any, error) {
	values := make([]any, len(types))
	heads := make([]int, len(types))
	pos := 0
	for i, t := range types {
		heads[i] = pos
		if t.IsDynamic() {
			pos += wordSize
		} else {
			sz, err := t.StaticSize()
			if err != nil {
				return nil, err
			}
			pos += sz
		}
	}
	for i, t := range types {
		if t.IsDynamic() {
			off, err := readUintAt(data, heads[i])
			if err != nil {
				return nil, fmt.Errorf("argument %d offset: %w", i, err)
			}
			if int(off) > len(data) {
				return nil, fmt.Errorf("abicodec: offset %d for argument %d exceeds data length %d", off, i, len(data))
			}
			v, err := decodeInline(t, data[off:])
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			values[i] = v
			continue
		}
		sz, err := t.StaticSize()
		if err != nil {
			return nil, err
		}
		if heads[i]+sz > len(data) {
			return nil, fmt.Errorf("abicodec: truncated data decoding argument %d", i)
		}
		v, err := decodeInline(t, data[heads[i]:heads[i]+sz])
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		values[i] = v
	}
	return values, nil
}

// decodeInline is the read-side counterpart of encodeInline: data
// starts exactly at this value's self-contained encoding.
func decodeInline(t Type, data []byte) (any, error) {
	if len(t.Dims) > 0 {
		return decodeArray(t, data)
	}
	switch t.Base {
	case "tuple":
		values, err := decodeList(componentTypes(t.Components), data)
		if err != nil {
			return nil, err
		}
		return tupleResult(t.Components, values), nil
	case "bytes":
		length, err := readUintAt(data, 0)
		if err != nil {
			return nil, err
		}
		if int(length)+wordSize > len(data) {
			return nil, fmt.Errorf("abicodec: truncated bytes value")
		}
		return hexutil.Encode(data[wordSize : wordSize+int(length)]), nil
	case "string":
		length, err := readUintAt(data, 0)
		if err != nil {
			return nil, err
		}
		if int(length)+wordSize > len(data) {
			return nil, fmt.Errorf("abicodec: truncated string value")
		}
		raw := data[wordSize : wordSize+int(length)]
		if !utf8.Valid(raw) {
			return strings.ToValidUTF8(string(raw), "�"), nil
		}
		return string(raw), nil
	case "address":
		word, err := readWord(data, 0)
		if err != nil {
			return nil, err
		}
		return hexutil.Encode(word[12:]), nil
	case "bool":
		word, err := readWord(data, 0)
		if err != nil {
			return nil, err
		}
		return unsignedFromWord(word).Sign() != 0, nil
	default:
		return decodeNumericOrFixedBytes(t, data)
	}
}

func decodeArray(t Type, data []byte) (any, error) {
	elemType := Type{Base: t.Base, Dims: t.Dims[1:], Components: t.Components}
	dim := t.Dims[0]
	body := data
	if dim == dynamicDim {
		length, err := readUintAt(data, 0)
		if err != nil {
			return nil, err
		}
		dim = int(length)
		body = data[wordSize:]
	}
	types := make([]Type, dim)
	for i := range types {
		types[i] = elemType
	}
	values, err := decodeList(types, body)
	if err != nil {
		return nil, err
	}
	return values, nil
}

func decodeNumericOrFixedBytes(t Type, data []byte) (any, error) {
	word, err := readWord(data, 0)
	if err != nil {
		return nil, err
	}
	switch {
	case t.Base == "uint" || isUintN(t.Base):
		return unsignedFromWord(word), nil
	case t.Base == "int" || isIntN(t.Base):
		return signedFromWord(word), nil
	default:
		n, err := t.BytesSize()
		if err != nil {
			return nil, fmt.Errorf("abicodec: unsupported type %q", t.Base)
		}
		return hexutil.Encode(word[:n]), nil
	}
}

func componentTypes(components []Argument) []Type {
	types := make([]Type, len(components))
	for i, c := range components {
		types[i] = c.Type
	}
	return types
}

// tupleResult returns a name-keyed map when every component is named,
// and a positional slice otherwise.
func tupleResult(components []Argument, values []any) any {
	named := len(components) > 0
	for _, c := range components {
		if c.Name == "" {
			named = false
			break
		}
	}
	if !named {
		return values
	}
	out := make(map[string]any, len(components))
	for i, c := range components {
		out[c.Name] = values[i]
	}
	return out
}
