package abicodec

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/evmscope/evmscope/internal/hexutil"
)

// Values passed into Encode come from JSON-decoded tool arguments, so
// coercion accepts the shapes encoding/json produces (float64, string,
// bool, []any, map[string]any) in addition to Go-native big.Int/[]byte.

func toBigInt(v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		return n, nil
	case int:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case float64:
		if n != float64(int64(n)) {
			return nil, fmt.Errorf("abicodec: non-integral number %v", n)
		}
		return big.NewInt(int64(n)), nil
	case string:
		s := strings.TrimSpace(n)
		if strings.HasPrefix(strings.ToLower(s), "0x") {
			return hexutil.ToUint(s)
		}
		out, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("abicodec: %q is not a valid integer", n)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("abicodec: cannot interpret %T as an integer", v)
	}
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
	case float64:
		return b != 0, nil
	}
	return false, fmt.Errorf("abicodec: cannot interpret %v (%T) as a bool", v, v)
}

func toBytesValue(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		return hexutil.Decode(b)
	default:
		return nil, fmt.Errorf("abicodec: cannot interpret %T as bytes", v)
	}
}

func toAddressBytes(v any) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("abicodec: address value must be a hex string, got %T", v)
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, err
	}
	if len(b) > 20 {
		return nil, fmt.Errorf("abicodec: address %q longer than 20 bytes", s)
	}
	return b, nil
}

func toStringValue(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("abicodec: cannot interpret %T as a string", v)
	}
	return s, nil
}

func toSliceValue(v any) ([]any, error) {
	switch s := v.(type) {
	case []any:
		return s, nil
	default:
		return nil, fmt.Errorf("abicodec: expected an array value, got %T", v)
	}
}

// toComponentValues extracts tuple field values from either a
// positional array or a name-keyed object, matching how JSON tool
// arguments naturally represent tuples.
func toComponentValues(components []Argument, v any) ([]any, error) {
	switch val := v.(type) {
	case []any:
		if len(val) != len(components) {
			return nil, fmt.Errorf("abicodec: tuple expects %d fields, got %d", len(components), len(val))
		}
		return val, nil
	case map[string]any:
		out := make([]any, len(components))
		for i, c := range components {
			if c.Name == "" {
				return nil, fmt.Errorf("abicodec: tuple component %d is unnamed; pass tuple values positionally", i)
			}
			fv, ok := val[c.Name]
			if !ok {
				return nil, fmt.Errorf("abicodec: tuple missing field %q", c.Name)
			}
			out[i] = fv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("abicodec: expected a tuple (array or object), got %T", v)
	}
}
