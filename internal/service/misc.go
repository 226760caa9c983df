package service

import (
	"fmt"

	"github.com/evmscope/evmscope/internal/abicodec"
	"github.com/evmscope/evmscope/internal/apperr"
	"github.com/evmscope/evmscope/internal/convert"
	"github.com/evmscope/evmscope/internal/hexutil"
)

// Keccak hashes value, interpreted per inputType ("text", "hex", or
// "bytes"; a list of values under any of these types is concatenated
// before hashing), and returns the 0x-prefixed 32-byte digest.
func Keccak(values []string, inputType string) (string, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("%w: at least one value is required", apperr.ErrInvalidInput)
	}
	chunks := make([][]byte, len(values))
	for i, v := range values {
		b, err := decodeKeccakInput(v, inputType)
		if err != nil {
			return "", err
		}
		chunks[i] = b
	}
	digest := abicodec.Keccak256(chunks...)
	return hexutil.Encode(digest), nil
}

func decodeKeccakInput(value, inputType string) ([]byte, error) {
	switch inputType {
	case "", "text":
		return []byte(value), nil
	case "hex", "bytes":
		return hexutil.Decode(value)
	default:
		return nil, fmt.Errorf("%w: inputType must be one of text, hex, bytes", apperr.ErrInvalidInput)
	}
}

// Convert performs exact-integer unit conversion; it is a thin pass
// through to internal/convert so callers driving the tool surface
// don't need to import it directly.
func Convert(value string, fromUnit, toUnit convert.Unit, decimals int) (convert.Result, error) {
	return convert.Convert(value, fromUnit, toUnit, decimals)
}
