package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/evmscope/evmscope/internal/abicodec"
	"github.com/evmscope/evmscope/internal/apperr"
	"github.com/evmscope/evmscope/internal/convert"
	"github.com/evmscope/evmscope/internal/hexutil"
)

// StorageValue is the result of GetStorageAt.
type StorageValue struct {
	Address  string
	Network  string
	ChainID  string
	Slot     string
	Data     string
	BlockTag string
}

// GetStorageAt reads one raw storage word, preferring RPC over the
// explorer's eth_getStorageAt proxy action.
func (s *Service) GetStorageAt(ctx context.Context, address, slot, network, blockTag string) (StorageValue, error) {
	normalizedAddress, label, chainID, err := s.prepare(ctx, address, network)
	if err != nil {
		return StorageValue{}, err
	}
	normalizedSlot, err := hexutil.NormalizeHash32(slot)
	if err != nil {
		return StorageValue{}, fmt.Errorf("%w: slot must be a 32-byte hex value", apperr.ErrInvalidInput)
	}
	tag := normalizeBlockTag(blockTag)

	word, err := s.readStorageWord(ctx, chainID, normalizedAddress, normalizedSlot, tag)
	if err != nil {
		return StorageValue{}, err
	}
	return StorageValue{Address: normalizedAddress, Network: label, ChainID: chainID, Slot: normalizedSlot, Data: word, BlockTag: tag}, nil
}

func normalizeBlockTag(tag string) string {
	if tag == "" {
		return "latest"
	}
	return tag
}

// DecodedOutput is one decoded return value from a function call,
// optionally formatted as a scaled decimal when decimals is known for
// a numeric type.
type DecodedOutput struct {
	Name   string
	Type   string
	Value  any
	Scaled string
}

// CallResult is the result of CallFunction.
type CallResult struct {
	Address   string
	Network   string
	ChainID   string
	BlockTag  string
	Data      string
	Function  string
	Decoded   []DecodedOutput
	DecodeErr string
}

// DecimalsHint selects a decimals value per numeric output, by
// position or by name, falling back to a single global value.
type DecimalsHint struct {
	Global  *int
	ByIndex map[int]int
	ByName  map[string]int
}

func (h DecimalsHint) forOutput(name string, idx int) (int, bool) {
	if name != "" {
		if d, ok := h.ByName[name]; ok {
			return d, true
		}
	}
	if d, ok := h.ByIndex[idx]; ok {
		return d, true
	}
	if h.Global != nil {
		return *h.Global, true
	}
	return 0, false
}

// CallFunction performs a read-only eth_call, encoding the input via
// function+args when given, or using data directly (normalized,
// requiring at least a 4-byte selector, as ParseSignature declares
// inputs only). When an ABI is already cached for the target (or, for
// a detected proxy, its implementation), the selector is matched
// against it and a match's declared outputs drive decoding.
func (s *Service) CallFunction(ctx context.Context, address, data, network, blockTag, function string, args []any, decimals DecimalsHint) (CallResult, error) {
	normalizedAddress, label, chainID, err := s.prepare(ctx, address, network)
	if err != nil {
		return CallResult{}, err
	}
	tag := normalizeBlockTag(blockTag)

	var callData string
	switch {
	case function != "":
		parsed, err := abicodec.ParseSignature(function)
		if err != nil {
			return CallResult{}, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
		}
		encoded, err := abicodec.EncodeFunctionCall(parsed, args)
		if err != nil {
			return CallResult{}, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
		}
		callData = hexutil.Encode(encoded)
	case data != "":
		normalized, err := hexutil.Normalize(data, 0)
		if err != nil || len(normalized) < 10 {
			return CallResult{}, fmt.Errorf("%w: data must be 0x-prefixed and include at least a 4-byte selector", apperr.ErrInvalidInput)
		}
		if match, ok := s.lookupABIFunction(ctx, chainID, normalizedAddress, normalized[:10]); ok {
			if err := checkStaticCalldataSize(match.Inputs, normalized); err != nil {
				return CallResult{}, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
			}
		}
		callData = normalized
	default:
		return CallResult{}, fmt.Errorf("%w: either data or function+args must be provided", apperr.ErrInvalidInput)
	}
	selector := callData[:10]

	result, err := s.ethCall(ctx, chainID, normalizedAddress, callData, tag)
	if err != nil {
		return CallResult{}, err
	}

	out := CallResult{Address: normalizedAddress, Network: label, ChainID: chainID, BlockTag: tag, Data: result, Function: function}
	if outputs, ok := s.lookupABIOutputs(ctx, chainID, normalizedAddress, selector); ok {
		decoded, decErr := decodeOutputs(outputs, result, decimals)
		if decErr != nil {
			out.DecodeErr = decErr.Error()
		} else {
			out.Decoded = decoded
		}
	}
	return out, nil
}

// abiMatch is one function ABI entry matched by selector, carrying
// both sides of its signature: Inputs drive the pre-call calldata
// size check, Outputs drive post-call decoding.
type abiMatch struct {
	Inputs  []abicodec.Argument
	Outputs []abicodec.Argument
}

// lookupABIOutputs is a thin wrapper over lookupABIFunction for callers
// that only need the decoded-output shape.
func (s *Service) lookupABIOutputs(ctx context.Context, chainID, address, selector string) ([]abicodec.Argument, bool) {
	match, ok := s.lookupABIFunction(ctx, chainID, address, selector)
	if !ok {
		return nil, false
	}
	return match.Outputs, true
}

// lookupABIFunction checks the contract cache for address for a
// function ABI entry whose computed selector matches. For a detected
// proxy, the implementation's cached ABI takes precedence over the
// proxy's own ABI (the implementation is what actually executes the
// call; the proxy's ABI is consulted only as a fallback, e.g. for its
// own admin-only functions). It never triggers a fetch: the ABI must
// already be cached from a prior FetchContract.
func (s *Service) lookupABIFunction(ctx context.Context, chainID, address, selector string) (abiMatch, bool) {
	key := chainID + ":" + address
	rec, ok, _ := s.contractCache.Get(ctx, key)
	if !ok {
		return abiMatch{}, false
	}
	if rec.Proxy && rec.Implementation != "" {
		implKey := chainID + ":" + rec.Implementation
		if implRec, ok, _ := s.contractCache.Get(ctx, implKey); ok {
			if match, found := matchSelectorInABI(implRec.ABI, selector); found {
				return match, true
			}
		}
	}
	if match, found := matchSelectorInABI(rec.ABI, selector); found {
		return match, true
	}
	return abiMatch{}, false
}

// checkStaticCalldataSize rejects calldata too short to hold the
// static (head) portion of inputs' encoding, after the 4-byte
// selector. Dynamic-type inputs still reserve a 32-byte offset word in
// the head, so their StaticSize is well-defined even though their
// tail length isn't known without decoding.
func checkStaticCalldataSize(inputs []abicodec.Argument, normalizedCalldata string) error {
	want := 0
	for _, arg := range inputs {
		size, err := staticHeadSize(arg.Type)
		if err != nil {
			return nil // a type our codec can't size is not ours to reject
		}
		want += size
	}
	got := (len(normalizedCalldata) - 10) / 2
	if got < want {
		return fmt.Errorf("calldata is %d bytes short of the %d static input bytes the matched function requires (plus the 4-byte selector)", want-got, want)
	}
	return nil
}

// staticHeadSize returns the head-word size a type occupies in
// calldata, 32 bytes for any dynamic type (its offset pointer) since
// abicodec.Type.StaticSize errors on dynamic types.
func staticHeadSize(t abicodec.Type) (int, error) {
	if t.IsDynamic() {
		return 32, nil
	}
	return t.StaticSize()
}

// abiParam mirrors one entry of a standard Solidity ABI JSON
// input/output parameter.
type abiParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type abiEntry struct {
	Type    string     `json:"type"`
	Name    string     `json:"name"`
	Inputs  []abiParam `json:"inputs"`
	Outputs []abiParam `json:"outputs"`
}

func matchSelectorInABI(abiJSON, selector string) (abiMatch, bool) {
	if abiJSON == "" {
		return abiMatch{}, false
	}
	// selector carries a 0x prefix (as taken from calldata); Selector
	// does not, so strip it before comparing.
	selector = strings.TrimPrefix(strings.ToLower(selector), "0x")

	var entries []abiEntry
	if err := json.Unmarshal([]byte(abiJSON), &entries); err != nil {
		return abiMatch{}, false
	}
	for _, e := range entries {
		if e.Type != "" && e.Type != "function" {
			continue
		}
		inputs, err := toArguments(e.Inputs)
		if err != nil {
			continue
		}
		fn := abicodec.Function{Name: e.Name, Inputs: inputs}
		if abicodec.Selector(fn.Signature()) != selector {
			continue
		}
		outputs, err := toArguments(e.Outputs)
		if err != nil {
			return abiMatch{}, false
		}
		return abiMatch{Inputs: inputs, Outputs: outputs}, true
	}
	return abiMatch{}, false
}

func toArguments(params []abiParam) ([]abicodec.Argument, error) {
	args := make([]abicodec.Argument, len(params))
	for i, p := range params {
		typ, err := abicodec.ParseType(p.Type)
		if err != nil {
			return nil, err
		}
		args[i] = abicodec.Argument{Name: p.Name, Type: typ}
	}
	return args, nil
}

func (s *Service) ethCall(ctx context.Context, chainID, address, data, tag string) (string, error) {
	if rpc, ok := s.rpcFor(chainID); ok {
		result, err := rpc.Call(ctx, "eth_call", map[string]any{"to": address, "data": data}, tag)
		if err != nil {
			return "", err
		}
		str, _ := result.(string)
		return str, nil
	}
	result, err := s.explorer.EthCall(ctx, chainID, address, data, tag)
	if err != nil {
		return "", err
	}
	str, _ := result.(string)
	return str, nil
}

func decodeOutputs(outputs []abicodec.Argument, resultHex string, decimals DecimalsHint) ([]DecodedOutput, error) {
	raw, err := hexutil.Decode(resultHex)
	if err != nil {
		return nil, err
	}
	values, err := abicodec.DecodeArgs(outputs, raw)
	if err != nil {
		return nil, err
	}
	out := make([]DecodedOutput, len(outputs))
	for i, o := range outputs {
		d := DecodedOutput{Name: o.Name, Type: o.Type.String(), Value: values[i]}
		if isNumericType(o.Type.Base) {
			if scale, ok := decimals.forOutput(o.Name, i); ok {
				if str := stringifyNumeric(values[i]); str != "" {
					if conv, err := convert.Convert(str, convert.UnitDec, convert.UnitHuman, scale); err == nil {
						d.Scaled = conv.Value
					}
				}
			}
		}
		out[i] = d
	}
	return out, nil
}

func isNumericType(base string) bool {
	return strings.HasPrefix(base, "uint") || strings.HasPrefix(base, "int")
}

func stringifyNumeric(v any) string {
	switch n := v.(type) {
	case fmt.Stringer:
		return n.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// EncodeFunctionData is a pure ABI codec call: it parses and encodes a
// function signature with the given positional arguments and returns
// the selector and full calldata.
func (s *Service) EncodeFunctionData(function string, args []any) (selector, data string, err error) {
	fn, err := abicodec.ParseSignature(function)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	encoded, err := abicodec.EncodeFunctionCall(fn, args)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	return "0x" + abicodec.Selector(fn.Signature()), hexutil.Encode(encoded), nil
}
