package httpengine

import (
	"fmt"
	"strings"

	"github.com/evmscope/evmscope/internal/apperr"
)

// ExtractEtherscanList implements the "Etherscan list" envelope rule
// (spec §4.2): status=="1" returns result; status=="0" with a message
// starting "no" returns an empty list (e.g. "No transactions found");
// any other status=="0" raises with the upstream detail.
func ExtractEtherscanList(payload any) (any, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an object envelope, got %T", apperr.ErrUpstream, payload)
	}
	status, _ := stringField(obj, "status")
	message, _ := stringField(obj, "message")
	result := obj["result"]

	switch status {
	case "1":
		return result, nil
	case "0":
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(message)), "no") {
			return []any{}, nil
		}
		return nil, fmt.Errorf("%w: Etherscan error: %s", apperr.ErrUpstream, detail(message, result))
	default:
		return nil, fmt.Errorf("%w: Etherscan error: %s", apperr.ErrUpstream, detail(message, result))
	}
}

// ExtractProxyResult implements the "Proxy result" envelope rule: a
// JSON-RPC-style error.code rejects outright; a present status falls
// back to Etherscan semantics; otherwise result is returned as-is
// (string/object/list), with allowNone controlling whether a null
// result is acceptable or a NotFound failure.
func ExtractProxyResult(payload any, allowNone bool) (any, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an object envelope, got %T", apperr.ErrUpstream, payload)
	}
	if errObj, ok := obj["error"].(map[string]any); ok {
		if _, hasCode := errObj["code"]; hasCode {
			return nil, fmt.Errorf("%w: rpc error %s", apperr.ErrUpstream, rpcErrorDetail(errObj))
		}
	}
	if _, hasStatus := obj["status"]; hasStatus {
		return ExtractEtherscanList(payload)
	}
	result := obj["result"]
	if result == nil && !allowNone {
		return nil, fmt.Errorf("%w: null result", apperr.ErrNotFound)
	}
	return result, nil
}

// ExtractChainlist implements the "Chainlist" envelope rule: result
// must be a list; a non-object payload raises.
func ExtractChainlist(payload any) ([]any, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: chainlist payload is not an object, got %T", apperr.ErrUpstream, payload)
	}
	result, ok := obj["result"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: chainlist result is not a list", apperr.ErrUpstream)
	}
	return result, nil
}

func detail(message string, result any) string {
	if message != "" {
		return message
	}
	if s, ok := result.(string); ok && s != "" {
		return s
	}
	return "no detail provided"
}

func rpcErrorDetail(errObj map[string]any) string {
	var parts []string
	for _, key := range []string{"code", "message", "data"} {
		if v, ok := errObj[key]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", key, v))
		}
	}
	return strings.Join(parts, " ")
}
