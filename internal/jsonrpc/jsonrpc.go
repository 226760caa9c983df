// Package jsonrpc implements a minimal JSON-RPC 2.0 client: an
// id-sequenced request envelope and {result|error} response decoding
// over a pluggable Transport.
package jsonrpc

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/evmscope/evmscope/internal/apperr"
)

// Transport sends a JSON-RPC POST body to url and returns the decoded
// JSON response. Satisfied by httpengine.Client.Post.
type Transport func(ctx context.Context, url string, body any) (any, error)

// Request is the {jsonrpc, id, method, params} envelope.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// Client issues sequential JSON-RPC calls against a single node URL.
type Client struct {
	url       string
	transport Transport
	nextID    uint64
}

// New builds a Client bound to url, sending requests via transport.
func New(url string, transport Transport) *Client {
	return &Client{url: url, transport: transport}
}

// Call sends method(params...) and returns the decoded `result` field.
func (c *Client) Call(ctx context.Context, method string, params ...any) (any, error) {
	if params == nil {
		params = []any{}
	}
	req := Request{
		JSONRPC: "2.0",
		ID:      atomic.AddUint64(&c.nextID, 1),
		Method:  method,
		Params:  params,
	}

	payload, err := c.transport(ctx, c.url, req)
	if err != nil {
		return nil, err
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: rpc response is not an object, got %T", apperr.ErrUpstream, payload)
	}

	if errObj, ok := obj["error"].(map[string]any); ok {
		return nil, fmt.Errorf("%w: %s", apperr.ErrUpstream, formatRPCError(errObj))
	}

	result, ok := obj["result"]
	if !ok {
		return nil, fmt.Errorf("%w: rpc response for %q is missing result", apperr.ErrUpstream, method)
	}
	return result, nil
}

func formatRPCError(errObj map[string]any) string {
	parts := make([]string, 0, 3)
	for _, key := range []string{"code", "message", "data"} {
		if v, ok := errObj[key]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", key, v))
		}
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}
