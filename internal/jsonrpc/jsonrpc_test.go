package jsonrpc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evmscope/evmscope/internal/apperr"
	"github.com/evmscope/evmscope/internal/jsonrpc"
)

func TestCallReturnsResult(t *testing.T) {
	var seenID uint64
	transport := func(ctx context.Context, url string, body any) (any, error) {
		req := body.(jsonrpc.Request)
		seenID = req.ID
		return map[string]any{"jsonrpc": "2.0", "id": float64(req.ID), "result": "0x10"}, nil
	}
	c := jsonrpc.New("http://node.local", transport)

	result, err := c.Call(context.Background(), "eth_blockNumber")
	require.NoError(t, err)
	assert.Equal(t, "0x10", result)
	assert.EqualValues(t, 1, seenID)
}

func TestCallIncrementsIDAcrossCalls(t *testing.T) {
	var ids []uint64
	transport := func(ctx context.Context, url string, body any) (any, error) {
		req := body.(jsonrpc.Request)
		ids = append(ids, req.ID)
		return map[string]any{"result": "0x1"}, nil
	}
	c := jsonrpc.New("http://node.local", transport)

	_, _ = c.Call(context.Background(), "eth_chainId")
	_, _ = c.Call(context.Background(), "eth_chainId")
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
}

func TestCallSurfacesRPCError(t *testing.T) {
	transport := func(ctx context.Context, url string, body any) (any, error) {
		return map[string]any{
			"error": map[string]any{"code": float64(-32000), "message": "execution reverted"},
		}, nil
	}
	c := jsonrpc.New("http://node.local", transport)

	_, err := c.Call(context.Background(), "eth_call")
	assert.ErrorIs(t, err, apperr.ErrUpstream)
}
