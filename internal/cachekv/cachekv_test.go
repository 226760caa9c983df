package cachekv_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evmscope/evmscope/internal/cachekv"
)

func TestGetOrFillCachesResult(t *testing.T) {
	c, err := cachekv.New[string]("contracts", 16)
	require.NoError(t, err)

	var calls int32
	fill := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "source-code", nil
	}

	ctx := context.Background()
	v1, err := c.GetOrFill(ctx, "0xabc", fill)
	require.NoError(t, err)
	assert.Equal(t, "source-code", v1)

	v2, err := c.GetOrFill(ctx, "0xabc", fill)
	require.NoError(t, err)
	assert.Equal(t, "source-code", v2)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "fill should only run once for a repeated key")
}

func TestNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	contracts, err := cachekv.New[int]("contracts", 8)
	require.NoError(t, err)
	creation, err := cachekv.New[int]("creation", 8)
	require.NoError(t, err)

	require.NoError(t, contracts.Set(ctx, "0xabc", 1))
	require.NoError(t, creation.Set(ctx, "0xabc", 2))

	v, ok, err := contracts.Get(ctx, "0xabc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok, err = creation.Get(ctx, "0xabc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestDeleteAndClearAll(t *testing.T) {
	ctx := context.Background()
	c, err := cachekv.New[string]("proxy", 8)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "key", "value"))
	c.Delete(ctx, "key")
	_, ok, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "other", "value"))
	c.ClearAll(ctx)
	_, ok, err = c.Get(ctx, "other")
	require.NoError(t, err)
	assert.False(t, ok)
}
