package chains_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evmscope/evmscope/internal/apperr"
	"github.com/evmscope/evmscope/internal/chains"
)

func sampleChainlist() []any {
	return []any{
		map[string]any{"chainid": "1", "chainname": "Ethereum Mainnet", "blockexplorer": "https://etherscan.io", "apiurl": "https://api.etherscan.io", "status": float64(1), "comment": ""},
		map[string]any{"chainid": "42161", "chainname": "Arbitrum One", "blockexplorer": "https://arbiscan.io", "apiurl": "https://api.arbiscan.io", "status": float64(1), "comment": ""},
		map[string]any{"chainid": "42170", "chainname": "Arbitrum Nova", "blockexplorer": "https://nova.arbiscan.io", "apiurl": "https://api-nova.arbiscan.io", "status": float64(1), "comment": ""},
	}
}

func newTestRegistry(t *testing.T) *chains.Registry {
	t.Helper()
	fetch := func(ctx context.Context) ([]any, error) {
		return sampleChainlist(), nil
	}
	return chains.New(fetch, time.Hour, nil)
}

func TestResolveByAlias(t *testing.T) {
	r := newTestRegistry(t)
	label, chainID, meta, err := r.Resolve(context.Background(), "arb")
	require.NoError(t, err)
	assert.Equal(t, "arbitrum-one", label)
	assert.Equal(t, "42161", chainID)
	assert.Equal(t, "exact", meta.MatchedBy)
}

func TestResolveNumericBypassesRegistry(t *testing.T) {
	r := newTestRegistry(t)
	label, chainID, meta, err := r.Resolve(context.Background(), "42161")
	require.NoError(t, err)
	assert.Equal(t, "42161", label)
	assert.Equal(t, "42161", chainID)
	assert.Equal(t, "chainid", meta.MatchedBy)
}

func TestResolveFuzzyPrefix(t *testing.T) {
	r := newTestRegistry(t)
	label, chainID, meta, err := r.Resolve(context.Background(), "arbitrum nov")
	require.NoError(t, err)
	assert.Equal(t, "arbitrum-nova", label)
	assert.Equal(t, "42170", chainID)
	assert.Equal(t, "fuzzy", meta.MatchedBy)
}

func TestResolveUnknownNetwork(t *testing.T) {
	r := newTestRegistry(t)
	_, _, _, err := r.Resolve(context.Background(), "totally-not-a-chain")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestListChainsOrderedByChainID(t *testing.T) {
	r := newTestRegistry(t)
	list, err := r.ListChains(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "1", list[0].ChainID)
	assert.Equal(t, "42161", list[1].ChainID)
	assert.Equal(t, "42170", list[2].ChainID)
}

func TestStaticFallbackChainID(t *testing.T) {
	id, ok := chains.StaticFallbackChainID("mainnet")
	require.True(t, ok)
	assert.Equal(t, "1", id)

	id, ok = chains.StaticFallbackChainID("bsc")
	require.True(t, ok)
	assert.Equal(t, "56", id)

	_, ok = chains.StaticFallbackChainID("not-a-network")
	assert.False(t, ok)
}
