package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/evmscope/evmscope/internal/apperr"
	"github.com/evmscope/evmscope/internal/hexutil"
)

// TransactionDetail is the result of GetTransaction: the raw
// transaction envelope plus its receipt, both as decoded JSON maps.
type TransactionDetail struct {
	Hash        string
	Network     string
	ChainID     string
	Transaction map[string]any
	Receipt     map[string]any
}

// GetTransaction fetches a transaction and its receipt by hash,
// preferring direct RPC over the explorer's proxy actions.
func (s *Service) GetTransaction(ctx context.Context, hash, network string) (TransactionDetail, error) {
	normalizedHash, err := hexutil.NormalizeHash32(hash)
	if err != nil {
		return TransactionDetail{}, fmt.Errorf("%w: hash must be a 32-byte hex value", apperr.ErrInvalidInput)
	}
	label, chainID, err := s.resolveNetwork(ctx, network)
	if err != nil {
		return TransactionDetail{}, err
	}

	tx, err := s.fetchTransactionByHash(ctx, chainID, normalizedHash)
	if err != nil {
		return TransactionDetail{}, err
	}
	receipt, err := s.fetchTransactionReceipt(ctx, chainID, normalizedHash)
	if err != nil {
		return TransactionDetail{}, err
	}

	return TransactionDetail{Hash: normalizedHash, Network: label, ChainID: chainID, Transaction: tx, Receipt: receipt}, nil
}

func (s *Service) fetchTransactionByHash(ctx context.Context, chainID, hash string) (map[string]any, error) {
	if rpc, ok := s.rpcFor(chainID); ok {
		result, err := rpc.Call(ctx, "eth_getTransactionByHash", hash)
		if err != nil {
			return nil, err
		}
		return asMap(result), nil
	}
	result, err := s.explorer.EthGetTransactionByHash(ctx, chainID, hash)
	if err != nil {
		return nil, err
	}
	return asMap(result), nil
}

func (s *Service) fetchTransactionReceipt(ctx context.Context, chainID, hash string) (map[string]any, error) {
	if rpc, ok := s.rpcFor(chainID); ok {
		result, err := rpc.Call(ctx, "eth_getTransactionReceipt", hash)
		if err != nil {
			return nil, err
		}
		return asMap(result), nil
	}
	result, err := s.explorer.EthGetTransactionReceipt(ctx, chainID, hash)
	if err != nil {
		return nil, err
	}
	return asMap(result), nil
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// BlockDetail is the result of GetBlockByNumber.
type BlockDetail struct {
	Block   string
	Network string
	ChainID string
	Data    map[string]any
}

// GetBlockByNumber fetches a block by its hex or decimal number (or a
// tag like "latest"). When txHashesOnly is true, any full transaction
// objects the upstream returned are collapsed to their hashes.
func (s *Service) GetBlockByNumber(ctx context.Context, block, network string, fullTransactions, txHashesOnly bool) (BlockDetail, error) {
	label, chainID, err := s.resolveNetwork(ctx, network)
	if err != nil {
		return BlockDetail{}, err
	}
	tag, err := normalizeBlockNumber(block)
	if err != nil {
		return BlockDetail{}, err
	}

	var data map[string]any
	if rpc, ok := s.rpcFor(chainID); ok {
		result, callErr := rpc.Call(ctx, "eth_getBlockByNumber", tag, fullTransactions)
		if callErr != nil {
			return BlockDetail{}, callErr
		}
		data = asMap(result)
	} else {
		result, callErr := s.explorer.EthGetBlockByNumber(ctx, chainID, tag, fullTransactions)
		if callErr != nil {
			return BlockDetail{}, callErr
		}
		data = asMap(result)
	}
	if data == nil {
		return BlockDetail{}, fmt.Errorf("%w: no block found for %s", apperr.ErrNotFound, block)
	}
	if txHashesOnly {
		data = collapseTransactionsToHashes(data)
	}
	return BlockDetail{Block: tag, Network: label, ChainID: chainID, Data: data}, nil
}

// normalizeBlockNumber accepts "latest"/"earliest"/"pending" verbatim,
// a 0x-prefixed hex number, or a plain decimal string (converted to
// hex, as the RPC and proxy actions both require).
func normalizeBlockNumber(block string) (string, error) {
	switch block {
	case "", "latest":
		return "latest", nil
	case "earliest", "pending":
		return block, nil
	}
	if strings.HasPrefix(strings.ToLower(block), "0x") {
		return hexutil.Normalize(block, 0)
	}
	n, ok := new(big.Int).SetString(block, 10)
	if !ok || n.Sign() < 0 {
		return "", fmt.Errorf("%w: block must be latest/earliest/pending, a hex number, or a decimal number", apperr.ErrInvalidInput)
	}
	return hexutil.FromUint(n), nil
}

func collapseTransactionsToHashes(data map[string]any) map[string]any {
	txs, ok := data["transactions"].([]any)
	if !ok {
		return data
	}
	hashes := make([]any, len(txs))
	changed := false
	for i, raw := range txs {
		if m, ok := raw.(map[string]any); ok {
			changed = true
			hashes[i] = stringField(m, "hash")
			continue
		}
		hashes[i] = raw
	}
	if !changed {
		return data
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	out["transactions"] = hashes
	return out
}

// BlockTime is the result of GetBlockTime.
type BlockTime struct {
	Block        string
	Network      string
	ChainID      string
	TimestampHex string
	Timestamp    int64
	TimestampISO string
}

// GetBlockTime derives a block's timestamp in hex, Unix-seconds, and
// UTC ISO-8601 form.
func (s *Service) GetBlockTime(ctx context.Context, block, network string) (BlockTime, error) {
	detail, err := s.GetBlockByNumber(ctx, block, network, false, true)
	if err != nil {
		return BlockTime{}, err
	}
	tsHex := stringField(detail.Data, "timestamp")
	if tsHex == "" {
		return BlockTime{}, fmt.Errorf("%w: block %s has no timestamp field", apperr.ErrUpstream, block)
	}
	ts, err := hexutil.ToUint(tsHex)
	if err != nil {
		return BlockTime{}, fmt.Errorf("%w: block timestamp is not valid hex", apperr.ErrUpstream)
	}
	seconds := ts.Int64()
	iso := time.Unix(seconds, 0).UTC().Format("2006-01-02T15:04:05Z")

	return BlockTime{
		Block:        detail.Block,
		Network:      detail.Network,
		ChainID:      detail.ChainID,
		TimestampHex: tsHex,
		Timestamp:    seconds,
		TimestampISO: iso,
	}, nil
}
