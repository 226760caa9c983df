// Package creation implements the RPC-based contract-creation
// fallback: a binary search over historical eth_getCode to find the
// deployment block, followed by a transaction scan to recover the
// creator and deployment transaction hash.
package creation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/evmscope/evmscope/internal/apperr"
	"github.com/evmscope/evmscope/internal/hexutil"
)

// Record is the reconstructed creation provenance for one contract.
type Record struct {
	Address     string
	ChainID     string
	Creator     *string
	TxHash      *string
	BlockNumber string
	Timestamp   *string
	Source      string // always "rpc" from this package
	Complete    bool
}

// RPC is the narrow set of calls this package needs, satisfied by
// jsonrpc.Client.Call.
type RPC interface {
	Call(ctx context.Context, method string, params ...any) (any, error)
}

// Locate runs the full fallback algorithm for address on chainID.
func Locate(ctx context.Context, chainID, address string, rpc RPC) (Record, error) {
	code, err := rpc.Call(ctx, "eth_getCode", address, "latest")
	if err != nil {
		return Record{}, fmt.Errorf("%w: checking current code: %v", apperr.ErrUpstream, err)
	}
	if isEmptyCode(code) {
		return Record{}, fmt.Errorf("%w: address %s has no code at latest block", apperr.ErrNotFound, address)
	}

	hiHex, err := rpc.Call(ctx, "eth_blockNumber")
	if err != nil {
		return Record{}, fmt.Errorf("%w: fetching block number: %v", apperr.ErrUpstream, err)
	}
	hiBig, err := hexutil.ToUint(asString(hiHex))
	if err != nil {
		return Record{}, fmt.Errorf("%w: parsing block number: %v", apperr.ErrUpstream, err)
	}
	hi := hiBig.Uint64()

	deployBlock, err := binarySearchDeployBlock(ctx, address, hi, rpc)
	if err != nil {
		return Record{}, archiveNodeHint(err)
	}

	blockTag := "0x" + strconv.FormatUint(deployBlock, 16)
	blockPayload, err := rpc.Call(ctx, "eth_getBlockByNumber", blockTag, true)
	if err != nil {
		return Record{}, fmt.Errorf("%w: fetching deployment block: %v", apperr.ErrUpstream, err)
	}
	block, ok := blockPayload.(map[string]any)
	if !ok {
		return Record{}, fmt.Errorf("%w: deployment block payload is not an object", apperr.ErrUpstream)
	}

	rec := Record{
		Address:     address,
		ChainID:     chainID,
		BlockNumber: strconv.FormatUint(deployBlock, 10),
		Source:      "rpc",
	}
	if ts, ok := block["timestamp"].(string); ok {
		if seconds, err := hexutil.ToUint(ts); err == nil {
			decimal := seconds.String()
			rec.Timestamp = &decimal
		}
	}

	creator, txHash, found := scanForDeployment(ctx, block, address, rpc)
	if found {
		rec.Creator = &creator
		rec.TxHash = &txHash
	}
	rec.Complete = rec.Creator != nil && rec.TxHash != nil
	return rec, nil
}

func binarySearchDeployBlock(ctx context.Context, address string, hi uint64, rpc RPC) (uint64, error) {
	lo := uint64(0)
	for lo < hi {
		mid := lo + (hi-lo)/2
		tag := "0x" + strconv.FormatUint(mid, 16)
		code, err := rpc.Call(ctx, "eth_getCode", address, tag)
		if err != nil {
			return 0, fmt.Errorf("eth_getCode at block %d: %w", mid, err)
		}
		if isEmptyCode(code) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return hi, nil
}

func scanForDeployment(ctx context.Context, block map[string]any, address string, rpc RPC) (creator, txHash string, found bool) {
	txs, _ := block["transactions"].([]any)
	target := strings.ToLower(address)
	for _, raw := range txs {
		tx, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if to, ok := tx["to"]; ok && to != nil {
			continue
		}
		hash, _ := tx["hash"].(string)
		if hash == "" {
			continue
		}
		receiptPayload, err := rpc.Call(ctx, "eth_getTransactionReceipt", hash)
		if err != nil {
			continue
		}
		receipt, ok := receiptPayload.(map[string]any)
		if !ok {
			continue
		}
		contractAddress, _ := receipt["contractAddress"].(string)
		if contractAddress == "" || !strings.EqualFold(contractAddress, target) {
			continue
		}
		from, _ := tx["from"].(string)
		return strings.ToLower(from), hash, true
	}
	return "", "", false
}

func isEmptyCode(v any) bool {
	s := asString(v)
	return s == "" || s == "0x" || s == "0x0"
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func archiveNodeHint(cause error) error {
	return fmt.Errorf("%w: historical eth_getCode lookup failed, this node may need archive state: %w", apperr.ErrDegraded, cause)
}
