// Package proxy implements EIP-1967 proxy detection: reading the two
// fixed storage slots, deriving an address from a non-zero word, and
// merging that evidence with whatever the explorer already reported
// about the contract's proxy/implementation fields, grounded on
// detect_proxy/_normalize_proxy_fields in service.py.
package proxy

import (
	"context"
	"fmt"
	"strings"

	"github.com/evmscope/evmscope/internal/hexutil"
)

// EIP-1967 storage slots, fixed by the standard; must be used verbatim.
const (
	ImplementationSlot = "0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc"
	AdminSlot          = "0xb53127684a568b3173ae13b9f8a6016e243e63b6e8ee1178d6a717850b5d6103"
)

// StorageReader reads a single storage slot word for a contract at
// the given block tag. Satisfied by the service's RPC or explorer
// eth_getStorageAt wrapper.
type StorageReader func(ctx context.Context, address, slot, blockTag string) (string, error)

// Record is the detected proxy structure for one contract address.
type Record struct {
	Address        string
	ChainID        string
	IsProxy        bool
	Implementation *string
	Admin          *string
	ProxyType      *string // "etherscan", "eip1967", or nil
	Evidence       []string
}

// Detect reads both EIP-1967 slots for address and builds a Record.
// Slot-read failures are returned as-is (the caller decides whether a
// read failure should degrade to "not a proxy" or propagate).
func Detect(ctx context.Context, chainID, address string, read StorageReader) (Record, error) {
	rec := Record{Address: address, ChainID: chainID}

	implWord, err := read(ctx, address, ImplementationSlot, "latest")
	if err != nil {
		return Record{}, fmt.Errorf("reading implementation slot: %w", err)
	}
	adminWord, err := read(ctx, address, AdminSlot, "latest")
	if err != nil {
		return Record{}, fmt.Errorf("reading admin slot: %w", err)
	}

	if addr, ok := addressFromWord(implWord); ok {
		rec.Implementation = &addr
		rec.Evidence = append(rec.Evidence, fmt.Sprintf("EIP-1967 implementation slot %s = %s", ImplementationSlot, implWord))
	}
	if addr, ok := addressFromWord(adminWord); ok {
		rec.Admin = &addr
		rec.Evidence = append(rec.Evidence, fmt.Sprintf("EIP-1967 admin slot %s = %s", AdminSlot, adminWord))
	}

	rec.IsProxy = rec.Implementation != nil || rec.Admin != nil
	if rec.IsProxy {
		proxyType := "eip1967"
		rec.ProxyType = &proxyType
	}
	return rec, nil
}

// addressFromWord takes the low 20 bytes of a 32-byte storage word and
// reports whether the word was non-zero (spec §8: "for a non-zero
// word w, addressFromWord(w) == '0x' + w[2:][-40:]; for the zero
// word, the result is null").
func addressFromWord(word string) (string, bool) {
	norm, err := hexutil.Normalize(word, 64)
	if err != nil {
		return "", false
	}
	body := norm[2:]
	if strings.Trim(body, "0") == "" {
		return "", false
	}
	return "0x" + body[len(body)-40:], true
}

// MergeExplorerFields folds explorer-reported proxy/implementation
// fields into rec when the explorer has evidence the storage reads
// didn't produce on their own (e.g. the explorer's own proxy
// verification metadata), without overwriting storage-derived values.
func MergeExplorerFields(rec Record, explorerIsProxy bool, explorerImplementation string) Record {
	if explorerIsProxy && rec.Implementation == nil && explorerImplementation != "" {
		impl := strings.ToLower(explorerImplementation)
		rec.Implementation = &impl
		rec.Evidence = append(rec.Evidence, fmt.Sprintf("Etherscan-reported implementation %s", impl))
	}
	if explorerIsProxy {
		rec.IsProxy = true
		if rec.ProxyType == nil {
			proxyType := "etherscan"
			rec.ProxyType = &proxyType
		}
	}
	return rec
}
