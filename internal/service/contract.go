package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/evmscope/evmscope/internal/apperr"
	"github.com/evmscope/evmscope/internal/creation"
	"github.com/evmscope/evmscope/internal/hexutil"
	"github.com/evmscope/evmscope/internal/proxy"
)

const defaultInlineLimit = 20_000

// FetchContract returns the verified contract metadata for address on
// network, caching on success. When the combined source length
// exceeds inlineLimit (0 selects the default of 20,000) and
// forceInline is false, file contents are omitted in favor of
// {filename,length,sha256} summaries.
func (s *Service) FetchContract(ctx context.Context, address, network string, inlineLimit int, forceInline bool) (ContractRecord, error) {
	normalizedAddress, label, chainID, err := s.prepare(ctx, address, network)
	if err != nil {
		return ContractRecord{}, err
	}
	if inlineLimit <= 0 {
		inlineLimit = defaultInlineLimit
	}

	key := chainID + ":" + normalizedAddress
	rec, err := s.contractCache.GetOrFill(ctx, key, func(ctx context.Context) (ContractRecord, error) {
		entries, err := s.explorer.GetSourceCode(ctx, chainID, normalizedAddress)
		if err != nil {
			return ContractRecord{}, err
		}
		if len(entries) == 0 {
			return ContractRecord{}, fmt.Errorf("%w: no verified source found for %s", apperr.ErrNotFound, normalizedAddress)
		}
		entry, _ := entries[0].(map[string]any)
		return s.parseContractEntry(normalizedAddress, label, chainID, entry)
	})
	if err != nil {
		return ContractRecord{}, err
	}

	return applyInlinePolicy(rec, inlineLimit, forceInline), nil
}

func (s *Service) parseContractEntry(address, label, chainID string, entry map[string]any) (ContractRecord, error) {
	rec := ContractRecord{Address: address, ChainID: chainID, Network: label}

	sourceCode, _ := entry["SourceCode"].(string)
	rec.ABI, _ = entry["ABI"].(string)
	rec.Compiler, _ = entry["CompilerVersion"].(string)
	rec.Verified = sourceCode != "" && rec.ABI != "" && rec.ABI != "Contract source code not verified"

	implementation, _ := entry["Implementation"].(string)
	proxyFlag := false
	if p, ok := entry["Proxy"].(string); ok {
		proxyFlag = p == "1"
	}
	rec.Implementation = strings.ToLower(implementation)
	rec.Proxy = proxyFlag && implementation != ""
	if rec.Proxy {
		rec.ProxyType = "etherscan"
	}

	rec.SourceFiles = parseSourceFiles(sourceCode)
	for _, f := range rec.SourceFiles {
		rec.TotalLength += f.Length
	}
	return rec, nil
}

// parseSourceFiles handles both the single-file convention (SourceCode
// is the file body directly) and Etherscan's multi-file convention
// (SourceCode is a JSON object, sometimes double-brace-wrapped, whose
// "sources" map holds {filename: {content}}).
func parseSourceFiles(sourceCode string) []SourceFile {
	if sourceCode == "" {
		return nil
	}
	trimmed := strings.TrimSpace(sourceCode)
	trimmed = strings.TrimPrefix(trimmed, "{")
	trimmed = strings.TrimSuffix(trimmed, "}")
	candidate := "{" + trimmed + "}"

	var multi struct {
		Sources map[string]struct {
			Content string `json:"content"`
		} `json:"sources"`
	}
	if err := json.Unmarshal([]byte(candidate), &multi); err == nil && len(multi.Sources) > 0 {
		files := make([]SourceFile, 0, len(multi.Sources))
		for name, src := range multi.Sources {
			files = append(files, newSourceFile(name, src.Content))
		}
		return files
	}
	return []SourceFile{newSourceFile("Contract.sol", sourceCode)}
}

func newSourceFile(name, content string) SourceFile {
	sum := sha256.Sum256([]byte(content))
	return SourceFile{
		Filename: name,
		Content:  content,
		Length:   len(content),
		SHA256:   hex.EncodeToString(sum[:]),
		Inline:   true,
	}
}

func applyInlinePolicy(rec ContractRecord, inlineLimit int, forceInline bool) ContractRecord {
	if forceInline || rec.TotalLength <= inlineLimit {
		return rec
	}
	out := rec
	out.SourceOmitted = true
	out.OmittedReason = fmt.Sprintf("combined source length %d exceeds inline limit %d; pass forceInline or fetch files individually via getSourceFile", rec.TotalLength, inlineLimit)
	out.SourceFiles = make([]SourceFile, len(rec.SourceFiles))
	for i, f := range rec.SourceFiles {
		out.SourceFiles[i] = SourceFile{Filename: f.Filename, Length: f.Length, SHA256: f.SHA256, Inline: false}
	}
	return out
}

// GetSourceFile returns a byte-offset window of one source file's
// content. filename must match exactly; offset past the end of the
// content is an error; the returned window is truncated when it ends
// before the file's total length.
func (s *Service) GetSourceFile(ctx context.Context, address, network, filename string, offset, length int) (content string, truncated bool, err error) {
	rec, err := s.FetchContract(ctx, address, network, 0, true)
	if err != nil {
		return "", false, err
	}
	for _, f := range rec.SourceFiles {
		if f.Filename != filename {
			continue
		}
		total := len(f.Content)
		if offset > total {
			return "", false, fmt.Errorf("%w: offset %d exceeds file length %d", apperr.ErrInvalidInput, offset, total)
		}
		end := offset + length
		if length <= 0 || end > total {
			end = total
		}
		return f.Content[offset:end], end < total, nil
	}
	return "", false, fmt.Errorf("%w: file %q not found in contract source", apperr.ErrNotFound, filename)
}

// GetContractCreation resolves contract-creation provenance, trying
// the explorer first and falling back to the RPC binary search when a
// per-chain RPC URL is configured.
func (s *Service) GetContractCreation(ctx context.Context, address, network string) (CreationRecord, error) {
	normalizedAddress, label, chainID, err := s.prepare(ctx, address, network)
	if err != nil {
		return CreationRecord{}, err
	}

	key := chainID + ":" + normalizedAddress
	return s.creationCache.GetOrFill(ctx, key, func(ctx context.Context) (CreationRecord, error) {
		entries, explorerErr := s.explorer.GetContractCreation(ctx, chainID, normalizedAddress)
		if explorerErr == nil && len(entries) > 0 {
			if entry, ok := entries[0].(map[string]any); ok {
				return mapCreationEntry(normalizedAddress, label, chainID, entry), nil
			}
		}

		rpc, ok := s.rpcFor(chainID)
		if !ok {
			if explorerErr != nil {
				return CreationRecord{}, explorerErr
			}
			return CreationRecord{}, fmt.Errorf("%w: explorer has no creation record for %s and no RPC URL is configured", apperr.ErrNotFound, normalizedAddress)
		}

		rec, rpcErr := creation.Locate(ctx, chainID, normalizedAddress, rpc)
		if rpcErr != nil {
			return CreationRecord{}, rpcErr
		}
		out := CreationRecord{
			Address:     rec.Address,
			ChainID:     rec.ChainID,
			Network:     label,
			BlockNumber: rec.BlockNumber,
			Source:      rec.Source,
			Complete:    rec.Complete,
		}
		if rec.Creator != nil {
			out.Creator = *rec.Creator
		}
		if rec.TxHash != nil {
			out.TxHash = *rec.TxHash
		}
		if rec.Timestamp != nil {
			out.Timestamp = *rec.Timestamp
		}
		return out, nil
	})
}

func mapCreationEntry(address, label, chainID string, entry map[string]any) CreationRecord {
	get := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := entry[k].(string); ok && v != "" {
				return v
			}
		}
		return ""
	}
	creator := strings.ToLower(get("contractCreator", "ContractCreator"))
	txHash := get("txHash", "TxHash")
	return CreationRecord{
		Address:     address,
		ChainID:     chainID,
		Network:     label,
		Creator:     creator,
		TxHash:      txHash,
		BlockNumber: get("blockNumber", "BlockNumber"),
		Timestamp:   get("timeStamp", "timestamp"),
		Source:      "etherscan",
		Complete:    creator != "" && txHash != "",
	}
}

// DetectProxy reads the EIP-1967 storage slots for address, preferring
// RPC when configured and otherwise the explorer's eth_getStorageAt,
// then merges in any proxy/implementation fields already cached from a
// prior FetchContract call.
func (s *Service) DetectProxy(ctx context.Context, address, network string) (ProxyRecord, error) {
	normalizedAddress, label, chainID, err := s.prepare(ctx, address, network)
	if err != nil {
		return ProxyRecord{}, err
	}

	key := chainID + ":" + normalizedAddress
	return s.proxyCache.GetOrFill(ctx, key, func(ctx context.Context) (ProxyRecord, error) {
		reader := func(ctx context.Context, addr, slot, tag string) (string, error) {
			return s.readStorageWord(ctx, chainID, addr, slot, tag)
		}
		rec, err := proxy.Detect(ctx, chainID, normalizedAddress, reader)
		if err != nil {
			return ProxyRecord{}, err
		}

		if cached, ok, _ := s.contractCache.Get(ctx, key); ok && cached.Proxy {
			rec = proxy.MergeExplorerFields(rec, cached.Proxy, cached.Implementation)
		}

		out := ProxyRecord{
			Address:  rec.Address,
			ChainID:  rec.ChainID,
			Network:  label,
			IsProxy:  rec.IsProxy,
			Evidence: rec.Evidence,
		}
		if rec.Implementation != nil {
			out.Implementation = *rec.Implementation
		}
		if rec.Admin != nil {
			out.Admin = *rec.Admin
		}
		if rec.ProxyType != nil {
			out.ProxyType = *rec.ProxyType
		}
		return out, nil
	})
}

// readStorageWord prefers RPC's eth_getStorageAt, falling back to the
// explorer's proxy-module equivalent.
func (s *Service) readStorageWord(ctx context.Context, chainID, address, slot, tag string) (string, error) {
	if rpc, ok := s.rpcFor(chainID); ok {
		result, err := rpc.Call(ctx, "eth_getStorageAt", address, slot, tag)
		if err != nil {
			return "", err
		}
		word, _ := result.(string)
		normalized, err := hexutil.Normalize(word, 64)
		if err != nil {
			return "", fmt.Errorf("%w: storage word is not valid hex", apperr.ErrUpstream)
		}
		return normalized, nil
	}

	result, err := s.explorer.EthGetStorageAt(ctx, chainID, address, slot, tag)
	if err != nil {
		return "", err
	}
	word, _ := result.(string)
	return hexutil.Normalize(word, 64)
}
