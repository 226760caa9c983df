package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/evmscope/evmscope/internal/explorer"
)

// TransactionSummary is one transaction as listed by listTransactions.
type TransactionSummary struct {
	Hash        string
	From        string
	To          string
	Value       string
	BlockNumber string
	Timestamp   string
}

// TransactionList is the result of ListTransactions.
type TransactionList struct {
	Address      string
	Network      string
	ChainID      string
	Transactions []TransactionSummary
	Page         int
	Offset       int
	Sort         string
}

func blockRange(startBlock, endBlock int64) explorer.ListRange {
	r := explorer.DefaultListRange()
	if startBlock != 0 {
		r.StartBlock = startBlock
	}
	if endBlock != 0 {
		r.EndBlock = endBlock
	}
	return r
}

func normalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

func normalizeOffset(offset int) int {
	if offset <= 0 {
		return 100
	}
	return offset
}

func normalizeSort(sortOrder string) string {
	switch strings.ToLower(sortOrder) {
	case "desc":
		return "desc"
	default:
		return "asc"
	}
}

// ListTransactions forwards to the explorer's txlist action.
func (s *Service) ListTransactions(ctx context.Context, address, network string, startBlock, endBlock int64, page, offset int, sortOrder string) (TransactionList, error) {
	normalizedAddress, label, chainID, err := s.prepare(ctx, address, network)
	if err != nil {
		return TransactionList{}, err
	}
	r := blockRange(startBlock, endBlock)
	r.Page = normalizePage(page)
	r.Offset = normalizeOffset(offset)
	r.Sort = normalizeSort(sortOrder)

	entries, err := s.explorer.ListTransactions(ctx, chainID, normalizedAddress, r)
	if err != nil {
		return TransactionList{}, err
	}

	out := TransactionList{Address: normalizedAddress, Network: label, ChainID: chainID, Page: r.Page, Offset: r.Offset, Sort: r.Sort}
	for _, raw := range entries {
		tx, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		out.Transactions = append(out.Transactions, TransactionSummary{
			Hash:        stringField(tx, "hash"),
			From:        strings.ToLower(stringField(tx, "from")),
			To:          strings.ToLower(stringField(tx, "to")),
			Value:       stringField(tx, "value"),
			BlockNumber: stringField(tx, "blockNumber"),
			Timestamp:   stringField(tx, "timeStamp"),
		})
	}
	return out, nil
}

// TokenTransfer is one entry as listed by listTokenTransfers.
type TokenTransfer struct {
	Hash            string
	From            string
	To              string
	Value           string
	TokenID         string
	ContractAddress string
	BlockNumber     string
	Timestamp       string
}

// TokenTransferList is the result of ListTokenTransfers.
type TokenTransferList struct {
	Address   string
	Network   string
	ChainID   string
	TokenType string
	Transfers []TokenTransfer
	Page      int
	Offset    int
	Sort      string
}

// ListTokenTransfers forwards to the explorer's per-token-type action.
func (s *Service) ListTokenTransfers(ctx context.Context, address, network, tokenType string, startBlock, endBlock int64, page, offset int, sortOrder string) (TokenTransferList, error) {
	normalizedAddress, label, chainID, err := s.prepare(ctx, address, network)
	if err != nil {
		return TokenTransferList{}, err
	}
	if tokenType == "" {
		tokenType = "erc20"
	}
	tokenType = strings.ToLower(tokenType)

	r := blockRange(startBlock, endBlock)
	r.Page = normalizePage(page)
	r.Offset = normalizeOffset(offset)
	r.Sort = normalizeSort(sortOrder)

	entries, err := s.explorer.ListTokenTransfers(ctx, chainID, normalizedAddress, tokenType, r)
	if err != nil {
		return TokenTransferList{}, err
	}

	out := TokenTransferList{Address: normalizedAddress, Network: label, ChainID: chainID, TokenType: tokenType, Page: r.Page, Offset: r.Offset, Sort: r.Sort}
	for _, raw := range entries {
		tr, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		out.Transfers = append(out.Transfers, TokenTransfer{
			Hash:            stringField(tr, "hash"),
			From:            strings.ToLower(stringField(tr, "from")),
			To:              strings.ToLower(stringField(tr, "to")),
			Value:           stringField(tr, "value"),
			TokenID:         stringField(tr, "tokenID"),
			ContractAddress: strings.ToLower(stringField(tr, "contractAddress")),
			BlockNumber:     stringField(tr, "blockNumber"),
			Timestamp:       stringField(tr, "timeStamp"),
		})
	}
	return out, nil
}

// LogEntry is one entry as listed by QueryLogs.
type LogEntry struct {
	Address         string
	Topics          []string
	Data            string
	BlockNumber     string
	TransactionHash string
	LogIndex        string
}

// LogList is the result of QueryLogs.
type LogList struct {
	Address string
	Network string
	ChainID string
	Logs    []LogEntry
	Page    int
	Offset  int
}

const logsBlockChunkSize = 2000

// logsFanOutLimit bounds how many 2000-block eth_getLogs chunks run
// concurrently, so a wide block range doesn't open one RPC connection
// per chunk.
const logsFanOutLimit = 8

type logChunk struct {
	start, end int64
}

func chunkBlockRange(from, to int64) []logChunk {
	var chunks []logChunk
	for start := from; start <= to; start += logsBlockChunkSize {
		end := start + logsBlockChunkSize - 1
		if end > to {
			end = to
		}
		chunks = append(chunks, logChunk{start, end})
	}
	return chunks
}

// rpcTopicsFilter renders topics into the JSON-RPC eth_getLogs array
// form: trailing empty positions are omitted entirely, gaps before the
// last set position become explicit nulls (wildcards).
func rpcTopicsFilter(topics [4]string) []any {
	last := -1
	for i, t := range topics {
		if t != "" {
			last = i
		}
	}
	if last < 0 {
		return nil
	}
	out := make([]any, last+1)
	for i := 0; i <= last; i++ {
		if topics[i] == "" {
			out[i] = nil
		} else {
			out[i] = topics[i]
		}
	}
	return out
}

// QueryLogs forwards to direct RPC eth_getLogs, fanning its 2000-block
// chunks out concurrently (bounded by logsFanOutLimit) when an RPC URL
// is configured, else falls back to the explorer's getLogs action.
func (s *Service) QueryLogs(ctx context.Context, address, network string, topics [4]string, fromBlock, toBlock int64, page, offset int) (LogList, error) {
	normalizedAddress, label, chainID, err := s.prepare(ctx, address, network)
	if err != nil {
		return LogList{}, err
	}
	r := blockRange(fromBlock, toBlock)
	r.Page = normalizePage(page)
	r.Offset = normalizeOffset(offset)

	out := LogList{Address: normalizedAddress, Network: label, ChainID: chainID, Page: r.Page, Offset: r.Offset}

	if rpc, ok := s.rpcFor(chainID); ok {
		chunks := chunkBlockRange(r.StartBlock, r.EndBlock)
		results := make([][]LogEntry, len(chunks))
		rpcTopics := rpcTopicsFilter(topics)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(logsFanOutLimit)
		for i, c := range chunks {
			i, c := i, c
			g.Go(func() error {
				filter := map[string]any{
					"address":   normalizedAddress,
					"fromBlock": "0x" + strconv.FormatInt(c.start, 16),
					"toBlock":   "0x" + strconv.FormatInt(c.end, 16),
				}
				if rpcTopics != nil {
					filter["topics"] = rpcTopics
				}
				result, err := rpc.Call(gctx, "eth_getLogs", filter)
				if err != nil {
					return err
				}
				entries, _ := result.([]any)
				chunkLogs := make([]LogEntry, 0, len(entries))
				for _, raw := range entries {
					if log, ok := raw.(map[string]any); ok {
						chunkLogs = append(chunkLogs, mapLogEntry(log))
					}
				}
				results[i] = chunkLogs
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return LogList{}, err
		}
		for _, chunkLogs := range results {
			out.Logs = append(out.Logs, chunkLogs...)
		}
		return out, nil
	}

	entries, err := s.explorer.QueryLogs(ctx, chainID, normalizedAddress, topics, r)
	if err != nil {
		return LogList{}, err
	}
	for _, raw := range entries {
		if log, ok := raw.(map[string]any); ok {
			out.Logs = append(out.Logs, mapLogEntry(log))
		}
	}
	return out, nil
}

func mapLogEntry(log map[string]any) LogEntry {
	var topics []string
	if raw, ok := log["topics"].([]any); ok {
		for _, t := range raw {
			if s, ok := t.(string); ok {
				topics = append(topics, s)
			}
		}
	}
	return LogEntry{
		Address:         strings.ToLower(stringField(log, "address")),
		Topics:          topics,
		Data:            stringField(log, "data"),
		BlockNumber:     stringField(log, "blockNumber"),
		TransactionHash: stringField(log, "transactionHash"),
		LogIndex:        stringField(log, "logIndex"),
	}
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return ""
}
