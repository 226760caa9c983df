// Package explorer implements a thin client over an Etherscan-style
// module/action REST surface: contract source, contract creation,
// transaction lists, token transfers, logs, and the proxy-style
// eth_call/eth_getStorageAt/eth_getTransactionByHash/
// eth_getTransactionReceipt/eth_getBlockByNumber actions.
package explorer

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/evmscope/evmscope/internal/httpengine"
)

// Client talks to one Etherscan-compatible base URL with one API key.
// It carries no mutable per-call state: chainId is passed as an
// argument to every method rather than stored on the client, so a
// single Client is safe to share across concurrent calls targeting
// different chains.
type Client struct {
	baseURL string
	apiKey  string
	http    *httpengine.Client
}

// New builds a Client bound to baseURL (e.g.
// "https://api.etherscan.io/v2/api") and apiKey.
func New(baseURL, apiKey string, http *httpengine.Client) *Client {
	return &Client{baseURL: baseURL, apiKey: apiKey, http: http}
}

func (c *Client) params(chainID string, extra url.Values) url.Values {
	v := url.Values{}
	for k, vals := range extra {
		v[k] = vals
	}
	v.Set("apikey", c.apiKey)
	v.Set("chainid", chainID)
	return v
}

func (c *Client) call(ctx context.Context, chainID string, extra url.Values) (any, error) {
	return c.http.Get(ctx, c.baseURL, c.params(chainID, extra))
}

// GetSourceCode calls module=contract&action=getsourcecode and
// extracts the Etherscan-list result.
func (c *Client) GetSourceCode(ctx context.Context, chainID, address string) ([]any, error) {
	payload, err := c.call(ctx, chainID, url.Values{
		"module":  {"contract"},
		"action":  {"getsourcecode"},
		"address": {address},
	})
	if err != nil {
		return nil, err
	}
	result, err := httpengine.ExtractEtherscanList(payload)
	if err != nil {
		return nil, err
	}
	list, _ := result.([]any)
	return list, nil
}

// GetContractCreation calls module=contract&action=getcontractcreation.
func (c *Client) GetContractCreation(ctx context.Context, chainID, address string) ([]any, error) {
	payload, err := c.call(ctx, chainID, url.Values{
		"module":            {"contract"},
		"action":            {"getcontractcreation"},
		"contractaddresses": {address},
	})
	if err != nil {
		return nil, err
	}
	result, err := httpengine.ExtractEtherscanList(payload)
	if err != nil {
		return nil, err
	}
	list, _ := result.([]any)
	return list, nil
}

// ListRange is the shared block-range/paging parameter set used by
// transaction, token-transfer, and log listings.
type ListRange struct {
	StartBlock int64
	EndBlock   int64
	Page       int
	Offset     int
	Sort       string
}

// DefaultListRange returns the default block-range defaults.
func DefaultListRange() ListRange {
	return ListRange{StartBlock: 0, EndBlock: 99_999_999, Page: 1, Offset: 100, Sort: "asc"}
}

func (r ListRange) values() url.Values {
	return url.Values{
		"startblock": {strconv.FormatInt(r.StartBlock, 10)},
		"endblock":   {strconv.FormatInt(r.EndBlock, 10)},
		"page":       {strconv.Itoa(r.Page)},
		"offset":     {strconv.Itoa(r.Offset)},
		"sort":       {r.Sort},
	}
}

// ListTransactions calls module=account&action=txlist.
func (c *Client) ListTransactions(ctx context.Context, chainID, address string, r ListRange) ([]any, error) {
	extra := r.values()
	extra.Set("module", "account")
	extra.Set("action", "txlist")
	extra.Set("address", address)
	payload, err := c.call(ctx, chainID, extra)
	if err != nil {
		return nil, err
	}
	result, err := httpengine.ExtractEtherscanList(payload)
	if err != nil {
		return nil, err
	}
	list, _ := result.([]any)
	return list, nil
}

// tokenTransferActions maps the service's token-type vocabulary onto
// Etherscan's action names.
var tokenTransferActions = map[string]string{
	"erc20":   "tokentx",
	"erc721":  "tokennfttx",
	"erc1155": "token1155tx",
}

// ListTokenTransfers calls module=account&action=<tokentx|tokennfttx|token1155tx>.
func (c *Client) ListTokenTransfers(ctx context.Context, chainID, address, tokenType string, r ListRange) ([]any, error) {
	action, ok := tokenTransferActions[tokenType]
	if !ok {
		action = "tokentx"
	}
	extra := r.values()
	extra.Set("module", "account")
	extra.Set("action", action)
	extra.Set("address", address)
	payload, err := c.call(ctx, chainID, extra)
	if err != nil {
		return nil, err
	}
	result, err := httpengine.ExtractEtherscanList(payload)
	if err != nil {
		return nil, err
	}
	list, _ := result.([]any)
	return list, nil
}

// QueryLogs calls module=logs&action=getLogs. topics holds topic0..topic3
// positionally; an empty entry means "any value at that position". Etherscan
// requires an explicit "and" operator between every pair of topics that are
// both set, so one is added for each such pair.
func (c *Client) QueryLogs(ctx context.Context, chainID, address string, topics [4]string, r ListRange) ([]any, error) {
	extra := url.Values{
		"module":     {"logs"},
		"action":     {"getLogs"},
		"address":    {address},
		"startblock": {strconv.FormatInt(r.StartBlock, 10)},
		"endblock":   {strconv.FormatInt(r.EndBlock, 10)},
		"page":       {strconv.Itoa(r.Page)},
		"offset":     {strconv.Itoa(r.Offset)},
	}
	for i, topic := range topics {
		if topic == "" {
			continue
		}
		extra.Set(fmt.Sprintf("topic%d", i), topic)
		for j := 0; j < i; j++ {
			if topics[j] != "" {
				extra.Set(fmt.Sprintf("topic%d_%d_opr", j, i), "and")
			}
		}
	}
	payload, err := c.call(ctx, chainID, extra)
	if err != nil {
		return nil, err
	}
	result, err := httpengine.ExtractEtherscanList(payload)
	if err != nil {
		return nil, err
	}
	list, _ := result.([]any)
	return list, nil
}

// proxyCall issues a module=proxy&action=<action> request and extracts
// via the proxy-result envelope rule.
func (c *Client) proxyCall(ctx context.Context, chainID, action string, extra url.Values, allowNone bool) (any, error) {
	v := url.Values{}
	for k, vals := range extra {
		v[k] = vals
	}
	v.Set("module", "proxy")
	v.Set("action", action)
	payload, err := c.call(ctx, chainID, v)
	if err != nil {
		return nil, err
	}
	return httpengine.ExtractProxyResult(payload, allowNone)
}

// EthCall calls module=proxy&action=eth_call.
func (c *Client) EthCall(ctx context.Context, chainID, to, data, tag string) (any, error) {
	if tag == "" {
		tag = "latest"
	}
	return c.proxyCall(ctx, chainID, "eth_call", url.Values{
		"to":  {to},
		"data": {data},
		"tag":  {tag},
	}, false)
}

// EthGetStorageAt calls module=proxy&action=eth_getStorageAt.
func (c *Client) EthGetStorageAt(ctx context.Context, chainID, address, position, tag string) (any, error) {
	if tag == "" {
		tag = "latest"
	}
	return c.proxyCall(ctx, chainID, "eth_getStorageAt", url.Values{
		"address":  {address},
		"position": {position},
		"tag":      {tag},
	}, false)
}

// EthGetTransactionByHash calls module=proxy&action=eth_getTransactionByHash.
func (c *Client) EthGetTransactionByHash(ctx context.Context, chainID, txHash string) (any, error) {
	return c.proxyCall(ctx, chainID, "eth_getTransactionByHash", url.Values{"txhash": {txHash}}, true)
}

// EthGetTransactionReceipt calls module=proxy&action=eth_getTransactionReceipt.
func (c *Client) EthGetTransactionReceipt(ctx context.Context, chainID, txHash string) (any, error) {
	return c.proxyCall(ctx, chainID, "eth_getTransactionReceipt", url.Values{"txhash": {txHash}}, true)
}

// EthGetBlockByNumber calls module=proxy&action=eth_getBlockByNumber.
func (c *Client) EthGetBlockByNumber(ctx context.Context, chainID, tag string, fullTransactions bool) (any, error) {
	boolean := "false"
	if fullTransactions {
		boolean = "true"
	}
	return c.proxyCall(ctx, chainID, "eth_getBlockByNumber", url.Values{
		"tag":     {tag},
		"boolean": {boolean},
	}, false)
}

// FetchChainlist calls the chainlist endpoint directly (a different
// base URL, typically .../v2/chainlist) and extracts the chainlist
// envelope. It is suitable for use as an internal/chains.Fetcher
// closure once bound to a URL.
func FetchChainlist(ctx context.Context, http *httpengine.Client, chainlistURL string) ([]any, error) {
	payload, err := http.Get(ctx, chainlistURL, nil)
	if err != nil {
		return nil, err
	}
	return httpengine.ExtractChainlist(payload)
}
