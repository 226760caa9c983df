// Package service orchestrates the chain registry, explorer client,
// per-chain RPC clients, and the three contract/creation/proxy caches
// behind the tool contracts: fetching verified contract metadata and
// source, creation provenance, proxy structure, transactions, token
// transfers, logs, storage reads, ABI-encoded calls, blocks, hashing,
// and unit conversion.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/goware/logger"

	"github.com/evmscope/evmscope/internal/apperr"
	"github.com/evmscope/evmscope/internal/cachekv"
	"github.com/evmscope/evmscope/internal/chains"
	"github.com/evmscope/evmscope/internal/config"
	"github.com/evmscope/evmscope/internal/explorer"
	"github.com/evmscope/evmscope/internal/hexutil"
	"github.com/evmscope/evmscope/internal/httpengine"
	"github.com/evmscope/evmscope/internal/jsonrpc"
)

// Service is the shared orchestrator instance. It owns the caches,
// chain registry, explorer client, and the pool of per-URL RPC
// clients; every other field that varies per invocation (normalized
// address, resolved chain) stays local to the call.
type Service struct {
	cfg      config.Config
	log      logger.Logger
	http     *httpengine.Client
	explorer *explorer.Client
	registry *chains.Registry

	contractCache *cachekv.Cache[ContractRecord]
	creationCache *cachekv.Cache[CreationRecord]
	proxyCache    *cachekv.Cache[ProxyRecord]

	rpcMu   sync.Mutex
	rpcPool map[string]*jsonrpc.Client // url -> client
}

// New builds a Service from cfg. The chain registry's fetcher closure
// calls the explorer client's chainlist endpoint, so the registry
// never imports internal/explorer directly.
func New(cfg config.Config, log logger.Logger) (*Service, error) {
	if log == nil {
		log = logger.NewLogger(logger.LogLevel_INFO)
	}
	httpClient := httpengine.New(log, cfg.RequestTimeout, cfg.RequestRetries, cfg.RequestBackoffSecs)
	explorerClient := explorer.New(cfg.EtherscanBaseURL, cfg.EtherscanAPIKey, httpClient)

	fetch := func(ctx context.Context) ([]any, error) {
		return explorer.FetchChainlist(ctx, httpClient, cfg.ChainlistURL)
	}
	registry := chains.New(fetch, cfg.ChainlistTTL, log)

	contractCache, err := cachekv.New[ContractRecord]("contract", 4096)
	if err != nil {
		return nil, err
	}
	creationCache, err := cachekv.New[CreationRecord]("creation", 4096)
	if err != nil {
		return nil, err
	}
	proxyCache, err := cachekv.New[ProxyRecord]("proxy", 4096)
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:           cfg,
		log:           log,
		http:          httpClient,
		explorer:      explorerClient,
		registry:      registry,
		contractCache: contractCache,
		creationCache: creationCache,
		proxyCache:    proxyCache,
		rpcPool:       map[string]*jsonrpc.Client{},
	}, nil
}

// resolveNetwork implements the service-wide pre-processing step:
// resolve (label, chainId) via the registry, falling back to the
// static map. When the caller supplied no explicit network and both
// of those miss for the configured default, the failure is reported
// as apperr.ErrDegraded (callers can errors.Is against it) rather than
// silently substituting a guessed chain.
func (s *Service) resolveNetwork(ctx context.Context, network string) (label, chainID string, err error) {
	query := network
	explicit := query != ""
	if !explicit {
		if s.cfg.DefaultChainID != "" {
			query = s.cfg.DefaultChainID
		} else {
			query = s.cfg.DefaultNetwork
		}
	}

	label, chainID, _, err = s.registry.Resolve(ctx, query)
	if err == nil {
		return label, chainID, nil
	}

	if fallbackID, ok := chains.StaticFallbackChainID(query); ok {
		return query, fallbackID, nil
	}

	if explicit {
		return "", "", err
	}

	degraded := fmt.Errorf("%w: default network %q could not be resolved by the registry or the static fallback map: %w", apperr.ErrDegraded, query, err)
	s.log.Warn(fmt.Sprintf("service: %v", degraded))
	return "", "", degraded
}

// rpcFor lazily constructs and pools a jsonrpc.Client for chainID's
// configured RPC URL, reporting false when no URL is configured.
func (s *Service) rpcFor(chainID string) (*jsonrpc.Client, bool) {
	url, ok := s.cfg.RPCURLFor(chainID)
	if !ok {
		return nil, false
	}
	s.rpcMu.Lock()
	defer s.rpcMu.Unlock()
	if client, ok := s.rpcPool[url]; ok {
		return client, true
	}
	client := jsonrpc.New(url, func(ctx context.Context, rawURL string, body any) (any, error) {
		return s.http.Post(ctx, rawURL, body)
	})
	s.rpcPool[url] = client
	return client, true
}

// prepare runs the common address/network pre-processing: normalize
// the address and resolve its chain.
func (s *Service) prepare(ctx context.Context, address, network string) (normalizedAddress, label, chainID string, err error) {
	normalizedAddress, err = normalizeAddress(address)
	if err != nil {
		return "", "", "", err
	}
	label, chainID, err = s.resolveNetwork(ctx, network)
	if err != nil {
		return "", "", "", err
	}
	return normalizedAddress, label, chainID, nil
}

func normalizeAddress(address string) (string, error) {
	if address == "" {
		return "", fmt.Errorf("%w: address is required", apperr.ErrInvalidInput)
	}
	return hexutil.NormalizeAddress(address)
}
