package service

import (
	"context"
	"time"

	"github.com/goware/logger"

	"github.com/evmscope/evmscope/internal/cachekv"
	"github.com/evmscope/evmscope/internal/chains"
	"github.com/evmscope/evmscope/internal/config"
	"github.com/evmscope/evmscope/internal/jsonrpc"
)

// fakeTransport dispatches jsonrpc.Call invocations to a per-method
// handler, letting tests simulate an RPC node without a network round
// trip.
type fakeTransport struct {
	handlers map[string]func(params []any) (any, error)
}

func (f *fakeTransport) transport(ctx context.Context, url string, body any) (any, error) {
	req, ok := body.(jsonrpc.Request)
	if !ok {
		return nil, nil
	}
	handler, ok := f.handlers[req.Method]
	if !ok {
		return map[string]any{"jsonrpc": "2.0", "id": req.ID, "error": map[string]any{"code": -32601, "message": "method not found: " + req.Method}}, nil
	}
	result, err := handler(req.Params)
	if err != nil {
		return map[string]any{"jsonrpc": "2.0", "id": req.ID, "error": map[string]any{"code": -32000, "message": err.Error()}}, nil
	}
	return map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result}, nil
}

// newTestService builds a Service with an empty chain registry (relying
// on numeric chain-id bypass) and, when rpcURL is non-empty, a single
// pooled RPC client backed by handlers.
func newTestService(t interface{ Helper() }, rpcURL string, handlers map[string]func(params []any) (any, error)) *Service {
	t.Helper()

	contractCache, err := cachekv.New[ContractRecord]("test-contract", 64)
	if err != nil {
		panic(err)
	}
	creationCache, err := cachekv.New[CreationRecord]("test-creation", 64)
	if err != nil {
		panic(err)
	}
	proxyCache, err := cachekv.New[ProxyRecord]("test-proxy", 64)
	if err != nil {
		panic(err)
	}

	registry := chains.New(func(ctx context.Context) ([]any, error) {
		return nil, nil
	}, time.Hour, logger.NewLogger(logger.LogLevel_ERROR))

	svc := &Service{
		cfg:           config.Config{DefaultNetwork: "mainnet", DefaultChainID: "1"},
		log:           logger.NewLogger(logger.LogLevel_ERROR),
		registry:      registry,
		contractCache: contractCache,
		creationCache: creationCache,
		proxyCache:    proxyCache,
		rpcPool:       map[string]*jsonrpc.Client{},
	}

	if rpcURL != "" {
		svc.cfg.PerChainRPCURLs = map[string]string{"1": rpcURL}
		svc.rpcPool[rpcURL] = newFakeRPCClient(rpcURL, handlers)
	}

	return svc
}

// newFakeRPCClient builds a jsonrpc.Client whose transport is answered
// in-memory by handlers, keyed by method name.
func newFakeRPCClient(url string, handlers map[string]func(params []any) (any, error)) *jsonrpc.Client {
	ft := &fakeTransport{handlers: handlers}
	return jsonrpc.New(url, ft.transport)
}
