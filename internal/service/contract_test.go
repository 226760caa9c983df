package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evmscope/evmscope/internal/explorer"
	"github.com/evmscope/evmscope/internal/httpengine"
)

func newExplorerBackedService(t *testing.T, handler http.HandlerFunc) (*Service, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	h := httpengine.New(nil, 2*time.Second, 2, 0)
	svc := newTestService(t, "", nil)
	svc.explorer = explorer.New(srv.URL, "test-key", h)
	return svc, srv
}

const verifiedAddress = "0x1111111111111111111111111111111111111111"

func TestFetchContractInlinesShortSource(t *testing.T) {
	svc, srv := newExplorerBackedService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"1","message":"OK","result":[{"SourceCode":"contract X {}","ABI":"[]","CompilerVersion":"v0.8.20","Proxy":"0","Implementation":""}]}`))
	})
	defer srv.Close()

	rec, err := svc.FetchContract(context.Background(), verifiedAddress, "1", 0, false)
	if err != nil {
		t.Fatalf("FetchContract: %v", err)
	}
	if !rec.Verified {
		t.Fatal("expected contract to be reported verified")
	}
	if len(rec.SourceFiles) != 1 || !rec.SourceFiles[0].Inline {
		t.Fatalf("expected one inline source file, got %+v", rec.SourceFiles)
	}
}

func TestFetchContractOmitsLongSource(t *testing.T) {
	longSource := make([]byte, 100)
	for i := range longSource {
		longSource[i] = 'a'
	}
	svc, srv := newExplorerBackedService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"1","message":"OK","result":[{"SourceCode":"` + string(longSource) + `","ABI":"[]"}]}`))
	})
	defer srv.Close()

	rec, err := svc.FetchContract(context.Background(), verifiedAddress, "1", 10, false)
	if err != nil {
		t.Fatalf("FetchContract: %v", err)
	}
	if !rec.SourceOmitted {
		t.Fatal("expected source to be omitted above the inline limit")
	}
	if rec.SourceFiles[0].Inline {
		t.Fatal("expected omitted file to carry no content")
	}
	if rec.SourceFiles[0].Content != "" {
		t.Fatal("expected omitted file content to be empty")
	}
}

func TestGetSourceFileWindowsContent(t *testing.T) {
	svc, srv := newExplorerBackedService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"1","message":"OK","result":[{"SourceCode":"0123456789","ABI":"[]"}]}`))
	})
	defer srv.Close()

	content, truncated, err := svc.GetSourceFile(context.Background(), verifiedAddress, "1", "Contract.sol", 2, 3)
	if err != nil {
		t.Fatalf("GetSourceFile: %v", err)
	}
	if content != "234" {
		t.Fatalf("content = %q, want 234", content)
	}
	if !truncated {
		t.Fatal("expected truncated=true for a window ending before file length")
	}
}

func TestGetContractCreationFallsBackToRPC(t *testing.T) {
	const rpcURL = "http://rpc.test/1"
	svc, srv := newExplorerBackedService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"0","message":"No data found","result":[]}`))
	})
	defer srv.Close()

	code := hexWord(1)
	svc.cfg.PerChainRPCURLs = map[string]string{"1": rpcURL}
	svc.rpcPool[rpcURL] = newFakeRPCClient(rpcURL, map[string]func(params []any) (any, error){
		"eth_getCode": func(params []any) (any, error) {
			return code, nil
		},
		"eth_blockNumber": func(params []any) (any, error) {
			return "0x64", nil
		},
		"eth_getBlockByNumber": func(params []any) (any, error) {
			return map[string]any{
				"number": "0x32",
				"transactions": []any{
					map[string]any{"hash": "0xdeadbeef", "from": "0xcreator000000000000000000000000000000", "to": nil},
				},
			}, nil
		},
		"eth_getTransactionReceipt": func(params []any) (any, error) {
			return map[string]any{"contractAddress": verifiedAddress}, nil
		},
	})

	rec, err := svc.GetContractCreation(context.Background(), verifiedAddress, "1")
	if err != nil {
		t.Fatalf("GetContractCreation: %v", err)
	}
	if rec.Source != "rpc" {
		t.Fatalf("source = %q, want rpc", rec.Source)
	}
}
