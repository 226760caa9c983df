package service

import (
	"context"
	"math/big"
	"testing"

	"github.com/evmscope/evmscope/internal/abicodec"
	"github.com/evmscope/evmscope/internal/hexutil"
)

func hexWord(n int64) string {
	return hexutil.Encode(new(big.Int).SetInt64(n).FillBytes(make([]byte, 32)))
}

func TestGetStorageAtPrefersRPC(t *testing.T) {
	const rpcURL = "http://rpc.test/1"
	slot := "0x0000000000000000000000000000000000000000000000000000000000000a"
	want := hexWord(42)

	svc := newTestService(t, rpcURL, map[string]func(params []any) (any, error){
		"eth_getStorageAt": func(params []any) (any, error) {
			return want, nil
		},
	})

	got, err := svc.GetStorageAt(context.Background(), "0x1111111111111111111111111111111111111111", slot, "1", "")
	if err != nil {
		t.Fatalf("GetStorageAt: %v", err)
	}
	if got.Data != want {
		t.Fatalf("data = %q, want %q", got.Data, want)
	}
	if got.BlockTag != "latest" {
		t.Fatalf("block tag = %q, want latest", got.BlockTag)
	}
}

func TestCallFunctionEncodesAndDecodesUsingCachedABI(t *testing.T) {
	const rpcURL = "http://rpc.test/1"
	address := "0x1111111111111111111111111111111111111111"

	svc := newTestService(t, rpcURL, map[string]func(params []any) (any, error){
		"eth_call": func(params []any) (any, error) {
			return hexWord(1000000), nil
		},
	})

	abiJSON := `[{"type":"function","name":"balanceOf","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}]`
	if err := svc.contractCache.Set(context.Background(), "1:"+address, ContractRecord{Address: address, ChainID: "1", ABI: abiJSON, Verified: true}); err != nil {
		t.Fatalf("seed contract cache: %v", err)
	}

	decimals := 6
	result, err := svc.CallFunction(context.Background(), address, "", "1", "", "balanceOf(address)", []any{address}, DecimalsHint{Global: &decimals})
	if err != nil {
		t.Fatalf("CallFunction: %v", err)
	}
	if len(result.Decoded) != 1 {
		t.Fatalf("decoded len = %d, want 1", len(result.Decoded))
	}
	if result.Decoded[0].Scaled != "1" {
		t.Fatalf("scaled = %q, want 1", result.Decoded[0].Scaled)
	}
}

func TestCallFunctionPrefersImplementationABIOverProxyABI(t *testing.T) {
	const rpcURL = "http://rpc.test/1"
	proxyAddr := "0x1111111111111111111111111111111111111111"
	implAddr := "0x2222222222222222222222222222222222222222"

	svc := newTestService(t, rpcURL, map[string]func(params []any) (any, error){
		"eth_call": func(params []any) (any, error) {
			return hexWord(7), nil
		},
	})

	// Both ABIs declare a function with the same selector (no args, so
	// the selector depends only on the name) but different output
	// shapes: the proxy's says "bool", the implementation's says
	// "uint256". Decoding per the implementation's shape is the only
	// way to tell which one the call actually used.
	proxyABI := `[{"type":"function","name":"value","inputs":[],"outputs":[{"name":"","type":"bool"}]}]`
	implABI := `[{"type":"function","name":"value","inputs":[],"outputs":[{"name":"","type":"uint256"}]}]`

	ctx := context.Background()
	if err := svc.contractCache.Set(ctx, "1:"+proxyAddr, ContractRecord{Address: proxyAddr, ChainID: "1", ABI: proxyABI, Proxy: true, Implementation: implAddr}); err != nil {
		t.Fatalf("seed proxy contract cache: %v", err)
	}
	if err := svc.contractCache.Set(ctx, "1:"+implAddr, ContractRecord{Address: implAddr, ChainID: "1", ABI: implABI}); err != nil {
		t.Fatalf("seed implementation contract cache: %v", err)
	}

	result, err := svc.CallFunction(ctx, proxyAddr, "", "1", "", "value()", nil, DecimalsHint{})
	if err != nil {
		t.Fatalf("CallFunction: %v", err)
	}
	if len(result.Decoded) != 1 {
		t.Fatalf("decoded len = %d, want 1", len(result.Decoded))
	}
	if result.Decoded[0].Type != "uint256" {
		t.Fatalf("decoded type = %q, want uint256 (from the implementation ABI, not the proxy's bool)", result.Decoded[0].Type)
	}
}

func TestCallFunctionRejectsDataShorterThanMatchedFunctionStaticInputs(t *testing.T) {
	address := "0x1111111111111111111111111111111111111111"

	svc := newTestService(t, "", nil)

	// approve(address,uint256) takes two 32-byte static words after the
	// selector: 64 bytes total. Seed the cache so the selector resolves,
	// then supply only the selector plus 16 bytes of data.
	abiJSON := `[{"type":"function","name":"approve","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}]`
	if err := svc.contractCache.Set(context.Background(), "1:"+address, ContractRecord{Address: address, ChainID: "1", ABI: abiJSON}); err != nil {
		t.Fatalf("seed contract cache: %v", err)
	}

	shortData := "0x" + abicodec.Selector("approve(address,uint256)") + "00000000000000000000000000000000"

	_, err := svc.CallFunction(context.Background(), address, shortData, "1", "", "", nil, DecimalsHint{})
	if err == nil {
		t.Fatal("expected error for calldata shorter than the matched function's static input size")
	}
}

func TestCallFunctionRequiresDataOrFunction(t *testing.T) {
	svc := newTestService(t, "", nil)
	_, err := svc.CallFunction(context.Background(), "0x1111111111111111111111111111111111111111", "", "1", "", "", nil, DecimalsHint{})
	if err == nil {
		t.Fatal("expected error when neither data nor function is given")
	}
}

func TestEncodeFunctionData(t *testing.T) {
	selector, data, err := (&Service{}).EncodeFunctionData("transfer(address,uint256)", []any{"0x1111111111111111111111111111111111111111", big.NewInt(5)})
	if err != nil {
		t.Fatalf("EncodeFunctionData: %v", err)
	}
	if len(selector) != 10 {
		t.Fatalf("selector = %q, want 4-byte hex", selector)
	}
	if data[:10] != selector {
		t.Fatalf("data does not start with selector: %q vs %q", data[:10], selector)
	}
}
