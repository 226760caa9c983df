package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListTransactionsAppliesDefaultsAndMapsFields(t *testing.T) {
	svc, srv := newExplorerBackedService(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("page"); got != "1" {
			t.Fatalf("page = %q, want 1", got)
		}
		if got := r.URL.Query().Get("offset"); got != "100" {
			t.Fatalf("offset = %q, want 100", got)
		}
		if got := r.URL.Query().Get("sort"); got != "asc" {
			t.Fatalf("sort = %q, want asc", got)
		}
		w.Write([]byte(`{"status":"1","message":"OK","result":[{"hash":"0xabc","from":"0xFROM","to":"0xTO","value":"1","blockNumber":"10","timeStamp":"100"}]}`))
	})
	defer srv.Close()

	list, err := svc.ListTransactions(context.Background(), verifiedAddress, "1", 0, 0, 0, 0, "")
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(list.Transactions) != 1 {
		t.Fatalf("transactions len = %d, want 1", len(list.Transactions))
	}
	if list.Transactions[0].From != "0xfrom" {
		t.Fatalf("from = %q, want lowercased", list.Transactions[0].From)
	}
}

func TestListTokenTransfersDefaultsToERC20(t *testing.T) {
	svc, srv := newExplorerBackedService(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("action"); got != "tokentx" {
			t.Fatalf("action = %q, want tokentx", got)
		}
		w.Write([]byte(`{"status":"1","message":"OK","result":[]}`))
	})
	defer srv.Close()

	list, err := svc.ListTokenTransfers(context.Background(), verifiedAddress, "1", "", 0, 0, 0, 0, "")
	if err != nil {
		t.Fatalf("ListTokenTransfers: %v", err)
	}
	if list.TokenType != "erc20" {
		t.Fatalf("tokenType = %q, want erc20", list.TokenType)
	}
}

func TestQueryLogsUsesRPCChunkingWhenConfigured(t *testing.T) {
	const rpcURL = "http://rpc.test/1"
	svc := newTestService(t, rpcURL, map[string]func(params []any) (any, error){
		"eth_getLogs": func(params []any) (any, error) {
			return []any{
				map[string]any{"address": verifiedAddress, "topics": []any{"0xtopic"}, "data": "0x", "blockNumber": "0x1", "transactionHash": "0xabc", "logIndex": "0x0"},
			}, nil
		},
	})

	list, err := svc.QueryLogs(context.Background(), verifiedAddress, "1", [4]string{"0xtopic"}, 0, 5000, 0, 0)
	if err != nil {
		t.Fatalf("QueryLogs: %v", err)
	}
	if len(list.Logs) != 3 {
		t.Fatalf("logs len = %d, want 3 (one per 2000-block chunk)", len(list.Logs))
	}
}

func TestQueryLogsThreadsAllFourTopicsThroughRPCFilter(t *testing.T) {
	const rpcURL = "http://rpc.test/1"
	var gotTopics []any
	svc := newTestService(t, rpcURL, map[string]func(params []any) (any, error){
		"eth_getLogs": func(params []any) (any, error) {
			filter, _ := params[0].(map[string]any)
			gotTopics, _ = filter["topics"].([]any)
			return []any{}, nil
		},
	})

	_, err := svc.QueryLogs(context.Background(), verifiedAddress, "1", [4]string{"0xa", "", "0xc", "0xd"}, 0, 1999, 0, 0)
	if err != nil {
		t.Fatalf("QueryLogs: %v", err)
	}
	if len(gotTopics) != 4 {
		t.Fatalf("topics len = %d, want 4 (gap before topic3 preserved as null)", len(gotTopics))
	}
	if gotTopics[0] != "0xa" || gotTopics[1] != nil || gotTopics[2] != "0xc" || gotTopics[3] != "0xd" {
		t.Fatalf("topics = %v, want [0xa nil 0xc 0xd]", gotTopics)
	}
}

func TestQueryLogsAppliesTopicOperatorsOnExplorerFallback(t *testing.T) {
	svc, srv := newExplorerBackedService(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("topic0") != "0xa" || q.Get("topic1") != "0xb" || q.Get("topic3") != "0xd" {
			t.Fatalf("topic0/topic1/topic3 = %q/%q/%q, want 0xa/0xb/0xd", q.Get("topic0"), q.Get("topic1"), q.Get("topic3"))
		}
		if q.Get("topic0_1_opr") != "and" {
			t.Fatalf("topic0_1_opr = %q, want and (topic0 and topic1 both set)", q.Get("topic0_1_opr"))
		}
		if q.Get("topic2_3_opr") != "" {
			t.Fatalf("topic2_3_opr = %q, want empty (topic2 unset)", q.Get("topic2_3_opr"))
		}
		w.Write([]byte(`{"status":"1","message":"OK","result":[]}`))
	})
	defer srv.Close()

	_, err := svc.QueryLogs(context.Background(), verifiedAddress, "1", [4]string{"0xa", "0xb", "", "0xd"}, 0, 0, 0, 0)
	if err != nil {
		t.Fatalf("QueryLogs: %v", err)
	}
}

func TestQueryLogsFallsBackToExplorerWithoutRPC(t *testing.T) {
	svc, srv := newExplorerBackedService(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("action"); got != "getLogs" {
			t.Fatalf("action = %q, want getLogs", got)
		}
		w.Write([]byte(`{"status":"1","message":"OK","result":[]}`))
	})
	defer srv.Close()

	_, err := svc.QueryLogs(context.Background(), verifiedAddress, "1", [4]string{}, 0, 0, 0, 0)
	if err != nil {
		t.Fatalf("QueryLogs: %v", err)
	}
}
