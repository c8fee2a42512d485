package solana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPClient_GetBalance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		if req.Method != "getBalance" {
			t.Errorf("expected method getBalance, got %s", req.Method)
		}
		if len(req.Params) != 1 || req.Params[0] != "addr1" {
			t.Errorf("unexpected params: %v", req.Params)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"context": map[string]interface{}{"slot": 123},
				"value":   uint64(2_500_000_000),
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	lamports, err := client.GetBalance(context.Background(), "addr1")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if lamports != 2_500_000_000 {
		t.Errorf("expected 2500000000 lamports, got %d", lamports)
	}
}

func TestHTTPClient_GetTokenAccountsByOwner(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		if req.Method != "getTokenAccountsByOwner" {
			t.Errorf("expected method getTokenAccountsByOwner, got %s", req.Method)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"value": []map[string]interface{}{
					{
						"pubkey": "tokacc1",
						"account": map[string]interface{}{
							"data": map[string]interface{}{
								"parsed": map[string]interface{}{
									"info": map[string]interface{}{
										"mint":  USDCMint,
										"owner": "owner1",
										"tokenAmount": map[string]interface{}{
											"amount":         "12345678",
											"decimals":       6,
											"uiAmount":       12.345678,
											"uiAmountString": "12.345678",
										},
									},
								},
							},
						},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	accounts, err := client.GetTokenAccountsByOwner(context.Background(), "owner1", TokenProgramID)
	if err != nil {
		t.Fatalf("GetTokenAccountsByOwner: %v", err)
	}

	if len(accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(accounts))
	}
	acc := accounts[0]
	if acc.Pubkey != "tokacc1" {
		t.Errorf("expected pubkey tokacc1, got %s", acc.Pubkey)
	}
	if acc.Mint != USDCMint {
		t.Errorf("expected USDC mint, got %s", acc.Mint)
	}
	if acc.Decimals != 6 {
		t.Errorf("expected 6 decimals, got %d", acc.Decimals)
	}
	if acc.UIAmount != 12.345678 {
		t.Errorf("expected uiAmount 12.345678, got %f", acc.UIAmount)
	}
}

func TestHTTPClient_GetTransaction_TokenBalances(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		if req.Method != "getTransaction" {
			t.Errorf("expected method getTransaction, got %s", req.Method)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"slot":      int64(123456),
				"blockTime": int64(1700000000),
				"meta": map[string]interface{}{
					"err": nil,
					"preTokenBalances": []map[string]interface{}{
						{
							"accountIndex": 1,
							"mint":         USDCMint,
							"owner":        "walletOwner",
							"uiTokenAmount": map[string]interface{}{
								"amount":         "100000000",
								"decimals":       6,
								"uiAmountString": "100",
							},
						},
					},
					"postTokenBalances": []map[string]interface{}{
						{
							"accountIndex": 1,
							"mint":         USDCMint,
							"owner":        "walletOwner",
							"uiTokenAmount": map[string]interface{}{
								"amount":         "90000000",
								"decimals":       6,
								"uiAmountString": "90",
							},
						},
					},
				},
				"transaction": map[string]interface{}{
					"message": map[string]interface{}{
						// jsonParsed returns object-form account keys
						"accountKeys": []interface{}{
							map[string]interface{}{"pubkey": "addr1", "signer": true},
							map[string]interface{}{"pubkey": "addr2", "signer": false},
						},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	tx, err := client.GetTransaction(context.Background(), "testsig123")
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if tx == nil {
		t.Fatal("expected transaction, got nil")
	}

	if tx.Slot != 123456 {
		t.Errorf("expected slot 123456, got %d", tx.Slot)
	}
	if tx.BlockTime == nil || *tx.BlockTime != 1700000000 {
		t.Errorf("expected blockTime 1700000000, got %v", tx.BlockTime)
	}
	if len(tx.AccountKeys) != 2 || tx.AccountKeys[0] != "addr1" {
		t.Errorf("unexpected account keys: %v", tx.AccountKeys)
	}
	if len(tx.PreTokenBalances) != 1 {
		t.Fatalf("expected 1 pre balance, got %d", len(tx.PreTokenBalances))
	}
	pre := tx.PreTokenBalances[0]
	if pre.AccountIndex != 1 || pre.Mint != USDCMint || pre.UIAmount != 100 {
		t.Errorf("unexpected pre balance: %+v", pre)
	}
	if len(tx.PostTokenBalances) != 1 || tx.PostTokenBalances[0].UIAmount != 90 {
		t.Errorf("unexpected post balances: %+v", tx.PostTokenBalances)
	}
}

func TestHTTPClient_GetTransaction_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  nil,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	tx, err := client.GetTransaction(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if tx != nil {
		t.Errorf("expected nil for missing transaction, got %+v", tx)
	}
}

func TestHTTPClient_GetSignaturesForAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		if req.Method != "getSignaturesForAddress" {
			t.Errorf("expected method getSignaturesForAddress, got %s", req.Method)
		}

		// Second param should carry the limit
		if len(req.Params) != 2 {
			t.Errorf("expected 2 params, got %d", len(req.Params))
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": []map[string]interface{}{
				{"signature": "sig1", "slot": int64(100), "blockTime": int64(1700000010), "err": nil},
				{"signature": "sig2", "slot": int64(99), "blockTime": nil, "err": nil},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	sigs, err := client.GetSignaturesForAddress(context.Background(), "tokacc1", &SignaturesOpts{Limit: 100})
	if err != nil {
		t.Fatalf("GetSignaturesForAddress: %v", err)
	}

	if len(sigs) != 2 {
		t.Fatalf("expected 2 signatures, got %d", len(sigs))
	}
	if sigs[0].Signature != "sig1" || sigs[0].BlockTime == nil || *sigs[0].BlockTime != 1700000010 {
		t.Errorf("unexpected first signature: %+v", sigs[0])
	}
	if sigs[1].BlockTime != nil {
		t.Errorf("expected nil blockTime for sig2, got %v", sigs[1].BlockTime)
	}
}

func TestHTTPClient_RetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"value": uint64(42),
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(10*time.Millisecond))

	lamports, err := client.GetBalance(context.Background(), "addr1")
	if err != nil {
		t.Fatalf("GetBalance after retry: %v", err)
	}
	if lamports != 42 {
		t.Errorf("expected 42 lamports, got %d", lamports)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestHTTPClient_RPCErrorNotRetried(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error": map[string]interface{}{
				"code":    -32602,
				"message": "Invalid param",
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(10*time.Millisecond))

	_, err := client.GetBalance(context.Background(), "not-an-address")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if calls.Load() != 1 {
		t.Errorf("RPC errors must not be retried, got %d calls", calls.Load())
	}
}

func TestAccountKey_StringForm(t *testing.T) {
	var msg getTransactionMessage
	data := []byte(`{"accountKeys": ["addr1", "addr2"]}`)
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(msg.AccountKeys) != 2 || msg.AccountKeys[1].Pubkey != "addr2" {
		t.Errorf("unexpected keys: %+v", msg.AccountKeys)
	}
}
