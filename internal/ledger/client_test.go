package ledger_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aptodo/internal/config"
	"aptodo/internal/ledger"
	"aptodo/internal/service"
)

const resourceType = "0xcafe::todolist::TodoList"

func newTestClient(t *testing.T, h http.Handler, opts ...ledger.Option) *ledger.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return ledger.NewWithHTTPClient(srv.URL+"/v1", srv.Client(), opts...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestAccountResource(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/accounts/0x1/resource/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/accounts/0x1/resource/"+resourceType, r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"type": resourceType,
			"data": map[string]any{"counter": "2", "tasks": map[string]any{"handle": "0xh"}},
		})
	})
	c := newTestClient(t, mux)

	res, err := c.AccountResource(context.Background(), "0x1", resourceType)
	require.NoError(t, err)
	assert.Equal(t, resourceType, res.Type)
	assert.JSONEq(t, `{"counter":"2","tasks":{"handle":"0xh"}}`, string(res.Data))
}

func TestAccountResource_NotFound(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"message":       "Resource not found",
			"error_code":    "resource_not_found",
			"vm_error_code": nil,
		})
	})
	c := newTestClient(t, h)

	_, err := c.AccountResource(context.Background(), "0x1", resourceType)
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNotFound))

	var apiErr *ledger.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "resource_not_found", apiErr.Code)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestAccountResource_ServerErrorIsNotNotFound(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	c := newTestClient(t, h)

	_, err := c.AccountResource(context.Background(), "0x1", resourceType)
	require.Error(t, err)
	assert.False(t, errors.Is(err, service.ErrNotFound))
	assert.Contains(t, err.Error(), "status 500")
}

func TestTableItem(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/tables/0xh/item", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req service.TableItemRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, service.TableItemRequest{KeyType: "u64", ValueType: "0xcafe::todolist::Task", Key: "3"}, req)

		writeJSON(w, http.StatusOK, map[string]any{"task_id": "3", "address": "0x1", "content": "c", "completed": false})
	})
	c := newTestClient(t, h)

	raw, err := c.TableItem(context.Background(), "0xh", service.TableItemRequest{
		KeyType: "u64", ValueType: "0xcafe::todolist::Task", Key: "3",
	})
	require.NoError(t, err)
	task, err := service.DecodeTask(raw)
	require.NoError(t, err)
	assert.Equal(t, "3", task.TaskID)
}

func TestWaitForTransaction_PendingThenCommitted(t *testing.T) {
	var calls int32
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/transactions/by_hash/0xabc", r.URL.Path)
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			writeJSON(w, http.StatusNotFound, map[string]any{"error_code": "transaction_not_found"})
		case 2:
			writeJSON(w, http.StatusOK, map[string]any{"type": "pending_transaction", "hash": "0xabc"})
		default:
			writeJSON(w, http.StatusOK, map[string]any{
				"type": "user_transaction", "hash": "0xabc", "version": "42",
				"success": true, "vm_status": "Executed successfully",
				"events": []any{map[string]any{"type": "0xcafe::todolist::Task", "data": map[string]any{"task_id": "1"}}},
			})
		}
	})
	c := newTestClient(t, h, ledger.WithPollInterval(time.Millisecond))

	tx, err := c.WaitForTransaction(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, "42", tx.Version)
	assert.True(t, tx.Success)
	require.Len(t, tx.Events, 1)
	assert.Equal(t, "0xcafe::todolist::Task", tx.Events[0].Type)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestWaitForTransaction_Failed(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"type": "user_transaction", "hash": "0xabc", "success": false,
			"vm_status": "Move abort in 0xcafe::todolist: E_NOT_INITIALIZED(0x1)",
		})
	})
	c := newTestClient(t, h)

	_, err := c.WaitForTransaction(context.Background(), "0xabc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrTransactionFailed))
	assert.Contains(t, err.Error(), "E_NOT_INITIALIZED")
}

func TestWaitForTransaction_Timeout(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"type": "pending_transaction", "hash": "0xabc"})
	})
	c := newTestClient(t, h,
		ledger.WithPollInterval(5*time.Millisecond),
		ledger.WithConfirmTimeout(30*time.Millisecond))

	_, err := c.WaitForTransaction(context.Background(), "0xabc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrTimeout))
}

func TestWaitForTransaction_CallerCancel(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"type": "pending_transaction", "hash": "0xabc"})
	})
	c := newTestClient(t, h, ledger.WithPollInterval(5*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.WaitForTransaction(ctx, "0xabc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, errors.Is(err, ledger.ErrTimeout))
}

func TestEncodeAndSubmit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/transactions/encode_submission", func(w http.ResponseWriter, r *http.Request) {
		var txn ledger.UserTransactionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&txn))
		assert.Nil(t, txn.Signature)
		assert.Equal(t, "entry_function_payload", txn.Payload.Type)
		assert.Equal(t, "0xcafe::todolist::create_task", txn.Payload.Function)
		writeJSON(w, http.StatusOK, "0x0102ff")
	})
	mux.HandleFunc("/v1/transactions", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		sig := body["signature"].(map[string]any)
		assert.Equal(t, "ed25519_signature", sig["type"])
		writeJSON(w, http.StatusAccepted, map[string]any{"type": "pending_transaction", "hash": "0xfeed"})
	})
	c := newTestClient(t, mux)

	payload := service.Contract{Address: "0xcafe"}.Payload(service.EntryCreateTask, "milk")
	txn := ledger.NewUserTransaction("0x1", 5, 2000, 100, time.Unix(1700000000, 0), payload)
	assert.Equal(t, "5", txn.SequenceNumber)
	assert.Equal(t, "1700000000", txn.ExpirationTimestampSecs)

	msg, err := c.EncodeSubmission(context.Background(), txn)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0xff}, msg)

	_, err = c.SubmitTransaction(context.Background(), txn)
	require.Error(t, err, "unsigned transactions are rejected locally")

	txn.Signature = &ledger.Signature{Type: ledger.SignatureEd25519, PublicKey: "0xpk", Signature: "0xsig"}
	pending, err := c.SubmitTransaction(context.Background(), txn)
	require.NoError(t, err)
	assert.Equal(t, "0xfeed", pending.Hash)
}

func TestAccountInfoAndGas(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/accounts/0x1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"sequence_number": "12", "authentication_key": "0x1"})
	})
	mux.HandleFunc("/v1/estimate_gas_price", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"gas_estimate": 100})
	})
	c := newTestClient(t, mux)

	info, err := c.AccountInfo(context.Background(), "0x1")
	require.NoError(t, err)
	seq, err := info.Sequence()
	require.NoError(t, err)
	assert.EqualValues(t, 12, seq)

	gas, err := c.EstimateGasPrice(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 100, gas.GasEstimate)
}

func TestNew_SendsAPIKeyAsBearer(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]any{"chain_id": 4, "ledger_version": "1"})
	}))
	defer srv.Close()

	cfg, err := config.New(t.TempDir())
	require.NoError(t, err)
	cfg.Settings.NodeURL = srv.URL + "/v1"
	cfg.Settings.APIKey = "secret"

	c, err := ledger.New(context.Background(), cfg)
	require.NoError(t, err)

	info, err := c.LedgerInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, info.ChainID)
	assert.Equal(t, "Bearer secret", auth)
}

func TestFund(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/mint", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0x1", r.URL.Query().Get("address"))
		assert.Equal(t, "1000", r.URL.Query().Get("amount"))
		writeJSON(w, http.StatusOK, []string{"0xf1"})
	})
	mux.HandleFunc("/v1/transactions/by_hash/0xf1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"type": "user_transaction", "hash": "0xf1", "success": true})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := ledger.NewWithHTTPClient(srv.URL+"/v1", srv.Client(), ledger.WithFaucetURL(srv.URL+"/"))

	hashes, err := c.Fund(context.Background(), "0x1", 1000)
	require.NoError(t, err)
	assert.Equal(t, []string{"0xf1"}, hashes)
}

func TestRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"chain_id": 4, "ledger_version": "1"})
	}))
	defer srv.Close()

	c := ledger.NewWithHTTPClient(srv.URL, srv.Client(), ledger.WithRateLimit(0.01, 1))

	_, err := c.LedgerInfo(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.LedgerInfo(ctx)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNew_BurstIndependentOfReadCap(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"chain_id": 4, "ledger_version": "1"})
	}))
	defer srv.Close()

	cfg, err := config.New(t.TempDir())
	require.NoError(t, err)
	cfg.Settings.NodeURL = srv.URL + "/v1"
	cfg.Settings.RequestsPerSecond = 0.01
	cfg.Settings.RequestBurst = 3
	cfg.Settings.MaxConcurrentReads = 0

	c, err := ledger.New(context.Background(), cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	for range 3 {
		_, err := c.LedgerInfo(ctx)
		require.NoError(t, err)
	}
	_, err = c.LedgerInfo(ctx)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}
