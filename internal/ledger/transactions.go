package ledger

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"aptodo/internal/service"
)

// Transaction types reported by the node.
const (
	TypePendingTransaction = "pending_transaction"
	TypeUserTransaction    = "user_transaction"

	// PayloadEntryFunction is the payload type of entry function calls.
	PayloadEntryFunction = "entry_function_payload"

	// SignatureEd25519 is the signature type of single-key Ed25519 accounts.
	SignatureEd25519 = "ed25519_signature"
)

// TransactionPayload is an entry function payload tagged with its type.
type TransactionPayload struct {
	Type string `json:"type"`
	service.EntryFunctionPayload
}

// Signature authenticates a submitted transaction.
type Signature struct {
	Type      string `json:"type"`
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

// UserTransactionRequest is the JSON form of an unsigned or signed transaction.
// u64 fields are decimal strings.
type UserTransactionRequest struct {
	Sender                  string             `json:"sender"`
	SequenceNumber          string             `json:"sequence_number"`
	MaxGasAmount            string             `json:"max_gas_amount"`
	GasUnitPrice            string             `json:"gas_unit_price"`
	ExpirationTimestampSecs string             `json:"expiration_timestamp_secs"`
	Payload                 TransactionPayload `json:"payload"`
	Signature               *Signature         `json:"signature,omitempty"`
}

// NewUserTransaction builds an unsigned entry function transaction.
func NewUserTransaction(sender string, seq, maxGas, gasPrice uint64, expires time.Time, payload service.EntryFunctionPayload) UserTransactionRequest {
	return UserTransactionRequest{
		Sender:                  sender,
		SequenceNumber:          strconv.FormatUint(seq, 10),
		MaxGasAmount:            strconv.FormatUint(maxGas, 10),
		GasUnitPrice:            strconv.FormatUint(gasPrice, 10),
		ExpirationTimestampSecs: strconv.FormatInt(expires.Unix(), 10),
		Payload: TransactionPayload{
			Type:                 PayloadEntryFunction,
			EntryFunctionPayload: payload,
		},
	}
}

// transactionResponse covers both pending and committed transactions.
type transactionResponse struct {
	Type     string          `json:"type"`
	Hash     string          `json:"hash"`
	Version  string          `json:"version"`
	Success  bool            `json:"success"`
	VMStatus string          `json:"vm_status"`
	Events   []service.Event `json:"events"`
}

// EncodeSubmission asks the node for the signing message of txn.
func (c *Client) EncodeSubmission(ctx context.Context, txn UserTransactionRequest) ([]byte, error) {
	var encoded string
	if err := c.do(ctx, http.MethodPost, c.nodeURL("transactions", "encode_submission"), txn, &encoded); err != nil {
		return nil, err
	}
	msg, err := hex.DecodeString(strings.TrimPrefix(encoded, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid signing message: %w", err)
	}
	return msg, nil
}

// SubmitTransaction submits a signed transaction.
func (c *Client) SubmitTransaction(ctx context.Context, txn UserTransactionRequest) (service.PendingTransaction, error) {
	if txn.Signature == nil {
		return service.PendingTransaction{}, errors.New("transaction is not signed")
	}
	var resp transactionResponse
	if err := c.do(ctx, http.MethodPost, c.nodeURL("transactions"), txn, &resp); err != nil {
		return service.PendingTransaction{}, err
	}
	c.log.Debug("transaction submitted", zap.String("hash", resp.Hash))
	return service.PendingTransaction{Hash: resp.Hash}, nil
}

// TransactionByHash returns the transaction and whether it is still pending.
func (c *Client) TransactionByHash(ctx context.Context, hash string) (service.Transaction, bool, error) {
	var resp transactionResponse
	if err := c.do(ctx, http.MethodGet, c.nodeURL("transactions", "by_hash", hash), nil, &resp); err != nil {
		return service.Transaction{}, false, err
	}
	tx := service.Transaction{
		Hash:     resp.Hash,
		Version:  resp.Version,
		Success:  resp.Success,
		VMStatus: resp.VMStatus,
		Events:   resp.Events,
	}
	return tx, resp.Type == TypePendingTransaction, nil
}

// WaitForTransaction polls until hash is committed or the confirm timeout
// elapses. A hash the node does not know yet is treated as pending.
func (c *Client) WaitForTransaction(ctx context.Context, hash string) (service.Transaction, error) {
	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		tx, pending, err := c.TransactionByHash(ctx, hash)
		switch {
		case errors.Is(err, service.ErrNotFound):
			// not indexed yet
		case err != nil:
			if parent.Err() == nil && ctx.Err() != nil {
				return service.Transaction{}, fmt.Errorf("%w: waiting for transaction %s", ErrTimeout, hash)
			}
			return service.Transaction{}, err
		case !pending:
			if !tx.Success {
				return tx, fmt.Errorf("%w: %s", service.ErrTransactionFailed, tx.VMStatus)
			}
			return tx, nil
		}

		select {
		case <-ctx.Done():
			if parent.Err() != nil {
				return service.Transaction{}, parent.Err()
			}
			return service.Transaction{}, fmt.Errorf("%w: waiting for transaction %s", ErrTimeout, hash)
		case <-ticker.C:
		}
	}
}

// Fund asks the faucet to mint amount octas to address and waits for every
// resulting transaction.
func (c *Client) Fund(ctx context.Context, address string, amount uint64) ([]string, error) {
	if c.faucetURL == "" {
		return nil, errors.New("no faucet configured")
	}
	q := url.Values{}
	q.Set("address", address)
	q.Set("amount", strconv.FormatUint(amount, 10))

	var hashes []string
	if err := c.do(ctx, http.MethodPost, c.faucetURL+"/mint?"+q.Encode(), nil, &hashes); err != nil {
		return nil, err
	}
	for _, h := range hashes {
		if _, err := c.WaitForTransaction(ctx, h); err != nil {
			return hashes, err
		}
	}
	return hashes, nil
}
