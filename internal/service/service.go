// Package service defines the backend-agnostic interfaces for the ledger and
// the wallet that the todo session talks to.
package service

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned when a resource or table item does not exist.
var ErrNotFound = errors.New("not found")

// ErrTransactionFailed is returned when a transaction was committed but
// aborted by the VM.
var ErrTransactionFailed = errors.New("transaction failed")

// Ledger defines the remote read service and confirmation polling.
// All fullnode API calls go through this interface.
// The session never imports the HTTP client directly.
type Ledger interface {
	// AccountResource returns the typed resource stored under address.
	// Returns ErrNotFound if the account has no such resource.
	AccountResource(ctx context.Context, address, resourceType string) (Resource, error)

	// TableItem returns the raw JSON value stored in a table under key.
	// Returns ErrNotFound if the key is absent.
	TableItem(ctx context.Context, handle string, req TableItemRequest) (json.RawMessage, error)

	// WaitForTransaction blocks until the transaction is committed.
	// Returns ErrTransactionFailed if it committed unsuccessfully.
	WaitForTransaction(ctx context.Context, hash string) (Transaction, error)
}

// Wallet defines the connected signing account.
type Wallet interface {
	// Account returns the identity the wallet signs for.
	Account() Account

	// SignAndSubmit signs an entry function call and submits it.
	// It returns as soon as the node has accepted the transaction.
	SignAndSubmit(ctx context.Context, payload EntryFunctionPayload) (PendingTransaction, error)
}

// WalletSource loads the wallet to connect.
// It returns ErrNotFound when no wallet is available.
type WalletSource func(ctx context.Context) (Wallet, error)
