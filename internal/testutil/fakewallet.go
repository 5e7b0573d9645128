package testutil

import (
	"context"
	"sync"

	"aptodo/internal/service"
)

// TestAccount is the account address of the default FakeWallet.
const TestAccount = "0x3a9f2c4e8b1d7f6a5c0e9d8b7a6f5e4d3c2b1a0f9e8d7c6b5a4f3e2d1c0b9a8f"

// FakeWallet is a wallet that submits to a FakeLedger.
type FakeWallet struct {
	Ledger  *FakeLedger
	Address string

	// Error injection for testing
	SubmitErr error

	mu        sync.Mutex
	submitted []service.EntryFunctionPayload
}

// NewFakeWallet creates a wallet for TestAccount.
func NewFakeWallet(ledger *FakeLedger) *FakeWallet {
	return &FakeWallet{Ledger: ledger, Address: TestAccount}
}

// Account implements service.Wallet.
func (w *FakeWallet) Account() service.Account {
	return service.Account{Address: w.Address, PublicKey: "0xfeed"}
}

// SignAndSubmit implements service.Wallet.
func (w *FakeWallet) SignAndSubmit(ctx context.Context, payload service.EntryFunctionPayload) (service.PendingTransaction, error) {
	w.mu.Lock()
	w.submitted = append(w.submitted, payload)
	w.mu.Unlock()

	if w.SubmitErr != nil {
		return service.PendingTransaction{}, w.SubmitErr
	}
	if err := ctx.Err(); err != nil {
		return service.PendingTransaction{}, err
	}
	return service.PendingTransaction{Hash: w.Ledger.execute(w.Address, payload)}, nil
}

// Submitted returns the payloads passed to SignAndSubmit.
func (w *FakeWallet) Submitted() []service.EntryFunctionPayload {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]service.EntryFunctionPayload, len(w.submitted))
	copy(out, w.submitted)
	return out
}

// Source returns a wallet source yielding w.
func (w *FakeWallet) Source() service.WalletSource {
	return func(ctx context.Context) (service.Wallet, error) {
		return w, nil
	}
}
