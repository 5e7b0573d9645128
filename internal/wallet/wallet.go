package wallet

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"time"

	"go.uber.org/zap"

	"aptodo/internal/config"
	"aptodo/internal/ledger"
	"aptodo/internal/service"
)

// defaultGasUnitPrice is used when the node returns no estimate.
const defaultGasUnitPrice = 100

// Node is the subset of the ledger client the wallet submits through.
type Node interface {
	AccountInfo(ctx context.Context, address string) (ledger.AccountInfo, error)
	EstimateGasPrice(ctx context.Context) (ledger.GasEstimate, error)
	EncodeSubmission(ctx context.Context, txn ledger.UserTransactionRequest) ([]byte, error)
	SubmitTransaction(ctx context.Context, txn ledger.UserTransactionRequest) (service.PendingTransaction, error)
}

// Wallet implements service.Wallet with a local private key.
type Wallet struct {
	key     ed25519.PrivateKey
	account service.Account
	node    Node
	log     *zap.Logger

	maxGas uint64
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Wallet.
type Option func(*Wallet)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(w *Wallet) {
		w.log = log
	}
}

// WithMaxGasAmount sets the gas limit of submitted transactions.
func WithMaxGasAmount(n uint64) Option {
	return func(w *Wallet) {
		if n > 0 {
			w.maxGas = n
		}
	}
}

// WithTTL sets how long a submitted transaction stays valid.
func WithTTL(d time.Duration) Option {
	return func(w *Wallet) {
		if d > 0 {
			w.ttl = d
		}
	}
}

// WithClock overrides the clock used for expiration timestamps.
func WithClock(now func() time.Time) Option {
	return func(w *Wallet) {
		w.now = now
	}
}

// New creates a wallet that signs with key and submits through node.
func New(key ed25519.PrivateKey, node Node, opts ...Option) *Wallet {
	pub := key.Public().(ed25519.PublicKey)
	w := &Wallet{
		key: key,
		account: service.Account{
			Address:   AddressFromPublicKey(pub),
			PublicKey: hexKey(pub),
		},
		node:   node,
		log:    zap.NewNop(),
		maxGas: config.DefaultMaxGasAmount,
		ttl:    config.DefaultTxnTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Account implements service.Wallet.
func (w *Wallet) Account() service.Account {
	return w.account
}

// SignAndSubmit implements service.Wallet.
func (w *Wallet) SignAndSubmit(ctx context.Context, payload service.EntryFunctionPayload) (service.PendingTransaction, error) {
	info, err := w.node.AccountInfo(ctx, w.account.Address)
	if err != nil {
		return service.PendingTransaction{}, fmt.Errorf("fetch account: %w", err)
	}
	seq, err := info.Sequence()
	if err != nil {
		return service.PendingTransaction{}, err
	}

	gas, err := w.node.EstimateGasPrice(ctx)
	if err != nil {
		return service.PendingTransaction{}, fmt.Errorf("estimate gas: %w", err)
	}
	price := gas.GasEstimate
	if price == 0 {
		price = defaultGasUnitPrice
	}

	txn := ledger.NewUserTransaction(w.account.Address, seq, w.maxGas, price, w.now().Add(w.ttl), payload)
	msg, err := w.node.EncodeSubmission(ctx, txn)
	if err != nil {
		return service.PendingTransaction{}, fmt.Errorf("encode transaction: %w", err)
	}

	txn.Signature = &ledger.Signature{
		Type:      ledger.SignatureEd25519,
		PublicKey: w.account.PublicKey,
		Signature: hexKey(ed25519.Sign(w.key, msg)),
	}

	w.log.Debug("signing transaction",
		zap.String("function", payload.Function),
		zap.Uint64("sequence", seq),
		zap.Uint64("gas_unit_price", price))

	pending, err := w.node.SubmitTransaction(ctx, txn)
	if err != nil {
		return service.PendingTransaction{}, fmt.Errorf("submit transaction: %w", err)
	}
	return pending, nil
}

// Source returns a WalletSource that loads the wallet stored in cfg.
func Source(cfg *config.Config, node Node) service.WalletSource {
	return func(ctx context.Context) (service.Wallet, error) {
		key, err := Load(cfg.WalletPath())
		if err != nil {
			return nil, err
		}
		return New(key, node,
			WithLogger(cfg.Logger()),
			WithMaxGasAmount(cfg.Settings.MaxGasAmount),
			WithTTL(cfg.Settings.TxnTTL.Std()),
		), nil
	}
}

var _ service.Wallet = (*Wallet)(nil)
