// Package session keeps the local view of an account's todo list in step with
// the ledger and runs the list's write actions.
//
// A Session is the only writer of the local task cache. Refresh replaces the
// cache with a full snapshot read from the ledger; Dispatch runs one write
// action at a time and updates the cache once the transaction is confirmed.
// The mutex is never held across a remote call.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"aptodo/internal/service"
)

// Phase is the state of the write action in flight.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseAwaitingConfirmation
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseAwaitingConfirmation:
		return "awaiting confirmation"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// AddStrategy selects how AddTask learns the id of the created task.
type AddStrategy string

const (
	// StrategyPredict assumes ids are assigned sequentially and predicts it.
	StrategyPredict AddStrategy = "predict"

	// StrategyConfirm reads the task from the confirmed transaction's event,
	// falling back to a full refresh.
	StrategyConfirm AddStrategy = "confirm"
)

// Snapshot is a copy of the session state.
type Snapshot struct {
	// Account is the active account address; empty when disconnected.
	Account string

	// List is nil when the account has no list yet.
	List *service.TaskList

	// Pending is true while a write action is in flight.
	Pending bool
	Phase   Phase
}

// Connected reports whether an account is active.
func (s Snapshot) Connected() bool {
	return s.Account != ""
}

// HasList reports whether the account has a list.
func (s Snapshot) HasList() bool {
	return s.List != nil
}

// Session synchronizes the local task list with the ledger.
type Session struct {
	ledger   service.Ledger
	source   service.WalletSource
	contract service.Contract
	log      *zap.Logger

	strategy AddStrategy
	maxReads int

	mu       sync.Mutex
	observer func(Snapshot)
	wallet   service.Wallet
	account  string
	synced   bool
	list     *service.TaskList
	pending  bool
	phase    Phase
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// WithWalletSource sets where Connect loads the wallet from.
func WithWalletSource(src service.WalletSource) Option {
	return func(s *Session) {
		s.source = src
	}
}

// WithAddStrategy sets the AddTask strategy. Unknown values keep the default.
func WithAddStrategy(st AddStrategy) Option {
	return func(s *Session) {
		switch st {
		case StrategyPredict, StrategyConfirm:
			s.strategy = st
		}
	}
}

// WithMaxConcurrentReads caps the table-item fan-out of Refresh.
// Zero means no cap.
func WithMaxConcurrentReads(n int) Option {
	return func(s *Session) {
		s.maxReads = n
	}
}

// WithObserver registers fn to receive a snapshot after every state change.
// fn is called without the session lock held.
func WithObserver(fn func(Snapshot)) Option {
	return func(s *Session) {
		s.observer = fn
	}
}

// New creates a disconnected session.
func New(ledger service.Ledger, contract service.Contract, opts ...Option) *Session {
	s := &Session{
		ledger:   ledger,
		contract: contract,
		log:      zap.NewNop(),
		strategy: StrategyPredict,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Account: s.account,
		List:    s.list.Clone(),
		Pending: s.pending,
		Phase:   s.phase,
	}
}

// SetObserver replaces the observer registered with WithObserver.
func (s *Session) SetObserver(fn func(Snapshot)) {
	s.mu.Lock()
	s.observer = fn
	s.mu.Unlock()
}

func (s *Session) notify() {
	s.mu.Lock()
	fn := s.observer
	snap := s.snapshotLocked()
	s.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

// Connect loads the wallet from the wallet source and makes its account
// active, refreshing the list if the account changed.
// Returns ErrNoWallet if no wallet is stored.
func (s *Session) Connect(ctx context.Context) error {
	if s.source == nil {
		return ErrNoWallet
	}
	w, err := s.source(ctx)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return fmt.Errorf("%w: %v", ErrNoWallet, err)
		}
		return fmt.Errorf("load wallet: %w", err)
	}
	return s.ConnectWallet(ctx, w)
}

// ConnectWallet makes w the signing wallet and its account the active one.
func (s *Session) ConnectWallet(ctx context.Context, w service.Wallet) error {
	s.mu.Lock()
	s.wallet = w
	s.mu.Unlock()

	s.log.Info("wallet connected", zap.String("account", w.Account().Address))
	return s.SetAccount(ctx, w.Account().Address)
}

// Disconnect drops the wallet, the active account and the cached list.
func (s *Session) Disconnect() {
	s.mu.Lock()
	s.wallet = nil
	s.account = ""
	s.synced = false
	s.list = nil
	s.mu.Unlock()

	s.log.Info("wallet disconnected")
	s.notify()
}

// SetAccount makes account the active account. The list is refreshed
// whenever the account identity changes or has not been read yet.
func (s *Session) SetAccount(ctx context.Context, account string) error {
	s.mu.Lock()
	unchanged := s.account == account && s.synced
	s.mu.Unlock()

	if unchanged {
		return nil
	}
	_, err := s.Refresh(ctx, account)
	return err
}
