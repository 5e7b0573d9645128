// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"aptodo/internal/service"
)

// TestModuleAddress is the module address used by the fakes.
const TestModuleAddress = "0x7d1b"

// Abort codes of the todo list module.
const (
	AbortNotInitialized  = 1
	AbortTaskMissing     = 2
	AbortTaskCompleted   = 3
	AbortAlreadyExisting = 0x80001
)

// Contract is the contract the fakes implement.
var Contract = service.Contract{Address: TestModuleAddress}

type fakeList struct {
	handle  string
	counter uint64
	tasks   map[uint64]service.Task
}

// FakeLedger is an in-memory ledger running the todo list module.
// Transactions submitted through a FakeWallet execute immediately and are
// reported by WaitForTransaction.
type FakeLedger struct {
	mu    sync.Mutex
	lists map[string]*fakeList
	txns  map[string]service.Transaction
	seq   int

	// RawResources overrides the resource data returned for an address.
	RawResources map[string]json.RawMessage

	// Error injection for testing
	ResourceErr  error
	TableItemErr map[string]error // key -> error
	WaitErr      error

	// TaskDelay delays the table read of a key.
	TaskDelay func(key string) time.Duration

	// WaitGate, if set, blocks WaitForTransaction until it is closed or
	// receives a value.
	WaitGate chan struct{}

	// NoEvents suppresses the task events of create_task.
	NoEvents bool

	ResourceCalls  int
	TableItemCalls int
	WaitCalls      int
	maxInFlight    int
	inFlight       int
}

// NewFakeLedger creates an empty ledger.
func NewFakeLedger() *FakeLedger {
	return &FakeLedger{
		lists:        make(map[string]*fakeList),
		txns:         make(map[string]service.Transaction),
		RawResources: make(map[string]json.RawMessage),
		TableItemErr: make(map[string]error),
	}
}

// CreateList seeds a list for owner.
func (f *FakeLedger) CreateList(owner string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createListLocked(owner)
}

// AddTask seeds a task in owner's list, creating the list if needed.
func (f *FakeLedger) AddTask(owner, content string, completed bool) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lists[owner] == nil {
		f.createListLocked(owner)
	}
	task := f.createTaskLocked(owner, content)
	if completed {
		l := f.lists[owner]
		id, _ := strconv.ParseUint(task.TaskID, 10, 64)
		task.Completed = true
		l.tasks[id] = task
	}
	return task
}

// Tasks returns owner's tasks in id order.
func (f *FakeLedger) Tasks(owner string) []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.lists[owner]
	if l == nil {
		return nil
	}
	tasks := make([]service.Task, 0, l.counter)
	for i := uint64(1); i <= l.counter; i++ {
		tasks = append(tasks, l.tasks[i])
	}
	return tasks
}

// HasList reports whether owner has a list.
func (f *FakeLedger) HasList(owner string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists[owner] != nil
}

// MaxConcurrentReads returns the peak number of concurrent table reads.
func (f *FakeLedger) MaxConcurrentReads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

// Calls returns the resource, table item and wait call counts.
func (f *FakeLedger) Calls() (resource, tableItem, wait int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ResourceCalls, f.TableItemCalls, f.WaitCalls
}

// AccountResource implements service.Ledger.
func (f *FakeLedger) AccountResource(ctx context.Context, address, resourceType string) (service.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ResourceCalls++
	if f.ResourceErr != nil {
		return service.Resource{}, f.ResourceErr
	}
	if resourceType != Contract.ResourceType() {
		return service.Resource{}, fmt.Errorf("resource %s: %w", resourceType, service.ErrNotFound)
	}
	if raw, ok := f.RawResources[address]; ok {
		return service.Resource{Type: resourceType, Data: raw}, nil
	}
	l := f.lists[address]
	if l == nil {
		return service.Resource{}, fmt.Errorf("resource %s: %w", resourceType, service.ErrNotFound)
	}
	data, err := json.Marshal(map[string]any{
		"counter": strconv.FormatUint(l.counter, 10),
		"tasks":   map[string]string{"handle": l.handle},
	})
	if err != nil {
		return service.Resource{}, err
	}
	return service.Resource{Type: resourceType, Data: data}, nil
}

// TableItem implements service.Ledger.
func (f *FakeLedger) TableItem(ctx context.Context, handle string, req service.TableItemRequest) (json.RawMessage, error) {
	f.mu.Lock()
	f.TableItemCalls++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	delay := f.TaskDelay
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if delay != nil {
		select {
		case <-time.After(delay(req.Key)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.TableItemErr[req.Key]; err != nil {
		return nil, err
	}
	if req.KeyType != service.TaskKeyType || req.ValueType != Contract.TaskType() {
		return nil, fmt.Errorf("table item %s: bad types %s/%s", req.Key, req.KeyType, req.ValueType)
	}
	id, err := strconv.ParseUint(req.Key, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("table item %q: %w", req.Key, err)
	}
	for _, l := range f.lists {
		if l.handle != handle {
			continue
		}
		task, ok := l.tasks[id]
		if !ok {
			break
		}
		return json.Marshal(task)
	}
	return nil, fmt.Errorf("table item %s: %w", req.Key, service.ErrNotFound)
}

// WaitForTransaction implements service.Ledger.
func (f *FakeLedger) WaitForTransaction(ctx context.Context, hash string) (service.Transaction, error) {
	f.mu.Lock()
	f.WaitCalls++
	gate := f.WaitGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return service.Transaction{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WaitErr != nil {
		return service.Transaction{}, f.WaitErr
	}
	tx, ok := f.txns[hash]
	if !ok {
		return service.Transaction{}, fmt.Errorf("transaction %s: %w", hash, service.ErrNotFound)
	}
	if !tx.Success {
		return tx, fmt.Errorf("%w: %s", service.ErrTransactionFailed, tx.VMStatus)
	}
	return tx, nil
}

// execute runs payload as sender and records the resulting transaction.
func (f *FakeLedger) execute(sender string, payload service.EntryFunctionPayload) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	tx := service.Transaction{
		Hash:    fmt.Sprintf("0x%064x", f.seq),
		Version: strconv.Itoa(f.seq),
		Success: true,
	}
	if code := f.applyLocked(sender, payload, &tx); code != 0 {
		tx.Success = false
		tx.VMStatus = fmt.Sprintf("Move abort in %s::%s: 0x%x", TestModuleAddress, service.ModuleName, code)
		tx.Events = nil
	} else {
		tx.VMStatus = "Executed successfully"
	}
	f.txns[tx.Hash] = tx
	return tx.Hash
}

func (f *FakeLedger) applyLocked(sender string, payload service.EntryFunctionPayload, tx *service.Transaction) int {
	switch payload.Function {
	case Contract.EntryFunction(service.EntryCreateList):
		if f.lists[sender] != nil {
			return AbortAlreadyExisting
		}
		f.createListLocked(sender)
	case Contract.EntryFunction(service.EntryCreateTask):
		if f.lists[sender] == nil {
			return AbortNotInitialized
		}
		content, _ := argString(payload.Arguments, 0)
		task := f.createTaskLocked(sender, content)
		if !f.NoEvents {
			data, _ := json.Marshal(task)
			tx.Events = append(tx.Events, service.Event{Type: Contract.TaskType(), Data: data})
		}
	case Contract.EntryFunction(service.EntryCompleteTask):
		l := f.lists[sender]
		if l == nil {
			return AbortNotInitialized
		}
		raw, _ := argString(payload.Arguments, 0)
		id, err := strconv.ParseUint(raw, 10, 64)
		task, ok := l.tasks[id]
		if err != nil || !ok {
			return AbortTaskMissing
		}
		if task.Completed {
			return AbortTaskCompleted
		}
		task.Completed = true
		l.tasks[id] = task
	default:
		return 0xffff
	}
	return 0
}

func (f *FakeLedger) createListLocked(owner string) {
	f.lists[owner] = &fakeList{
		handle: fmt.Sprintf("0x%x", len(f.lists)+0x100),
		tasks:  make(map[uint64]service.Task),
	}
}

func (f *FakeLedger) createTaskLocked(owner, content string) service.Task {
	l := f.lists[owner]
	l.counter++
	task := service.Task{
		TaskID:  strconv.FormatUint(l.counter, 10),
		Address: owner,
		Content: content,
	}
	l.tasks[l.counter] = task
	return task
}

func argString(args []any, i int) (string, bool) {
	if i >= len(args) {
		return "", false
	}
	s, ok := args[i].(string)
	return s, ok
}
