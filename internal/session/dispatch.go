package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aptodo/internal/logging"
	"aptodo/internal/service"
)

// errSkip marks an action whose preconditions do not hold.
var errSkip = errors.New("skip")

// inflight is the state captured when an action starts.
type inflight struct {
	name    string
	log     *zap.Logger
	wallet  service.Wallet
	account string
	list    *service.TaskList
}

// Dispatch runs a write action: submit, wait for confirmation, then update
// the local list. Only one action runs at a time; a second call while one is
// pending returns ErrBusy.
//
// Actions whose preconditions are not met return nil without any remote call:
// every action needs a connected wallet, AddTask and CompleteTask also need
// an existing list. Failures leave the list unchanged except for CreateList,
// which resets it to nil. The pending flag is always cleared on return.
func (s *Session) Dispatch(ctx context.Context, intent Intent) error {
	switch in := intent.(type) {
	case CreateList:
		return s.createList(ctx, in)
	case AddTask:
		return s.addTask(ctx, in)
	case CompleteTask:
		return s.completeTask(ctx, in)
	default:
		return fmt.Errorf("unknown action %T", intent)
	}
}

func (s *Session) createList(ctx context.Context, in CreateList) error {
	fl, err := s.start(in, false)
	if err != nil {
		return skipped(err)
	}
	defer s.finish()

	_, err = s.submit(ctx, fl, s.contract.Payload(service.EntryCreateList))

	s.mu.Lock()
	if s.account == fl.account {
		if err != nil {
			s.list = nil
		} else {
			s.list = &service.TaskList{Owner: fl.account, Tasks: []service.Task{}}
		}
	}
	s.mu.Unlock()
	return err
}

func (s *Session) addTask(ctx context.Context, in AddTask) error {
	fl, err := s.start(in, true)
	if err != nil {
		return skipped(err)
	}
	defer s.finish()

	var next string
	if s.strategy == StrategyPredict {
		if next, err = nextTaskID(fl.list); err != nil {
			return err
		}
	}

	tx, err := s.submit(ctx, fl, s.contract.Payload(service.EntryCreateTask, in.Content))
	if err != nil {
		return err
	}

	task := service.Task{TaskID: next, Address: fl.account, Content: in.Content}
	if s.strategy == StrategyConfirm {
		var ok bool
		if task, ok = s.taskFromEvents(fl, tx); !ok {
			fl.log.Debug("no task event, refreshing")
			if _, err := s.Refresh(ctx, fl.account); err != nil {
				return &ActionError{Action: fl.name, Stage: StageApply, Hash: tx.Hash, Err: err}
			}
			return nil
		}
	}

	s.mu.Lock()
	if s.account == fl.account && s.list != nil {
		s.list.Tasks = append(s.list.Tasks, task)
	}
	s.mu.Unlock()
	fl.log.Info("task added", zap.String("task_id", task.TaskID))
	return nil
}

func (s *Session) completeTask(ctx context.Context, in CompleteTask) error {
	if !in.Checked {
		return nil
	}
	fl, err := s.start(in, true)
	if err != nil {
		return skipped(err)
	}
	defer s.finish()

	if _, err := s.submit(ctx, fl, s.contract.Payload(service.EntryCompleteTask, in.TaskID)); err != nil {
		return err
	}

	s.mu.Lock()
	if s.account == fl.account && s.list != nil {
		for i := range s.list.Tasks {
			if s.list.Tasks[i].TaskID == in.TaskID {
				s.list.Tasks[i].Completed = true
			}
		}
	}
	s.mu.Unlock()
	fl.log.Info("task completed", zap.String("task_id", in.TaskID))
	return nil
}

// start checks preconditions and marks an action as pending.
func (s *Session) start(in Intent, needList bool) (*inflight, error) {
	s.mu.Lock()
	if s.wallet == nil || s.account == "" || s.wallet.Account().Address != s.account {
		s.mu.Unlock()
		return nil, errSkip
	}
	if needList && s.list == nil {
		s.mu.Unlock()
		return nil, errSkip
	}
	if s.pending {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.pending = true
	s.phase = PhaseSubmitting
	fl := &inflight{
		name:    in.Name(),
		wallet:  s.wallet,
		account: s.account,
		list:    s.list.Clone(),
	}
	s.mu.Unlock()

	fl.log = s.log.With(
		zap.String("action", fl.name),
		zap.String("action_id", uuid.NewString()),
		zap.String("account", fl.account),
	)
	fl.log.Debug("action started")
	s.notify()
	return fl, nil
}

func (s *Session) finish() {
	s.mu.Lock()
	s.pending = false
	s.phase = PhaseIdle
	s.mu.Unlock()
	s.notify()
}

func (s *Session) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
	s.notify()
}

// submit signs and submits payload and waits for it to commit.
func (s *Session) submit(ctx context.Context, fl *inflight, payload service.EntryFunctionPayload) (service.Transaction, error) {
	pending, err := fl.wallet.SignAndSubmit(ctx, payload)
	if err != nil {
		fl.log.Warn("submit failed", zap.Error(err))
		return service.Transaction{}, &ActionError{Action: fl.name, Stage: StageSubmit, Err: err}
	}
	fl.log.Debug("transaction submitted", zap.String("hash", logging.Short(pending.Hash)))
	s.setPhase(PhaseAwaitingConfirmation)

	tx, err := s.ledger.WaitForTransaction(ctx, pending.Hash)
	if err != nil {
		fl.log.Warn("confirmation failed", zap.String("hash", logging.Short(pending.Hash)), zap.Error(err))
		return service.Transaction{}, &ActionError{Action: fl.name, Stage: StageConfirm, Hash: pending.Hash, Err: err}
	}
	fl.log.Debug("transaction committed", zap.String("hash", logging.Short(tx.Hash)), zap.String("version", tx.Version))
	return tx, nil
}

func (s *Session) taskFromEvents(fl *inflight, tx service.Transaction) (service.Task, bool) {
	for _, ev := range tx.Events {
		if ev.Type != s.contract.TaskType() {
			continue
		}
		task, err := service.DecodeTask(ev.Data)
		if err != nil {
			fl.log.Warn("bad task event", zap.Error(err))
			return service.Task{}, false
		}
		return task, true
	}
	return service.Task{}, false
}

// nextTaskID predicts the id the ledger assigns to the next task: one past
// the last cached task, or "1" for an empty list.
func nextTaskID(list *service.TaskList) (string, error) {
	if list == nil || len(list.Tasks) == 0 {
		return "1", nil
	}
	last := list.Tasks[len(list.Tasks)-1].TaskID
	n, err := strconv.ParseUint(last, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTaskID, last)
	}
	return strconv.FormatUint(n+1, 10), nil
}

func skipped(err error) error {
	if errors.Is(err, errSkip) {
		return nil
	}
	return err
}
