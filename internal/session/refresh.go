package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"aptodo/internal/service"
)

// maxTasks bounds the counter a list resource may claim.
const maxTasks = 1 << 20

// listResource is the data of the TodoList resource.
type listResource struct {
	Counter json.RawMessage `json:"counter"`
	Tasks   struct {
		Handle string `json:"handle"`
	} `json:"tasks"`
}

// Refresh replaces the cached list of account with a fresh snapshot read from
// the ledger. An empty account clears the cache without any remote call.
//
// A missing resource yields a nil list. Any other failure resets the cache to
// nil and is returned. Tasks are returned in id order regardless of the order
// their reads complete in.
func (s *Session) Refresh(ctx context.Context, account string) (*service.TaskList, error) {
	s.mu.Lock()
	s.account = account
	s.synced = false
	s.mu.Unlock()

	if account == "" {
		s.store(account, nil, true)
		return nil, nil
	}

	log := s.log.With(zap.String("account", account))
	list, err := s.fetch(ctx, account)
	if err != nil {
		log.Warn("refresh failed", zap.Error(err))
		s.store(account, nil, false)
		return nil, err
	}
	if list == nil {
		log.Debug("account has no list")
	} else {
		log.Debug("list refreshed", zap.Int("tasks", len(list.Tasks)))
	}
	s.store(account, list, true)
	return list.Clone(), nil
}

// store replaces the cache if account is still the active one.
func (s *Session) store(account string, list *service.TaskList, synced bool) {
	s.mu.Lock()
	if s.account != account {
		s.mu.Unlock()
		return
	}
	s.list = list
	s.synced = synced
	s.mu.Unlock()
	s.notify()
}

func (s *Session) fetch(ctx context.Context, account string) (*service.TaskList, error) {
	res, err := s.ledger.AccountResource(ctx, account, s.contract.ResourceType())
	if errors.Is(err, service.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read todo list: %w", err)
	}

	var data listResource
	if err := json.Unmarshal(res.Data, &data); err != nil {
		return nil, fmt.Errorf("decode todo list: %w", err)
	}
	counter, err := parseCounter(data.Counter)
	if err != nil {
		return nil, err
	}

	list := &service.TaskList{Owner: account, Tasks: make([]service.Task, counter)}
	if counter == 0 {
		return list, nil
	}
	if data.Tasks.Handle == "" {
		return nil, errors.New("decode todo list: missing table handle")
	}

	g, gctx := errgroup.WithContext(ctx)
	if s.maxReads > 0 {
		g.SetLimit(s.maxReads)
	}
	for i := range list.Tasks {
		g.Go(func() error {
			key := strconv.Itoa(i + 1)
			raw, err := s.ledger.TableItem(gctx, data.Tasks.Handle, service.TableItemRequest{
				KeyType:   service.TaskKeyType,
				ValueType: s.contract.TaskType(),
				Key:       key,
			})
			if err != nil {
				return fmt.Errorf("read task %s: %w", key, err)
			}
			task, err := service.DecodeTask(raw)
			if err != nil {
				return fmt.Errorf("read task %s: %w", key, err)
			}
			list.Tasks[i] = task
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return list, nil
}

// parseCounter accepts the counter as a decimal string or a JSON number.
func parseCounter(raw json.RawMessage) (int, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidCounter, string(raw))
		}
		s = n.String()
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n > maxTasks {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCounter, s)
	}
	return int(n), nil
}
