package session

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic handling.
var (
	// ErrInvalidCounter means the list resource's counter is not a
	// non-negative integer.
	ErrInvalidCounter = errors.New("invalid task counter")

	// ErrInvalidTaskID means a cached task id is not a decimal integer.
	ErrInvalidTaskID = errors.New("invalid task id")

	// ErrBusy is returned by Dispatch while another action is in flight.
	ErrBusy = errors.New("another transaction is in progress")

	// ErrNoWallet is returned by Connect when no wallet is stored.
	ErrNoWallet = errors.New("wallet not connected")
)

// Stage is the step of a write action that failed.
type Stage string

const (
	StageSubmit  Stage = "submit"
	StageConfirm Stage = "confirm"
	StageApply   Stage = "apply"
)

// ActionError wraps a failed write action with its context.
type ActionError struct {
	Action string // "create list", "add task", "complete task"
	Stage  Stage
	Hash   string // transaction hash, empty before submission
	Err    error
}

func (e *ActionError) Error() string {
	if e.Hash != "" {
		return fmt.Sprintf("%s: %s %s: %v", e.Action, e.Stage, e.Hash, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Action, e.Stage, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
