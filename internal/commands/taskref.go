package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"aptodo/internal/service"
	"aptodo/internal/session"
)

// ErrTaskIDRequired indicates no task id was provided.
var ErrTaskIDRequired = errors.New("task id required")

// ParseTaskID parses a task id from args.
//
// Parsing rules:
// 1. No args → error: task id required
// 2. More than one arg → error: too many arguments
// 3. An optional leading '#' is stripped
// 4. The rest must be a positive decimal integer → canonical form without leading zeros
// 5. Otherwise → error: invalid task id: <arg>
func ParseTaskID(args []string) (string, error) {
	if len(args) == 0 {
		return "", ErrTaskIDRequired
	}
	if len(args) > 1 {
		return "", fmt.Errorf("too many arguments: %v", args[1:])
	}

	arg := args[0]
	s := arg
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if !isAllDigits(s) {
		return "", fmt.Errorf("invalid task id: %s", arg)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return "", fmt.Errorf("invalid task id: %s", arg)
	}
	return strconv.FormatUint(n, 10), nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// findTask looks up a task by id in the snapshot's list.
func findTask(snap session.Snapshot, id string) (service.Task, bool) {
	if snap.List == nil {
		return service.Task{}, false
	}
	for _, t := range snap.List.Tasks {
		if t.TaskID == id {
			return t, true
		}
	}
	return service.Task{}, false
}
