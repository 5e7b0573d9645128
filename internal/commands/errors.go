package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"aptodo/internal/exitcode"
	"aptodo/internal/service"
	"aptodo/internal/session"
)

// report prints err as an "error: ..." line and returns its exit code.
func report(errOut io.Writer, err error) int {
	var ae *session.ActionError
	switch {
	case errors.Is(err, session.ErrNoWallet):
		fmt.Fprintln(errOut, "error: not connected (run: aptodo connect)")
		return exitcode.WalletError
	case errors.Is(err, session.ErrBusy):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(errOut, "error: cancelled")
		return exitcode.BackendError
	case errors.As(err, &ae) && errors.Is(err, service.ErrTransactionFailed):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// connectSession loads the stored wallet into the session and reads its list.
func connectSession(ctx context.Context, b *Backend, errOut io.Writer) int {
	if err := b.Session.Connect(ctx); err != nil {
		return report(errOut, err)
	}
	return exitcode.Success
}

// requireList connects and fails unless the account has a list.
func requireList(ctx context.Context, b *Backend, errOut io.Writer) (session.Snapshot, int) {
	if code := connectSession(ctx, b, errOut); code != exitcode.Success {
		return session.Snapshot{}, code
	}
	snap := b.Session.Snapshot()
	if !snap.HasList() {
		fmt.Fprintln(errOut, "error: no todo list (run: aptodo createlist)")
		return snap, exitcode.UserError
	}
	return snap, exitcode.Success
}
