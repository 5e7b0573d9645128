// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task, missing list).
	UserError = 1

	// WalletError indicates a wallet error (not connected, bad key material).
	WalletError = 2

	// BackendError indicates a ledger, network or transaction error.
	BackendError = 3
)
