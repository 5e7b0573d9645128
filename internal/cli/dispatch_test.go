package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aptodo/internal/cli"
	"aptodo/internal/commands"
	"aptodo/internal/config"
	"aptodo/internal/exitcode"
	"aptodo/internal/session"
	"aptodo/internal/testutil"
)

// testFactory creates a backend factory over the given fake ledger.
func testFactory(ledger *testutil.FakeLedger) cli.BackendFactory {
	return func(ctx context.Context, cfg *config.Config) (*commands.Backend, error) {
		w := testutil.NewFakeWallet(ledger)
		sess := session.New(ledger, cfg.Contract(),
			session.WithLogger(cfg.Logger()),
			session.WithWalletSource(w.Source()),
		)
		return &commands.Backend{Session: sess}, nil
	}
}

func run(t *testing.T, factory cli.BackendFactory, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EnvModuleAddress, testutil.TestModuleAddress)

	var outBuf, errBuf bytes.Buffer
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)
	code = dispatcher.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	_, stderr, code := run(t, nil, "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	_, stderr, code := run(t, nil, "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	stdout, stderr, code := run(t, nil, "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	stdout, _, code := run(t, nil, "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "aptodo 0.1.0\n" {
		t.Errorf("expected 'aptodo 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	_, stderr, code := run(t, nil, "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NoArgsListsTasks(t *testing.T) {
	ledger := testutil.NewFakeLedger()
	ledger.AddTask(testutil.TestAccount, "Buy milk", false)

	stdout, stderr, code := run(t, testFactory(ledger))

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "   1  [ ] Buy milk  0x3a9f...9a8f\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestDispatcher_AddThenList(t *testing.T) {
	ledger := testutil.NewFakeLedger()
	ledger.CreateList(testutil.TestAccount)
	factory := testFactory(ledger)

	if _, stderr, code := run(t, factory, "add", "--quiet", "Buy", "eggs"); code != exitcode.Success {
		t.Fatalf("add failed: %d %q", code, stderr)
	}
	stdout, _, _ := run(t, factory, "list", "--format", "json")
	if !strings.Contains(stdout, `"content": "Buy eggs"`) {
		t.Errorf("unexpected list output %q", stdout)
	}
}

func TestDispatcher_ModuleAddressRequired(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EnvModuleAddress, "")

	var outBuf, errBuf bytes.Buffer
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeLedger()))
	code := dispatcher.Run(context.Background(), []string{"list", "--config", t.TempDir()}, &outBuf, &errBuf)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(errBuf.String(), "module_address not set") {
		t.Errorf("unexpected stderr %q", errBuf.String())
	}
}

func TestDispatcher_BadConfigFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte("bogus = 1\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, stderr, code := run(t, nil, "version", "--config", dir)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: config: ") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	factory := func(ctx context.Context, cfg *config.Config) (*commands.Backend, error) {
		return nil, errors.New("dial tcp: refused")
	}

	_, stderr, code := run(t, factory, "list")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: dial tcp: refused\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_DebugLogsToStderr(t *testing.T) {
	_, stderr, code := run(t, nil, "version", "--debug")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stderr, "dispatch") {
		t.Errorf("expected debug log on stderr, got %q", stderr)
	}
}
