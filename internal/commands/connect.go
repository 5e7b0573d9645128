package commands

import (
	"context"
	"crypto/ed25519"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"aptodo/internal/config"
	"aptodo/internal/exitcode"
	"aptodo/internal/wallet"
)

func init() {
	Register(&ConnectCmd{})
}

// ConnectCmd implements the connect command.
// It creates or imports the local wallet; no network access is needed.
type ConnectCmd struct {
	newKey         bool
	mnemonicFile   string
	privateKeyFile string
	index          uint
}

func (c *ConnectCmd) Name() string      { return "connect" }
func (c *ConnectCmd) Aliases() []string { return []string{"login"} }
func (c *ConnectCmd) Synopsis() string  { return "Create or import a wallet" }
func (c *ConnectCmd) Usage() string {
	return "aptodo connect [--new | --mnemonic-file <file> | --private-key-file <file>] [--index <n>]"
}
func (c *ConnectCmd) NeedsBackend() bool { return false }

func (c *ConnectCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.newKey, "new", false, "")
	fs.StringVar(&c.mnemonicFile, "mnemonic-file", "", "")
	fs.StringVar(&c.privateKeyFile, "private-key-file", "", "")
	fs.UintVar(&c.index, "index", 0, "")
}

func (c *ConnectCmd) Run(ctx context.Context, cfg *config.Config, b *Backend, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	sources := 0
	for _, set := range []bool{c.newKey, c.mnemonicFile != "", c.privateKeyFile != ""} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		fmt.Fprintln(errOut, "error: --new, --mnemonic-file and --private-key-file are mutually exclusive")
		return exitcode.UserError
	}
	if c.index > math.MaxInt32 {
		fmt.Fprintf(errOut, "error: invalid account index: %d\n", c.index)
		return exitcode.UserError
	}

	// Check if a wallet is already stored
	if cfg.HasWallet() {
		key, err := wallet.Load(cfg.WalletPath())
		if err != nil {
			fmt.Fprintf(errOut, "error: invalid wallet.json: %v\n", err)
			return exitcode.WalletError
		}
		if !cfg.Quiet {
			fmt.Fprintf(out, "already connected: %s\n", addressOf(key))
		}
		return exitcode.Success
	}

	var (
		key      ed25519.PrivateKey
		mnemonic string
		err      error
	)
	switch {
	case c.privateKeyFile != "":
		var data []byte
		if data, err = os.ReadFile(c.privateKeyFile); err != nil {
			fmt.Fprintf(errOut, "error: failed to read private key: %v\n", err)
			return exitcode.UserError
		}
		key, err = wallet.ParsePrivateKey(strings.TrimSpace(string(data)))
	case c.mnemonicFile != "":
		var data []byte
		if data, err = os.ReadFile(c.mnemonicFile); err != nil {
			fmt.Fprintf(errOut, "error: failed to read mnemonic: %v\n", err)
			return exitcode.UserError
		}
		key, err = wallet.KeyFromMnemonic(string(data), uint32(c.index))
	default:
		if mnemonic, err = wallet.NewMnemonic(); err == nil {
			key, err = wallet.KeyFromMnemonic(mnemonic, uint32(c.index))
		}
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.WalletError
	}

	// Ensure config directory exists
	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.WalletError
	}
	if err := wallet.Save(cfg.WalletPath(), key); err != nil {
		fmt.Fprintf(errOut, "error: failed to save wallet: %v\n", err)
		return exitcode.WalletError
	}

	if mnemonic != "" {
		fmt.Fprintln(errOut, "Write down this recovery phrase; it is not stored:")
		fmt.Fprintf(errOut, "  %s\n", mnemonic)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, addressOf(key))
	}
	return exitcode.Success
}

func addressOf(key ed25519.PrivateKey) string {
	return wallet.AddressFromPublicKey(key.Public().(ed25519.PublicKey))
}
