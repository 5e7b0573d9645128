// Package config handles the XDG configuration directory, the config file and
// the paths of stored credentials.
package config

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"aptodo/internal/service"
)

const (
	// AppName is the application directory name.
	AppName = "aptodo"

	// ConfigFile is the optional TOML settings filename.
	ConfigFile = "config.toml"

	// WalletFile is the stored wallet key filename.
	WalletFile = "wallet.json"
)

// Defaults for the devnet deployment.
const (
	DefaultNodeURL     = "https://fullnode.devnet.aptoslabs.com/v1"
	DefaultFaucetURL   = "https://faucet.devnet.aptoslabs.com"
	DefaultExplorerURL = "https://explorer.aptoslabs.com"

	DefaultConfirmTimeout = 30 * time.Second
	DefaultPollInterval   = 500 * time.Millisecond
	DefaultTxnTTL         = 60 * time.Second
	DefaultMaxGasAmount   = 200000
	DefaultRequestBurst   = 8
)

// Add strategies.
const (
	// AddStrategyPredict appends the client-predicted task id.
	AddStrategyPredict = "predict"

	// AddStrategyConfirm reads the created task back from the transaction.
	AddStrategyConfirm = "confirm"
)

// ModuleAddress is the account the todolist module is published under.
// Set at build time with -ldflags "-X aptodo/internal/config.ModuleAddress=0x...".
var ModuleAddress = ""

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Settings are loaded from config.toml and the environment.
	Settings Settings

	log *zap.Logger
}

// Settings are the user-tunable values of config.toml.
type Settings struct {
	NodeURL       string `toml:"node_url"`
	FaucetURL     string `toml:"faucet_url"`
	ExplorerURL   string `toml:"explorer_url"`
	ModuleAddress string `toml:"module_address"`
	APIKey        string `toml:"api_key"`

	AddStrategy        string   `toml:"add_strategy"`
	MaxConcurrentReads int      `toml:"max_concurrent_reads"`
	RequestsPerSecond  float64  `toml:"requests_per_second"`
	RequestBurst       int      `toml:"request_burst"`
	ConfirmTimeout     Duration `toml:"confirm_timeout"`
	PollInterval       Duration `toml:"poll_interval"`
	TxnTTL             Duration `toml:"txn_ttl"`
	MaxGasAmount       uint64   `toml:"max_gas_amount"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		NodeURL:        DefaultNodeURL,
		FaucetURL:      DefaultFaucetURL,
		ExplorerURL:    DefaultExplorerURL,
		ModuleAddress:  ModuleAddress,
		AddStrategy:    AddStrategyPredict,
		ConfirmTimeout: Duration(DefaultConfirmTimeout),
		PollInterval:   Duration(DefaultPollInterval),
		TxnTTL:         Duration(DefaultTxnTTL),
		MaxGasAmount:   DefaultMaxGasAmount,
		RequestBurst:   DefaultRequestBurst,
	}
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/aptodo or $HOME/.config/aptodo.
// Settings hold defaults until Load is called.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{Dir: dir, Settings: DefaultSettings()}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to the TOML settings file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// WalletPath returns the path to the stored wallet file.
func (c *Config) WalletPath() string {
	return filepath.Join(c.Dir, WalletFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasWallet checks if the wallet file exists.
func (c *Config) HasWallet() bool {
	_, err := os.Stat(c.WalletPath())
	return err == nil
}

// RemoveWallet deletes the wallet file.
func (c *Config) RemoveWallet() error {
	return os.Remove(c.WalletPath())
}

// Contract returns the configured todolist module.
func (c *Config) Contract() service.Contract {
	return service.Contract{Address: c.Settings.ModuleAddress}
}

// Logger returns the configured logger, or a no-op logger if none was set.
func (c *Config) Logger() *zap.Logger {
	if c == nil || c.log == nil {
		return zap.NewNop()
	}
	return c.log
}

// SetLogger sets the logger returned by Logger.
func (c *Config) SetLogger(log *zap.Logger) {
	c.log = log
}
