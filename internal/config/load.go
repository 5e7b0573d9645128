package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Environment variables that override config.toml.
const (
	EnvNodeURL       = "APTODO_NODE_URL"
	EnvFaucetURL     = "APTODO_FAUCET_URL"
	EnvModuleAddress = "APTODO_MODULE_ADDRESS"
	EnvAPIKey        = "APTODO_API_KEY"
	EnvAddStrategy   = "APTODO_ADD_STRATEGY"
)

// Duration is a time.Duration that decodes from TOML strings such as "30s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load reads settings in priority order:
// 1. Defaults
// 2. config.toml in the config directory (missing file is fine)
// 3. Environment variables
func (c *Config) Load() error {
	c.Settings = DefaultSettings()

	if err := loadFile(&c.Settings, c.ConfigPath()); err != nil {
		return fmt.Errorf("loading config file %s: %w", c.ConfigPath(), err)
	}

	loadFromEnv(&c.Settings)

	return c.Settings.Validate()
}

func loadFile(s *Settings, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	md, err := toml.Decode(string(data), s)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func loadFromEnv(s *Settings) {
	if v := os.Getenv(EnvNodeURL); v != "" {
		s.NodeURL = v
	}
	if v := os.Getenv(EnvFaucetURL); v != "" {
		s.FaucetURL = v
	}
	if v := os.Getenv(EnvModuleAddress); v != "" {
		s.ModuleAddress = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		s.APIKey = v
	}
	if v := os.Getenv(EnvAddStrategy); v != "" {
		s.AddStrategy = v
	}
}

// Validate checks settings that can be checked without the network.
func (s Settings) Validate() error {
	switch s.AddStrategy {
	case AddStrategyPredict, AddStrategyConfirm:
	default:
		return fmt.Errorf("invalid add_strategy: %q (want %q or %q)", s.AddStrategy, AddStrategyPredict, AddStrategyConfirm)
	}
	if s.MaxConcurrentReads < 0 {
		return fmt.Errorf("invalid max_concurrent_reads: %d", s.MaxConcurrentReads)
	}
	if s.RequestsPerSecond < 0 {
		return fmt.Errorf("invalid requests_per_second: %g", s.RequestsPerSecond)
	}
	if s.RequestBurst < 1 {
		return fmt.Errorf("invalid request_burst: %d", s.RequestBurst)
	}
	if strings.TrimSpace(s.NodeURL) == "" {
		return errors.New("node_url is empty")
	}
	if s.ModuleAddress != "" && !strings.HasPrefix(s.ModuleAddress, "0x") {
		return fmt.Errorf("invalid module_address: %s", s.ModuleAddress)
	}
	return nil
}
