package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aptodo/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		config.EnvNodeURL, config.EnvFaucetURL, config.EnvModuleAddress,
		config.EnvAPIKey, config.EnvAddStrategy,
	} {
		t.Setenv(k, "")
	}
}

func TestNew_ExplicitDir(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.New(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, filepath.Join(dir, "wallet.json"), cfg.WalletPath())
	assert.Equal(t, filepath.Join(dir, "config.toml"), cfg.ConfigPath())
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/aptodo", config.DefaultConfigDir())
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	cfg, err := config.New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.Load())
	assert.Equal(t, config.DefaultNodeURL, cfg.Settings.NodeURL)
	assert.Equal(t, config.AddStrategyPredict, cfg.Settings.AddStrategy)
	assert.Equal(t, config.DefaultConfirmTimeout, cfg.Settings.ConfirmTimeout.Std())
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	content := `
node_url = "http://localhost:8080/v1"
module_address = "0xfile"
add_strategy = "confirm"
confirm_timeout = "5s"
max_concurrent_reads = 4
requests_per_second = 5
request_burst = 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte(content), 0600))
	t.Setenv(config.EnvModuleAddress, "0xenv")

	cfg, err := config.New(dir)
	require.NoError(t, err)
	require.NoError(t, cfg.Load())

	assert.Equal(t, "http://localhost:8080/v1", cfg.Settings.NodeURL)
	assert.Equal(t, "0xenv", cfg.Settings.ModuleAddress)
	assert.Equal(t, config.AddStrategyConfirm, cfg.Settings.AddStrategy)
	assert.Equal(t, 5*time.Second, cfg.Settings.ConfirmTimeout.Std())
	assert.Equal(t, 4, cfg.Settings.MaxConcurrentReads)
	assert.Equal(t, 5.0, cfg.Settings.RequestsPerSecond)
	assert.Equal(t, 2, cfg.Settings.RequestBurst)
	assert.Equal(t, "0xenv::todolist::TodoList", cfg.Contract().ResourceType())
}

func TestLoad_UnknownKey(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte(`nod_url = "x"`), 0600))

	cfg, err := config.New(dir)
	require.NoError(t, err)

	err = cfg.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keys: nod_url")
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Settings)
		wantErr string
	}{
		{"defaults", func(s *config.Settings) {}, ""},
		{"bad strategy", func(s *config.Settings) { s.AddStrategy = "guess" }, "invalid add_strategy"},
		{"negative reads", func(s *config.Settings) { s.MaxConcurrentReads = -1 }, "invalid max_concurrent_reads"},
		{"negative rate", func(s *config.Settings) { s.RequestsPerSecond = -1 }, "invalid requests_per_second"},
		{"zero burst", func(s *config.Settings) { s.RequestBurst = 0 }, "invalid request_burst"},
		{"empty node", func(s *config.Settings) { s.NodeURL = " " }, "node_url is empty"},
		{"bad module", func(s *config.Settings) { s.ModuleAddress = "cafe" }, "invalid module_address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := config.DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWalletFileHelpers(t *testing.T) {
	cfg, err := config.New(filepath.Join(t.TempDir(), "nested"))
	require.NoError(t, err)

	assert.False(t, cfg.HasWallet())
	require.NoError(t, cfg.EnsureDir())
	require.NoError(t, os.WriteFile(cfg.WalletPath(), []byte("{}"), 0600))
	assert.True(t, cfg.HasWallet())
	require.NoError(t, cfg.RemoveWallet())
	assert.False(t, cfg.HasWallet())
}

func TestLogger_DefaultsToNop(t *testing.T) {
	var cfg *config.Config
	assert.NotNil(t, cfg.Logger())
}
