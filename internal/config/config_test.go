package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/switchboard/internal/browser"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadAppliesDefaultsFirst(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `log_level = "debug"`)

	cfg, err := Load(path)

	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "127.0.0.1:8040", cfg.Listen, "unset keys keep defaults")
}

func TestLoadOrDefaultWithoutFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.toml"))

	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadRejectsUnknownKeyWithSuggestion(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `db_psth = "/tmp/state.db"`)

	_, err := Load(path)

	require.Error(t, err)
	require.Contains(t, err.Error(), "db_psth")
	require.Contains(t, err.Error(), `did you mean "db_path"`)
}

func TestLoadAllowsFreeFormSettings(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
[settings]
warm_pool_budget = 4
theme = "dark"
"tabs.mute_by_default" = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	seed, err := cfg.SeedSettings()
	require.NoError(t, err)
	require.Equal(t, browser.IntSetting(4), seed["warm_pool_budget"])
	require.Equal(t, browser.TextSetting("dark"), seed["theme"])
	require.Equal(t, browser.BoolSetting(true), seed["tabs.mute_by_default"])
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "loud" },
			wantErr: "log_level",
		},
		{
			name:    "empty db path",
			mutate:  func(c *Config) { c.DBPath = "" },
			wantErr: "db_path",
		},
		{
			name:    "bad listen address",
			mutate:  func(c *Config) { c.Listen = "no-port" },
			wantErr: "listen",
		},
		{
			name:    "float setting",
			mutate:  func(c *Config) { c.Settings["zoom"] = 1.5 },
			wantErr: "unsupported type",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tc.mutate(cfg)

			err := Validate(cfg)

			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestResolvedDBPathExpandsHome(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.DBPath = "~/switchboard/state.db"

	path, err := cfg.ResolvedDBPath()

	require.NoError(t, err)
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "switchboard/state.db"), path)
}
