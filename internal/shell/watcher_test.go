package shell

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/switchboard/internal/browser"
	"github.com/tonimelisma/switchboard/testutil"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestWatcherAppliesChangedSettings(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	w := NewSettingsWatcher(path, s, testutil.Logger(t))

	writeConfig(t, path, "[settings]\ntheme = \"dark\"\nwarm_pool_budget = 4\n")
	w.Apply(context.Background())

	settings := s.engine.State().Settings
	require.Equal(t, browser.TextSetting("dark"), settings["theme"])
	require.Equal(t, browser.IntSetting(4), settings[browser.WarmPoolBudgetKey])
}

func TestWatcherSkipsUnchangedSettings(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	w := NewSettingsWatcher(path, s, testutil.Logger(t))
	ctx := context.Background()

	writeConfig(t, path, "[settings]\ntheme = \"dark\"\n")
	w.Apply(ctx)
	revision := s.engine.Revision()

	// Re-applying the same file must not dispatch anything.
	w.Apply(ctx)
	require.Equal(t, revision, s.engine.Revision())

	writeConfig(t, path, "[settings]\ntheme = \"light\"\n")
	w.Apply(ctx)
	require.Greater(t, s.engine.Revision(), revision)
	require.Equal(t, browser.TextSetting("light"), s.engine.State().Settings["theme"])
}

func TestWatcherIgnoresInvalidEdits(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	w := NewSettingsWatcher(path, s, testutil.Logger(t))
	ctx := context.Background()

	writeConfig(t, path, "[settings]\ntheme = \"dark\"\n")
	w.Apply(ctx)

	// A torn write mid-save must leave the running settings alone.
	writeConfig(t, path, "[settings\ntheme = ")
	w.Apply(ctx)

	require.Equal(t, browser.TextSetting("dark"), s.engine.State().Settings["theme"])
}
