package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/fsnotify/fsnotify"

	"github.com/tonimelisma/switchboard/internal/browser"
	"github.com/tonimelisma/switchboard/internal/config"
)

// SettingsWatcher applies config-file edits to the running state: when the
// [settings] table in the config changes on disk, the differing keys are
// dispatched as ordinary setting intents so connected shells see them as
// patches like any other change.
type SettingsWatcher struct {
	path   string
	server *Server
	logger *slog.Logger
}

// NewSettingsWatcher watches the config file at path.
func NewSettingsWatcher(path string, server *Server, logger *slog.Logger) *SettingsWatcher {
	return &SettingsWatcher{path: path, server: server, logger: logger}
}

// Run blocks until ctx is cancelled. The parent directory is watched rather
// than the file itself because most editors replace files on save, which
// would silently detach a direct file watch.
func (w *SettingsWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching config directory %s: %w", dir, err)
	}

	w.logger.Info("watching config for setting changes", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("config watcher event channel closed")
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.Apply(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("config watcher error channel closed")
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

// Apply re-reads the config file once and dispatches any changed settings.
// Called from Run on file events and by the daemon on SIGHUP.
func (w *SettingsWatcher) Apply(ctx context.Context) {
	cfg, err := config.Load(w.path)
	if err != nil {
		// A half-saved or invalid file is expected during editing; the
		// running state keeps its current settings.
		w.logger.Warn("ignoring invalid config edit", "error", err)
		return
	}

	seed, err := cfg.SeedSettings()
	if err != nil {
		w.logger.Warn("ignoring invalid config settings", "error", err)
		return
	}

	for _, key := range sortedKeys(seed) {
		value := seed[key]
		current, ok := w.server.Setting(key)
		if ok && current.Equal(value) {
			continue
		}

		if _, err := w.server.Dispatch(ctx, browser.SettingSet{Key: key, Value: value}); err != nil {
			w.logger.Warn("config setting update failed", "key", key, "error", err)
			continue
		}
		w.logger.Info("setting updated from config", "key", key, "value", value.String())
	}
}

func sortedKeys(settings map[string]browser.SettingValue) []string {
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}

	// Deterministic application order.
	sort.Strings(keys)

	return keys
}
