package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tonimelisma/switchboard/internal/browser"
	"github.com/tonimelisma/switchboard/internal/shell"
	"github.com/tonimelisma/switchboard/internal/store"
)

// shutdownGrace bounds how long in-flight websocket handshakes get on
// shutdown before the listener is torn down.
const shutdownGrace = 5 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the session daemon",
		Long: `Load (or bootstrap) the session state from SQLite and serve it to UI
shells over websocket. Every accepted command is persisted before its patch
is broadcast. Edits to the [settings] table of the config file are applied
to the running state.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	logger := buildLogger()
	ctx := shutdownContext(parent, logger)

	dbPath, err := resolvedCfg.ResolvedDBPath()
	if err != nil {
		return err
	}

	cleanup, err := writePIDFile(dbPath + ".pid")
	if err != nil {
		return err
	}
	defer cleanup()

	st, err := store.New(dbPath, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	engine, err := loadEngine(ctx, st, logger)
	if err != nil {
		return err
	}

	if err := seedSettings(ctx, engine, logger); err != nil {
		return err
	}

	server := shell.NewServer(engine, logger)

	// The first shell is about to connect; bring the active tab up.
	if _, err := server.Dispatch(ctx, browser.UiReady{}); err != nil {
		return fmt.Errorf("readying state: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", server)

	httpServer := &http.Server{
		Addr:              resolvedCfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	watcher := shell.NewSettingsWatcher(effectiveConfigPath(), server, logger)

	logger.Info("serving shells", "listen", resolvedCfg.Listen, "db", dbPath)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("shell server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		// Live config watching is best-effort; a missing config directory
		// must not take the daemon down. SIGHUP reload still works.
		if err := watcher.Run(gctx); err != nil {
			logger.Warn("settings watcher stopped", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				logger.Info("received SIGHUP, re-reading config settings")
				watcher.Apply(gctx)
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// loadEngine restores persisted state, bootstrapping a fresh one on first
// run.
func loadEngine(ctx context.Context, st *store.SQLiteStore, logger *slog.Logger) (*browser.Engine, error) {
	state, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}

	if state == nil {
		state = browser.NewState()
		browser.Bootstrap(state)
		logger.Info("no persisted state, bootstrapped defaults")
	}

	return browser.NewEngineWithState(st, state, 0, logger), nil
}

// seedSettings applies config-file settings that the state does not have
// yet. Persisted values win over the config so runtime changes survive
// restarts.
func seedSettings(ctx context.Context, engine *browser.Engine, logger *slog.Logger) error {
	seed, err := resolvedCfg.SeedSettings()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(seed))
	for key := range seed {
		if _, ok := engine.State().Settings[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, err := engine.Dispatch(ctx, browser.SettingSet{Key: key, Value: seed[key]}); err != nil {
			return fmt.Errorf("seeding setting %q: %w", key, err)
		}
		logger.Debug("seeded setting from config", "key", key)
	}

	return nil
}
