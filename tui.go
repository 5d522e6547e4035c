package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tonimelisma/switchboard/internal/store"
	"github.com/tonimelisma/switchboard/internal/tui"
)

func newTuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the session state in the terminal",
		Long: `Open the session database directly and drive it from the terminal:
switch workspaces and profiles, open, close, pin, and discard tabs, and find
tabs with the fuzzy switcher. Changes persist exactly as they would through
the daemon. Do not run while serve holds the database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := buildLogger()
			ctx := cmd.Context()

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

			program := tea.NewProgram(tui.New(engine, logger), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("running tui: %w", err)
			}

			return nil
		},
	}
}
