package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/switchboard/internal/shell"
	"github.com/tonimelisma/switchboard/internal/store"
)

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print the persisted session state as JSON",
		Long: `Load the session database and print the same snapshot message a
connecting shell would receive. Useful for debugging and scripting.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := buildLogger()
			ctx := cmd.Context()

			dbPath, err := resolvedCfg.ResolvedDBPath()
			if err != nil {
				return err
			}

			st, err := store.New(dbPath, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			engine, err := loadEngine(ctx, st, logger)
			if err != nil {
				return err
			}

			encoded, err := shell.EncodeSnapshot(engine.Snapshot())
			if err != nil {
				return err
			}

			fmt.Fprintln(os.Stdout, string(encoded))

			return nil
		},
	}
}
