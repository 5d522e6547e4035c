package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Ask a running daemon to re-read its config settings",
		Long: `Send SIGHUP to the daemon identified by the PID file next to the state
database. The daemon re-reads the [settings] table of its config file and
applies any changes, the same as when the file is edited while it watches.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			dbPath, err := resolvedCfg.ResolvedDBPath()
			if err != nil {
				return err
			}

			if err := sendSIGHUP(dbPath + ".pid"); err != nil {
				return err
			}

			fmt.Println("reload signal sent")

			return nil
		},
	}
}
