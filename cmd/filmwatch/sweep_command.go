package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"filmwatch/internal/metadata"
	"filmwatch/internal/notifications"
	"filmwatch/internal/sweeper"
)

func newSweepCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one release check over all unreleased movies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			st, err := ctx.openStore()
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			providers, err := metadata.BuildProviders(cfg)
			if err != nil {
				return fmt.Errorf("build metadata providers: %w", err)
			}

			dispatcher := notifications.NewService(cfg)
			sw := sweeper.New(st, providers, dispatcher, cfg.SweepInterval(), cfg.QueryTimeout(), ctx.quietLogger())

			summary, err := sw.RunOnce(cmd.Context())
			if err != nil {
				return fmt.Errorf("run sweep: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Checked %d movies: %d released, %d notifications sent\n",
				summary.Checked, summary.Released, summary.Notified)
			return nil
		},
	}
}
