package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one batch-ingestion sweep over all clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Ingestor.SweepAll(ctx, cfg.Sweep.MaxConcurrentClients); err != nil {
			return eris.Wrap(err, "sweep")
		}

		zap.L().Info("sweep complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
