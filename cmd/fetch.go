package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <client-id>",
	Short: "Run ingestion for one client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		client, err := env.Store.GetClient(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "load client %s", args[0])
		}

		res, err := env.Ingestor.Run(ctx, client)
		if err != nil {
			return eris.Wrap(err, "ingestion")
		}

		zap.L().Info("fetch complete",
			zap.String("client_id", client.ID),
			zap.Int("stored", res.Stored),
			zap.Int("skipped", res.Skipped),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
