package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var generateCmd = &cobra.Command{
	Use:   "generate <client-id>",
	Short: "Generate an outreach message for one client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Chain.Run(ctx, args[0], "")
		if err != nil {
			return eris.Wrap(err, "generation")
		}

		zap.L().Info("generation complete",
			zap.String("client_id", res.ClientID),
			zap.String("target", res.Target),
			zap.Bool("insufficient_data", res.InsufficientData),
			zap.Int("attempts", res.Attempts),
		)
		fmt.Println(res.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
