package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/glowreach/outreach-cli/internal/model"
)

var (
	registerName       string
	registerRole       string
	registerEmail      string
	registerPlatform   string
	registerTerms      []string
	registerProfession string
	registerLocation   string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a client with targeting criteria",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		platform, err := model.ParsePlatform(registerPlatform)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		client, err := env.Store.CreateClient(ctx, model.Client{
			Name:        registerName,
			Role:        registerRole,
			Email:       registerEmail,
			Platform:    platform,
			SearchTerms: registerTerms,
			Profession:  registerProfession,
			Location:    registerLocation,
		})
		if err != nil {
			return eris.Wrap(err, "register client")
		}

		zap.L().Info("client registered",
			zap.String("client_id", client.ID),
			zap.String("name", client.Name),
			zap.String("platform", string(client.Platform)),
		)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerName, "name", "", "client display name (required)")
	registerCmd.Flags().StringVar(&registerRole, "role", "", "client role")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "client email")
	registerCmd.Flags().StringVar(&registerPlatform, "platform", "", "target platform: instagram, linkedin or facebook (required)")
	registerCmd.Flags().StringSliceVar(&registerTerms, "terms", nil, "free-text search terms")
	registerCmd.Flags().StringVar(&registerProfession, "profession", "", "target profession hint")
	registerCmd.Flags().StringVar(&registerLocation, "location", "", "target location hint")
	_ = registerCmd.MarkFlagRequired("name")
	_ = registerCmd.MarkFlagRequired("platform")
	rootCmd.AddCommand(registerCmd)
}
