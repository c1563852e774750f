package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/glowreach/outreach-cli/internal/model"
)

var importYAMLPath string

// clientImport is the YAML shape for bulk client registration.
type clientImport struct {
	Name        string   `yaml:"name"`
	Role        string   `yaml:"role"`
	Email       string   `yaml:"email"`
	Platform    string   `yaml:"platform"`
	SearchTerms []string `yaml:"search_terms"`
	Profession  string   `yaml:"profession"`
	Location    string   `yaml:"location"`
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-register clients from a YAML file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(importYAMLPath)
		if err != nil {
			return eris.Wrap(err, "read import file")
		}

		var entries []clientImport
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return eris.Wrap(err, "parse import file")
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		created := 0
		for _, entry := range entries {
			platform, err := model.ParsePlatform(entry.Platform)
			if err != nil {
				zap.L().Warn("skipping entry with unsupported platform",
					zap.String("name", entry.Name),
					zap.String("platform", entry.Platform),
				)
				continue
			}
			if _, err := env.Store.CreateClient(ctx, model.Client{
				Name:        entry.Name,
				Role:        entry.Role,
				Email:       entry.Email,
				Platform:    platform,
				SearchTerms: entry.SearchTerms,
				Profession:  entry.Profession,
				Location:    entry.Location,
			}); err != nil {
				return eris.Wrapf(err, "import client %q", entry.Name)
			}
			created++
		}

		zap.L().Info("import complete",
			zap.Int("created", created),
			zap.String("file", importYAMLPath),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importYAMLPath, "file", "", "path to YAML file (required)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
