package main

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/glowreach/outreach-cli/internal/audience"
	"github.com/glowreach/outreach-cli/internal/model"
	"github.com/glowreach/outreach-cli/internal/store"
)

var exportPath string

var exportCmd = &cobra.Command{
	Use:   "export <client-id>",
	Short: "Export a client's standardized audience to XLSX",
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

		records, err := env.Store.ListAudience(ctx, store.AudienceFilter{
			ClientID: client.ID,
			Platform: client.Platform,
		})
		if err != nil {
			return eris.Wrap(err, "list audience")
		}

		payloads := make([]model.RawRecord, 0, len(records))
		for _, rec := range records {
			payloads = append(payloads, rec.Payload)
		}
		profiles := audience.StandardizeAll(client.Platform, payloads, client.SearchTerms)

		if err := writeXLSX(exportPath, client, profiles); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("client_id", client.ID),
			zap.Int("profiles", len(profiles)),
			zap.String("path", exportPath),
		)
		return nil
	},
}

func writeXLSX(path string, client *model.Client, profiles []model.CanonicalProfile) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Audience")
	if err != nil {
		return eris.Wrap(err, "add sheet")
	}

	header := sheet.AddRow()
	for _, col := range []string{"Username", "Display Name", "Bio", "Platform", "Profile URL", "Relevance Score", "Details"} {
		header.AddCell().SetString(col)
	}

	for _, p := range profiles {
		row := sheet.AddRow()
		row.AddCell().SetString(p.Username)
		row.AddCell().SetString(p.DisplayName)
		row.AddCell().SetString(p.Bio)
		row.AddCell().SetString(string(p.Platform))
		row.AddCell().SetString(p.ProfileURL)
		row.AddCell().SetString(strconv.Itoa(p.RelevanceScore))
		row.AddCell().SetString(profileDetails(p))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "save xlsx")
	}
	return nil
}

func profileDetails(p model.CanonicalProfile) string {
	switch {
	case p.Instagram != nil:
		return "hashtags: " + strings.Join(p.Instagram.Hashtags, ", ")
	case p.LinkedIn != nil:
		return "experience: " + strings.Join(p.LinkedIn.Experience, "; ")
	case p.Facebook != nil:
		return "categories: " + strings.Join(p.Facebook.Categories, ", ")
	default:
		return ""
	}
}

func init() {
	exportCmd.Flags().StringVar(&exportPath, "out", "audience.xlsx", "output XLSX path")
	rootCmd.AddCommand(exportCmd)
}
