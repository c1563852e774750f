package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List registered clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		clients, err := env.Store.ListClients(ctx)
		if err != nil {
			return eris.Wrap(err, "list clients")
		}

		for _, c := range clients {
			fmt.Printf("%s  %-20s  %-9s  %-18s  profiles=%d  terms=%s\n",
				c.ID, c.Name, c.Platform, c.Status, c.ProfileCount,
				strings.Join(c.SearchTerms, ","))
		}
		fmt.Printf("%d client(s)\n", len(clients))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clientsCmd)
}
