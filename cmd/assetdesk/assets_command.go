package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"assetdesk/internal/store"
)

func newAssetsCommand(cctx *commandContext) *cobra.Command {
	var statusFilter, typeFilter string

	cmd := &cobra.Command{
		Use:   "assets",
		Short: "List registered assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := cctx.openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			assets, err := store.ListAssets(cmd.Context(), database, statusFilter, typeFilter)
			if err != nil {
				return fmt.Errorf("list assets: %w", err)
			}

			if len(assets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No assets registered.")
				return nil
			}

			rows := make([][]string, 0, len(assets))
			for _, a := range assets {
				rows = append(rows, []string{
					a.ID, a.Name, a.AssetType, a.Category, a.Status, a.RegistrationDate,
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Type", "Category", "Status", "Registered"},
				rows, nil,
			))
			fmt.Fprintf(cmd.OutOrStdout(), "%s assets\n", strconv.Itoa(len(assets)))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Filter by status")
	cmd.Flags().StringVar(&typeFilter, "type", "", "Filter by asset type")
	return cmd
}
