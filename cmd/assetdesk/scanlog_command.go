package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"assetdesk/internal/store"
)

func newScanLogCommand(cctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "scanlog",
		Short: "Show recent scan activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := cctx.openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			events, err := store.ListRecentScans(cmd.Context(), database, limit)
			if err != nil {
				return fmt.Errorf("list scans: %w", err)
			}

			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No scans recorded.")
				return nil
			}

			rows := make([][]string, 0, len(events))
			for _, e := range events {
				location := ""
				if e.Latitude != nil && e.Longitude != nil {
					location = fmt.Sprintf("%.5f,%.5f", *e.Latitude, *e.Longitude)
				}
				action := e.Action
				if action == "" {
					action = "-"
				}
				rows = append(rows, []string{
					e.ScannedAt.Format("2006-01-02 15:04:05"),
					e.AssetID,
					e.AssetName,
					e.OperatorName,
					action,
					location,
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Scanned", "Asset", "Name", "Operator", "Action", "Location"},
				rows, nil,
			))
			fmt.Fprintf(cmd.OutOrStdout(), "%s scans\n", strconv.Itoa(len(events)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum events to show")
	return cmd
}
