package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"assetdesk/internal/store"
)

func newHandoversCommand(cctx *commandContext) *cobra.Command {
	var statusFilter string
	var stageFilter int

	cmd := &cobra.Command{
		Use:   "handovers",
		Short: "List hand-over requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := cctx.openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			requests, err := store.ListHandovers(cmd.Context(), database, statusFilter, stageFilter, "")
			if err != nil {
				return fmt.Errorf("list handovers: %w", err)
			}

			if len(requests) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No hand-over requests.")
				return nil
			}

			rows := make([][]string, 0, len(requests))
			for _, req := range requests {
				rows = append(rows, []string{
					req.ID,
					req.AssetID,
					req.PersonName,
					req.Department,
					strconv.Itoa(req.Stage),
					req.Status,
					req.Source,
					req.RequestDate.Format("2006-01-02 15:04"),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Request", "Asset", "Recipient", "Department", "Stage", "Status", "Source", "Requested"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Filter by status")
	cmd.Flags().IntVar(&stageFilter, "stage", 0, "Filter by review stage")
	return cmd
}
