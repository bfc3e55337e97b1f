package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"assetdesk/internal/qr"
)

func newScanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <image>",
		Short: "Decode an asset QR label from an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			summary, err := qr.DecodeBytes(data)
			if err != nil {
				return fmt.Errorf("decode label: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				[][]string{
					{"Asset ID", summary.AssetID},
					{"Name", summary.Name},
					{"Type", summary.AssetType},
					{"Category", summary.Category},
					{"Registered", summary.RegistrationDate},
				}, nil,
			))
			return nil
		},
	}
}
