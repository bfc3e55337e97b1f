package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"assetdesk/internal/qr"
	"assetdesk/internal/store"
)

func newLabelCommand(cctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "label <asset-id>",
		Short: "Render a printable QR label for an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := cctx.openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			asset, err := store.GetAsset(cmd.Context(), database, args[0])
			if err != nil {
				return fmt.Errorf("get asset: %w", err)
			}
			if asset == nil {
				return fmt.Errorf("asset %s not found", args[0])
			}

			png, err := qr.Encode(asset.Summary())
			if err != nil {
				return fmt.Errorf("encode label: %w", err)
			}

			target := outPath
			if target == "" {
				target = asset.ID + ".png"
			}
			if err := os.WriteFile(target, png, 0o644); err != nil {
				return fmt.Errorf("write label: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s label for %q to %s\n", asset.ID, asset.Name, target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default <asset-id>.png)")
	return cmd
}
