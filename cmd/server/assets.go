package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/masiqhakaze/website/internal/config"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Manage static assets in the MinIO bucket",
}

var assetsPushCmd = &cobra.Command{
	Use:   "push [dir]",
	Short: "Upload a local static directory to the bucket",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cfg.MinioEndpoint == "" {
			return errors.New("MINIO_ENDPOINT is not set")
		}
		dir := cfg.StaticDir
		if len(args) == 1 {
			dir = args[0]
		}

		ctx := context.Background()
		assets, err := openMinio(ctx, cfg)
		if err != nil {
			return err
		}
		n, err := assets.PushDir(ctx, dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d files from %s to %s\n", n, dir, cfg.MinioBucket)
		return nil
	},
}

func init() {
	assetsCmd.AddCommand(assetsPushCmd)
}
