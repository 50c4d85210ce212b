package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/masiqhakaze/website/internal/auth"
	"github.com/masiqhakaze/website/internal/config"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Set the admin password, or replace it given the current one",
	Args:  cobra.NoArgs,
	RunE:  runPasswd,
}

func init() {
	passwdCmd.Flags().String("old", "", "current admin password (ignored when none is set)")
	passwdCmd.Flags().String("new", "", "new admin password")
	passwdCmd.MarkFlagRequired("new")
}

func runPasswd(cmd *cobra.Command, _ []string) error {
	oldPw, _ := cmd.Flags().GetString("old")
	newPw, _ := cmd.Flags().GetString("new")

	cfg := config.Load()
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()
	ctx := context.Background()

	backend, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.Close()

	err = auth.NewCredentialStore(backend).SetOrReplace(ctx, oldPw, newPw)
	if errors.Is(err, auth.ErrCredentialMismatch) {
		return fmt.Errorf("password not changed: %w", err)
	}
	if err != nil {
		return err
	}
	log.Info("admin password updated", zap.String("driver", cfg.StoreDriver))
	return nil
}
