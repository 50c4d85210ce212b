package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "website",
	Short: "Organisation website with news posts and a single admin",
	// Running without a subcommand starts the server.
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, passwdCmd, assetsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
