// Package cli implements the janitor command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rbac-janitor/internal/config"
)

var version = "dev"

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "janitor",
		Short:         "Tenancy janitor for principals and cross-account access",
		Long:          "Reconciles tenant principals against the identity service and expires lapsed cross-account requests.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(".env"); err != nil {
				return err
			}
			// Precedence: env > config file > defaults.
			return applyFileConfig(configFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newReconcileCmd())
	rootCmd.AddCommand(newSweepCmd())
	rootCmd.AddCommand(newProvisionCmd())
	rootCmd.AddCommand(newMigrateCmd())

	return rootCmd
}
