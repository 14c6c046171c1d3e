// Package main provides the wrkcopilot command: the lifecycle and pricing
// API server plus offline pricing and token tools.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/config"
)

// version is reported in the OpenAPI document and telemetry resource.
var version = "0.1.0"

// globalOptions holds the flags shared by every subcommand.
type globalOptions struct {
	envFile string
}

// loadConfig reads the dotenv file named by --env-file and the environment.
func (o *globalOptions) loadConfig() (config.Config, error) {
	return config.Load(o.envFile)
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "wrkcopilot",
		Short:         "Automation lifecycle and pricing service",
		Long:          "wrkcopilot tracks automation versions through their lifecycle, issues discount offers and prices quotes.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Dotenv file loaded before reading the environment")

	cmd.AddCommand(newServeCmd(opts), newPriceCmd(opts), newTokenCmd(opts))
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
