package main

import (
	"fmt"
	"os"

	"github.com/riskibarqy/fantasy-hoops/internal/app"
	"github.com/riskibarqy/fantasy-hoops/internal/config"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/logging"
	"github.com/spf13/cobra"
)

var (
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "rankctl",
	Short: "Operate the fantasy-hoops ranking engine",
	Long: `rankctl runs the ranking engine against the configured stores without
going through the HTTP API. It reads the same environment as the API server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatTable, "output format: table or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}

// runtime loads configuration and wires the engine for one command run.
func runtime(cmd *cobra.Command) (*app.Runtime, *logging.Logger, error) {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = logging.ParseLevel("debug")
	}
	logger := logging.NewConsole(level).Named("rankctl")

	rt, err := app.Build(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, logger, err
	}
	return rt, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "rankctl: %v\n", err)
		os.Exit(1)
	}
}
