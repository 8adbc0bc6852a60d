package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/bob/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// logLevel overrides log_level from the configuration file.
	logLevel string

	// rootCmd represents the base command of the neovim version manager.
	rootCmd = &cobra.Command{
		Use:   "bob",
		Short: "Neovim version manager.",
		Long: `Downloads and installs neovim releases.

Versions are kept side by side in the local data directory, one archive and one
extracted directory per version.`,
		SilenceUsage: true,
	}
)

// Execute runs the bob CLI and exits with non-zero status on error.
func Execute() {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

// newRootCommand wires the subcommands onto rootCmd.
func newRootCommand() *cobra.Command {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(newUseCommand(), newConfigCommand())
	version.AttachCobraVersionCommand(rootCmd)

	return rootCmd
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	newRootCommand()
}
