package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/bob/internal/service/use"
)

func newUseCommand() *cobra.Command {
	var noProgress bool

	command := &cobra.Command{
		Use:   "use <version>",
		Short: "Download and install a neovim version.",
		Long: `Resolves the version token, downloads the matching release archive for this
platform and extracts it into the local data directory.

The token is "stable", "nightly" or a semantic version such as 0.9.2 or v0.9.2.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) > 0 {
				token = args[0]
			}

			return use.Run(cmd.Context(), &use.Options{
				ConfigPath: cfgPath,
				Version:    token,
				LogLevel:   logLevel,
				NoProgress: noProgress,
			})
		},
	}

	command.Flags().BoolVar(&noProgress, "no-progress", false, "do not draw the download progress bar")

	return command
}
