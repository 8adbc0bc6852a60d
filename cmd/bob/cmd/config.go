package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/bob/internal/config"
)

func newConfigCommand() *cobra.Command {
	var save bool

	command := &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings.",
		Long: `Prints the settings bob runs with, defaults included, as YAML.
With --save they are written to the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal settings: %w", err)
			}

			_, _ = cmd.OutOrStdout().Write(data)

			if !save {
				return nil
			}

			return config.Save(cfgPath, cfg)
		},
	}

	command.Flags().BoolVar(&save, "save", false, "write the settings to the configuration file")

	return command
}
