package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// configCommand prints the effective configuration.
func (c *CLI) configCommand() *cobra.Command {
	var showPath bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: `Config prints the settings villas would use after merging defaults, the
config file, VILLAS_* environment variables and flags. With --path it prints
only the config file that was read.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showPath {
				if c.cfg.File == "" {
					printInfo("No config file found")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), c.cfg.File)
				return nil
			}
			data, err := c.cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&showPath, "path", false, "print the config file path")

	return cmd
}
