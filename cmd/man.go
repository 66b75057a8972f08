package cmd

import (
	"fmt"

	"github.com/josephlewis42/keyshell/core/shell"
	"github.com/spf13/cobra"
)

var manCmd = &cobra.Command{
	Use:   "man COMMAND",
	Short: "Show the manual of a shell command.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}
		reg, err := newRegistry(configuration)
		if err != nil {
			return err
		}

		c, ok := reg.Lookup(args[0])
		if !ok {
			if value, ok := reg.Alias(args[0]); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is an alias for '%s'\n", args[0], value)
				return nil
			}
			return fmt.Errorf("no manual entry for %s", args[0])
		}

		fmt.Fprint(cmd.OutOrStdout(), shell.Manual(c.Contract))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(manCmd)
}
