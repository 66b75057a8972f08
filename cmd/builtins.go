package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// builtinsCmd lists the commands available in sessions
var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the commands and aliases available in the shell.",
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

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, name := range reg.Commands() {
			c, _ := reg.Lookup(name)
			fmt.Fprintf(tw, "%s\t%s\n", name, c.Contract.Description)
		}
		for _, name := range reg.Aliases() {
			value, _ := reg.Alias(name)
			fmt.Fprintf(tw, "alias:%s\t%s\n", name, value)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
