package cmd

import (
	"log"

	"github.com/josephlewis42/keyshell/core/config"
	"github.com/spf13/cobra"
)

// playgroundCmd runs the shell over the built in configuration for testing
var playgroundCmd = &cobra.Command{
	Use:   "playground",
	Short: "Run the shell with the default configuration without history or logging.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		playgroundLogger := log.New(cmd.ErrOrStderr(), "[playground] ", 0)
		env, err := setup(config.Default(), false, playgroundLogger)
		if err != nil {
			return err
		}
		defer env.Close()

		return runConsole(cmd, env, "", playgroundLogger)
	},
}

func init() {
	rootCmd.AddCommand(playgroundCmd)
}
