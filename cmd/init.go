package cmd

import (
	"log"

	"github.com/josephlewis42/keyshell/core/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration and a host key to the config directory.",
	Long: `Writes config.yaml and an SSH host key to the directory given by --config.
Existing files are left alone, so init can be run again safely.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := log.New(cmd.ErrOrStderr(), "[init] ", 0)
		configuration, err := config.Initialize(cfgPath, logger)
		if err != nil {
			return err
		}

		logger.Printf("Configuration ready, %d module(s) enabled, %d alias(es).", len(configuration.Modules), len(configuration.Aliases))
		logger.Println("Start the shell with: keyshell shell")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
