package cmd

import (
	"log"

	"github.com/fatih/color"
	"github.com/josephlewis42/keyshell/core/console"
	"github.com/josephlewis42/keyshell/core/shell"
	"github.com/spf13/cobra"
)

// shellCmd runs an interactive shell on the terminal
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive shell.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		operator := log.New(cmd.ErrOrStderr(), "[shell] ", 0)
		env, err := setup(configuration, true, operator)
		if err != nil {
			return err
		}
		defer env.Close()

		return runConsole(cmd, env, configuration.HistoryPath(), operator)
	},
}

func runConsole(cmd *cobra.Command, env *environment, historyFile string, operator *log.Logger) error {
	app := console.NewApp(env.Config, env.Tree)
	c, err := console.New(env.Registry, app, console.Options{
		Stdin:       cmd.InOrStdin(),
		Stdout:      cmd.OutOrStdout(),
		Stderr:      cmd.ErrOrStderr(),
		HistoryFile: historyFile,
		Prompt:      env.Config.Prompt,
		Color:       env.Config.Color && !color.NoColor,
		Logger:      operator,
		SessionOptions: []shell.SessionOption{
			shell.WithRecorder(env.Events.NewSession()),
		},
	})
	if err != nil {
		return err
	}
	defer c.Close()

	return c.Run()
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
