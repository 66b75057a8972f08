package cmd

import (
	"errors"
	"log"
	"strings"

	"github.com/josephlewis42/keyshell/core/console"
	"github.com/josephlewis42/keyshell/core/shell"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	runLine     string
	runFailFast bool
)

// runCmd runs a script or a single line
var runCmd = &cobra.Command{
	Use:   "run [FILE] [-c LINE]",
	Short: "Run a script file or a single command line.",
	Long: `Runs each line of FILE in a single session. Blank lines and lines
starting with '#' are skipped. Use - to read the script from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch {
		case runLine != "" && len(args) > 0:
			return errors.New("use either FILE or -c, not both")
		case runLine == "" && len(args) == 0:
			return errors.New("nothing to run, pass FILE or -c LINE")
		}
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		operator := log.New(cmd.ErrOrStderr(), "[run] ", 0)
		env, err := setup(configuration, true, operator)
		if err != nil {
			return err
		}
		defer env.Close()

		app := console.NewApp(configuration, env.Tree)
		out := console.NewWriterSink(cmd.OutOrStdout(), false)
		runner := &console.Runner{
			Session: shell.NewSession(env.Registry, app, out,
				shell.WithLogger(operator),
				shell.WithRecorder(env.Events.NewSession())),
			Errors:   console.NewWriterSink(cmd.ErrOrStderr(), false),
			FailFast: runFailFast,
		}

		switch {
		case runLine != "":
			return runner.RunLines(strings.NewReader(runLine))
		case args[0] == "-":
			return runner.RunLines(cmd.InOrStdin())
		default:
			return runner.RunScript(afero.NewOsFs(), args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runLine, "command", "c", "", "command line to run")
	runCmd.Flags().BoolVar(&runFailFast, "fail-fast", false, "stop at the first failing line")
}
