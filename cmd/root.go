package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/fatih/color"
	"github.com/josephlewis42/keyshell/core/config"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	noColor bool
)

// loadConfig reads the configuration named by --config.
func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("no configuration in %q, run `keyshell init` first: %w", cfgPath, err)
	}
	return configuration, err
}

var rootCmd = &cobra.Command{
	Use:   "keyshell",
	Short: "Command shell for a tree of keys and servers",
	Long: `An embedded command shell over a tree of nodes with attributes. Commands
can be chained with ';', '&&' and '|' and run interactively, from scripts or
over SSH.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

// Execute runs the CLI, it's called by main.main().
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "configuration directory")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}
