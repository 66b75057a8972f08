package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/josephlewis42/keyshell/core/logger"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var (
	reportKind string
	reportJSON bool
)

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Explore the session event log.",
}

var reportCommand = &cobra.Command{
	Use:   "report [FILE]",
	Short: "Show a report of logged events.",
	Long: `Summarizes the event log in the configuration directory or FILE.
Kinds are report (totals), bugs (violations, failures and panics) and
interactions (lines grouped by session).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		var fd io.ReadCloser
		if len(args) > 0 {
			var err error
			if fd, err = os.Open(args[0]); err != nil {
				return err
			}
		} else {
			configuration, err := loadConfig()
			if err != nil {
				return err
			}
			if fd, err = configuration.ReadEventLog(); err != nil {
				return err
			}
		}
		defer fd.Close()

		report, err := buildReport(fd, reportKind)
		if err != nil {
			return err
		}

		var out []byte
		if reportJSON {
			out, err = json.MarshalIndent(report, "", "  ")
		} else {
			out, err = yaml.Marshal(report)
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func buildReport(r io.Reader, kind string) (interface{}, error) {
	switch kind {
	case "report":
		var report logger.Report
		return &report, logger.ReadJSONLinesLog(r, report.Update)
	case "bugs":
		report := logger.NewBugReport()
		return report, logger.ReadJSONLinesLog(r, report.Update)
	case "interactions":
		var report logger.InteractionReport
		return &report, logger.ReadJSONLinesLog(r, report.Update)
	default:
		return nil, fmt.Errorf("unknown report kind %q", kind)
	}
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(reportCommand)

	reportCommand.Flags().StringVarP(&reportKind, "kind", "k", "report", "report kind: report, bugs or interactions")
	reportCommand.Flags().BoolVar(&reportJSON, "json", false, "print JSON instead of YAML")
}
