package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/gauntlet/internal/logbook"
	"github.com/kingrea/gauntlet/internal/report"
)

func (c *cli) validateCmd() *cobra.Command {
	var (
		asJSON bool
		format string
	)
	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate one document (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.format(cmd, asJSON, format)
			if err != nil {
				return err
			}
			path := args[0]
			var rep report.Report
			if path == "-" {
				rep, err = report.ValidateReader(c.stdin, "", c.engine)
			} else {
				rep, err = report.ValidateFile(path, c.engine)
			}
			if err != nil {
				return err
			}
			c.logger.Info("validated",
				zap.String("path", path),
				zap.Bool("ok", rep.OK),
				zap.Int("failures", len(rep.Failures)),
				zap.Int("warnings", len(rep.Warnings)),
			)
			c.history.Record(logbook.Run{
				Path:     rep.Path,
				OK:       rep.OK,
				Failures: len(rep.Failures),
				Warnings: len(rep.Warnings),
			})
			if err := report.Write(c.stdout, rep, f, c.styled()); err != nil {
				return err
			}
			if code := rep.ExitCode(); code != report.ExitOK {
				return exitError{code: code}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the structured report as JSON")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json or yaml")
	return cmd
}
