package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kingrea/gauntlet/internal/logbook"
	"github.com/kingrea/gauntlet/internal/report"
	"github.com/kingrea/gauntlet/internal/watch"
)

func (c *cli) watchCmd() *cobra.Command {
	var (
		debounce time.Duration
		format   string
	)
	cmd := &cobra.Command{
		Use:   "watch <path>",
		Short: "Re-validate a document or directory whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.format(cmd, false, format)
			if err != nil {
				return err
			}
			if debounce <= 0 {
				debounce = c.cfg.Debounce()
			}
			w, err := watch.New(args[0], c.engine, watch.Options{
				Debounce:   debounce,
				Extensions: c.cfg.Project.Watch.Extensions,
				Logger:     c.logger,
			})
			if err != nil {
				return err
			}
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return w.Run(ctx, func(e watch.Event) {
				c.printWatchEvent(e, f)
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before re-validating (default: watch.debounce)")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json or yaml")
	return cmd
}

func (c *cli) printWatchEvent(e watch.Event, f report.Format) {
	stamp := time.Now().Format("15:04:05")
	if e.Err != nil {
		fmt.Fprintf(c.stderr, "[%s] %s: %v\n", stamp, e.Path, e.Err)
		return
	}
	if f == report.FormatText {
		fmt.Fprintf(c.stdout, "[%s] %s\n", stamp, e.Path)
	}
	if err := report.Write(c.stdout, e.Report, f, c.styled()); err != nil {
		fmt.Fprintf(c.stderr, "write report: %v\n", err)
	}
	c.history.Record(logbook.Run{
		Path:     e.Path,
		OK:       e.Report.OK,
		Failures: len(e.Report.Failures),
		Warnings: len(e.Report.Warnings),
	})
}
