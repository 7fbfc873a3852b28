package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kingrea/gauntlet/internal/batch"
	"github.com/kingrea/gauntlet/internal/report"
	"github.com/kingrea/gauntlet/internal/tui"
)

func (c *cli) batchCmd() *cobra.Command {
	var (
		workers int
		asJSON  bool
		format  string
	)
	cmd := &cobra.Command{
		Use:   "batch [glob...]",
		Short: "Validate every document matching the patterns",
		Long: `Validate many submissions concurrently. Patterns support ** and default
to batch.patterns from the config. Results are printed in path order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.format(cmd, asJSON, format)
			if err != nil {
				return err
			}
			run, err := c.runBatch(cmd.Context(), args, workers)
			if err != nil {
				return err
			}
			switch f {
			case report.FormatJSON:
				err = batch.WriteJSON(c.stdout, run)
			case report.FormatYAML:
				err = batch.WriteYAML(c.stdout, run)
			default:
				err = batch.WriteSummary(c.stdout, run)
			}
			if err != nil {
				return err
			}
			if code := run.ExitCode(); code != report.ExitOK {
				return exitError{code: code}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent validations (default: batch.workers)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit a JSON array of reports")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json or yaml")
	return cmd
}

func (c *cli) browseCmd() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "browse [glob...]",
		Short: "Validate documents and browse the results interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := c.runBatch(cmd.Context(), args, workers)
			if err != nil {
				return err
			}
			p := tea.NewProgram(
				tui.NewApp(c.engine, run, tui.WithLogbook(c.history)),
				tea.WithAltScreen(),
				tea.WithInput(c.stdin),
				tea.WithOutput(c.stdout),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run browser: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent validations (default: batch.workers)")
	return cmd
}

func (c *cli) runBatch(parent context.Context, patterns []string, workers int) (batch.Run, error) {
	if len(patterns) == 0 {
		for _, pattern := range c.cfg.Project.Batch.Patterns {
			if !filepath.IsAbs(pattern) {
				pattern = filepath.Join(c.projectDir, pattern)
			}
			patterns = append(patterns, pattern)
		}
	}
	if len(patterns) == 0 {
		return batch.Run{}, fmt.Errorf("no patterns given and batch.patterns is empty")
	}
	paths, err := batch.Expand(patterns)
	if err != nil {
		return batch.Run{}, err
	}
	if workers <= 0 {
		workers = c.cfg.Workers()
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	runner := batch.NewRunner(c.engine,
		batch.WithWorkers(workers),
		batch.WithLogger(c.logger),
		batch.WithHistory(c.history),
	)
	return runner.Run(ctx, paths)
}
