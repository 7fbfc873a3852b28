package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kingrea/gauntlet/internal/config"
	"github.com/kingrea/gauntlet/internal/gauntlet"
	"github.com/kingrea/gauntlet/internal/phonetic"
)

func (c *cli) historyCmd() *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent validation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.history == nil {
				return fmt.Errorf("history is not configured (set history.path or run gauntlet init)")
			}
			entries, total := c.history.Tail(lines)
			if total == 0 {
				fmt.Fprintln(c.stdout, "no runs recorded")
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintln(c.stdout, entry)
			}
			if total > len(entries) {
				fmt.Fprintf(c.stdout, "(%d of %d entries)\n", len(entries), total)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "number of entries to show")
	return cmd
}

func (c *cli) rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the constraints in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(c.stdout, "acrostic: %s\nphonetics: %s\n\n", c.engine.Target(), phonetic.Name(c.engine.Phonetics()))
			tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
			for _, rule := range gauntlet.Constraints() {
				kind := "required"
				if rule.Advisory {
					kind = "advisory"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", rule.ID, rule.Name, kind, rule.Description)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			for _, rule := range c.engine.HouseRules() {
				fmt.Fprintf(c.stdout, "house\t%s\n", rule.Name)
			}
			return nil
		},
	}
}

func (c *cli) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create .gauntlet/ with a default config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.InitDir(c.projectDir); err != nil {
				return fmt.Errorf("init: %w", err)
			}
			fmt.Fprintf(c.stdout, "initialized %s\n", filepath.Join(c.projectDir, config.GauntletDir, "config.yaml"))
			return nil
		},
	}
}
