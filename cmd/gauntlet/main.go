// cmd/gauntlet/main.go
//
// Entry point for the gauntlet CLI. Every subcommand shares one setup step
// (PersistentPreRunE): load .gauntlet/config.yaml, open the log, pick the
// phonetic provider once, load house rules and build the engine. Reports go to stdout, logs
// never do.
//
// Exit codes: 0 all constraints passed, 2 constraints failed, 1 fatal.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/gauntlet/internal/config"
	"github.com/kingrea/gauntlet/internal/gauntlet"
	"github.com/kingrea/gauntlet/internal/logbook"
	"github.com/kingrea/gauntlet/internal/logging"
	"github.com/kingrea/gauntlet/internal/phonetic"
	"github.com/kingrea/gauntlet/internal/report"
	"github.com/kingrea/gauntlet/internal/rules"
)

// exitError carries a non-zero exit status without an error message.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// cli holds state resolved once per invocation.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader

	projectDir string
	configPath string
	dictPath   string
	verbose    bool

	cfg     *config.Config
	logger  *zap.Logger
	engine  *gauntlet.Engine
	history *logbook.Logbook
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	logging.Sync(c.logger)
	if err == nil {
		return report.ExitOK
	}
	var exit exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintf(stderr, "gauntlet: %v\n", err)
	return report.ExitFatal
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gauntlet",
		Short: "Validate constrained acrostic poems",
		Long: `gauntlet checks a submitted document for a 12-line acrostic poem and
runs it through twelve constraints: line count, acrostic, syllables,
semantic categories, repeated words, polysyllables, theme, terminal
punctuation, couplet rhymes, five-letter words, banned starts and
alliteration.

Exit status is 0 when every constraint passes, 2 when any fails and 1
when the input could not be read.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&c.projectDir, "project", "C", "", "project directory holding .gauntlet/ (default: current directory)")
	flags.StringVar(&c.configPath, "config", "", "config file (default: .gauntlet/config.yaml)")
	flags.StringVar(&c.dictPath, "dict", "", "CMU pronunciation dictionary (overrides config and GAUNTLET_DICT)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		c.validateCmd(),
		c.batchCmd(),
		c.browseCmd(),
		c.watchCmd(),
		c.serveCmd(),
		c.historyCmd(),
		c.rulesCmd(),
		c.initCmd(),
	)
	return root
}

func (c *cli) setup() error {
	dir := strings.TrimSpace(c.projectDir)
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		dir = cwd
	}
	c.projectDir = dir

	cfg, err := config.Load(dir, c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	logger, err := logging.New(logging.Options{
		Path:    cfg.LogPath(),
		Verbose: c.verbose || cfg.Project.Log.Verbose,
	})
	if err != nil {
		return err
	}
	c.logger = logger

	dictPath := cfg.DictionaryPath()
	if p := strings.TrimSpace(c.dictPath); p != "" {
		dictPath = p
	}
	provider, err := phonetic.Select(dictPath)
	if err != nil && !errors.Is(err, phonetic.ErrNoDictionary) {
		logger.Warn("pronunciation dictionary unavailable", zap.String("path", dictPath), zap.Error(err))
	}
	logger.Debug("phonetic provider selected", zap.String("provider", phonetic.Name(provider)))
	houseRules, err := rules.LoadDir(cfg.RulesDir())
	if err != nil {
		return err
	}
	for _, file := range houseRules {
		logger.Debug("house rule loaded", zap.String("name", file.Rule.Name), zap.String("path", file.Path))
	}
	c.engine = gauntlet.New(
		gauntlet.WithPhonetics(provider),
		gauntlet.WithTarget(cfg.Acrostic()),
		gauntlet.WithHouseRules(rules.HouseRules(houseRules)...),
	)

	if path := cfg.HistoryPath(); path != "" {
		book, err := logbook.New(path)
		if err != nil {
			logger.Warn("history disabled", zap.Error(err))
		} else {
			c.history = book
		}
	}
	return nil
}

// format resolves the output format from --json, --format and the config.
func (c *cli) format(cmd *cobra.Command, asJSON bool, value string) (report.Format, error) {
	if asJSON {
		return report.FormatJSON, nil
	}
	if !cmd.Flags().Changed("format") {
		value = c.cfg.Project.Output.Format
	}
	return report.ParseFormat(value)
}

// styled reports whether stdout is an interactive terminal.
func (c *cli) styled() bool {
	f, ok := c.stdout.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
