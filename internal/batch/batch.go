// Package batch validates many submissions at once. Patterns are expanded
// with doublestar so ** works, documents are validated on a bounded worker
// pool, and results come back in input order regardless of scheduling.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kingrea/gauntlet/internal/gauntlet"
	"github.com/kingrea/gauntlet/internal/logbook"
	"github.com/kingrea/gauntlet/internal/report"
)

// ErrNoMatches is returned by Expand when no pattern matched a file.
var ErrNoMatches = errors.New("batch: no documents match")

// Item is the outcome for one document. Err is set only for fatal input
// problems (unreadable file, invalid encoding); Report is then zero.
type Item struct {
	Path   string
	Report report.Report
	Err    error
}

// Run is a completed batch.
type Run struct {
	ID      string
	Items   []Item
	Started time.Time
	Elapsed time.Duration
}

// Counts tallies passing, failing and errored documents.
func (r Run) Counts() (passed, failed, errored int) {
	for _, item := range r.Items {
		switch {
		case item.Err != nil:
			errored++
		case item.Report.OK:
			passed++
		default:
			failed++
		}
	}
	return passed, failed, errored
}

// ExitCode is ExitFatal when any document could not be read, ExitFailed when
// any document failed its constraints, ExitOK otherwise.
func (r Run) ExitCode() int {
	_, failed, errored := r.Counts()
	switch {
	case errored > 0:
		return report.ExitFatal
	case failed > 0:
		return report.ExitFailed
	default:
		return report.ExitOK
	}
}

// Runner validates documents concurrently with a shared engine.
type Runner struct {
	engine  *gauntlet.Engine
	workers int
	logger  *zap.Logger
	history *logbook.Logbook
	newID   func() string
	now     func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithWorkers bounds concurrency; values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithHistory records every document outcome in the logbook.
func WithHistory(book *logbook.Logbook) Option {
	return func(r *Runner) {
		r.history = book
	}
}

// NewRunner builds a Runner around engine.
func NewRunner(engine *gauntlet.Engine, opts ...Option) *Runner {
	r := &Runner{
		engine:  engine,
		workers: 4,
		logger:  zap.NewNop(),
		newID:   func() string { return uuid.NewString() },
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run validates paths. The returned items follow the order of paths. A
// cancelled context stops scheduling new documents and returns ctx.Err().
func (r *Runner) Run(ctx context.Context, paths []string) (Run, error) {
	run := Run{
		ID:      r.newID(),
		Items:   make([]Item, len(paths)),
		Started: r.now(),
	}
	logger := r.logger.With(zap.String("run_id", run.ID))
	logger.Info("batch started", zap.Int("documents", len(paths)), zap.Int("workers", r.workers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			run.Items[i] = r.validate(logger, run.ID, path)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	run.Elapsed = r.now().Sub(run.Started)
	if err != nil {
		logger.Warn("batch interrupted", zap.Error(err))
		r.history.Warn("batch interrupted after %s: %v run=%s", run.Elapsed.Round(time.Millisecond), err, run.ID)
		return run, err
	}
	passed, failed, errored := run.Counts()
	logger.Info("batch finished",
		zap.Int("passed", passed),
		zap.Int("failed", failed),
		zap.Int("errored", errored),
		zap.Duration("elapsed", run.Elapsed),
	)
	r.history.Info("batch  passed=%d failed=%d errored=%d run=%s", passed, failed, errored, run.ID)
	return run, nil
}

func (r *Runner) validate(logger *zap.Logger, runID, path string) Item {
	rep, err := report.ValidateFile(path, r.engine)
	if err != nil {
		logger.Error("document unreadable", zap.String("path", path), zap.Error(err))
		r.history.Append(logbook.LevelError, fmt.Sprintf("error  %s %v run=%s", path, err, runID))
		return Item{Path: path, Err: err}
	}
	logger.Debug("document validated",
		zap.String("path", path),
		zap.Bool("ok", rep.OK),
		zap.Int("failures", len(rep.Failures)),
	)
	r.history.Record(logbook.Run{
		RunID:    runID,
		Path:     path,
		OK:       rep.OK,
		Failures: len(rep.Failures),
		Warnings: len(rep.Warnings),
	})
	return Item{Path: path, Report: rep}
}

// Expand resolves patterns to a sorted, de-duplicated list of regular files.
// Patterns without glob characters are taken literally and must exist.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if !containsGlob(pattern) {
			info, err := os.Stat(pattern)
			if err != nil {
				return nil, fmt.Errorf("batch: %w", err)
			}
			if !info.IsDir() {
				add(pattern)
			}
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("batch: glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			add(match)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatches, strings.Join(patterns, " "))
	}
	sort.Strings(files)
	return files, nil
}

func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
