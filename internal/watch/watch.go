// Package watch re-validates submissions when they change on disk.
package watch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kingrea/gauntlet/internal/gauntlet"
	"github.com/kingrea/gauntlet/internal/report"
)

const defaultDebounce = 500 * time.Millisecond

// Options tunes a Watcher.
type Options struct {
	// Debounce is how long changes accumulate before re-validation.
	Debounce time.Duration
	// Extensions limits which files in a watched directory are validated.
	// Ignored when the target is a single file.
	Extensions []string
	Logger     *zap.Logger
}

// Event is one re-validation. Err is set when the file could not be read or
// disappeared; Report is then zero.
type Event struct {
	Path   string
	Report report.Report
	Err    error
}

// Handler receives events on the watcher goroutine.
type Handler func(Event)

// Watcher validates a file, or every matching file under a directory, once
// at start and again whenever its content changes.
type Watcher struct {
	root       string
	single     bool
	engine     *gauntlet.Engine
	debounce   time.Duration
	extensions map[string]bool
	logger     *zap.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashes map[string]string
}

// New prepares a watcher for target, which may be a file or a directory.
func New(target string, engine *gauntlet.Engine, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", target, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	extensions := make(map[string]bool)
	for _, ext := range opts.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[ext] = true
	}
	if len(extensions) == 0 {
		extensions[".md"] = true
		extensions[".txt"] = true
	}
	return &Watcher{
		root:       abs,
		single:     !info.IsDir(),
		engine:     engine,
		debounce:   debounce,
		extensions: extensions,
		logger:     logger,
		pending:    make(map[string]fsnotify.Op),
		hashes:     make(map[string]string),
	}, nil
}

// Run validates the current documents, then blocks re-validating changed
// ones until ctx is done. handler is never called concurrently.
func (w *Watcher) Run(ctx context.Context, handler Handler) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fsw.Close()

	if w.single {
		// Editors often replace files by rename, so watch the parent.
		if err := fsw.Add(filepath.Dir(w.root)); err != nil {
			return fmt.Errorf("watch: add %s: %w", w.root, err)
		}
	} else if err := w.addRecursive(fsw, w.root); err != nil {
		return err
	}

	for _, path := range w.initialDocuments() {
		w.revalidate(path, handler)
	}
	w.logger.Info("watching", zap.String("target", w.root), zap.Duration("debounce", w.debounce))

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleFSEvent(fsw, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))
		case <-ticker.C:
			for _, path := range w.takePending() {
				if ctx.Err() != nil {
					return nil
				}
				w.revalidate(path, handler)
			}
		}
	}
}

func (w *Watcher) initialDocuments() []string {
	if w.single {
		return []string{w.root}
	}
	var paths []string
	_ = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != w.root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.matches(path) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths
}

func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}

func (w *Watcher) matches(path string) bool {
	if w.single {
		return filepath.Clean(path) == w.root
	}
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

func (w *Watcher) handleFSEvent(fsw *fsnotify.Watcher, event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if !w.matches(path) {
		if !w.single && event.Has(fsnotify.Create) {
			if info, err := os.Stat(path); err == nil && info.IsDir() && !skipDir(filepath.Base(path)) {
				if err := w.addRecursive(fsw, path); err != nil {
					w.logger.Warn("failed to watch new directory", zap.String("path", path), zap.Error(err))
				}
			}
		}
		return
	}
	w.pendingMu.Lock()
	w.pending[path] |= event.Op
	w.pendingMu.Unlock()
	w.logger.Debug("change detected", zap.String("path", path), zap.String("op", event.Op.String()))
}

// takePending drains accumulated changes in path order.
func (w *Watcher) takePending() []string {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	if len(w.pending) == 0 {
		return nil
	}
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]fsnotify.Op)
	sort.Strings(paths)
	return paths
}

// revalidate reports on path unless its content is unchanged since the last
// report.
func (w *Watcher) revalidate(path string, handler Handler) {
	data, err := os.ReadFile(path)
	if err != nil {
		if _, seen := w.hashes[path]; !seen && !w.single {
			return
		}
		delete(w.hashes, path)
		handler(Event{Path: path, Err: fmt.Errorf("watch: read %s: %w", path, err)})
		return
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	if old, ok := w.hashes[path]; ok && old == hash {
		return
	}
	w.hashes[path] = hash

	rep, err := report.ValidateReader(bytes.NewReader(data), path, w.engine)
	if err != nil {
		handler(Event{Path: path, Err: err})
		return
	}
	w.logger.Debug("revalidated", zap.String("path", path), zap.Bool("ok", rep.OK))
	handler(Event{Path: path, Report: rep})
}

func skipDir(name string) bool {
	switch name {
	case "node_modules", "vendor":
		return true
	}
	return strings.HasPrefix(name, ".")
}
