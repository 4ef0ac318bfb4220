package cli

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/toyz/apimod/internal/errors"
	"github.com/toyz/apimod/internal/utils"
)

// Watcher regenerates when .apimod files below the configured paths change.
// Regeneration always runs on the goroutine that called Run.
type Watcher struct {
	generator      *Generator
	patterns       []string
	debouncePeriod time.Duration
	logger         *zap.SugaredLogger

	mu            sync.Mutex
	debounceTimer *time.Timer
	trigger       chan struct{}

	// OnRegenerate is called after every run with its result
	OnRegenerate func(error)
}

// NewWatcher creates a watcher for the generator's configured paths
func NewWatcher(g *Generator, debounce time.Duration, logger *zap.SugaredLogger) *Watcher {
	return &Watcher{
		generator:      g,
		patterns:       g.config.Paths,
		debouncePeriod: debounce,
		logger:         logger,
		trigger:        make(chan struct{}, 1),
	}
}

// Run generates once and then after every burst of changes until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.FileSystemErrorCode, "failed to create fsnotify watcher", err)
	}
	defer watcher.Close()

	targets, err := utils.ParsePatterns(w.patterns)
	if err != nil {
		return err
	}
	recursive := make(map[string]bool)
	for _, target := range targets {
		if err := w.addTarget(watcher, target); err != nil {
			return err
		}
		if target.Recursive {
			recursive[target.Dir] = true
		}
	}

	w.regenerate()

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && underRecursive(event.Name, recursive) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.logger.Debugw("Watching new directory", "dir", event.Name)
					_ = w.addTarget(watcher, utils.ScanTarget{Dir: event.Name, Recursive: true})
					w.scheduleRegenerate()
					continue
				}
			}
			if filepath.Ext(event.Name) != SourceExtension {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.logger.Debugw("Source change detected",
					"file", event.Name,
					"op", event.Op.String())
				w.scheduleRegenerate()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("Watcher error", "error", err)

		case <-w.trigger:
			w.regenerate()
		}
	}
}

// addTarget watches a directory, and for recursive targets every directory below it
func (w *Watcher) addTarget(watcher *fsnotify.Watcher, target utils.ScanTarget) error {
	if !target.Recursive {
		if err := watcher.Add(target.Dir); err != nil {
			return errors.WrapFileSystemError("watch", target.Dir, err)
		}
		return nil
	}

	skip := utils.DefaultDirectoryFilter()
	return filepath.WalkDir(target.Dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if path != target.Dir && !skip(path, entry) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return errors.WrapFileSystemError("watch", path, err)
		}
		return nil
	})
}

// scheduleRegenerate debounces rapid file changes
func (w *Watcher) scheduleRegenerate() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, func() {
		select {
		case w.trigger <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
}

func (w *Watcher) regenerate() {
	w.generator.fileReader.ClearCache()
	err := w.generator.Generate()
	if err != nil && !errors.Is(err, ErrDiagnosticsReported) {
		w.generator.Reporter().ReportError(err)
	}
	if w.OnRegenerate != nil {
		w.OnRegenerate(err)
	}
}

func underRecursive(path string, roots map[string]bool) bool {
	for root := range roots {
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !filepath.IsAbs(rel) && (len(rel) < 3 || rel[:3] != ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
