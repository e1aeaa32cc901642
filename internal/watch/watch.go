// Package watch reports changes to a set of files.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is the quiet period used when New gets a zero delay.
const DefaultDelay = 200 * time.Millisecond

// Watcher calls back once a watched file has stopped changing for the
// debounce delay. Parent directories are watched rather than the files
// themselves so that editors replacing a file by rename are noticed.
type Watcher struct {
	fsw    *fsnotify.Watcher
	files  map[string]string // cleaned absolute path -> path as given
	delay  time.Duration
	logger *slog.Logger
}

// New starts watching paths.
func New(paths []string, delay time.Duration, logger *slog.Logger) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		fsw:    fsw,
		files:  make(map[string]string, len(paths)),
		delay:  delay,
		logger: logger.With("component", "watch"),
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		w.files[abs] = p
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return w, nil
}

// Run delivers changes to onChange until ctx ends, then releases the
// watcher. onChange is called from Run's goroutine, one file at a time,
// with the path as it was given to New.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	defer w.fsw.Close()

	pending := make(map[string]*time.Timer)
	fired := make(chan string)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			path, watched := w.files[filepath.Clean(event.Name)]
			if !watched {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				w.logger.Debug("ignoring event", "file", path, "op", event.Op.String())
				continue
			}
			if t, ok := pending[path]; ok {
				t.Stop()
			}
			pending[path] = time.AfterFunc(w.delay, func() {
				select {
				case fired <- path:
				case <-ctx.Done():
				}
			})

		case path := <-fired:
			delete(pending, path)
			w.logger.Debug("file changed", "file", path)
			onChange(path)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}
