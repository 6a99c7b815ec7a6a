// Package watch reports changes to a single file using fsnotify. The parent
// directory is watched rather than the file itself so that editors which
// save by rename or recreate are still observed.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debounce is how long a file must be quiet before a change is delivered.
const Debounce = 100 * time.Millisecond

// Change reports that the watched file was written, replaced or removed.
type Change struct {
	Path    string
	Removed bool // the file no longer exists
	At      time.Time
}

// Watcher monitors one file for changes.
type Watcher struct {
	Path    string
	Changes <-chan Change

	changes chan Change
	done    chan struct{}
	watcher *fsnotify.Watcher
	started bool
	stop    sync.Once
}

// New creates a watcher for the file at path. The file does not need to
// exist yet but its directory does.
func New(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}

	// A single slot is enough: an undelivered change already means "reload".
	ch := make(chan Change, 1)
	return &Watcher{
		Path:    abs,
		Changes: ch,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.Path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch: add %s: %w", dir, err)
	}
	w.started = true
	go w.loop()
	return nil
}

// Stop releases the underlying fsnotify watcher and closes the Changes
// channel. It is safe to call before Start, after a failed Start, and more
// than once.
func (w *Watcher) Stop() {
	w.stop.Do(func() {
		w.watcher.Close()
		if w.started {
			<-w.done
		}
		close(w.changes)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	var pending time.Time
	ticker := time.NewTicker(Debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case now := <-ticker.C:
			if !pending.IsZero() && now.Sub(pending) >= Debounce {
				w.emit(now)
				pending = time.Time{}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal.
		}
	}
}

func (w *Watcher) emit(at time.Time) {
	_, err := os.Stat(w.Path)
	c := Change{Path: w.Path, Removed: os.IsNotExist(err), At: at}
	select {
	case w.changes <- c:
	default:
		// A change is already queued.
	}
}
