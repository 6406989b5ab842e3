package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fdenis75/hypermovie/internal/filesystem"
	"github.com/fdenis75/hypermovie/internal/logging"
)

const watchDebounce = 2 * time.Second

// Watcher triggers a debounced callback after filesystem changes settle
// under its root, generalized from teacher internal/indexer's
// create/remove/rename/write event handling (there keyed to a single
// re-index call; here to any caller-supplied rescan function).
type Watcher struct {
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
}

// Watch adds root and all of its subdirectories to an fsnotify watcher and
// invokes onChange (debounced to watchDebounce) whenever a non-hidden file
// or directory is created, removed, renamed or written.
func Watch(root string, onChange func()) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	count := 0
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && !strings.HasPrefix(d.Name(), ".") {
			if addErr := w.Add(path); addErr != nil {
				logging.Warn("scanner: failed to watch %s: %v", path, addErr)
			} else {
				count++
			}
		}
		return nil
	})
	logging.Debug("scanner: watching %d directories under %s", count, root)

	sw := &Watcher{watcher: w, stopChan: make(chan struct{})}
	go sw.run(onChange)
	return sw, nil
}

func (w *Watcher) run(onChange func()) {
	d := newDebouncer(watchDebounce, onChange)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event, d)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("scanner: watcher error: %v", err)
		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event, d *debouncer) {
	if strings.Contains(event.Name, "/.") {
		return
	}
	switch {
	case event.Op&fsnotify.Create != 0:
		if info, err := filesystem.StatWithRetry(event.Name, filesystem.DefaultRetryConfig()); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				logging.Warn("scanner: failed to watch new directory %s: %v", event.Name, err)
			}
		}
		d.trigger()
	case event.Op&(fsnotify.Remove|fsnotify.Rename|fsnotify.Write) != 0:
		d.trigger()
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.stopChan)
	return w.watcher.Close()
}

type debouncer struct {
	delay    time.Duration
	callback func()
	mu       sync.Mutex
	timer    *time.Timer
}

func newDebouncer(delay time.Duration, callback func()) *debouncer {
	return &debouncer{delay: delay, callback: callback}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.callback)
}
