// Package watcher provides live reload for the engine's config file.
//
// The watcher monitors the file's directory rather than the file itself:
// editors typically replace config files by atomic rename, which would
// otherwise silently detach a file-level watch.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/themissingcow/nvim-comment-wrap/internal/debounce"
)

// ErrWatcherClosed is reported for operations on a closed watcher.
var ErrWatcherClosed = errors.New("watcher: closed")

// Handler is called after the config file changes, with changes within
// the settle window coalesced to one call.
type Handler func(path string)

// Watcher monitors one config file for changes.
type Watcher struct {
	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	path    string
	handler Handler
	settle  *debounce.Debouncer
	closed  bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// New starts watching path and invokes handler on changes. The settle
// delay coalesces the write bursts editors produce when saving.
func New(path string, settle time.Duration, handler Handler) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		path:    abs,
		handler: handler,
		done:    make(chan struct{}),
	}
	w.settle = debounce.New(settle, func() {
		w.mu.Lock()
		closed := w.closed
		w.mu.Unlock()
		if !closed && w.handler != nil {
			w.handler(w.path)
		}
	})

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Path returns the watched file path.
func (w *Watcher) Path() string { return w.path }

// Close stops the watcher and cancels any pending handler call.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	w.settle.Cancel()
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.settle.Trigger()

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Watch errors are not actionable here; the next
			// successful event still reloads.
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Name != w.path {
		return false
	}
	return ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename)
}
