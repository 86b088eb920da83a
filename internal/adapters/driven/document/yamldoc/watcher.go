package yamldoc

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/bootman/internal/core/ports/driven"
	"github.com/custodia-labs/bootman/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.DocumentWatcher = (*Watcher)(nil)

// DefaultDebounce collapses the burst of events an editor produces on save.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reports changes to one document file. It watches the parent
// directory so replace-on-save editors and atomic renames are seen.
type Watcher struct {
	path     string
	debounce time.Duration
	fs       *fsnotify.Watcher
	events   chan struct{}
	errors   chan error
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// NewWatcher starts watching path.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = fs.Close()
		return nil, err
	}
	if err := fs.Add(filepath.Dir(abs)); err != nil {
		_ = fs.Close()
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		debounce: debounce,
		fs:       fs,
		events:   make(chan struct{}, 1),
		errors:   make(chan error, 1),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Events delivers a value after the document changed.
func (w *Watcher) Events() <-chan struct{} { return w.events }

// Errors delivers watcher failures.
func (w *Watcher) Errors() <-chan error { return w.errors }

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.handleEvent(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			select {
			case w.events <- struct{}{}:
			default:
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("document watcher: %v", err)
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

// handleEvent reports whether ev concerns the watched document.
func (w *Watcher) handleEvent(ev fsnotify.Event) bool {
	name, err := filepath.Abs(ev.Name)
	if err != nil || name != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove)
}
