// Package watch reports whether a consumer socket exists at the
// publisher's destination path.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/qosship/internal/ports"
	"github.com/bft-labs/qosship/pkg/log"
)

// DefaultDebounce coalesces the remove/create pair a consumer produces
// when it rebinds a stale socket.
const DefaultDebounce = 100 * time.Millisecond

// ConsumerWatcher watches the directory holding the destination socket.
type ConsumerWatcher struct {
	mu sync.Mutex

	path     string
	debounce time.Duration
	logger   ports.Logger
	observer ports.Observer

	present bool
	known   bool
	timer   *time.Timer
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures a ConsumerWatcher.
type Option func(*ConsumerWatcher)

func WithLogger(l ports.Logger) Option {
	return func(w *ConsumerWatcher) { w.logger = l }
}

func WithObserver(o ports.Observer) Option {
	return func(w *ConsumerWatcher) { w.observer = o }
}

func WithDebounce(d time.Duration) Option {
	return func(w *ConsumerWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher for the socket at path.
func New(path string, opts ...Option) *ConsumerWatcher {
	w := &ConsumerWatcher{
		path:     filepath.Clean(path),
		debounce: DefaultDebounce,
		logger:   log.NewNoopLogger(),
		observer: ports.NoopObserver{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start reports the current state and begins watching in the background.
// A directory that cannot be watched is logged as a warning and leaves
// the watcher idle.
func (w *ConsumerWatcher) Start(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Warn("consumer watch unavailable", ports.Err(err))
		return
	}

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		w.logger.Warn("consumer watch unavailable",
			ports.String("dir", dir),
			ports.Err(err),
		)
		return
	}

	w.refresh()

	watchCtx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()

	w.wg.Add(1)
	go w.loop(watchCtx, watcher)
}

// Stop ends the watch loop and waits for it to exit.
func (w *ConsumerWatcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

// Present reports the last observed state.
func (w *ConsumerWatcher) Present() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.present
}

func (w *ConsumerWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer w.wg.Done()
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.schedule(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("consumer watch error", ports.Err(err))
		}
	}
}

func (w *ConsumerWatcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		w.refresh()
	})
}

// refresh stats the socket path and reports a change of state.
func (w *ConsumerWatcher) refresh() {
	present := socketExists(w.path)

	w.mu.Lock()
	changed := !w.known || present != w.present
	w.present = present
	w.known = true
	w.mu.Unlock()

	if !changed {
		return
	}

	w.observer.ConsumerPresent(present)
	if present {
		w.logger.Info("consumer attached", ports.String("path", w.path))
	} else {
		w.logger.Info("consumer detached", ports.String("path", w.path))
	}
}

func socketExists(path string) bool {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) || err != nil {
		return false
	}
	return info.Mode()&fs.ModeSocket != 0
}
