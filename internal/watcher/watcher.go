// Package watcher watches axd's optional config file and live-reloads the
// settings that are safe to change without rebinding the server (currently:
// the log level, applied by the caller's ReloadFunc).
package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"axd/internal/config"
)

// ReloadFunc is invoked with the freshly-loaded config after a debounced
// write to the watched file. A non-nil error from Load is swallowed (the
// callback is not invoked and nothing is logged) rather than propagated,
// since a bad edit should not crash a running daemon.
type ReloadFunc func(cfg *config.Config)

// ConfigWatcher watches one file and debounces rapid-fire writes (editors
// frequently emit several events per save) before invoking ReloadFunc.
type ConfigWatcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration
	onReload  ReloadFunc

	mu      sync.Mutex
	pending bool

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a watcher for path (which need not exist yet — a config file
// created later is picked up once its directory is watched).
func New(path string, onReload ReloadFunc) (*ConfigWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &ConfigWatcher{
		fsWatcher: fsw,
		path:      path,
		debounce:  300 * time.Millisecond,
		onReload:  onReload,
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching the config file's parent directory (watching the
// directory, not the file, survives editors that replace the file via
// rename-on-save).
func (w *ConfigWatcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.eventLoop()
	return nil
}

// Stop shuts the watcher down.
func (w *ConfigWatcher) Stop() error {
	close(w.done)
	w.wg.Wait()
	return w.fsWatcher.Close()
}

func (w *ConfigWatcher) eventLoop() {
	defer w.wg.Done()

	var timer *time.Timer
	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)

		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *ConfigWatcher) reload() {
	w.mu.Lock()
	if w.pending {
		w.mu.Unlock()
		return
	}
	w.pending = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.pending = false
		w.mu.Unlock()
	}()

	cfg, err := config.Load(w.path)
	if err != nil {
		return
	}
	if w.onReload != nil {
		w.onReload(cfg)
	}
}
