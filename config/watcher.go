package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeFunc receives freshly loaded settings after the settings file changed.
type ChangeFunc func(Settings)

// Watcher reloads the settings file whenever it is written or replaced.
// The parent directory is watched because Save replaces the file by rename.
type Watcher struct {
	manager  *Manager
	onChange ChangeFunc
	debounce time.Duration
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	doneChan chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

func NewWatcher(m *Manager, debounce time.Duration, onChange ChangeFunc) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &Watcher{
		manager:  m,
		onChange: onChange,
		debounce: debounce,
		watcher:  fsWatcher,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}, nil
}

// Start begins watching the settings file.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.manager.Path())
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	go w.processEvents()
	slog.Info("settings watcher started", "path", w.manager.Path(), "debounce_ms", w.debounce.Milliseconds())
	return nil
}

// Stop stops watching and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	close(w.stopChan)
	<-w.doneChan

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	return w.watcher.Close()
}

func (w *Watcher) processEvents() {
	defer close(w.doneChan)
	target := filepath.Clean(w.manager.Path())

	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("settings watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	settings, err := w.manager.Load()
	if err != nil {
		slog.Warn("settings reload failed", "path", w.manager.Path(), "error", err)
		return
	}
	slog.Info("settings reloaded", "path", w.manager.Path())
	if w.onChange != nil {
		w.onChange(settings)
	}
}
