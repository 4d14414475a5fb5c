package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the config file when it changes on disk.
type Watcher struct {
	path         string
	watcher      *fsnotify.Watcher
	onChange     func(Config)
	debounceTime time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	pending bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher watches the directory containing path, so that editors which
// replace the file on save are picked up too.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:         filepath.Clean(path),
		watcher:      w,
		debounceTime: 500 * time.Millisecond,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
	}, nil
}

// OnChange sets the callback invoked with the reloaded config.
func (w *Watcher) OnChange(callback func(Config)) {
	w.onChange = callback
}

func (w *Watcher) Start() {
	w.wg.Add(2)
	go w.eventLoop()
	go w.debounceLoop()
}

func (w *Watcher) Stop() error {
	w.cancel()
	w.wg.Wait()
	return w.watcher.Close()
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.mu.Lock()
				w.pending = true
				w.mu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config_watch_error", "error", err.Error())
		}
	}
}

func (w *Watcher) debounceLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.debounceTime)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			w.mu.Lock()
			pending := w.pending
			w.pending = false
			w.mu.Unlock()

			if pending {
				w.reload()
			}
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config_reload_failed", "path", w.path, "error", err.Error())
		return
	}
	w.logger.Info("config_reloaded", "path", w.path, "rules", len(cfg.Rules))
	if w.onChange != nil {
		w.onChange(cfg)
	}
}
