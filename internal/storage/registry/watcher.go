// Package registry maintains a persistent index of ghost trace files.
package registry

import (
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/veldra/ghosttape/internal/storage/trace"
	"github.com/veldra/ghosttape/internal/telemetry/logger"
)

// Watcher keeps the registry in sync with a ghost directory by reacting
// to filesystem events.
type Watcher struct {
	registry *Registry
	watcher  *fsnotify.Watcher
	logger   logger.Logger

	mu   sync.Mutex
	done chan struct{}
}

// NewWatcher creates a watcher feeding the given registry.
func NewWatcher(reg *Registry, log logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		registry: reg,
		watcher:  fsw,
		logger:   log,
		done:     make(chan struct{}),
	}, nil
}

// Watch adds a ghost directory to watch.
func (w *Watcher) Watch(dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Error("failed to watch ghost directory", "dir", dir, "error", err)
		return err
	}
	w.logger.Debug("watching ghost directory", "dir", dir)
	return nil
}

// Start processes filesystem events until Stop is called. It blocks;
// use StartAsync to run in a goroutine.
func (w *Watcher) Start() {
	w.logger.Info("ghost directory watcher started")

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("ghost directory watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

// StartAsync starts watching in a goroutine.
func (w *Watcher) StartAsync() {
	go w.Start()
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("failed to close watcher", "error", err)
		return err
	}
	w.logger.Info("ghost directory watcher stopped")
	return nil
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, trace.FileExtension) {
		return
	}

	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		if err := w.registry.Delete(event.Name); err != nil {
			w.logger.Error("failed to drop removed trace", "path", event.Name, "error", err)
			return
		}
		w.logger.Debug("trace removed from index", "path", event.Name)

	case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
		// A freshly started recording has no tail yet; indexing fails
		// until the recorder stops and the final write event arrives.
		if err := w.registry.IndexFile(event.Name); err != nil {
			w.logger.Debug("trace not indexable yet", "path", event.Name, "error", err)
			return
		}
		w.logger.Debug("trace indexed", "path", event.Name)
	}
}
