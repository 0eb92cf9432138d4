package engine

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Reloader holds the active Engine built from a settings file and rebuilds
// it when the file changes on disk. A failed rebuild keeps the previous
// engine so an in-progress session never loses its provider.
type Reloader struct {
	path   string
	logger *log.Logger

	mu     sync.RWMutex
	engine Engine
}

// NewReloader loads the settings at path and builds the initial engine.
func NewReloader(ctx context.Context, path string, logger *log.Logger) (*Reloader, error) {
	settings, err := LoadSettings(path)
	if err != nil {
		return nil, fmt.Errorf("load engine settings: %w", err)
	}
	eng, err := Build(ctx, settings.Active, logger)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	return &Reloader{path: path, logger: logger, engine: eng}, nil
}

// Engine returns the currently active engine.
func (r *Reloader) Engine() Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.engine
}

// Watch blocks until ctx is done, rebuilding the engine whenever the
// settings file is written. Intended to run in its own goroutine.
func (r *Reloader) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors replace files, which drops a watch set
	// directly on the file path.
	if err := w.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("fsnotify add: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(r.path) {
				continue
			}
			if (ev.Op&fsnotify.Create) == 0 && (ev.Op&fsnotify.Write) == 0 {
				continue
			}
			r.reload(ctx)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if r.logger != nil {
				r.logger.Printf("settings watch error: %v", err)
			}
		}
	}
}

func (r *Reloader) reload(ctx context.Context) {
	settings, err := LoadSettings(r.path)
	if err != nil {
		if r.logger != nil {
			r.logger.Printf("settings reload failed, keeping previous engine: %v", err)
		}
		return
	}
	eng, err := Build(ctx, settings.Active, r.logger)
	if err != nil {
		if r.logger != nil {
			r.logger.Printf("engine rebuild failed, keeping previous engine: %v", err)
		}
		return
	}
	r.mu.Lock()
	r.engine = eng
	r.mu.Unlock()
	if r.logger != nil {
		r.logger.Printf("reasoning engine reloaded: provider=%s model=%s", settings.Active.Provider, settings.Active.Model)
	}
}
