package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// ErrRejected wraps the error of a gate that refused a reloaded config.
var ErrRejected = errors.New("config rejected")

// Loader reads a YAML grammar catalog and watches it for changes.
type Loader struct {
	path     string
	reloadMu sync.Mutex // one reload at a time, so gates see configs in order
	mu       sync.RWMutex
	current  *CatalogConfig
	gate     func(*CatalogConfig) error
	onChange []func(*CatalogConfig)
	watcher  *fsnotify.Watcher
}

// NewLoader creates a Loader and performs the initial load.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = cfg
	return l, nil
}

// Path returns the watched file.
func (l *Loader) Path() string { return l.path }

// Config returns the current (latest) configuration.
func (l *Loader) Config() *CatalogConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// SetGate installs a check every reloaded config must pass before it
// becomes current. A failing gate leaves the previous config in place.
func (l *Loader) SetGate(fn func(*CatalogConfig) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gate = fn
}

// OnChange registers a callback invoked whenever the config reloads.
func (l *Loader) OnChange(fn func(*CatalogConfig)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads the config on file changes.
// Call the returned stop function to clean up.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", l.path, err)
	}
	l.watcher = w

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if _, err := l.Reload(); err != nil {
						slog.Warn("config reload failed, keeping previous grammars", "path", l.path, "err", err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", "path", l.path, "err", err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}

// Reload forces an immediate re-read of the config file. The new config is
// committed, and OnChange callbacks run, only after the gate accepts it.
func (l *Loader) Reload() (*CatalogConfig, error) {
	l.reloadMu.Lock()
	defer l.reloadMu.Unlock()
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.mu.RLock()
	gate := l.gate
	l.mu.RUnlock()
	if gate != nil {
		if err := gate(cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrRejected, l.path, err)
		}
	}
	l.mu.Lock()
	l.current = cfg
	callbacks := make([]func(*CatalogConfig), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(cfg)
	}
	return cfg, nil
}

func (l *Loader) load() (*CatalogConfig, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", l.path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", l.path, err)
	}
	return cfg, nil
}

// Parse decodes a catalog document and applies defaults.
func Parse(data []byte) (*CatalogConfig, error) {
	var cfg CatalogConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// ApplyDefaults fills unset engine and generation settings.
func ApplyDefaults(cfg *CatalogConfig) {
	if cfg.Engine.Workers == 0 {
		cfg.Engine.Workers = runtime.NumCPU()
	}
	if cfg.Engine.QueueDepth == 0 {
		cfg.Engine.QueueDepth = 1000
	}
	if cfg.Engine.RunTimeoutMs == 0 {
		cfg.Engine.RunTimeoutMs = 5000
	}
	if cfg.Engine.RetainRuns == 0 {
		cfg.Engine.RetainRuns = 1000
	}
	if cfg.Generation.MaxSteps == 0 {
		cfg.Generation.MaxSteps = 1000
	}
	if cfg.Generation.MaxNodes == 0 {
		cfg.Generation.MaxNodes = 10000
	}
	if cfg.Generation.SeedMode == "" {
		cfg.Generation.SeedMode = SeedSentinel
	}
}
