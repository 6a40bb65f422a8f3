package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DynamicConfig is the subset of configuration that can change at runtime
type DynamicConfig struct {
	LogLevel       string  `yaml:"log_level"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// Dynamic returns the runtime-changeable part of c
func (c *Config) Dynamic() DynamicConfig {
	return DynamicConfig{
		LogLevel:       c.LogLevel,
		RateLimitRPS:   c.RateLimitRPS,
		RateLimitBurst: c.RateLimitBurst,
	}
}

// Watcher follows the YAML config file and republishes its dynamic section
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	debounce time.Duration

	mu       sync.RWMutex
	current  DynamicConfig
	onChange []func(DynamicConfig)
}

// NewWatcher creates a watcher seeded with initial. The file's directory is
// watched as well so editors that save by rename are picked up.
func NewWatcher(path string, initial DynamicConfig, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	return &Watcher{
		path:     path,
		watcher:  fw,
		logger:   logger,
		debounce: 100 * time.Millisecond,
		current:  initial,
	}, nil
}

// OnChange registers a listener; listeners run on the watcher goroutine
func (w *Watcher) OnChange(fn func(DynamicConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Current returns the last successfully loaded dynamic configuration
func (w *Watcher) Current() DynamicConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Run watches until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	w.logger.Info("Configuration watcher started", zap.String("path", w.path))

	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Configuration watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				reload = time.After(w.debounce)
			}

		case <-reload:
			reload = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.logger.Error("Failed to reload configuration", zap.Error(err))
		return
	}

	w.mu.RLock()
	next := w.current
	w.mu.RUnlock()

	if err := yaml.Unmarshal(data, &next); err != nil {
		w.logger.Error("Invalid configuration, keeping current", zap.Error(err))
		return
	}
	if _, err := zapcore.ParseLevel(next.LogLevel); err != nil {
		w.logger.Error("Invalid log level, keeping current", zap.String("level", next.LogLevel))
		return
	}

	w.mu.Lock()
	w.current = next
	listeners := append([]func(DynamicConfig){}, w.onChange...)
	w.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	w.logger.Info("Configuration reloaded", zap.String("log_level", next.LogLevel))
}

// LevelUpdater returns a listener that applies the configured log level
func LevelUpdater(level zap.AtomicLevel) func(DynamicConfig) {
	return func(c DynamicConfig) {
		if l, err := zapcore.ParseLevel(c.LogLevel); err == nil {
			level.SetLevel(l)
		}
	}
}
