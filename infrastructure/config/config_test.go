package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORAGE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gooey.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_address: ":9000"
log_level: debug
request_timeout: 5s
allowed_origins: ["https://app.example.com"]
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ServerAddress)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.AllowedOrigins)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown storage", func(c *Config) { c.Storage = "postgres" }, true},
		{"dynamodb without table", func(c *Config) { c.Storage = StorageDynamoDB; c.DynamoDBTable = "" }, true},
		{"production without secret", func(c *Config) { c.Environment = "production" }, true},
		{"negative burst", func(c *Config) { c.RateLimitBurst = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestWatcher_ReloadsLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gooey.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o600))

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	w, err := NewWatcher(path, Default().Dynamic(), zap.NewNop())
	require.NoError(t, err)
	w.OnChange(LevelUpdater(level))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the watcher a moment to enter its loop before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\nrate_limit_rps: 5\n"), 0o600))

	assert.Eventually(t, func() bool {
		return level.Level() == zapcore.DebugLevel
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, 5.0, w.Current().RateLimitRPS)
}

func TestWatcher_KeepsCurrentOnBadLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gooey.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: verbose\n"), 0o600))

	w, err := NewWatcher(path, Default().Dynamic(), zap.NewNop())
	require.NoError(t, err)
	defer w.watcher.Close()

	w.reload()
	assert.Equal(t, "info", w.Current().LogLevel)
}
