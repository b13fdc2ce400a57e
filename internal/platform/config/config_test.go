package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inDir runs the test from an empty directory, optionally seeded with
// configs/<name> files.
func inDir(t *testing.T, files map[string]string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "configs"), 0o755))

	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", name), []byte(body), 0o600))
	}

	t.Chdir(dir)
}

func TestLoad_DefaultsAreValid(t *testing.T) {
	inDir(t, nil)

	cfg, err := Load("")

	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, AppConfig{Name: "quotesync", Version: "dev", Environment: "local"}, cfg.App)
	assert.Equal(t, ServerConfig{
		Port:            8080,
		Host:            "0.0.0.0",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
		MaxRequestSize:  DefaultMaxRequestSize,
	}, cfg.Server)
	assert.Equal(t, RemoteConfig{
		Mode:            RemoteModeHTTP,
		Name:            "remote-quotes",
		BaseURL:         "https://jsonplaceholder.typicode.com",
		Collection:      "/posts",
		Limit:           10,
		UserID:          1,
		PushConcurrency: 4,
	}, cfg.Remote)
	assert.Equal(t, StorageConfig{Driver: StorageDriverSQLite, Path: "./data/quotes.db"}, cfg.Storage)
	assert.Equal(t, SyncConfig{
		Enabled:          true,
		PollInterval:     DefaultPollInterval,
		FullSyncInterval: DefaultFullSyncInterval,
		PollOnStart:      true,
	}, cfg.Sync)
}

func TestLoad_ClientDefaults(t *testing.T) {
	inDir(t, nil)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Client.Timeout)
	assert.Equal(t, RetryConfig{
		MaxAttempts:     1,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2,
		JitterFactor:    0.25,
	}, cfg.Client.Retry)
	assert.Equal(t, CircuitBreakerConfig{
		MaxFailures:   5,
		Timeout:       30 * time.Second,
		HalfOpenLimit: 3,
	}, cfg.Client.CircuitBreaker)
}

func TestLoad_LogAndTelemetryDefaults(t *testing.T) {
	inDir(t, nil)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, LogFileConfig{
		Path:       "./logs/quotesync.log",
		MaxSizeMB:  100,
		MaxBackups: 3,
		MaxAgeDays: 28,
		Compress:   true,
	}, cfg.Log.File)
	assert.Equal(t, TelemetryConfig{ServiceName: "quotesync", SamplingRate: 1}, cfg.Telemetry)
}

func TestLoad_Layering(t *testing.T) {
	inDir(t, map[string]string{
		"base.yaml": "log:\n  level: debug\nsync:\n  poll_interval: 20s\nremote:\n  limit: 50\n",
		"qa.yaml":   "app:\n  environment: qa\nsync:\n  poll_interval: 40s\n",
	})
	t.Setenv("APP_REMOTE__LIMIT", "75")

	cfg, err := Load("qa")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level, "base over defaults")
	assert.Equal(t, "qa", cfg.App.Environment, "profile adds keys")
	assert.Equal(t, 40*time.Second, cfg.Sync.PollInterval, "profile over base")
	assert.Equal(t, 75, cfg.Remote.Limit, "env over files")
	assert.Equal(t, DefaultFullSyncInterval, cfg.Sync.FullSyncInterval, "untouched keys keep defaults")
}

func TestLoad_EnvTypes(t *testing.T) {
	inDir(t, nil)
	t.Setenv("APP_SERVER__PORT", "9090")
	t.Setenv("APP_TELEMETRY__ENABLED", "true")
	t.Setenv("APP_CLIENT__RETRY__MULTIPLIER", "1.5")
	t.Setenv("APP_SYNC__FULL_SYNC_INTERVAL", "90s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.InDelta(t, 1.5, cfg.Client.Retry.Multiplier, 1e-9)
	assert.Equal(t, 90*time.Second, cfg.Sync.FullSyncInterval)
}

func TestLoad_MissingProfileIsIgnored(t *testing.T) {
	inDir(t, nil)

	cfg, err := Load("nowhere")

	require.NoError(t, err)
	assert.Equal(t, "quotesync", cfg.App.Name)
}

func TestLoad_BrokenFiles(t *testing.T) {
	inDir(t, map[string]string{
		"base.yaml": "server: [unclosed\n",
		"bad.yaml":  "sync: {poll_interval: 10s\n",
	})

	_, err := Load("")
	require.ErrorContains(t, err, "loading base config")

	require.NoError(t, os.WriteFile(filepath.Join("configs", "base.yaml"), nil, 0o600))

	_, err = Load("bad")
	require.ErrorContains(t, err, `loading profile config "bad"`)
}

func TestLoad_UnparseableDuration(t *testing.T) {
	inDir(t, nil)
	t.Setenv("APP_SYNC__POLL_INTERVAL", "soon")

	_, err := Load("")

	require.ErrorContains(t, err, "unmarshalling config")
}

func TestEnvKey(t *testing.T) {
	for in, want := range map[string]string{
		"APP_SYNC__POLL_INTERVAL":         "sync.poll_interval",
		"APP_CLIENT__RETRY__MAX_ATTEMPTS": "client.retry.max_attempts",
		"APP_STORAGE__PATH":               "storage.path",
		"APP_REMOTE__PUSH_CONCURRENCY":    "remote.push_concurrency",
		"APP_LOG__FILE__ENABLED":          "log.file.enabled",
	} {
		assert.Equal(t, want, envKey(in), in)
	}
}
