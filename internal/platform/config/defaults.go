package config

import "time"

// Defaults referenced outside this package.
const (
	// DefaultMaxRequestSize also bounds import payloads.
	DefaultMaxRequestSize = 1 << 20

	DefaultPollInterval     = 30 * time.Second
	DefaultFullSyncInterval = 5 * time.Minute
)

// defaults is the lowest configuration layer, one nested map per section.
//
// client.retry.max_attempts is 1: a failed sync cycle is not retried inside
// the cycle, the next scheduled tick is the retry.
func defaults() map[string]any {
	return map[string]any{
		"app": map[string]any{
			"name":        "quotesync",
			"version":     "dev",
			"environment": "local",
		},
		"server": map[string]any{
			"port":             8080,
			"host":             "0.0.0.0",
			"read_timeout":     "30s",
			"write_timeout":    "30s",
			"idle_timeout":     "2m",
			"shutdown_timeout": "10s",
			"max_request_size": DefaultMaxRequestSize,
		},
		"log": map[string]any{
			"level":  "info",
			"format": "json",
			"file": map[string]any{
				"enabled":     false,
				"path":        "./logs/quotesync.log",
				"max_size":    100,
				"max_backups": 3,
				"max_age":     28,
				"compress":    true,
			},
		},
		"telemetry": map[string]any{
			"enabled":       false,
			"endpoint":      "",
			"service_name":  "quotesync",
			"sampling_rate": 1.0,
		},
		"client": map[string]any{
			"timeout": "10s",
			"retry": map[string]any{
				"max_attempts":     1,
				"initial_interval": "100ms",
				"max_interval":     "5s",
				"multiplier":       2.0,
				"jitter_factor":    0.25,
			},
			"circuit_breaker": map[string]any{
				"max_failures":    5,
				"timeout":         "30s",
				"half_open_limit": 3,
			},
			"transport": map[string]any{
				"max_idle_conns":          100,
				"max_idle_conns_per_host": 10,
				"idle_conn_timeout":       "90s",
			},
		},
		"remote": map[string]any{
			"mode":             RemoteModeHTTP,
			"name":             "remote-quotes",
			"base_url":         "https://jsonplaceholder.typicode.com",
			"collection":       "/posts",
			"limit":            10,
			"user_id":          1,
			"push_concurrency": 4,
		},
		"storage": map[string]any{
			"driver": StorageDriverSQLite,
			"path":   "./data/quotes.db",
		},
		"sync": map[string]any{
			"enabled":            true,
			"poll_interval":      DefaultPollInterval.String(),
			"full_sync_interval": DefaultFullSyncInterval.String(),
			"poll_on_start":      true,
		},
	}
}
