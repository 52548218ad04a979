package config

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const envPrefix = "GATEWATCH_"

type Config struct {
	DeviceURL    string        // GATEWATCH_DEVICE_URL (default "http://192.168.4.1")
	PollInterval time.Duration // GATEWATCH_POLL_INTERVAL (default 1s)
	Timeout      time.Duration // GATEWATCH_TIMEOUT (default 3s)
	Threshold    float64       // GATEWATCH_THRESHOLD (default 50)
	ReleaseBand  float64       // GATEWATCH_RELEASE_BAND (default 0 = single comparison)
	LogCap       int           // GATEWATCH_LOG_CAP (default 50)

	HTTPAddr      string        // GATEWATCH_HTTP_ADDR (default ":8080")
	AuthToken     string        // GATEWATCH_AUTH_TOKEN (optional, empty = auth disabled)
	NATSURL       string        // GATEWATCH_NATS_URL (optional, empty = no events)
	NotifyCommand string        // GATEWATCH_NOTIFY_COMMAND (optional)
	NotifyTimeout time.Duration // GATEWATCH_NOTIFY_TIMEOUT (default 30s)
	DatabaseURL   string        // GATEWATCH_DATABASE_URL (optional, empty = no journal)
	LogLevel      slog.Level    // GATEWATCH_LOG_LEVEL (default info)

	// Sync settings
	SyncInterval   time.Duration // GATEWATCH_SYNC_INTERVAL (default 5m; 0 = disabled)
	SyncS3Bucket   string        // GATEWATCH_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // GATEWATCH_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // GATEWATCH_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // GATEWATCH_SYNC_S3_KEY (default "gatewatch/transitions.jsonl")
	SyncGitRepo    string        // GATEWATCH_SYNC_GIT_REPO (enables git when set; path to clone)
	SyncGitFile    string        // GATEWATCH_SYNC_GIT_FILE (default "transitions.jsonl")
	SyncGitBranch  string        // GATEWATCH_SYNC_GIT_BRANCH (default "main")
}

// knownKeys are the accepted TOML keys. Each maps to GATEWATCH_<KEY>.
var knownKeys = map[string]bool{
	"device_url": true, "poll_interval": true, "timeout": true, "threshold": true,
	"release_band": true, "log_cap": true, "http_addr": true, "auth_token": true,
	"nats_url": true, "notify_command": true, "notify_timeout": true,
	"database_url": true, "log_level": true, "sync_interval": true,
	"sync_s3_bucket": true, "sync_s3_endpoint": true, "sync_s3_region": true,
	"sync_s3_key": true, "sync_git_repo": true, "sync_git_file": true,
	"sync_git_branch": true,
}

// source resolves a setting from the environment first, then the config file.
type source struct {
	file map[string]string
}

func (s source) get(key, fallback string) string {
	if v := os.Getenv(envPrefix + strings.ToUpper(key)); v != "" {
		return v
	}
	if v, ok := s.file[key]; ok && v != "" {
		return v
	}
	return fallback
}

func (s source) duration(key, fallback string) (time.Duration, error) {
	raw := s.get(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", envPrefix, strings.ToUpper(key), err)
	}
	return d, nil
}

func (s source) float(key, fallback string) (float64, error) {
	raw := s.get(key, fallback)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", envPrefix, strings.ToUpper(key), err)
	}
	return f, nil
}

func (s source) integer(key, fallback string) (int, error) {
	raw := s.get(key, fallback)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", envPrefix, strings.ToUpper(key), err)
	}
	return n, nil
}

// Load reads the configuration from GATEWATCH_* environment variables.
// When GATEWATCH_CONFIG names a TOML file its values act as defaults;
// environment variables always win.
func Load() (*Config, error) {
	file, err := loadFile(os.Getenv(envPrefix + "CONFIG"))
	if err != nil {
		return nil, err
	}
	src := source{file: file}

	c := &Config{
		DeviceURL:      src.get("device_url", "http://192.168.4.1"),
		HTTPAddr:       src.get("http_addr", ":8080"),
		AuthToken:      src.get("auth_token", ""),
		NATSURL:        src.get("nats_url", ""),
		NotifyCommand:  src.get("notify_command", ""),
		DatabaseURL:    src.get("database_url", ""),
		SyncS3Bucket:   src.get("sync_s3_bucket", ""),
		SyncS3Endpoint: src.get("sync_s3_endpoint", ""),
		SyncS3Region:   src.get("sync_s3_region", "us-east-1"),
		SyncS3Key:      src.get("sync_s3_key", "gatewatch/transitions.jsonl"),
		SyncGitRepo:    src.get("sync_git_repo", ""),
		SyncGitFile:    src.get("sync_git_file", "transitions.jsonl"),
		SyncGitBranch:  src.get("sync_git_branch", "main"),
	}

	if c.PollInterval, err = src.duration("poll_interval", "1s"); err != nil {
		return nil, err
	}
	if c.Timeout, err = src.duration("timeout", "3s"); err != nil {
		return nil, err
	}
	if c.NotifyTimeout, err = src.duration("notify_timeout", "30s"); err != nil {
		return nil, err
	}
	if c.SyncInterval, err = src.duration("sync_interval", "5m"); err != nil {
		return nil, err
	}
	if c.Threshold, err = src.float("threshold", "50"); err != nil {
		return nil, err
	}
	if c.ReleaseBand, err = src.float("release_band", "0"); err != nil {
		return nil, err
	}
	if c.LogCap, err = src.integer("log_cap", "50"); err != nil {
		return nil, err
	}
	if c.LogLevel, err = ParseLevel(src.get("log_level", "info")); err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	switch {
	case c.PollInterval <= 0:
		return fmt.Errorf("GATEWATCH_POLL_INTERVAL must be positive, got %s", c.PollInterval)
	case c.Timeout <= 0:
		return fmt.Errorf("GATEWATCH_TIMEOUT must be positive, got %s", c.Timeout)
	case c.Threshold <= 0:
		return fmt.Errorf("GATEWATCH_THRESHOLD must be positive, got %g", c.Threshold)
	case c.ReleaseBand < 0:
		return fmt.Errorf("GATEWATCH_RELEASE_BAND must not be negative, got %g", c.ReleaseBand)
	case c.LogCap <= 0:
		return fmt.Errorf("GATEWATCH_LOG_CAP must be positive, got %d", c.LogCap)
	case c.SyncInterval < 0:
		return fmt.Errorf("GATEWATCH_SYNC_INTERVAL must not be negative, got %s", c.SyncInterval)
	}
	return nil
}

// SyncEnabled reports whether at least one export destination is configured.
func (c *Config) SyncEnabled() bool {
	return c.SyncInterval > 0 && (c.SyncS3Bucket != "" || c.SyncGitRepo != "")
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("GATEWATCH_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// loadFile reads a flat TOML file into string values keyed by setting name.
// An empty path yields no values.
func loadFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	var raw map[string]any
	md, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var unknown []string
	out := make(map[string]string, len(raw))
	for _, key := range md.Keys() {
		k := key.String()
		if !knownKeys[k] {
			unknown = append(unknown, k)
			continue
		}
		switch v := raw[k].(type) {
		case string:
			out[k] = v
		case int64:
			out[k] = strconv.FormatInt(v, 10)
		case float64:
			out[k] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return nil, fmt.Errorf("config %s: %s has unsupported type %T", path, k, v)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(unknown, ", "))
	}
	return out, nil
}
