package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"github.com/seantiz/switchyard/internal/model"
)

const (
	defaultListenAddr       = ":8080"
	defaultDBPath           = "switchyard.db"
	defaultLogFormat        = "json"
	defaultLogMaxSizeMB     = 10
	defaultLogMaxBackups    = 3
	defaultDispatchInterval = 5 * time.Second
	defaultBackoffInterval  = 2 * time.Second

	envConfigFile       = "SWITCHYARD_CONFIG"
	envListenAddr       = "SWITCHYARD_LISTEN_ADDR"
	envDBPath           = "SWITCHYARD_DB_PATH"
	envLogLevel         = "SWITCHYARD_LOG_LEVEL"
	envLogFormat        = "SWITCHYARD_LOG_FORMAT"
	envLogFile          = "SWITCHYARD_LOG_FILE"
	envDispatchInterval = "SWITCHYARD_DISPATCH_INTERVAL"
	envBackoffInterval  = "SWITCHYARD_BACKOFF_INTERVAL"
	envLogRetention     = "SWITCHYARD_LOG_RETENTION"
)

// Config holds application configuration. Values come from defaults, then
// an optional YAML file named by SWITCHYARD_CONFIG, then environment
// variables.
type Config struct {
	ListenAddr string
	DBPath     string

	LogLevel      slog.Level
	LogFormat     string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int

	DispatchInterval time.Duration
	BackoffInterval  time.Duration
	LogRetention     int

	// Pool, when set, is applied with Configure at startup.
	Pool *model.Configuration
}

// fileConfig mirrors the YAML layout.
type fileConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	DBPath     string `yaml:"db_path"`
	Log        struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"log"`
	Dispatch struct {
		Interval     string `yaml:"interval"`
		Backoff      string `yaml:"backoff"`
		LogRetention int    `yaml:"log_retention"`
	} `yaml:"dispatch"`
	Pool *model.Configuration `yaml:"pool"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:       defaultListenAddr,
		DBPath:           defaultDBPath,
		LogLevel:         slog.LevelInfo,
		LogFormat:        defaultLogFormat,
		LogMaxSizeMB:     defaultLogMaxSizeMB,
		LogMaxBackups:    defaultLogMaxBackups,
		DispatchInterval: defaultDispatchInterval,
		BackoffInterval:  defaultBackoffInterval,
	}
}

// Load reads configuration from the optional YAML file and environment
// variables on top of the defaults.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(envConfigFile); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.ListenAddr != "" {
		c.ListenAddr = fc.ListenAddr
	}
	if fc.DBPath != "" {
		c.DBPath = fc.DBPath
	}
	if fc.Log.Level != "" {
		c.LogLevel = parseLogLevel(fc.Log.Level)
	}
	if fc.Log.Format != "" {
		c.LogFormat = strings.ToLower(fc.Log.Format)
	}
	if fc.Log.File != "" {
		c.LogFile = fc.Log.File
	}
	if fc.Log.MaxSizeMB > 0 {
		c.LogMaxSizeMB = fc.Log.MaxSizeMB
	}
	if fc.Log.MaxBackups > 0 {
		c.LogMaxBackups = fc.Log.MaxBackups
	}
	if fc.Dispatch.Interval != "" {
		d, err := time.ParseDuration(fc.Dispatch.Interval)
		if err != nil {
			return fmt.Errorf("dispatch.interval: %w", err)
		}
		c.DispatchInterval = d
	}
	if fc.Dispatch.Backoff != "" {
		d, err := time.ParseDuration(fc.Dispatch.Backoff)
		if err != nil {
			return fmt.Errorf("dispatch.backoff: %w", err)
		}
		c.BackoffInterval = d
	}
	if fc.Dispatch.LogRetention != 0 {
		c.LogRetention = fc.Dispatch.LogRetention
	}
	c.Pool = fc.Pool
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(envListenAddr); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv(envDBPath); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		c.LogLevel = parseLogLevel(v)
	}
	if v := os.Getenv(envLogFormat); v != "" {
		c.LogFormat = strings.ToLower(v)
	}
	if v := os.Getenv(envLogFile); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv(envDispatchInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envDispatchInterval, err)
		}
		c.DispatchInterval = d
	}
	if v := os.Getenv(envBackoffInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envBackoffInterval, err)
		}
		c.BackoffInterval = d
	}
	if v := os.Getenv(envLogRetention); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envLogRetention, err)
		}
		c.LogRetention = n
	}
	return nil
}

func (c *Config) validate() error {
	if c.DispatchInterval <= 0 {
		return fmt.Errorf("dispatch interval must be positive, got %v", c.DispatchInterval)
	}
	if c.BackoffInterval < 0 {
		return fmt.Errorf("backoff interval must not be negative, got %v", c.BackoffInterval)
	}
	if c.LogRetention < 0 {
		return fmt.Errorf("log retention must not be negative, got %d", c.LogRetention)
	}
	if p := c.Pool; p != nil && (p.NumWorkers < 0 || p.NumClients < 0 || p.RequestsPerClient < 0) {
		return fmt.Errorf("pool values must not be negative: %+v", *p)
	}
	return nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLogLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func ParseLogLevel(s string) slog.Level {
	return parseLogLevel(s)
}

// NewLogger creates a structured logger writing to w at the given level.
// format is "json" (default) or "text".
func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(format) == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// LogOutput returns the writer the logger should use: out alone, or out
// tee'd into a size-rotated file when LogFile is set. The returned close
// function releases the file.
func (c Config) LogOutput(out io.Writer) (io.Writer, func() error) {
	if c.LogFile == "" {
		return out, func() error { return nil }
	}
	rotator := &lumberjack.Logger{
		Filename:   c.LogFile,
		MaxSize:    c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
	}
	return io.MultiWriter(out, rotator), rotator.Close
}
