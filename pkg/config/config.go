// Package config loads process configuration from defaults, an optional YAML
// file, an optional .env file and LOX_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lemonberrylabs/loxparse/pkg/analyzer"
	"github.com/lemonberrylabs/loxparse/pkg/logging"
)

// Config is the full process configuration.
type Config struct {
	Server        ServerConfig  `yaml:"server"`
	ScriptsDir    string        `yaml:"scriptsDir"`
	Log           LogConfig     `yaml:"log"`
	Scanner       ScannerConfig `yaml:"scanner"`
	CacheSize     int           `yaml:"cacheSize"`
	MaxSourceSize int           `yaml:"maxSourceSize"`
}

// ServerConfig holds the HTTP and gRPC listen settings.
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	GRPCPort int    `yaml:"grpcPort"`
}

// LogConfig selects the log level, format and extra sinks.
type LogConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	File    string `yaml:"file"`
	Journal bool   `yaml:"journal"`
}

// ScannerConfig holds scanner options.
type ScannerConfig struct {
	Strict bool `yaml:"strict"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			Port:     8787,
			GRPCPort: 8788,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		CacheSize:     analyzer.DefaultCacheSize,
		MaxSourceSize: analyzer.DefaultMaxSourceSize,
	}
}

// Load builds a Config. path and envFile are optional; when envFile is set its
// variables are added to the process environment without overriding
// variables that are already set.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening config: %w", err)
		}
		err = cfg.decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading env file: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode reads YAML from r on top of the defaults.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(r); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from LOX_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var result *multierror.Error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("LOX_HOST", &c.Server.Host)
	num("LOX_PORT", &c.Server.Port)
	num("LOX_GRPC_PORT", &c.Server.GRPCPort)
	str("LOX_SCRIPTS_DIR", &c.ScriptsDir)
	str("LOX_LOG_LEVEL", &c.Log.Level)
	str("LOX_LOG_FORMAT", &c.Log.Format)
	str("LOX_LOG_FILE", &c.Log.File)
	flag("LOX_LOG_JOURNAL", &c.Log.Journal)
	flag("LOX_STRICT", &c.Scanner.Strict)
	num("LOX_CACHE_SIZE", &c.CacheSize)
	num("LOX_MAX_SOURCE_SIZE", &c.MaxSourceSize)

	return result.ErrorOrNil()
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		result = multierror.Append(result, fmt.Errorf("server.grpcPort %d out of range", c.Server.GRPCPort))
	}
	if c.Server.Port != 0 && c.Server.Port == c.Server.GRPCPort {
		result = multierror.Append(result, fmt.Errorf("server.port and server.grpcPort are both %d", c.Server.Port))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		result = multierror.Append(result, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		result = multierror.Append(result, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	if c.CacheSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("cacheSize must be positive, got %d", c.CacheSize))
	}
	if c.MaxSourceSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("maxSourceSize must be positive, got %d", c.MaxSourceSize))
	}

	return result.ErrorOrNil()
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// GRPCAddr returns the gRPC listen address.
func (c *Config) GRPCAddr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.GRPCPort))
}

// AnalyzerOptions returns the analyzer settings.
func (c *Config) AnalyzerOptions() analyzer.Options {
	return analyzer.Options{
		Strict:        c.Scanner.Strict,
		CacheSize:     c.CacheSize,
		MaxSourceSize: c.MaxSourceSize,
	}
}

// LoggingOptions returns the logger settings.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		Level:   c.Log.Level,
		Format:  c.Log.Format,
		File:    c.Log.File,
		Journal: c.Log.Journal,
	}
}
