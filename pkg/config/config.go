// Package config loads the server configuration from defaults, an optional
// YAML file and the environment, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIBaseURL = "https://api.github.com/"
	DefaultUserAgent  = "github-mcp"
	DefaultTransport  = "stdio"
	DefaultAddr       = ":8080"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
)

// Environment variables recognised by Load.
const (
	EnvToken     = "GITHUB_PERSONAL_ACCESS_TOKEN"
	EnvAPIURL    = "GITHUB_API_URL"
	EnvConfig    = "GITHUB_MCP_CONFIG"
	EnvTransport = "GITHUB_MCP_TRANSPORT"
	EnvAddr      = "GITHUB_MCP_ADDR"
	EnvLogLevel  = "GITHUB_MCP_LOG_LEVEL"
	EnvTracing   = "GITHUB_MCP_TRACING"
	EnvTimeout   = "GITHUB_MCP_TIMEOUT"
)

// Config is the immutable process configuration. Values are copied into the
// components that need them; nothing reads the environment after Load.
type Config struct {
	GitHub  GitHub  `yaml:"github"`
	Server  Server  `yaml:"server"`
	Log     Log     `yaml:"log"`
	Tracing Tracing `yaml:"tracing"`
}

// GitHub holds the credential and endpoint used for the outbound call.
type GitHub struct {
	Token      string `yaml:"token"`
	APIBaseURL string `yaml:"apiBaseURL"`
	UserAgent  string `yaml:"userAgent"`
	// Timeout of zero leaves the HTTP client default in place.
	Timeout time.Duration `yaml:"timeout"`
}

// HasToken reports whether a credential is configured.
func (g GitHub) HasToken() bool { return strings.TrimSpace(g.Token) != "" }

type Server struct {
	Transport string `yaml:"transport"` // stdio | http
	Addr      string `yaml:"addr"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | text
}

type Tracing struct {
	Enabled bool `yaml:"enabled"`
	Stdout  bool `yaml:"stdout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		GitHub: GitHub{APIBaseURL: DefaultAPIBaseURL, UserAgent: DefaultUserAgent},
		Server: Server{Transport: DefaultTransport, Addr: DefaultAddr},
		Log:    Log{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// Load builds a Config. path may be empty, in which case GITHUB_MCP_CONFIG is
// consulted; a missing file is only an error when the path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if !strings.HasSuffix(cfg.GitHub.APIBaseURL, "/") {
		cfg.GitHub.APIBaseURL += "/"
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvToken); v != "" {
		cfg.GitHub.Token = v
	}
	cfg.GitHub.APIBaseURL = getEnv(EnvAPIURL, cfg.GitHub.APIBaseURL)
	cfg.Server.Transport = getEnv(EnvTransport, cfg.Server.Transport)
	cfg.Server.Addr = getEnv(EnvAddr, cfg.Server.Addr)
	cfg.Log.Level = getEnv(EnvLogLevel, cfg.Log.Level)
	if v := os.Getenv(EnvTracing); v != "" {
		switch strings.ToLower(v) {
		case "stdout":
			cfg.Tracing = Tracing{Enabled: true, Stdout: true}
		default:
			on, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", EnvTracing, err)
			}
			cfg.Tracing.Enabled = on
		}
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.GitHub.Timeout = d
	}
	return nil
}

// Validate rejects values the server cannot start with. A missing token is
// not an error: the tool reports it to the caller on each invocation.
func (c Config) Validate() error {
	switch c.Server.Transport {
	case "stdio", "http":
	default:
		return fmt.Errorf("unknown transport %q (want stdio or http)", c.Server.Transport)
	}
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q (want json or text)", c.Log.Format)
	}
	if c.GitHub.Timeout < 0 {
		return fmt.Errorf("negative timeout %s", c.GitHub.Timeout)
	}
	return nil
}

func getEnv(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
