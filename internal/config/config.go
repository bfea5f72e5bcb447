// Package config loads the server configuration from defaults, an optional
// YAML file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the public Gitee API v5 endpoint
const DefaultBaseURL = "https://gitee.com/api/v5"

// Config represents the complete server configuration
type Config struct {
	Gitee     GiteeConfig     `mapstructure:"gitee" yaml:"gitee"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
	Tracing   TracingConfig   `mapstructure:"tracing" yaml:"tracing"`
}

// GiteeConfig configures the outbound API gateway
type GiteeConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Token   string `mapstructure:"token" yaml:"token"`
	// RequestTimeout of zero waits indefinitely
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// ServerConfig configures the protocol transports
type ServerConfig struct {
	// Port of zero selects the stdio transport only
	Port            int           `mapstructure:"port" yaml:"port"`
	Host            string        `mapstructure:"host" yaml:"host"`
	MaxConcurrent   int64         `mapstructure:"max_concurrent" yaml:"max_concurrent"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// RateLimitConfig configures inbound tool call limits. A zero rate disables
// the corresponding limiter.
type RateLimitConfig struct {
	GlobalRPS   float64 `mapstructure:"global_rps" yaml:"global_rps"`
	GlobalBurst int     `mapstructure:"global_burst" yaml:"global_burst"`
	ToolRPS     float64 `mapstructure:"tool_rps" yaml:"tool_rps"`
	ToolBurst   int     `mapstructure:"tool_burst" yaml:"tool_burst"`
}

// TracingConfig configures OpenTelemetry export
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled" yaml:"enabled"`
	ServiceName    string  `mapstructure:"service_name" yaml:"service_name"`
	Environment    string  `mapstructure:"environment" yaml:"environment"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"`
	OTLPInsecure   bool    `mapstructure:"otlp_insecure" yaml:"otlp_insecure"`
	ZipkinEndpoint string  `mapstructure:"zipkin_endpoint" yaml:"zipkin_endpoint"`
	SamplingRate   float64 `mapstructure:"sampling_rate" yaml:"sampling_rate"`
}

// envBindings maps config keys to the environment variables that set them
var envBindings = map[string]string{
	"gitee.base_url":          "GITEE_API_BASE_URL",
	"gitee.token":             "GITEE_PERSONAL_ACCESS_TOKEN",
	"gitee.request_timeout":   "GITEE_REQUEST_TIMEOUT",
	"gitee.user_agent":        "GITEE_USER_AGENT",
	"server.port":             "GITEE_MCP_PORT",
	"server.host":             "GITEE_MCP_HOST",
	"server.max_concurrent":   "GITEE_MCP_MAX_CONCURRENT",
	"log.level":               "GITEE_MCP_LOG_LEVEL",
	"rate_limit.global_rps":   "GITEE_MCP_GLOBAL_RPS",
	"rate_limit.global_burst": "GITEE_MCP_GLOBAL_BURST",
	"rate_limit.tool_rps":     "GITEE_MCP_TOOL_RPS",
	"rate_limit.tool_burst":   "GITEE_MCP_TOOL_BURST",
	"tracing.enabled":         "GITEE_MCP_TRACING_ENABLED",
	"tracing.otlp_endpoint":   "GITEE_MCP_TRACING_OTLP_ENDPOINT",
	"tracing.zipkin_endpoint": "GITEE_MCP_TRACING_ZIPKIN_ENDPOINT",
	"tracing.sampling_rate":   "GITEE_MCP_TRACING_SAMPLING_RATE",
	"tracing.environment":     "GITEE_MCP_ENVIRONMENT",
}

// Loader reads configuration and can watch the config file for changes
type Loader struct {
	v        *viper.Viper
	mu       sync.Mutex
	onChange []func(*Config)
}

// NewLoader creates a loader. path may be empty, in which case
// gitee-mcp.yaml is looked up in the usual locations.
func NewLoader(path string) *Loader {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gitee-mcp")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/gitee-mcp")
	}

	setDefaults(v)
	for key, env := range envBindings {
		// BindEnv only fails when called without a key
		_ = v.BindEnv(key, env)
	}

	return &Loader{v: v}
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !isNotExist(err) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the configuration file (if any) and the environment.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return l.decode()
}

// ConfigFile returns the file in use, or "" when running on defaults.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// OnChange registers fn to receive the new configuration whenever the
// config file is rewritten. Invalid updates are skipped.
func (l *Loader) OnChange(fn func(*Config)) {
	l.mu.Lock()
	l.onChange = append(l.onChange, fn)
	l.mu.Unlock()
}

// Watch starts watching the config file. It is a no-op without one.
func (l *Loader) Watch() {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.decode()
		if err != nil {
			return
		}
		l.mu.Lock()
		handlers := append([]func(*Config){}, l.onChange...)
		l.mu.Unlock()
		for _, fn := range handlers {
			fn(cfg)
		}
	})
	l.v.WatchConfig()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Gitee.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Gitee.BaseURL), "/")
	cfg.Gitee.Token = strings.TrimSpace(cfg.Gitee.Token)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gitee.base_url", DefaultBaseURL)
	v.SetDefault("gitee.token", "")
	v.SetDefault("gitee.request_timeout", "0s")
	v.SetDefault("gitee.user_agent", "")

	v.SetDefault("server.port", 0)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.max_concurrent", 16)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("log.level", "info")

	v.SetDefault("rate_limit.global_rps", 0)
	v.SetDefault("rate_limit.global_burst", 0)
	v.SetDefault("rate_limit.tool_rps", 0)
	v.SetDefault("rate_limit.tool_burst", 0)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "gitee-mcp")
	v.SetDefault("tracing.environment", "development")
	v.SetDefault("tracing.otlp_endpoint", "")
	v.SetDefault("tracing.otlp_insecure", true)
	v.SetDefault("tracing.zipkin_endpoint", "")
	v.SetDefault("tracing.sampling_rate", 1.0)
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	u, err := url.Parse(c.Gitee.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("gitee.base_url must be an absolute URL, got %q", c.Gitee.BaseURL)
	}
	if c.Gitee.RequestTimeout < 0 {
		return fmt.Errorf("gitee.request_timeout must not be negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.MaxConcurrent < 1 {
		return fmt.Errorf("server.max_concurrent must be at least 1")
	}
	if c.RateLimit.GlobalRPS < 0 || c.RateLimit.ToolRPS < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return fmt.Errorf("tracing.sampling_rate must be between 0 and 1")
	}
	return nil
}

// Redacted returns a copy with secrets masked, suitable for printing
func (c Config) Redacted() Config {
	c.Gitee.Token = MaskToken(c.Gitee.Token)
	return c
}

// YAML renders the redacted configuration as YAML
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c.Redacted())
}

// MaskToken keeps the first four characters of a secret.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 4 {
		return "****"
	}
	return token[:4] + "****"
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
