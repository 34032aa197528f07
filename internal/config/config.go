// Package config loads amicooked settings from defaults, an optional YAML
// file, environment variables and bound flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/valpere/amicooked/internal"
	"github.com/valpere/amicooked/internal/judge"
	"github.com/valpere/amicooked/internal/scenario"
)

const EnvPrefix = "AMICOOKED"

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

const redacted = "********"

type Config struct {
	Server    Server    `mapstructure:"server" yaml:"server"`
	Provider  Provider  `mapstructure:"provider" yaml:"provider"`
	Judgement Judgement `mapstructure:"judgement" yaml:"judgement"`
	Log       Log       `mapstructure:"log" yaml:"log"`
	Client    Client    `mapstructure:"client" yaml:"client"`
}

type Server struct {
	Port           int       `mapstructure:"port" yaml:"port"`
	AllowedOrigins []string  `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	RateLimit      RateLimit `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// RateLimit allows Requests per Window for each client IP.
type RateLimit struct {
	Requests int           `mapstructure:"requests" yaml:"requests"`
	Window   time.Duration `mapstructure:"window" yaml:"window"`
}

type Provider struct {
	Name string `mapstructure:"name" yaml:"name"`

	judge.ServiceConfig `mapstructure:",squash" yaml:",inline"`
}

type Judgement struct {
	MaxLength    int      `mapstructure:"max_length" yaml:"max_length"`
	Threshold    int      `mapstructure:"threshold" yaml:"threshold"`
	CookedNames  []string `mapstructure:"cooked_names" yaml:"cooked_names"`
	VerdictCheck bool     `mapstructure:"verdict_check" yaml:"verdict_check"`
}

type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type Client struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// SetDefaults registers every known key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:8888"})
	v.SetDefault("server.rate_limit.requests", 100)
	v.SetDefault("server.rate_limit.window", 15*time.Minute)

	v.SetDefault("provider.name", ProviderOpenAI)
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.model", "")
	v.SetDefault("provider.temperature", judge.DefaultTemperature)
	v.SetDefault("provider.timeout", judge.DefaultTimeout)

	v.SetDefault("judgement.max_length", scenario.DefaultMaxLength)
	v.SetDefault("judgement.threshold", internal.DefaultThreshold)
	v.SetDefault("judgement.cooked_names", []string{})
	v.SetDefault("judgement.verdict_check", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("client.base_url", "http://localhost:3001")
	v.SetDefault("client.timeout", 30*time.Second)
}

// bindEnv maps AMICOOKED_SECTION_KEY for every key, plus the unprefixed
// variable names the web frontend and hosting platforms use.
func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	aliases := map[string][]string{
		"server.port":            {"PORT"},
		"judgement.cooked_names": {"C00KED_NAMES", "VITE_C00KED_NAMES"},
		"client.base_url":        {"VITE_API_URL"},
		"openai_api_key":         {"OPENAI_API_KEY"},
		"gemini_api_key":         {"GEMINI_API_KEY"},
	}
	for key, names := range aliases {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

// Load reads path (when not empty) into v and returns the validated result.
// Flags should be bound to v before calling Load.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Provider.Name = strings.ToLower(strings.TrimSpace(cfg.Provider.Name))
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = v.GetString(cfg.Provider.Name + "_api_key")
	}
	cfg.Server.AllowedOrigins = cleanList(cfg.Server.AllowedOrigins)
	cfg.Judgement.CookedNames = cleanList(cfg.Judgement.CookedNames)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	for _, origin := range c.Server.AllowedOrigins {
		if origin == "*" {
			continue
		}
		if err := checkURL(origin); err != nil {
			errs = append(errs, fmt.Errorf("server.allowed_origins: %w", err))
		}
	}
	if c.Server.RateLimit.Requests <= 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit.requests must be positive, got %d", c.Server.RateLimit.Requests))
	}
	if c.Server.RateLimit.Window <= 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit.window must be positive, got %s", c.Server.RateLimit.Window))
	}

	switch c.Provider.Name {
	case ProviderOpenAI, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("provider.name must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, c.Provider.Name))
	}
	if c.Provider.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("provider.timeout must be positive, got %s", c.Provider.Timeout))
	}
	// 0 would mean "unset" to the judge and fall back to the default.
	if c.Provider.Temperature <= 0 || c.Provider.Temperature > 2 {
		errs = append(errs, fmt.Errorf("provider.temperature must be greater than 0 and at most 2, got %v", c.Provider.Temperature))
	}
	if c.Provider.BaseURL != "" {
		if err := checkURL(c.Provider.BaseURL); err != nil {
			errs = append(errs, fmt.Errorf("provider.base_url: %w", err))
		}
	}

	if c.Judgement.MaxLength <= 0 {
		errs = append(errs, fmt.Errorf("judgement.max_length must be positive, got %d", c.Judgement.MaxLength))
	}
	if c.Judgement.Threshold < 1 || c.Judgement.Threshold > 100 {
		errs = append(errs, fmt.Errorf("judgement.threshold must be between 1 and 100, got %d", c.Judgement.Threshold))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be \"json\" or \"console\", got %q", c.Log.Format))
	}

	if err := checkURL(c.Client.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("client.base_url: %w", err))
	}
	if c.Client.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("client.timeout must be positive, got %s", c.Client.Timeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// JudgeConfig returns the provider settings with the judgement limits the
// judge re-validates against.
func (c *Config) JudgeConfig() judge.ServiceConfig {
	sc := c.Provider.ServiceConfig
	sc.MaxLength = c.Judgement.MaxLength
	sc.Threshold = c.Judgement.Threshold
	return sc
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Provider.APIKey != "" {
		c.Provider.APIKey = redacted
	}
	c.Server.AllowedOrigins = append([]string(nil), c.Server.AllowedOrigins...)
	c.Judgement.CookedNames = append([]string(nil), c.Judgement.CookedNames...)
	return c
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme in %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

func cleanList(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
