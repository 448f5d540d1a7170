// Package config loads tutorkit configuration from the environment, an
// optional .env file and an optional YAML file.
//
// Precedence, lowest first: defaults, environment variables, the YAML file
// named by TUTORKIT_CONFIG. The file may reference environment variables
// with ${VAR}.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	ai "github.com/englify/tutorkit"
)

// FileEnv names the environment variable holding the YAML file path.
const FileEnv = "TUTORKIT_CONFIG"

// Config is the complete service configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Provider   ProviderConfig   `yaml:"provider"`
	Supervisor SupervisorConfig `yaml:"supervisor"`
	Guardrail  GuardrailConfig  `yaml:"guardrail"`
	Englify    EnglifyConfig    `yaml:"englify"`
	Tracing    TracingConfig    `yaml:"tracing"`

	// MCPServers are stdio MCP servers whose tools the supervisor may call.
	MCPServers []MCPServerConfig `yaml:"mcp_servers"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Port          int    `yaml:"port"`
	AllowedOrigin string `yaml:"allowed_origin"`
}

// Address returns the listen address.
func (s ServerConfig) Address() string {
	return fmt.Sprintf(":%d", s.Port)
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// ProviderConfig selects the reasoning backend.
type ProviderConfig struct {
	Name         string `yaml:"name"`
	OpenAIKey    string `yaml:"openai_api_key"`
	AnthropicKey string `yaml:"anthropic_api_key"`
	GoogleKey    string `yaml:"google_api_key"`
	BaseURL      string `yaml:"base_url"`

	Timeout      time.Duration `yaml:"timeout"`
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

// Key returns the API key of the selected provider.
func (p ProviderConfig) Key() string {
	provider, _ := ai.ParseProvider(p.Name)
	switch provider {
	case ai.ProviderAnthropic:
		return p.AnthropicKey
	case ai.ProviderGoogle:
		return p.GoogleKey
	default:
		return p.OpenAIKey
	}
}

// SupervisorConfig configures the resolution loop. An empty Model selects
// the provider's default.
type SupervisorConfig struct {
	Model          string        `yaml:"model"`
	MaxRounds      int           `yaml:"max_rounds"`
	HandlerTimeout time.Duration `yaml:"handler_timeout"`
}

// GuardrailConfig configures moderation. An empty Model selects the
// provider's default classifier model.
type GuardrailConfig struct {
	Model      string `yaml:"model"`
	AppName    string `yaml:"app_name"`
	FailClosed bool   `yaml:"fail_closed"`
}

// EnglifyConfig holds catalog API credentials. The catalog tools are
// enabled only when APIToken is set.
type EnglifyConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIToken    string `yaml:"api_token"`
	BearerToken string `yaml:"bearer_token"`
}

// Enabled reports whether catalog tools should be registered.
func (e EnglifyConfig) Enabled() bool {
	return e.APIToken != ""
}

// TracingConfig configures OTLP trace export. Tracing is off without an
// endpoint.
type TracingConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// MCPServerConfig is a stdio MCP server to import tools from.
type MCPServerConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Env     []string `yaml:"env"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8000, AllowedOrigin: "*"},
		Log:    LogConfig{Level: "info", Format: "text"},
		Provider: ProviderConfig{
			Name:         string(ai.ProviderOpenAI),
			Timeout:      60 * time.Second,
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
		},
		Supervisor: SupervisorConfig{
			MaxRounds:      10,
			HandlerTimeout: 30 * time.Second,
		},
		Guardrail: GuardrailConfig{AppName: "Englify"},
		Tracing:   TracingConfig{ServiceName: "tutorkit"},
	}
}

// Load reads .env if present, then the environment, then the YAML file
// named by TUTORKIT_CONFIG, and validates the result.
func Load() (*Config, error) {
	cfg, err := LoadUnvalidated()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadUnvalidated is Load without Validate, for callers that can run
// without a provider key.
func LoadUnvalidated() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadFile reads defaults overlaid with the YAML file at path, without
// consulting the environment except for ${VAR} references in the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.overlayFile(path); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields from the environment through getenv.
// Malformed numbers, booleans and durations are reported.
func (c *Config) applyEnv(getenv func(string) string) error {
	var errs []error
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	flag := func(key string, dst *bool) {
		if v := getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	num("TUTORKIT_PORT", &c.Server.Port)
	str("TUTORKIT_ALLOWED_ORIGIN", &c.Server.AllowedOrigin)
	str("TUTORKIT_LOG_LEVEL", &c.Log.Level)
	str("TUTORKIT_LOG_FORMAT", &c.Log.Format)

	str("TUTORKIT_PROVIDER", &c.Provider.Name)
	str("OPENAI_API_KEY", &c.Provider.OpenAIKey)
	str("ANTHROPIC_API_KEY", &c.Provider.AnthropicKey)
	str("GOOGLE_API_KEY", &c.Provider.GoogleKey)
	str("TUTORKIT_BASE_URL", &c.Provider.BaseURL)
	dur("TUTORKIT_GATEWAY_TIMEOUT", &c.Provider.Timeout)
	num("TUTORKIT_GATEWAY_MAX_ATTEMPTS", &c.Provider.MaxAttempts)

	str("TUTORKIT_MODEL", &c.Supervisor.Model)
	num("TUTORKIT_MAX_ROUNDS", &c.Supervisor.MaxRounds)
	dur("TUTORKIT_HANDLER_TIMEOUT", &c.Supervisor.HandlerTimeout)

	str("TUTORKIT_GUARDRAIL_MODEL", &c.Guardrail.Model)
	str("TUTORKIT_APP_NAME", &c.Guardrail.AppName)
	flag("TUTORKIT_GUARDRAIL_FAIL_CLOSED", &c.Guardrail.FailClosed)

	str("ENGLIFY_API_URL", &c.Englify.BaseURL)
	str("ENGLIFY_API_TOKEN", &c.Englify.APIToken)
	str("ENGLIFY_BEARER_TOKEN", &c.Englify.BearerToken)

	str("OTEL_EXPORTER_OTLP_ENDPOINT", &c.Tracing.Endpoint)
	str("OTEL_SERVICE_NAME", &c.Tracing.ServiceName)

	return errors.Join(errs...)
}

// Validate checks that the configuration can start a service.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q (valid: text, json)", c.Log.Format))
	}

	p, err := ai.ParseProvider(c.Provider.Name)
	if err != nil {
		errs = append(errs, err)
	} else if c.Provider.Key() == "" {
		errs = append(errs, fmt.Errorf("%s API key is required for provider %s", envKey(p), p))
	}
	if c.Provider.MaxAttempts < 1 {
		errs = append(errs, errors.New("provider max_attempts must be at least 1"))
	}
	if c.Provider.Timeout < 0 || c.Supervisor.HandlerTimeout < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}
	if c.Supervisor.MaxRounds < 0 {
		errs = append(errs, errors.New("supervisor max_rounds must not be negative"))
	}
	for i, s := range c.MCPServers {
		if s.Command == "" {
			errs = append(errs, fmt.Errorf("mcp_servers[%d]: command is required", i))
		}
	}

	return errors.Join(errs...)
}

func envKey(p ai.Provider) string {
	switch p {
	case ai.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ai.ProviderGoogle:
		return "GOOGLE_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}
