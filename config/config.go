package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/warmup/observe"
	"github.com/jonwraymond/warmup/plan"
)

// Config is the root of the warmupd configuration file.
type Config struct {
	ServiceName string        `yaml:"service_name"`
	Version     string        `yaml:"version"`
	Server      ServerConfig  `yaml:"server"`
	WarmUp      WarmUpConfig  `yaml:"warmup"`
	Auth        AuthConfig    `yaml:"auth"`
	Observe     ObserveConfig `yaml:"observe"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address           string        `yaml:"address"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

// WarmUpConfig holds the plan settings.
type WarmUpConfig struct {
	Protocol          string           `yaml:"protocol"`
	Hostname          string           `yaml:"hostname"`
	VerifyTLS         bool             `yaml:"verify_tls"`
	AutomaticEndpoint bool             `yaml:"automatic_endpoint"`
	Readiness         bool             `yaml:"readiness"`
	AutoSecurity      bool             `yaml:"auto_security"`
	CallTimeout       time.Duration    `yaml:"call_timeout"`
	Retry             RetryConfig      `yaml:"retry"`
	Endpoints         []EndpointConfig `yaml:"endpoints"`
	Repeats           []RepeatConfig   `yaml:"repeats"`
}

// EndpointConfig describes one configured warm-up call.
type EndpointConfig struct {
	Method      string `yaml:"method"`
	Path        string `yaml:"path"`
	Body        any    `yaml:"body"`
	ContentType string `yaml:"content_type"`
}

// RepeatConfig describes calls made several times.
type RepeatConfig struct {
	Times             int              `yaml:"times"`
	Interval          time.Duration    `yaml:"interval"`
	AutomaticEndpoint bool             `yaml:"automatic_endpoint"`
	Endpoints         []EndpointConfig `yaml:"endpoints"`
}

// RetryConfig configures retries of warm-up calls that fail in transport.
type RetryConfig struct {
	Attempts int           `yaml:"attempts"`
	Delay    time.Duration `yaml:"delay"`
}

// AuthConfig configures bearer protection of application routes.
type AuthConfig struct {
	Enabled       bool          `yaml:"enabled"`
	JWTSecret     string        `yaml:"jwt_secret"`
	JWTSecretFile string        `yaml:"jwt_secret_file"`
	Issuer        string        `yaml:"issuer"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
}

// ObserveConfig configures telemetry.
type ObserveConfig struct {
	Tracing observe.TracingConfig `yaml:"tracing"`
	Metrics observe.MetricsConfig `yaml:"metrics"`
	Logging observe.LoggingConfig `yaml:"logging"`
}

// Default returns the configuration used for keys absent from the file.
func Default() Config {
	return Config{
		ServiceName: "warmupd",
		Server: ServerConfig{
			Address:           "127.0.0.1:8080",
			ShutdownTimeout:   10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
		},
		WarmUp: WarmUpConfig{
			Protocol:     plan.DefaultProtocol,
			Hostname:     plan.DefaultHostname,
			VerifyTLS:    true,
			Readiness:    true,
			AutoSecurity: true,
			CallTimeout:  plan.DefaultCallTimeout,
			Retry:        RetryConfig{Attempts: 1, Delay: 50 * time.Millisecond},
		},
		Auth: AuthConfig{
			Issuer:   "warmupd",
			TokenTTL: time.Minute,
		},
		Observe: ObserveConfig{
			Tracing: observe.TracingConfig{Exporter: "none", SamplePct: 1.0},
			Metrics: observe.MetricsConfig{Exporter: "none"},
			Logging: observe.LoggingConfig{Enabled: true, Level: "info", Format: "json"},
		},
	}
}

// Load reads, expands and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse expands environment references in data, decodes it over Default and
// validates the result. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	expanded, err := ExpandEnv(string(data))
	if err != nil {
		return nil, err
	}

	cfg := Default()
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.ServiceName == "" {
		invalid("service_name is required")
	}
	if c.Server.Address == "" {
		invalid("server.address is required")
	}
	if c.Server.ShutdownTimeout < 0 {
		invalid("server.shutdown_timeout must not be negative")
	}

	switch c.WarmUp.Protocol {
	case "http", "https":
	default:
		invalid("warmup.protocol must be http or https, got %q", c.WarmUp.Protocol)
	}
	if c.WarmUp.Hostname == "" {
		invalid("warmup.hostname is required")
	}
	if c.WarmUp.CallTimeout < 0 {
		invalid("warmup.call_timeout must not be negative")
	}
	if c.WarmUp.Retry.Attempts < 1 {
		invalid("warmup.retry.attempts must be at least 1")
	}
	if c.WarmUp.Retry.Delay < 0 {
		invalid("warmup.retry.delay must not be negative")
	}
	for i, e := range c.WarmUp.Endpoints {
		if err := e.endpoint().Validate(); err != nil {
			invalid("warmup.endpoints[%d]: %v", i, err)
		}
	}
	for i, r := range c.WarmUp.Repeats {
		if r.Times <= 0 {
			invalid("warmup.repeats[%d].times must be positive", i)
		}
		if r.Interval < 0 {
			invalid("warmup.repeats[%d].interval must not be negative", i)
		}
		for j, e := range r.Endpoints {
			if err := e.endpoint().Validate(); err != nil {
				invalid("warmup.repeats[%d].endpoints[%d]: %v", i, j, err)
			}
		}
	}

	if c.Auth.Enabled && c.Auth.JWTSecret == "" && c.Auth.JWTSecretFile == "" {
		invalid("auth.jwt_secret or auth.jwt_secret_file is required when auth is enabled")
	}

	obs := c.ObserveConfig()
	if err := obs.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: observe: %w", ErrInvalidConfig, err))
	}

	return errors.Join(errs...)
}

// ObserveConfig returns the telemetry settings.
func (c *Config) ObserveConfig() observe.Config {
	return observe.Config{
		ServiceName: c.ServiceName,
		Version:     c.Version,
		Tracing:     c.Observe.Tracing,
		Metrics:     c.Observe.Metrics,
		Logging:     c.Observe.Logging,
	}
}

// Secret returns the JWT signing secret, reading JWTSecretFile when set.
func (a AuthConfig) Secret() ([]byte, error) {
	if a.JWTSecretFile == "" {
		return []byte(a.JWTSecret), nil
	}
	data, err := os.ReadFile(a.JWTSecretFile)
	if err != nil {
		return nil, fmt.Errorf("config: read jwt secret: %w", err)
	}
	return bytes.TrimSpace(data), nil
}

// Customizer applies the warmup section to a plan builder. It sets every
// target and toggle, so it runs as the assembler's base and named
// customizers override it.
func (c *Config) Customizer() plan.Customizer {
	w := c.WarmUp
	return func(b *plan.Builder) (*plan.Builder, error) {
		apply(b, w.AutomaticEndpoint, w.Endpoints)
		b.SetProtocol(w.Protocol).SetHostname(w.Hostname)
		if w.CallTimeout > 0 {
			b.SetCallTimeout(w.CallTimeout)
		}
		if w.VerifyTLS {
			b.EnableTLSVerification()
		} else {
			b.DisableTLSVerification()
		}
		if w.Readiness {
			b.EnableReadiness()
		} else {
			b.DisableReadiness()
		}

		for _, r := range w.Repeats {
			b.InitializingMultipleTimes(r.Times, r.Interval, func(nb *plan.Builder) (*plan.Builder, error) {
				apply(nb, r.AutomaticEndpoint, r.Endpoints)
				nb.SetProtocol(w.Protocol).SetHostname(w.Hostname)
				return nb, nil
			})
		}
		return b, b.Err()
	}
}

func apply(b *plan.Builder, automatic bool, endpoints []EndpointConfig) {
	if automatic {
		b.EnableAutomaticEndpoint()
	}
	for _, e := range endpoints {
		b.AddEndpoint(e.endpoint())
	}
}

func (e EndpointConfig) endpoint() plan.Endpoint {
	method := strings.ToUpper(e.Method)
	if method == "" {
		method = "GET"
	}
	if e.Body == nil {
		return plan.NewEndpoint(method, e.Path)
	}
	ct := e.ContentType
	if ct == "" {
		ct = plan.ContentTypeJSON
	}
	return plan.NewEndpointWithBody(method, e.Path, e.Body, ct)
}
