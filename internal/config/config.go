package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
	TransportSSE   = "sse"

	TelemetryNone   = "none"
	TelemetryStderr = "stderr"
)

type PolicyRule struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
	Effect     string `yaml:"effect"`
	Message    string `yaml:"message,omitempty"`
}

type PolicyConfig struct {
	Default string       `yaml:"default"`
	Rules   []PolicyRule `yaml:"rules,omitempty"`
}

type RateLimitConfig struct {
	// Requests per second; 0 disables limiting.
	RPS   int `yaml:"rps"`
	Burst int `yaml:"burst"`
}

// TelemetryConfig selects where spans and metrics go.
type TelemetryConfig struct {
	// Exporter is "none" or "stderr".
	Exporter string `yaml:"exporter"`
	// Metrics are exported every MetricIntervalSeconds; 0 uses the SDK default.
	MetricIntervalSeconds int `yaml:"metric_interval_seconds"`
}

type Config struct {
	Transport      string          `yaml:"transport"`
	Host           string          `yaml:"host"`
	Port           int             `yaml:"port"`
	Path           string          `yaml:"path"`
	LogLevel       string          `yaml:"log_level"`
	ReadmePath     string          `yaml:"readme_path"`
	MaxOutputBytes int             `yaml:"max_output_bytes"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
	Policy         PolicyConfig    `yaml:"policy"`
	Telemetry      TelemetryConfig `yaml:"telemetry"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() *Config {
	return &Config{
		Transport:  TransportHTTP,
		Host:       "0.0.0.0",
		Port:       8000,
		Path:       "/mcp",
		LogLevel:   "info",
		ReadmePath: "README.md",
		Policy:     PolicyConfig{Default: "allow"},
		Telemetry:  TelemetryConfig{Exporter: TelemetryNone},
	}
}

// Load reads a YAML config file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	if c.Transport == "" {
		c.Transport = TransportHTTP
	}
	switch c.Transport {
	case TransportStdio, TransportHTTP, TransportSSE:
	default:
		return fmt.Errorf("transport must be 'stdio', 'http', or 'sse', got %q", c.Transport)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.Path == "" {
		c.Path = "/mcp"
	}
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("path must start with '/', got %q", c.Path)
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.MaxOutputBytes < 0 {
		return fmt.Errorf("max_output_bytes must not be negative, got %d", c.MaxOutputBytes)
	}

	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("rate_limit.rps must not be negative, got %d", c.RateLimit.RPS)
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = c.RateLimit.RPS
	}

	c.Telemetry.Exporter = strings.ToLower(strings.TrimSpace(c.Telemetry.Exporter))
	if c.Telemetry.Exporter == "" {
		c.Telemetry.Exporter = TelemetryNone
	}
	if c.Telemetry.Exporter != TelemetryNone && c.Telemetry.Exporter != TelemetryStderr {
		return fmt.Errorf("telemetry.exporter must be 'none' or 'stderr', got %q", c.Telemetry.Exporter)
	}
	if c.Telemetry.MetricIntervalSeconds < 0 {
		return fmt.Errorf("telemetry.metric_interval_seconds must not be negative, got %d", c.Telemetry.MetricIntervalSeconds)
	}

	return c.Policy.validate()
}

func (p *PolicyConfig) validate() error {
	if p.Default == "" {
		p.Default = "allow"
	}
	if p.Default != "allow" && p.Default != "deny" {
		return fmt.Errorf("policy.default must be 'allow' or 'deny', got %q", p.Default)
	}

	seen := make(map[string]bool, len(p.Rules))
	for i, rule := range p.Rules {
		if rule.Name == "" {
			return fmt.Errorf("policy rule %d: name is required", i)
		}
		if seen[rule.Name] {
			return fmt.Errorf("policy rule %d: duplicate rule name %q", i, rule.Name)
		}
		seen[rule.Name] = true
		if rule.Expression == "" {
			return fmt.Errorf("policy rule %q: expression is required", rule.Name)
		}
		if rule.Effect != "allow" && rule.Effect != "deny" {
			return fmt.Errorf("policy rule %q: effect must be 'allow' or 'deny', got %q", rule.Name, rule.Effect)
		}
	}
	return nil
}

// Addr is the host:port the HTTP transports listen on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
