package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables recognised by ApplyEnv.
const (
	EnvTransport = "MCP_TRANSPORT"
	EnvHost      = "MCP_HOST"
	EnvPort      = "MCP_PORT"
	EnvPath      = "MCP_PATH"
	EnvLogLevel  = "MCP_LOG_LEVEL"
	EnvReadme    = "MCP_README"
	EnvTelemetry = "MCP_TELEMETRY"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files and empty names are skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading env file %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields of cfg with any MCP_* variables present in the
// environment.
func ApplyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvTransport); ok {
		cfg.Transport = v
	}
	if v, ok := os.LookupEnv(EnvHost); ok {
		cfg.Host = v
	}
	if v, ok := os.LookupEnv(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid port %q: %w", EnvPort, v, err)
		}
		cfg.Port = port
	}
	if v, ok := os.LookupEnv(EnvPath); ok {
		cfg.Path = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvReadme); ok {
		cfg.ReadmePath = v
	}
	if v, ok := os.LookupEnv(EnvTelemetry); ok {
		cfg.Telemetry.Exporter = v
	}
	return nil
}
