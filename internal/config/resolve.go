package config

import "fmt"

// Resolve builds the effective configuration.
// Precedence: environment > .env file > config file (if path != "") > defaults.
func Resolve(path string, envFiles ...string) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := LoadDotEnv(envFiles...); err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}
