package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvAccessToken is the environment variable overriding ynab.access_token.
const EnvAccessToken = "YNAB_ACCESS_TOKEN"

// Load reads the YAML configuration file at path and returns a validated
// [Config] with defaults and environment overrides applied. It is a
// convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults and
// environment overrides, and validates the result. Useful in tests where
// configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	ApplyEnv(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg fields from the process environment. The access
// token is the only field with an override, so it never has to be written to
// the config file.
func ApplyEnv(cfg *Config) {
	if token := os.Getenv(EnvAccessToken); token != "" {
		cfg.YNAB.AccessToken = token
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Server.Transport.IsValid() {
		errs = append(errs, fmt.Errorf("server.transport %q is invalid; valid values: stdio, streamable-http", cfg.Server.Transport))
	}
	if cfg.Server.Transport == TransportStreamableHTTP && cfg.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server.listen_addr is required when transport is streamable-http"))
	}
	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.YNAB.AccessToken == "" {
		errs = append(errs, fmt.Errorf("ynab.access_token is required (or set %s)", EnvAccessToken))
	}
	if cfg.YNAB.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("ynab.timeout_seconds %d must not be negative", cfg.YNAB.TimeoutSeconds))
	}

	if cfg.Overview.Path == "" {
		errs = append(errs, errors.New("overview.path is required"))
	}

	return errors.Join(errs...)
}
