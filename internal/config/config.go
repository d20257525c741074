// Package config provides the configuration schema, loader, and file watcher
// for the YNAB MCP server.
package config

// LogLevel controls log verbosity for the server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Transport selects how the MCP server is exposed to clients.
type Transport string

const (
	// TransportStdio serves a single client over stdin/stdout. All logging
	// goes to stderr so the protocol stream stays clean.
	TransportStdio Transport = "stdio"

	// TransportStreamableHTTP serves MCP over HTTP using the streamable
	// transport, allowing multiple concurrent clients.
	TransportStreamableHTTP Transport = "streamable-http"
)

// IsValid reports whether t is a recognised transport.
func (t Transport) IsValid() bool {
	return t == TransportStdio || t == TransportStreamableHTTP
}

// Config is the root configuration structure for the YNAB MCP server.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	YNAB     YNABConfig     `yaml:"ynab"`
	Overview OverviewConfig `yaml:"overview"`
}

// ServerConfig holds transport and logging settings.
type ServerConfig struct {
	// Transport selects how MCP clients connect. Defaults to stdio.
	Transport Transport `yaml:"transport"`

	// ListenAddr is the TCP address the MCP endpoint listens on when
	// Transport is "streamable-http" (e.g., ":8080"). Ignored for stdio.
	ListenAddr string `yaml:"listen_addr"`

	// AdminAddr is the TCP address of the admin endpoint serving /metrics,
	// /healthz, and /readyz. Empty disables the admin endpoint.
	AdminAddr string `yaml:"admin_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// YNABConfig holds upstream YNAB API settings.
type YNABConfig struct {
	// AccessToken is the YNAB personal access token. The YNAB_ACCESS_TOKEN
	// environment variable overrides this value when set.
	AccessToken string `yaml:"access_token"`

	// BaseURL overrides the YNAB API endpoint. Leave empty for the public
	// API at https://api.ynab.com/v1.
	BaseURL string `yaml:"base_url"`

	// TimeoutSeconds bounds each upstream request. Defaults to 30.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// OverviewConfig holds settings for the persisted financial overview.
type OverviewConfig struct {
	// Path is the location of the overview JSON file.
	// Defaults to "financial_overview.json" in the working directory.
	Path string `yaml:"path"`
}

// Default values applied by [ApplyDefaults].
const (
	DefaultTransport      = TransportStdio
	DefaultLogLevel       = LogInfo
	DefaultTimeoutSeconds = 30
	DefaultOverviewPath   = "financial_overview.json"
)

// ApplyDefaults fills zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Transport == "" {
		cfg.Server.Transport = DefaultTransport
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = DefaultLogLevel
	}
	if cfg.YNAB.TimeoutSeconds == 0 {
		cfg.YNAB.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.Overview.Path == "" {
		cfg.Overview.Path = DefaultOverviewPath
	}
}
