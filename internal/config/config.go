// Package config loads the bridge's TOML configuration file and applies
// defaults. Everything in it can also be steered by flags or environment
// variables; the file is for deployments that want one reviewable artifact.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/bridgetools/mcp-sdk-bridge/internal/env"
)

// ServerConfig covers the MCP-facing settings.
type ServerConfig struct {
	Name          string `toml:"name"`
	Transport     string `toml:"transport"`
	Port          int    `toml:"port"`
	DisabledTools string `toml:"disabledTools"`
	DocsDir       string `toml:"docsDir"`
}

// LogConfig covers logger output.
type LogConfig struct {
	Level      string `toml:"level"`
	Path       string `toml:"path"`
	MaxSizeMB  int    `toml:"maxSizeMB"`
	MaxBackups int    `toml:"maxBackups"`
}

// KubernetesConfig enables and configures the bundled Kubernetes SDK family.
type KubernetesConfig struct {
	Enabled    bool   `toml:"enabled"`
	Kubeconfig string `toml:"kubeconfig"`
	Namespace  string `toml:"namespace"`
}

// UtilsConfig enables the bundled utility SDK family.
type UtilsConfig struct {
	Enabled bool `toml:"enabled"`
}

// WalkerConfig extends the surface walker's deny-list.
type WalkerConfig struct {
	Deny []string `toml:"deny"`
}

// Config is the full bridge configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
	Kubernetes KubernetesConfig `toml:"kubernetes"`
	Utils      UtilsConfig      `toml:"utils"`
	Walker     WalkerConfig     `toml:"walker"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:      "mcp-sdk-bridge",
			Transport: "stdio",
			Port:      8080,
			DocsDir:   "mcp_docs",
		},
		Log: LogConfig{
			Level: "info",
		},
		Kubernetes: KubernetesConfig{
			Enabled: true,
		},
		Utils: UtilsConfig{
			Enabled: true,
		},
	}
}

// Load reads the TOML file at path on top of the defaults. An empty path
// checks the MCP_BRIDGE_CONFIG environment variable; a missing file is not an
// error and yields the defaults. SDK families can additionally be toggled via
// BRIDGE_KUBERNETES_ENABLED and BRIDGE_UTILS_ENABLED.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = env.FirstDefault("", "MCP_BRIDGE_CONFIG")
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	cfg.Kubernetes.Enabled = env.BoolDefault(cfg.Kubernetes.Enabled, "BRIDGE_KUBERNETES_ENABLED")
	cfg.Utils.Enabled = env.BoolDefault(cfg.Utils.Enabled, "BRIDGE_UTILS_ENABLED")

	if cfg.Server.Transport != "stdio" && cfg.Server.Transport != "sse" {
		return nil, fmt.Errorf("unknown transport %q: supported values are stdio and sse", cfg.Server.Transport)
	}

	return cfg, nil
}
