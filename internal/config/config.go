// Package config loads the engine's YAML configuration, mirroring the
// teacher's teams.yaml loading in cmd/cliaimonitor but scoped to the
// coordination engine's own knobs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable named in the specification's configuration
// table. Zero values are replaced by Defaults() after loading.
type Config struct {
	DBPath                    string `yaml:"db_path"`
	BindHost                  string `yaml:"bind_host"`
	BindPort                  int    `yaml:"bind_port"`
	LogLevel                  string `yaml:"log_level"`
	SprintEnabled             bool   `yaml:"sprint_enabled"`
	OutputClipBytes           int    `yaml:"output_clip_bytes"`
	AgentOfflineAfterMs       int64  `yaml:"agent_offline_after_ms"`
	DefaultClaimTTLSeconds    int    `yaml:"default_claim_ttl_seconds"`
	MaxClaimTTLSeconds        int    `yaml:"max_claim_ttl_seconds"`
	MinClaimTTLSeconds        int    `yaml:"min_claim_ttl_seconds"`
	ClaimExtendDefaultSeconds int    `yaml:"claim_extend_default_seconds"`
	DepClosureMaxDepth        int    `yaml:"dep_closure_max_depth"`
}

// Defaults returns the configuration defaults used when a key is absent.
func Defaults() Config {
	return Config{
		DBPath:                    "data/scrum.db",
		BindHost:                  "127.0.0.1",
		BindPort:                  4177,
		LogLevel:                  "info",
		SprintEnabled:             false,
		OutputClipBytes:           64 * 1024,
		AgentOfflineAfterMs:       300_000,
		DefaultClaimTTLSeconds:    900,
		MaxClaimTTLSeconds:        3600,
		MinClaimTTLSeconds:        5,
		ClaimExtendDefaultSeconds: 300,
		DepClosureMaxDepth:        100,
	}
}

// Load reads a YAML config file at path, applying Defaults() for any
// field left unset by the file. A missing file is not an error: the
// caller gets pure defaults, matching the teacher's tolerant config
// loading in cmd/cliaimonitor/main.go.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Decode over the defaults; yaml.v3 only overwrites fields it finds
	// keys for, and applyFallbacks restores any field the file set to zero.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyFallbacks()
	return cfg, nil
}

// applyFallbacks restores defaults for any field the YAML left at its
// Go zero value, since yaml.v3 can't distinguish "absent" from "zero".
func (c *Config) applyFallbacks() {
	d := Defaults()
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	if c.BindHost == "" {
		c.BindHost = d.BindHost
	}
	if c.BindPort == 0 {
		c.BindPort = d.BindPort
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.OutputClipBytes == 0 {
		c.OutputClipBytes = d.OutputClipBytes
	}
	if c.AgentOfflineAfterMs == 0 {
		c.AgentOfflineAfterMs = d.AgentOfflineAfterMs
	}
	if c.DefaultClaimTTLSeconds == 0 {
		c.DefaultClaimTTLSeconds = d.DefaultClaimTTLSeconds
	}
	if c.MaxClaimTTLSeconds == 0 {
		c.MaxClaimTTLSeconds = d.MaxClaimTTLSeconds
	}
	if c.MinClaimTTLSeconds == 0 {
		c.MinClaimTTLSeconds = d.MinClaimTTLSeconds
	}
	if c.ClaimExtendDefaultSeconds == 0 {
		c.ClaimExtendDefaultSeconds = d.ClaimExtendDefaultSeconds
	}
	if c.DepClosureMaxDepth == 0 {
		c.DepClosureMaxDepth = d.DepClosureMaxDepth
	}
}

// Addr returns the host:port the server should bind to.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.BindHost, c.BindPort)
}
