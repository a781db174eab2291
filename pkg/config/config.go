// Package config loads broker configuration from YAML, the form spec.md §6
// expects for broker_id and the opaque transport endpoints.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// BrokerConfig is the on-disk shape of a broker instance's configuration
// (spec §6). No environment variables, no on-disk runtime state — only
// this static identity and endpoint configuration.
type BrokerConfig struct {
	BrokerID string `yaml:"brokerId"`

	IngressEndpoint string `yaml:"ingressEndpoint"`
	EgressEndpoint  string `yaml:"egressEndpoint"`
	ControlEndpoint string `yaml:"controlEndpoint"`

	HeartbeatIntervalSeconds int `yaml:"heartbeatIntervalSeconds"`
	ShutdownGraceSeconds     int `yaml:"shutdownGraceSeconds"`
}

// Load reads and parses a BrokerConfig from filename.
func Load(filename string) (*BrokerConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", filename, err)
	}

	var cfg BrokerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", filename, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the structural requirements spec §6 places on a broker
// configuration.
func (c *BrokerConfig) Validate() error {
	if c.BrokerID == "" {
		return fmt.Errorf("config: brokerId must not be empty")
	}
	return nil
}

// HeartbeatInterval returns the configured heartbeat cadence, defaulting
// to the 5-second cadence spec §4.3 requires.
func (c *BrokerConfig) HeartbeatInterval() time.Duration {
	if c.HeartbeatIntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.HeartbeatIntervalSeconds) * time.Second
}

// ShutdownGrace returns the configured shutdown grace period, defaulting
// to the 1-second bound spec §5 requires.
func (c *BrokerConfig) ShutdownGrace() time.Duration {
	if c.ShutdownGraceSeconds <= 0 {
		return time.Second
	}
	return time.Duration(c.ShutdownGraceSeconds) * time.Second
}
