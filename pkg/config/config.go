package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the main configuration struct.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Security  SecurityConfig  `yaml:"security"`
	Logging   LoggingConfig   `yaml:"logging"`
	Retention RetentionConfig `yaml:"retention"`
	Stream    StreamConfig    `yaml:"stream"`
	Notify    NotifyConfig    `yaml:"notify"`
}

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "0.0.0.0"
	}
	p := c.Server.Port
	if p == 0 {
		p = 8443
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

// Validate checks the config for values that cannot be acted on.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case "", "nethttp", "fasthttp":
	default:
		return fmt.Errorf("server.transport must be nethttp or fasthttp, got %q", c.Server.Transport)
	}
	if (c.Server.TLS.CertFile == "") != (c.Server.TLS.KeyFile == "") {
		return fmt.Errorf("server.tls requires both cert_file and key_file")
	}
	if c.Stream.BufferCapacity < 0 {
		return fmt.Errorf("stream.buffer_capacity must not be negative")
	}
	if c.Notify.MaxAttempts < 0 {
		return fmt.Errorf("notify.max_attempts must not be negative")
	}
	return nil
}

// Load reads and parses the YAML config file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// ResolveConfigPath decides the config file path using the flag-provided
// value and the environment variable `BMCD_CONFIG` when the flag was not set.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("BMCD_CONFIG"); p != "" {
		return p
	}
	return flagPath
}
