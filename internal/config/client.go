package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ClientConfig holds the settings the pagereport CLI needs to reach an
// extraction service. Precedence is flag > environment > config file.
type ClientConfig struct {
	Endpoint       string        `yaml:"endpoint"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	OutputDir      string        `yaml:"output_dir"`
	Timeout        time.Duration `yaml:"-"`
}

// LoadClient reads an optional YAML config file and applies environment
// overrides. A missing file is only an error when the path was explicit.
func LoadClient(path string, explicit bool) (ClientConfig, error) {
	cfg := ClientConfig{
		TimeoutSeconds: 120,
		OutputDir:      ".",
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if explicit || !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("PAGEREPORT_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	return Finalize(cfg), nil
}

// Finalize normalizes a client config after overrides have been
// applied, deriving the effective timeout.
func Finalize(cfg ClientConfig) ClientConfig {
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 120
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	cfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	return cfg
}

// Validate fails fast when the client has no endpoint to talk to.
func (c ClientConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("no extraction service endpoint configured: set --endpoint, PAGEREPORT_ENDPOINT, or endpoint in the config file")
	}
	return nil
}

// DefaultClientConfigPath is where LoadClient looks when no --config flag
// is given.
func DefaultClientConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.pagereport.yaml"
}
