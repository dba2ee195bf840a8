package main

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const envPrefix = "PRINTDATA_"

// Config controls everything around the transformation. The markers and
// directive formats are fixed and not part of it.
type Config struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	LogFile     string `yaml:"log_file"`
	Output      string `yaml:"output"`
	Report      string `yaml:"report"`
	MetricsFile string `yaml:"metrics_file"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// LoadConfig layers the YAML file at path (optional) and PRINTDATA_*
// environment variables over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && len(bytes.TrimSpace(data)) > 0 {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	for key, dst := range map[string]*string{
		"LOG_LEVEL":    &c.LogLevel,
		"LOG_FORMAT":   &c.LogFormat,
		"LOG_FILE":     &c.LogFile,
		"OUTPUT":       &c.Output,
		"REPORT":       &c.Report,
		"METRICS_FILE": &c.MetricsFile,
	} {
		if v, ok := lookup(envPrefix + key); ok && v != "" {
			*dst = v
		}
	}
}

func (c Config) Validate() error {
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	return nil
}
