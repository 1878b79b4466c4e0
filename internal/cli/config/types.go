// Package config provides configuration management for the lkml2cube CLI.
package config

import "time"

// Defaults for configuration values.
const (
	DefaultOutputDir   = "."
	DefaultOutput      = "auto"
	DefaultLogLevel    = "warn"
	DefaultMetaTimeout = 30 * time.Second
	DefaultMetaRetries = 3
)

// Config holds all CLI configuration options.
type Config struct {
	// RootDir is prepended to absolute include paths
	RootDir         string     `koanf:"root_dir" json:"root_dir"`
	OutputDir       string     `koanf:"output_dir" json:"output_dir" validate:"required"`
	UseExploresName bool       `koanf:"use_explores_name" json:"use_explores_name"`
	Verbose         bool       `koanf:"verbose" json:"verbose"`
	LogLevel        string     `koanf:"log_level" json:"log_level" validate:"omitempty,oneof=debug info warn error"`
	OutputFormat    string     `koanf:"output" json:"output" validate:"omitempty,oneof=auto text markdown json"`
	FailOn          string     `koanf:"fail_on" json:"fail_on" validate:"omitempty,oneof=error warning info"`
	Meta            MetaConfig `koanf:"meta" json:"meta"`
}

// MetaConfig configures the Cube meta API client.
type MetaConfig struct {
	URL     string        `koanf:"url" json:"url" validate:"omitempty,url"`
	Token   string        `koanf:"token" json:"-"`
	Timeout time.Duration `koanf:"timeout" json:"timeout" validate:"gte=0"`
	Retries int           `koanf:"retries" json:"retries" validate:"gte=0,lte=10"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		OutputDir:    DefaultOutputDir,
		LogLevel:     DefaultLogLevel,
		OutputFormat: DefaultOutput,
		Meta: MetaConfig{
			Timeout: DefaultMetaTimeout,
			Retries: DefaultMetaRetries,
		},
	}
}
