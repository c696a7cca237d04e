package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iamhimansu/csvseek/pkg/csvseek/reader"
)

// fileConfig is the optional YAML file given with -config. Request fields
// override it.
type fileConfig struct {
	LineDelimiter  string `yaml:"line_delimiter"`
	FieldDelimiter string `yaml:"field_delimiter"`
	QuoteChar      string `yaml:"quote_char"`
	HasHeader      *bool  `yaml:"has_header"`
	Workers        int    `yaml:"workers"`
	Verbose        bool   `yaml:"verbose"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// apply layers the file settings over the library defaults.
func (f fileConfig) apply(cfg *reader.Config) {
	if f.LineDelimiter != "" {
		cfg.LineDelimiter = f.LineDelimiter
	}
	if f.FieldDelimiter != "" {
		cfg.FieldDelimiter = f.FieldDelimiter
	}
	if f.QuoteChar != "" {
		cfg.QuoteChar = f.QuoteChar
	}
	if f.HasHeader != nil {
		cfg.HasHeader = *f.HasHeader
	}
	if f.Workers > 0 {
		cfg.Workers = f.Workers
	}
}
