// Package config loads the optional YAML defaults file for the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// defaults applied before command-line flags; flags set explicitly win
type Config struct {
	Variant   string `yaml:"variant"`
	Author    string `yaml:"author"`
	FillGaps  bool   `yaml:"fill_gaps"`
	DropEmpty bool   `yaml:"drop_empty"`
}

func Default() *Config {
	return &Config{Variant: "short"}
}

// reads path over the defaults; an empty path returns the defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Variant == "" {
		cfg.Variant = Default().Variant
	}
	return cfg, nil
}
