// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables that rarely change between runs. Every field
// has a default; a YAML file can override any of them, and command-line
// flags win over both.
type Config struct {
	Project           string `yaml:"project"`
	Access            string `yaml:"access"`
	Top               int    `yaml:"top"`
	UserAgent         string `yaml:"user_agent"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	FetchWorkers      int    `yaml:"fetch_workers"`
	Retries           int    `yaml:"retries"`
}

func DefaultConfig() Config {
	return Config{
		Project:           "en.wikipedia.org",
		Access:            "all-access",
		Top:               20,
		UserAgent:         "TopviewsBuilderBot/0.1 (https://wikitech.wikimedia.org/wiki/Robot_policy)",
		RequestsPerMinute: 100,
		FetchWorkers:      4,
		Retries:           3,
	}
}

// LoadConfig reads a YAML config file and overlays it on the defaults.
// An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}

	if fileCfg.Project != "" {
		cfg.Project = fileCfg.Project
	}
	if fileCfg.Access != "" {
		cfg.Access = fileCfg.Access
	}
	if fileCfg.Top > 0 {
		cfg.Top = fileCfg.Top
	}
	if fileCfg.UserAgent != "" {
		cfg.UserAgent = fileCfg.UserAgent
	}
	if fileCfg.RequestsPerMinute > 0 {
		cfg.RequestsPerMinute = fileCfg.RequestsPerMinute
	}
	if fileCfg.FetchWorkers > 0 {
		cfg.FetchWorkers = fileCfg.FetchWorkers
	}
	if fileCfg.Retries > 0 {
		cfg.Retries = fileCfg.Retries
	}
	return cfg, nil
}

// Validate rejects access modes the API does not know.
func (cfg Config) Validate() error {
	switch cfg.Access {
	case "all-access", "desktop", "mobile-app", "mobile-web":
	default:
		return fmt.Errorf("invalid access mode %q; expected all-access, desktop, mobile-app or mobile-web", cfg.Access)
	}
	if cfg.Top < 1 {
		return fmt.Errorf("top must be at least 1")
	}
	return nil
}
