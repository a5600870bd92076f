// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Environment overrides, applied after the file is read.
const (
	EnvMappingPath = "PIICODEX_MAPPING_PATH"
	EnvLogLevel    = "PIICODEX_LOG_LEVEL"
)

var (
	// Global is a singleton instance
	Global PIICodexConfig
	once   sync.Once
)

// Load ensures the config is loaded into the Global variable. An empty
// path uses ~/.piicodex/piicodex.yaml, creating it on first run.
func Load(path string) error {
	var err error
	once.Do(func() {
		err = loadInternal(path)
	})
	return err
}

// DefaultPath returns ~/.piicodex/piicodex.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".piicodex", "piicodex.yaml"), nil
}

func loadInternal(path string) error {
	if path == "" {
		configPath, err := DefaultPath()
		if err != nil {
			return err
		}
		// create it if it doesn't exist
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, " First run detected, creating the config at %s\n", configPath)
			if err := createDefault(configPath); err != nil {
				return err
			}
		}
		path = configPath
	}

	cfg, err := LoadFile(path)
	if err != nil {
		return err
	}
	Global = cfg
	return nil
}

// LoadFile reads, overrides from the environment, and validates one file.
func LoadFile(path string) (PIICodexConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PIICodexConfig{}, fmt.Errorf("failed to read the config file %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return PIICodexConfig{}, fmt.Errorf("failed to unmarshal the config file %s: %w", path, err)
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return PIICodexConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *PIICodexConfig) {
	if v, ok := os.LookupEnv(EnvMappingPath); ok {
		cfg.MappingPath = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory %w", err)
	}
	defaultCfg := DefaultConfig()
	data, err := yaml.Marshal(defaultCfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
