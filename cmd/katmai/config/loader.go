// Copyright (C) 2026 Katmai Labs (dev@katmailabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	// Global is a singleton instance
	Global KatmaiConfig
	once   sync.Once
)

// Load ensures the config is loaded into the Global variable
func Load() error {
	var err error
	once.Do(func() {
		err = loadInternal()
	})
	return err
}

func loadInternal() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not find the user's home directory: %w", err)
	}
	configPath := filepath.Join(home, ".katmai", "katmai.yaml")
	cfg, err := loadFromPath(configPath)
	if err != nil {
		return err
	}
	Global = cfg
	return nil
}

// loadFromPath reads the config file at path, creating it with
// defaults on first run.
func loadFromPath(path string) (KatmaiConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("First run detected, creating the config at %s\n", path)
		if err := createDefault(path); err != nil {
			return KatmaiConfig{}, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return KatmaiConfig{}, fmt.Errorf("failed to read the config file: %w", err)
	}
	var cfg KatmaiConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return KatmaiConfig{}, fmt.Errorf("failed to parse the config file: %w", err)
	}
	return cfg, nil
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	defaultCfg := DefaultConfig()
	data, err := yaml.Marshal(defaultCfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
