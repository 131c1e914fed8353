// Copyright (C) 2026 Katmai Labs (dev@katmailabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

type KatmaiConfig struct {
	// DefaultYear is the indicator year assessed when no --year is given.
	DefaultYear int `yaml:"default_year"`

	// WorldBank configures the indicator source.
	WorldBank WorldBankConfig `yaml:"worldbank"`

	// PMITable points to the operator-curated PMI YAML file.
	// Empty uses the built-in defaults.
	PMITable string `yaml:"pmi_table,omitempty"`

	// Cache configures the on-disk indicator cache.
	Cache CacheConfig `yaml:"cache"`

	// LogDir enables file logging when set.
	LogDir string `yaml:"log_dir,omitempty"`
}

type WorldBankConfig struct {
	// BaseURL overrides the API endpoint; empty uses the public API.
	BaseURL string `yaml:"base_url,omitempty"`

	// RequestsPerSecond limits outbound API calls.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type CacheConfig struct {
	// Dir is the cache directory; empty disables caching.
	Dir string `yaml:"dir,omitempty"`

	// TTLHours is how long cached responses stay valid.
	TTLHours int `yaml:"ttl_hours"`
}

func DefaultConfig() KatmaiConfig {
	return KatmaiConfig{
		DefaultYear: 2022,
		WorldBank: WorldBankConfig{
			RequestsPerSecond: 5,
		},
		Cache: CacheConfig{
			Dir:      "~/.katmai/cache",
			TTLHours: 24,
		},
	}
}
