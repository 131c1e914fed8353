// Copyright (C) 2026 Katmai Labs (dev@katmailabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package risk

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// PMITable is an immutable snapshot of per-country PMI readings.
//
// Country names must match the indicator source's naming convention
// exactly; there is no fuzzy matching. Lookup is total: countries not
// in the table get the neutral (50, 50) defaults.
//
// Build a new table and swap the pointer to update readings; never
// mutate a table in place.
type PMITable struct {
	entries map[string]PMI
}

// NewPMITable builds a table from the given entries. The input map is
// copied, so later mutation of it does not affect the table.
func NewPMITable(entries map[string]PMI) *PMITable {
	copied := make(map[string]PMI, len(entries))
	for country, pmi := range entries {
		copied[country] = pmi
	}
	return &PMITable{entries: copied}
}

// DefaultPMITable returns the built-in curated readings, used when no
// table file is configured.
func DefaultPMITable() *PMITable {
	return NewPMITable(map[string]PMI{
		"United States": {Manufacturing: 52, Services: 51},
		"China":         {Manufacturing: 49, Services: 48},
		"Germany":       {Manufacturing: 47, Services: 49},
	})
}

// LoadPMITable reads and validates a YAML table file.
//
// File format, one entry per country:
//
//	United States:
//	  manufacturing_pmi: 52
//	  services_pmi: 51
//
// Readings outside [0, 100] are rejected.
func LoadPMITable(path string) (*PMITable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pmi table: %w", err)
	}
	return ParsePMITable(data)
}

// ParsePMITable parses and validates YAML table content.
func ParsePMITable(data []byte) (*PMITable, error) {
	var entries map[string]PMI
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse pmi table: %w", err)
	}

	validate := validator.New()
	for country, pmi := range entries {
		if country == "" {
			return nil, fmt.Errorf("pmi table: empty country name")
		}
		if err := validate.Struct(pmi); err != nil {
			return nil, fmt.Errorf("pmi table: invalid readings for %q: %w", country, err)
		}
	}

	return NewPMITable(entries), nil
}

// Lookup returns the PMI readings for a country, falling back to the
// neutral (50, 50) for countries not in the table. Total over all
// strings; never errors.
func (t *PMITable) Lookup(country string) (manufacturing, services float64) {
	if t != nil {
		if pmi, ok := t.entries[country]; ok {
			return pmi.Manufacturing, pmi.Services
		}
	}
	return PMINeutral, PMINeutral
}

// Has reports whether a country has an explicit entry.
func (t *PMITable) Has(country string) bool {
	if t == nil {
		return false
	}
	_, ok := t.entries[country]
	return ok
}

// Countries returns the explicitly listed countries, sorted.
func (t *PMITable) Countries() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.entries))
	for country := range t.entries {
		names = append(names, country)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of explicit entries.
func (t *PMITable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
