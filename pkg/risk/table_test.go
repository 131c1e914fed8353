// Copyright (C) 2026 Katmai Labs (dev@katmailabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package risk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPMITable_LookupExplicit(t *testing.T) {
	table := NewPMITable(map[string]PMI{
		"United States": {Manufacturing: 52, Services: 51},
	})

	manufacturing, services := table.Lookup("United States")
	assert.Equal(t, 52.0, manufacturing)
	assert.Equal(t, 51.0, services)
	assert.True(t, table.Has("United States"))
}

func TestPMITable_LookupFallback(t *testing.T) {
	table := NewPMITable(map[string]PMI{
		"United States": {Manufacturing: 52, Services: 51},
	})

	manufacturing, services := table.Lookup("Atlantis")
	assert.Equal(t, PMINeutral, manufacturing)
	assert.Equal(t, PMINeutral, services)
	assert.False(t, table.Has("Atlantis"))
}

func TestPMITable_NilSafe(t *testing.T) {
	var table *PMITable

	manufacturing, services := table.Lookup("Germany")
	assert.Equal(t, PMINeutral, manufacturing)
	assert.Equal(t, PMINeutral, services)
	assert.False(t, table.Has("Germany"))
	assert.Zero(t, table.Len())
	assert.Nil(t, table.Countries())
}

// TestPMITable_CopiesInput verifies the snapshot semantics: mutating
// the source map after construction must not leak into the table.
func TestPMITable_CopiesInput(t *testing.T) {
	entries := map[string]PMI{
		"China": {Manufacturing: 49, Services: 48},
	}
	table := NewPMITable(entries)

	entries["China"] = PMI{Manufacturing: 99, Services: 99}
	entries["France"] = PMI{Manufacturing: 55, Services: 55}

	manufacturing, services := table.Lookup("China")
	assert.Equal(t, 49.0, manufacturing)
	assert.Equal(t, 48.0, services)
	assert.False(t, table.Has("France"))
}

func TestDefaultPMITable(t *testing.T) {
	table := DefaultPMITable()

	assert.Equal(t, []string{"China", "Germany", "United States"}, table.Countries())

	manufacturing, services := table.Lookup("Germany")
	assert.Equal(t, 47.0, manufacturing)
	assert.Equal(t, 49.0, services)
}

func TestParsePMITable(t *testing.T) {
	data := []byte(`
United States:
  manufacturing_pmi: 52
  services_pmi: 51
Brazil:
  manufacturing_pmi: 48.5
  services_pmi: 50
`)

	table, err := ParsePMITable(data)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	manufacturing, services := table.Lookup("Brazil")
	assert.Equal(t, 48.5, manufacturing)
	assert.Equal(t, 50.0, services)
}

func TestParsePMITable_RejectsOutOfRange(t *testing.T) {
	data := []byte(`
Freedonia:
  manufacturing_pmi: 120
  services_pmi: 51
`)

	_, err := ParsePMITable(data)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Freedonia")
}

func TestParsePMITable_RejectsEmptyCountry(t *testing.T) {
	data := []byte(`
"":
  manufacturing_pmi: 50
  services_pmi: 50
`)

	_, err := ParsePMITable(data)
	assert.Error(t, err)
}

func TestParsePMITable_RejectsMalformedYAML(t *testing.T) {
	_, err := ParsePMITable([]byte("{not yaml"))
	assert.Error(t, err)
}

func TestLoadPMITable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pmi.yaml")
	content := []byte("Japan:\n  manufacturing_pmi: 49\n  services_pmi: 53\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	table, err := LoadPMITable(path)
	require.NoError(t, err)

	manufacturing, services := table.Lookup("Japan")
	assert.Equal(t, 49.0, manufacturing)
	assert.Equal(t, 53.0, services)
}

func TestLoadPMITable_MissingFile(t *testing.T) {
	_, err := LoadPMITable(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
