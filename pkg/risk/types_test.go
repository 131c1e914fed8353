// Copyright (C) 2026 Katmai Labs (dev@katmailabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package risk

import "testing"

func TestParseRiskLevel(t *testing.T) {
	tests := []struct {
		input string
		want  RiskLevel
	}{
		{"Very_Low", RiskVeryLow},
		{"very_low", RiskVeryLow},
		{"very-low", RiskVeryLow},
		{"VERYLOW", RiskVeryLow},
		{"low", RiskLow},
		{"  Low  ", RiskLow},
		{"Moderate", RiskModerate},
		{"high", RiskHigh},
		{"Very_High", RiskVeryHigh},
		{"very-high", RiskVeryHigh},
		// Unknown input fails closed to High.
		{"", RiskHigh},
		{"bogus", RiskHigh},
		{"medium", RiskHigh},
	}

	for _, tt := range tests {
		if got := ParseRiskLevel(tt.input); got != tt.want {
			t.Errorf("ParseRiskLevel(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestRiskLevel_Order(t *testing.T) {
	ordered := []RiskLevel{RiskVeryLow, RiskLow, RiskModerate, RiskHigh, RiskVeryHigh}

	for i, level := range ordered {
		if level.Order() != i {
			t.Errorf("%s.Order() = %d, want %d", level, level.Order(), i)
		}
	}
}

func TestRiskLevel_Exceeds(t *testing.T) {
	tests := []struct {
		level     RiskLevel
		threshold RiskLevel
		want      bool
	}{
		{RiskVeryHigh, RiskHigh, true},
		{RiskHigh, RiskHigh, false},
		{RiskModerate, RiskHigh, false},
		{RiskLow, RiskVeryLow, true},
		{RiskVeryLow, RiskVeryHigh, false},
	}

	for _, tt := range tests {
		if got := tt.level.Exceeds(tt.threshold); got != tt.want {
			t.Errorf("%s.Exceeds(%s) = %v, want %v", tt.level, tt.threshold, got, tt.want)
		}
	}
}

// TestLevelColors_Complete guards the map frontend contract: every
// level renders with a color.
func TestLevelColors_Complete(t *testing.T) {
	for level := range levelOrder {
		color, ok := LevelColors[level]
		if !ok || color == "" {
			t.Errorf("LevelColors missing entry for %s", level)
		}
		if level.Color() != color {
			t.Errorf("%s.Color() = %q, want %q", level, level.Color(), color)
		}
	}
	if len(LevelColors) != len(levelOrder) {
		t.Errorf("LevelColors has %d entries, want %d", len(LevelColors), len(levelOrder))
	}
}

func TestIndicators_Complete(t *testing.T) {
	indicators := Indicators()
	if len(indicators) != 5 {
		t.Fatalf("Indicators() returned %d entries, want 5", len(indicators))
	}

	seen := make(map[Indicator]bool)
	for _, indicator := range indicators {
		if seen[indicator] {
			t.Errorf("Indicators() contains %s twice", indicator)
		}
		seen[indicator] = true
	}
}
