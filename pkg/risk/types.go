// Copyright (C) 2026 Katmai Labs (dev@katmailabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package risk

import (
	"context"
	"strings"
)

// AlgorithmVersion is the version of the scoring algorithm.
// Increment when weights or thresholds change.
const AlgorithmVersion = "1.0"

// APIVersion is the JSON output API version.
const APIVersion = "1.0"

// Scoring weights. These are hand-tuned and preserved verbatim from the
// reference model; any change requires new golden-output tests.
const (
	WeightGDPGrowth     = -0.4
	WeightInflation     = 0.4
	WeightUnemployment  = 0.3
	WeightFXReserves    = -0.1
	WeightBudgetBalance = -0.2

	// FXReservesScale brings raw currency units (order 1e9 USD) in line
	// with the percentage-valued indicators.
	FXReservesScale = 1e9

	// PMINeutral is the diffusion-index midpoint. Readings strictly
	// above it count as expansion; at or below counts as contraction.
	PMINeutral = 50.0

	PMIExpansionBonus   = -0.2
	PMIContractionBonus = 0.3
)

// Classification thresholds. Each bucket is inclusive on its upper end;
// the final bucket is unbounded above.
const (
	ScoreMaxVeryLow  = 0.0
	ScoreMaxLow      = 2.0
	ScoreMaxModerate = 5.0
	ScoreMaxHigh     = 8.0
)

// RiskLevel is one of five ordered risk buckets.
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "Very_Low"
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "Very_High"
)

// levelOrder maps each level to its ordinal position.
var levelOrder = map[RiskLevel]int{
	RiskVeryLow:  0,
	RiskLow:      1,
	RiskModerate: 2,
	RiskHigh:     3,
	RiskVeryHigh: 4,
}

// LevelColors maps each level to the color the map frontend renders it
// with. Part of the output contract to Presentation.
var LevelColors = map[RiskLevel]string{
	RiskVeryLow:  "darkgreen",
	RiskLow:      "green",
	RiskModerate: "yellow",
	RiskHigh:     "orange",
	RiskVeryHigh: "red",
}

// ParseRiskLevel parses a string to RiskLevel. Unknown input defaults
// to RiskHigh so threshold gates fail closed.
func ParseRiskLevel(s string) RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "very_low", "very-low", "verylow":
		return RiskVeryLow
	case "low":
		return RiskLow
	case "moderate":
		return RiskModerate
	case "high":
		return RiskHigh
	case "very_high", "very-high", "veryhigh":
		return RiskVeryHigh
	default:
		return RiskHigh
	}
}

// Order returns the numeric order of this risk level.
func (r RiskLevel) Order() int {
	return levelOrder[r]
}

// Exceeds returns true if this risk level is strictly above the threshold.
func (r RiskLevel) Exceeds(threshold RiskLevel) bool {
	return levelOrder[r] > levelOrder[threshold]
}

// Color returns the frontend color hint for this level.
func (r RiskLevel) Color() string {
	return LevelColors[r]
}

// Indicator identifies one of the five macroeconomic inputs.
type Indicator string

const (
	IndicatorGDPGrowth        Indicator = "gdp_growth"
	IndicatorInflationRate    Indicator = "inflation_rate"
	IndicatorUnemploymentRate Indicator = "unemployment_rate"
	IndicatorFXReserves       Indicator = "fx_reserves"
	IndicatorGovBudgetBalance Indicator = "gov_budget_balance"
)

// Indicators returns all five indicators in scoring order.
func Indicators() []Indicator {
	return []Indicator{
		IndicatorGDPGrowth,
		IndicatorInflationRate,
		IndicatorUnemploymentRate,
		IndicatorFXReserves,
		IndicatorGovBudgetBalance,
	}
}

// IndicatorSource provides per-country values for one indicator-year.
// Countries with no reported value are absent from the returned map,
// never present as zero or sentinel entries.
type IndicatorSource interface {
	Fetch(ctx context.Context, indicator Indicator, year int) (map[string]float64, error)
}

// PMI holds the two diffusion-index readings for a country.
type PMI struct {
	Manufacturing float64 `yaml:"manufacturing_pmi" json:"manufacturing_pmi" validate:"gte=0,lte=100"`
	Services      float64 `yaml:"services_pmi" json:"services_pmi" validate:"gte=0,lte=100"`
}

// CountryRow is one fully-populated row of the output table.
//
// All indicator and PMI fields are set before scoring; RiskScore and
// RiskLevel are derived exactly once and the row is immutable after.
type CountryRow struct {
	Country          string    `json:"country"`
	GDPGrowth        float64   `json:"gdp_growth"`
	InflationRate    float64   `json:"inflation_rate"`
	UnemploymentRate float64   `json:"unemployment_rate"`
	FXReserves       float64   `json:"fx_reserves"`
	GovBudgetBalance float64   `json:"gov_budget_balance"`
	ManufacturingPMI float64   `json:"manufacturing_pmi"`
	ServicesPMI      float64   `json:"services_pmi"`
	RiskScore        float64   `json:"risk_score"`
	RiskLevel        RiskLevel `json:"risk_level"`
}

// Weights holds the scoring weights.
//
// The model is not operator-configurable; Weights exists so tests can
// exercise the scorer shape and so the constants live in one place.
type Weights struct {
	GDPGrowth        float64 `json:"gdp_growth"`
	Inflation        float64 `json:"inflation"`
	Unemployment     float64 `json:"unemployment"`
	FXReserves       float64 `json:"fx_reserves"`
	BudgetBalance    float64 `json:"budget_balance"`
	ExpansionBonus   float64 `json:"expansion_bonus"`
	ContractionBonus float64 `json:"contraction_bonus"`
}

// DefaultWeights returns the fixed production weights.
func DefaultWeights() Weights {
	return Weights{
		GDPGrowth:        WeightGDPGrowth,
		Inflation:        WeightInflation,
		Unemployment:     WeightUnemployment,
		FXReserves:       WeightFXReserves,
		BudgetBalance:    WeightBudgetBalance,
		ExpansionBonus:   PMIExpansionBonus,
		ContractionBonus: PMIContractionBonus,
	}
}

// Assessment is the result of one scoring run.
type Assessment struct {
	APIVersion       string       `json:"api_version"`
	AlgorithmVersion string       `json:"algorithm_version"`
	RunID            string       `json:"run_id"`
	Year             int          `json:"year"`
	Rows             []CountryRow `json:"rows"`
	Dropped          []string     `json:"dropped,omitempty"`
	DurationMs       int64        `json:"duration_ms"`
}
