// Copyright (C) 2026 Katmai Labs (dev@katmailabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package risk

// Score computes the composite risk score for a fully-populated row.
//
// The score is a weighted linear combination of the five indicators
// plus one step bonus per diffusion index: readings strictly above the
// neutral 50 earn the expansion bonus, readings at or below 50 earn
// the contraction penalty. A reading of exactly 50 is contraction.
//
// Score is pure and total over populated rows. Callers must resolve
// missing indicators before scoring; see Engine.
func Score(row CountryRow, w Weights) float64 {
	score := 0.0
	score += row.GDPGrowth * w.GDPGrowth
	score += row.InflationRate * w.Inflation
	score += row.UnemploymentRate * w.Unemployment
	score += row.FXReserves * (w.FXReserves / FXReservesScale)
	score += row.GovBudgetBalance * w.BudgetBalance
	score += pmiBonus(row.ManufacturingPMI, w)
	score += pmiBonus(row.ServicesPMI, w)
	return score
}

// pmiBonus applies the strict >50 step. Exactly 50 is contraction.
func pmiBonus(pmi float64, w Weights) float64 {
	if pmi > PMINeutral {
		return w.ExpansionBonus
	}
	return w.ContractionBonus
}

// Classify maps a score to one of the five risk levels.
//
// Buckets are inclusive on their upper end: score 0 is Very_Low,
// score 2 is Low, score 8 is High. Total over all reals.
func Classify(score float64) RiskLevel {
	switch {
	case score <= ScoreMaxVeryLow:
		return RiskVeryLow
	case score <= ScoreMaxLow:
		return RiskLow
	case score <= ScoreMaxModerate:
		return RiskModerate
	case score <= ScoreMaxHigh:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}
