// Copyright (C) 2026 Katmai Labs (dev@katmailabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package risk computes per-country macroeconomic risk scores.
//
// The pipeline merges five World Bank indicators with a curated PMI
// table into one row per country, applies a fixed weighted linear
// combination plus two PMI step bonuses, and classifies the result
// into five ordered levels (Very_Low through Very_High).
//
// The scorer and classifier are pure functions over fully-populated
// rows. Countries missing any indicator for the requested year are
// dropped during the merge, never scored with partial data.
//
// Weights and bucket thresholds are hand-tuned constants. Changing
// any of them is a behavioral change; the golden tests in
// scorer_test.go pin the current values.
package risk
