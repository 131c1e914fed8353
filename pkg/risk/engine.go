// Copyright (C) 2026 Katmai Labs (dev@katmailabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package risk

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/KatmaiLabs/KatmaiRisk/pkg/logging"
)

// Engine runs the fetch → merge → score → classify pipeline.
//
// # Thread Safety
//
// Engine is safe for concurrent use. The PMI table is passed per call
// so a hot-reloaded table never changes under a running assessment.
type Engine struct {
	source  IndicatorSource
	weights Weights
	logger  *logging.Logger
	tracer  trace.Tracer
}

// NewEngine creates an Engine over the given indicator source.
//
// # Inputs
//
//   - source: Provider of per-country indicator values. Must not be nil.
//   - logger: Structured logger. May be nil; a default is used.
//
// # Outputs
//
//   - *Engine: The new engine, using the fixed production weights.
func NewEngine(source IndicatorSource, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		source:  source,
		weights: DefaultWeights(),
		logger:  logger,
		tracer:  otel.Tracer("github.com/KatmaiLabs/KatmaiRisk/pkg/risk"),
	}
}

// Assess fetches all five indicators for the year, merges them with the
// PMI table, and scores and classifies every complete country row.
//
// Countries missing any one indicator are dropped before scoring and
// reported in Assessment.Dropped. Countries absent from the PMI table
// get the neutral (50, 50) readings.
//
// # Inputs
//
//   - ctx: Context for cancellation. Must not be nil.
//   - table: Immutable PMI snapshot for this run. May be nil (all
//     countries then get neutral readings).
//   - year: Indicator year to assess.
//
// # Outputs
//
//   - *Assessment: Rows sorted by country name, plus run metadata.
//   - error: Non-nil if any indicator fetch fails; no partial scoring.
func (e *Engine) Assess(ctx context.Context, table *PMITable, year int) (*Assessment, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}
	if e.source == nil {
		return nil, fmt.Errorf("engine has no indicator source")
	}

	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "risk.assess",
		trace.WithAttributes(attribute.Int("risk.year", year)))
	defer span.End()

	fetched := make(map[Indicator]map[string]float64, len(Indicators()))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, indicator := range Indicators() {
		g.Go(func() error {
			values, err := e.source.Fetch(gctx, indicator, year)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", indicator, err)
			}
			e.logger.Debug("indicator fetched",
				"indicator", string(indicator),
				"year", year,
				"countries", len(values))
			mu.Lock()
			fetched[indicator] = values
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows, dropped := buildRows(fetched, table, e.weights)
	if len(dropped) > 0 {
		e.logger.Warn("dropped countries with incomplete indicators",
			"year", year,
			"dropped", len(dropped),
			"scored", len(rows))
	}

	span.SetAttributes(
		attribute.Int("risk.countries_scored", len(rows)),
		attribute.Int("risk.countries_dropped", len(dropped)),
	)

	return &Assessment{
		APIVersion:       APIVersion,
		AlgorithmVersion: AlgorithmVersion,
		RunID:            uuid.NewString(),
		Year:             year,
		Rows:             rows,
		Dropped:          dropped,
		DurationMs:       time.Since(start).Milliseconds(),
	}, nil
}

// buildRows merges the fetched indicator maps into scored rows.
//
// A country appears in the output only if all five indicators reported
// a value for it (map presence, not sentinel floats). Everything else
// lands in dropped. Both slices are sorted for deterministic output.
func buildRows(fetched map[Indicator]map[string]float64, table *PMITable, w Weights) (rows []CountryRow, dropped []string) {
	countries := make(map[string]struct{})
	for _, values := range fetched {
		for country := range values {
			countries[country] = struct{}{}
		}
	}

	for country := range countries {
		row, ok := assembleRow(country, fetched, table)
		if !ok {
			dropped = append(dropped, country)
			continue
		}
		row.RiskScore = Score(row, w)
		row.RiskLevel = Classify(row.RiskScore)
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Country < rows[j].Country })
	sort.Strings(dropped)
	return rows, dropped
}

// assembleRow populates one row; ok is false if any indicator is missing.
func assembleRow(country string, fetched map[Indicator]map[string]float64, table *PMITable) (CountryRow, bool) {
	row := CountryRow{Country: country}

	targets := map[Indicator]*float64{
		IndicatorGDPGrowth:        &row.GDPGrowth,
		IndicatorInflationRate:    &row.InflationRate,
		IndicatorUnemploymentRate: &row.UnemploymentRate,
		IndicatorFXReserves:       &row.FXReserves,
		IndicatorGovBudgetBalance: &row.GovBudgetBalance,
	}
	for indicator, target := range targets {
		value, ok := fetched[indicator][country]
		if !ok {
			return CountryRow{}, false
		}
		*target = value
	}

	row.ManufacturingPMI, row.ServicesPMI = table.Lookup(country)
	return row, true
}
