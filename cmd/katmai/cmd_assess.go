// Copyright (C) 2026 Katmai Labs (dev@katmailabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/KatmaiLabs/KatmaiRisk/cmd/katmai/config"
	"github.com/KatmaiLabs/KatmaiRisk/pkg/logging"
	"github.com/KatmaiLabs/KatmaiRisk/pkg/risk"
	"github.com/KatmaiLabs/KatmaiRisk/pkg/worldbank"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	assessYear     int
	assessJSON     bool
	assessQuiet    bool
	assessNoCache  bool
	assessPMITable string
	assessFailOver string
	assessTimeout  int
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Score every country's macroeconomic risk for a year",
	Long: `Fetch the five World Bank indicators for a year, merge them with the
PMI table, and score and classify every country with complete data.

Countries missing any one indicator for the year are dropped and listed;
countries absent from the PMI table get the neutral (50, 50) readings.

Examples:
  katmai assess                      # Assess the configured default year
  katmai assess --year 2021          # Assess a specific year
  katmai assess --json               # JSON output for automation
  katmai assess --fail-over High     # Exit 1 if any country is above High
  katmai assess --pmi-table pmi.yaml # Use a custom PMI table

Exit Codes:
  0 = Assessment completed (and gate passed, if set)
  1 = At least one country above --fail-over
  2 = Error (fetch failure, bad configuration)`,
	Run: runAssessCommand,
}

func init() {
	assessCmd.Flags().IntVar(&assessYear, "year", 0,
		"Indicator year (default: configured default_year)")
	assessCmd.Flags().BoolVar(&assessJSON, "json", false,
		"Output as JSON")
	assessCmd.Flags().BoolVar(&assessQuiet, "quiet", false,
		"Only exit code, no table output")
	assessCmd.Flags().BoolVar(&assessNoCache, "no-cache", false,
		"Bypass the on-disk indicator cache")
	assessCmd.Flags().StringVar(&assessPMITable, "pmi-table", "",
		"Path to a PMI table YAML file")
	assessCmd.Flags().StringVar(&assessFailOver, "fail-over", "",
		"Exit 1 if any country is above this level (Very_Low..Very_High)")
	assessCmd.Flags().IntVar(&assessTimeout, "timeout", 120,
		"Total timeout in seconds")

	rootCmd.AddCommand(assessCmd)
}

// =============================================================================
// COMMAND EXECUTION
// =============================================================================

func runAssessCommand(cmd *cobra.Command, args []string) {
	cfg := config.Global

	logger := logging.New(logging.Config{
		Level:   logging.LevelInfo,
		Service: "cli",
		LogDir:  cfg.LogDir,
		Quiet:   assessQuiet,
	})
	defer logger.Close()

	year := assessYear
	if year == 0 {
		year = cfg.DefaultYear
	}
	if year == 0 {
		year = 2022
	}

	table, err := resolvePMITable(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}

	var cache *worldbank.Cache
	if !assessNoCache && cfg.Cache.Dir != "" {
		cache, err = worldbank.OpenCache(logging.ExpandPath(cfg.Cache.Dir),
			time.Duration(cfg.Cache.TTLHours)*time.Hour)
		if err != nil {
			logger.Warn("indicator cache unavailable, fetching directly", "error", err)
		} else {
			defer cache.Close()
		}
	}

	client := worldbank.NewClient(worldbank.ClientConfig{
		BaseURL:           cfg.WorldBank.BaseURL,
		RequestsPerSecond: cfg.WorldBank.RequestsPerSecond,
		Cache:             cache,
		Logger:            logger,
	})
	engine := risk.NewEngine(client, logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(assessTimeout)*time.Second)
	defer cancel()

	assessment, err := engine.Assess(ctx, table, year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: assessment failed: %v\n", err)
		os.Exit(ExitError)
	}

	if !assessQuiet {
		if assessJSON {
			printAssessmentJSON(assessment)
		} else {
			printAssessmentTable(assessment)
		}
	}

	if assessFailOver != "" {
		threshold := risk.ParseRiskLevel(assessFailOver)
		for _, row := range assessment.Rows {
			if row.RiskLevel.Exceeds(threshold) {
				if !assessQuiet {
					fmt.Fprintf(os.Stderr, "%s is %s, above the %s gate\n",
						row.Country, row.RiskLevel, threshold)
				}
				os.Exit(ExitRiskFound)
			}
		}
	}

	os.Exit(ExitSuccess)
}

func resolvePMITable(cfg config.KatmaiConfig) (*risk.PMITable, error) {
	path := assessPMITable
	if path == "" {
		path = cfg.PMITable
	}
	if path == "" {
		return risk.DefaultPMITable(), nil
	}
	return risk.LoadPMITable(logging.ExpandPath(path))
}

func printAssessmentJSON(a *risk.Assessment) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(a); err != nil {
		fmt.Fprintf(os.Stderr, "Error: encode output: %v\n", err)
		os.Exit(ExitError)
	}
}

func printAssessmentTable(a *risk.Assessment) {
	fmt.Printf("Country risk for %d (run %s)\n\n", a.Year, a.RunID)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COUNTRY\tSCORE\tLEVEL")
	for _, row := range a.Rows {
		fmt.Fprintf(w, "%s\t%.2f\t%s\n", row.Country, row.RiskScore, row.RiskLevel)
	}
	w.Flush()

	fmt.Printf("\n%d countries scored, %d dropped (incomplete indicators), %dms\n",
		len(a.Rows), len(a.Dropped), a.DurationMs)
	if len(a.Dropped) > 0 {
		fmt.Printf("Dropped: %v\n", a.Dropped)
	}
}
