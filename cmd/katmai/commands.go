// Copyright (C) 2026 Katmai Labs (dev@katmailabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KatmaiLabs/KatmaiRisk/pkg/risk"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Exit codes shared by all commands.
const (
	ExitSuccess   = 0 // Assessment completed, gate passed
	ExitRiskFound = 1 // At least one country above --fail-over
	ExitError     = 2 // Fetch or configuration failure
)

var rootCmd = &cobra.Command{
	Use:   "katmai",
	Short: "Country macroeconomic risk scoring",
	Long: `Katmai computes a per-country macroeconomic risk score from World Bank
indicators merged with a curated PMI table, and classifies each country
into one of five risk levels (Very_Low through Very_High).

Configuration lives at ~/.katmai/katmai.yaml and is created with
defaults on first run.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("katmai %s (risk algorithm %s)\n", Version, risk.AlgorithmVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
