// Copyright (C) 2026 Katmai Labs (dev@katmailabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	assessmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "katmai_assessments_total",
		Help: "Number of risk assessments run, by outcome.",
	}, []string{"status"})

	assessmentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "katmai_assessment_duration_seconds",
		Help:    "End-to-end duration of fetch, merge, score, classify.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	countriesScored = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "katmai_countries_scored",
		Help: "Countries scored in the most recent assessment.",
	})

	countriesDropped = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "katmai_countries_dropped",
		Help: "Countries dropped for incomplete indicators in the most recent assessment.",
	})
)
