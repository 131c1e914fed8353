// Copyright (C) 2026 Katmai Labs (dev@katmailabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/KatmaiLabs/KatmaiRisk/pkg/risk"
	"github.com/KatmaiLabs/KatmaiRisk/pkg/validation"
	"github.com/KatmaiLabs/KatmaiRisk/pkg/worldbank"
)

// DefaultYear is the indicator year assessed when a request omits one.
const DefaultYear = 2022

// Assessor abstracts the risk engine so handlers can be tested with a
// stub pipeline.
type Assessor interface {
	Assess(ctx context.Context, table *risk.PMITable, year int) (*risk.Assessment, error)
}

// Server holds all service dependencies.
type Server struct {
	WriteAPI api.WriteAPIBlocking
	QueryAPI api.QueryAPI
	Engine   Assessor

	// table is the current PMI snapshot; swapped whole on hot reload.
	table atomic.Pointer[risk.PMITable]

	// last is the most recent assessment, served by /v1/risk/map.
	last atomic.Pointer[risk.Assessment]
}

// --- API Request/Response Structs ---

type AssessRequest struct {
	Year int `json:"year" binding:"omitempty,gte=1960,lte=2100"`
}

type MapResponse struct {
	RunID  string                    `json:"run_id"`
	Year   int                       `json:"year"`
	Rows   []risk.CountryRow         `json:"rows"`
	Colors map[risk.RiskLevel]string `json:"colors"`
}

type HistoryRequest struct {
	Country string `json:"country" binding:"required"`
	Days    int    `json:"days"`
}

type HistoryPoint struct {
	Time      string  `json:"time"`
	RiskScore float64 `json:"risk_score"`
	RiskLevel string  `json:"risk_level"`
}

type HistoryResponse struct {
	Country string         `json:"country"`
	Points  []HistoryPoint `json:"points"`
	Count   int            `json:"count"`
}

// InfluxDB configuration from environment
var (
	influxURL    = os.Getenv("INFLUXDB_URL")
	influxToken  = os.Getenv("INFLUXDB_TOKEN")
	influxOrg    = os.Getenv("INFLUXDB_ORG")
	influxBucket = os.Getenv("INFLUXDB_BUCKET")
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if influxURL == "" {
		influxURL = "http://influxdb:8086"
	}
	if influxToken == "" {
		slog.Error("INFLUXDB_TOKEN environment variable is required")
		os.Exit(1)
	}
	if influxOrg == "" {
		influxOrg = "katmai"
	}
	if influxBucket == "" {
		influxBucket = "country-risk"
	}

	slog.Info("Starting Katmai Risk Engine",
		"influx_url", influxURL,
		"influx_org", influxOrg,
		"influx_bucket", influxBucket)

	shutdownTelemetry, err := initTelemetry(context.Background())
	if err != nil {
		slog.Error("Failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer shutdownTelemetry(context.Background())

	influxClient := influxdb2.NewClient(influxURL, influxToken)
	defer influxClient.Close()

	// Wait for InfluxDB to be ready
	var influxReady bool
	slog.Info("Waiting for InfluxDB to be ready...")
	for i := 0; i < 10; i++ {
		health, err := influxClient.Health(context.Background())
		if err == nil && health.Status == "pass" {
			influxReady = true
			break
		}

		var errMsg string
		if err != nil {
			errMsg = err.Error()
		} else if health != nil && health.Message != nil {
			errMsg = *health.Message
		}
		slog.Warn("InfluxDB not ready, retrying...", "attempt", i+1, "error", errMsg)
		time.Sleep(3 * time.Second)
	}

	if !influxReady {
		slog.Error("Failed to connect to InfluxDB after all retries")
		os.Exit(1)
	}

	slog.Info("Successfully connected to InfluxDB")

	// Optional on-disk indicator cache
	var cache *worldbank.Cache
	if dir := os.Getenv("CACHE_DIR"); dir != "" {
		cache, err = worldbank.OpenCache(dir, cacheTTLFromEnv())
		if err != nil {
			slog.Error("Failed to open indicator cache", "dir", dir, "error", err)
			os.Exit(1)
		}
		defer cache.Close()
	}

	wbClient := worldbank.NewClient(worldbank.ClientConfig{
		BaseURL: os.Getenv("WORLDBANK_URL"),
		Cache:   cache,
	})

	server := &Server{
		WriteAPI: influxClient.WriteAPIBlocking(influxOrg, influxBucket),
		QueryAPI: influxClient.QueryAPI(influxOrg),
		Engine:   risk.NewEngine(wbClient, nil),
	}

	// PMI table: file if configured, built-in defaults otherwise.
	// File changes swap in a fresh immutable snapshot.
	tablePath := os.Getenv("PMI_TABLE_PATH")
	if tablePath != "" {
		table, err := risk.LoadPMITable(tablePath)
		if err != nil {
			slog.Error("Failed to load PMI table", "path", tablePath, "error", err)
			os.Exit(1)
		}
		server.table.Store(table)

		stopWatcher, err := watchPMITable(tablePath, func(t *risk.PMITable) {
			server.table.Store(t)
		})
		if err != nil {
			slog.Warn("PMI table hot reload disabled", "error", err)
		} else {
			defer stopWatcher()
		}
	} else {
		server.table.Store(risk.DefaultPMITable())
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("katmai-risk-engine"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "katmai-risk-engine"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Risk endpoints
	router.POST("/v1/risk/assess", server.handleAssess)
	router.GET("/v1/risk/map", server.handleMap)
	router.POST("/v1/risk/history", server.handleHistory)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8002"
	}

	slog.Info("Starting risk engine API server", "port", port)
	if err := router.Run(":" + port); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func cacheTTLFromEnv() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("CACHE_TTL_HOURS"))
	if err != nil || hours <= 0 {
		return worldbank.DefaultCacheTTL
	}
	return time.Duration(hours) * time.Hour
}

// handleAssess runs the full fetch-merge-score pipeline for a year,
// persists the result, and returns the assessment.
func (s *Server) handleAssess(c *gin.Context) {
	var req AssessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if req.Year == 0 {
		req.Year = DefaultYear
	}

	slog.Info("Handling assessment request", "year", req.Year)

	start := time.Now()
	assessment, err := s.Engine.Assess(c.Request.Context(), s.table.Load(), req.Year)
	if err != nil {
		assessmentsTotal.WithLabelValues("error").Inc()
		slog.Error("Assessment failed", "year", req.Year, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Assessment failed", "details": err.Error()})
		return
	}

	assessmentsTotal.WithLabelValues("success").Inc()
	assessmentDuration.Observe(time.Since(start).Seconds())
	countriesScored.Set(float64(len(assessment.Rows)))
	countriesDropped.Set(float64(len(assessment.Dropped)))

	if err := s.writeAssessment(c.Request.Context(), assessment); err != nil {
		slog.Error("Failed to persist assessment", "run_id", assessment.RunID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist assessment", "details": err.Error()})
		return
	}

	s.last.Store(assessment)

	slog.Info("Assessment complete",
		"run_id", assessment.RunID,
		"year", assessment.Year,
		"scored", len(assessment.Rows),
		"dropped", len(assessment.Dropped),
		"duration_ms", assessment.DurationMs)

	c.JSON(http.StatusOK, assessment)
}

// writeAssessment stores one point per scored country.
func (s *Server) writeAssessment(ctx context.Context, a *risk.Assessment) error {
	now := time.Now()
	points := make([]*write.Point, 0, len(a.Rows))
	for _, row := range a.Rows {
		p := influxdb2.NewPoint(
			"country_risk",
			map[string]string{
				"country": row.Country,
			},
			map[string]interface{}{
				"gdp_growth":         row.GDPGrowth,
				"inflation_rate":     row.InflationRate,
				"unemployment_rate":  row.UnemploymentRate,
				"fx_reserves":        row.FXReserves,
				"gov_budget_balance": row.GovBudgetBalance,
				"manufacturing_pmi":  row.ManufacturingPMI,
				"services_pmi":       row.ServicesPMI,
				"risk_score":         row.RiskScore,
				"risk_level":         string(row.RiskLevel),
				"year":               int64(a.Year),
			},
			now,
		)
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil
	}
	return s.WriteAPI.WritePoint(ctx, points...)
}

// handleMap serves the latest scored table in the shape the choropleth
// frontend consumes: rows plus the level color hints.
func (s *Server) handleMap(c *gin.Context) {
	assessment := s.last.Load()
	if assessment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No assessment available; POST /v1/risk/assess first"})
		return
	}
	c.JSON(http.StatusOK, MapResponse{
		RunID:  assessment.RunID,
		Year:   assessment.Year,
		Rows:   assessment.Rows,
		Colors: risk.LevelColors,
	})
}

// handleHistory queries stored risk scores for one country.
func (s *Server) handleHistory(c *gin.Context) {
	var req HistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	// Validate country to prevent Flux injection
	country, err := validation.SanitizeCountry(req.Country)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid country", "details": err.Error()})
		return
	}

	if req.Days <= 0 {
		req.Days = 365
	}

	query := fmt.Sprintf(`
		from(bucket: "%s")
		  |> range(start: -%dd)
		  |> filter(fn: (r) => r._measurement == "country_risk")
		  |> filter(fn: (r) => r.country == "%s")
		  |> pivot(rowKey:["_time"], columnKey: ["_field"], valueColumn: "_value")
		  |> sort(columns: ["_time"], desc: false)
	`, influxBucket, req.Days, country)
	slog.Info("Querying risk history", "country", country, "days", req.Days)

	result, err := s.QueryAPI.Query(c.Request.Context(), query)
	if err != nil {
		slog.Error("History query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed", "details": err.Error()})
		return
	}

	// Guard against nil result (can happen with empty query results)
	if result == nil {
		c.JSON(http.StatusOK, HistoryResponse{Country: country, Points: []HistoryPoint{}, Count: 0})
		return
	}

	var points []HistoryPoint
	for result.Next() {
		record := result.Record()

		point := HistoryPoint{
			Time: record.Time().Format(time.RFC3339),
		}
		if val, ok := record.ValueByKey("risk_score").(float64); ok {
			point.RiskScore = val
		}
		if val, ok := record.ValueByKey("risk_level").(string); ok {
			point.RiskLevel = val
		}
		points = append(points, point)
	}

	if result.Err() != nil {
		slog.Error("Result iteration error", "error", result.Err())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Query result error", "details": result.Err().Error()})
		return
	}

	c.JSON(http.StatusOK, HistoryResponse{
		Country: country,
		Points:  points,
		Count:   len(points),
	})
}
