// Copyright (C) 2026 Katmai Labs (dev@katmailabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package worldbank fetches macroeconomic indicators from the World
// Bank v2 API.
//
// Client implements risk.IndicatorSource: one Fetch returns the
// per-country values for a single indicator-year, following the API's
// pagination. Countries whose reading is null are omitted from the
// result, matching the source contract.
package worldbank

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/KatmaiLabs/KatmaiRisk/pkg/logging"
	"github.com/KatmaiLabs/KatmaiRisk/pkg/risk"
	"github.com/KatmaiLabs/KatmaiRisk/pkg/validation"
)

// DefaultBaseURL is the public World Bank v2 API endpoint.
const DefaultBaseURL = "https://api.worldbank.org/v2"

// perPage is the page size requested from the API. All-country
// responses run to roughly 300 entries, so most fetches are one page.
const perPage = 500

// indicatorCodes maps each pipeline indicator to its World Bank series.
var indicatorCodes = map[risk.Indicator]string{
	risk.IndicatorGDPGrowth:        "NY.GDP.MKTP.KD.ZG", // GDP growth (annual %)
	risk.IndicatorInflationRate:    "FP.CPI.TOTL.ZG",    // Inflation, consumer prices (annual %)
	risk.IndicatorUnemploymentRate: "SL.UEM.TOTL.ZS",    // Unemployment (% of labor force)
	risk.IndicatorFXReserves:       "FI.RES.TOTL.CD",    // Total reserves (current US$)
	risk.IndicatorGovBudgetBalance: "GC.BAL.CASH.GD.ZS", // Cash surplus/deficit (% of GDP)
}

// IndicatorCode returns the World Bank series code for an indicator.
func IndicatorCode(indicator risk.Indicator) (string, bool) {
	code, ok := indicatorCodes[indicator]
	return code, ok
}

// HTTPClient allows injecting mock HTTP clients for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig configures a Client. Zero values get defaults.
type ClientConfig struct {
	// BaseURL overrides the API endpoint (tests, mirrors).
	BaseURL string

	// HTTPClient is the transport. Defaults to a 30s-timeout client.
	HTTPClient HTTPClient

	// Cache is an optional response cache; nil disables caching.
	Cache *Cache

	// RequestsPerSecond limits outbound calls. Defaults to 5.
	RequestsPerSecond float64

	// Logger defaults to logging.Default().
	Logger *logging.Logger
}

// Client fetches indicator values from the World Bank API.
//
// # Thread Safety
//
// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    HTTPClient
	cache   *Cache
	limiter *rate.Limiter
	logger  *logging.Logger
}

// NewClient creates a Client from config.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    cfg.HTTPClient,
		cache:   cfg.Cache,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond)),
		logger:  cfg.Logger,
	}
}

// wbMeta is the first element of the API's two-element JSON envelope.
type wbMeta struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
}

// wbEntry is one observation in the second envelope element.
type wbEntry struct {
	Country struct {
		ID   string `json:"id"`
		Value string `json:"value"`
	} `json:"country"`
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// Fetch returns the per-country values for one indicator-year.
//
// Countries with a null reported value are absent from the returned
// map. Follows pagination until all pages are consumed. Results are
// cached when a Cache is configured.
func (c *Client) Fetch(ctx context.Context, indicator risk.Indicator, year int) (map[string]float64, error) {
	code, ok := indicatorCodes[indicator]
	if !ok {
		return nil, fmt.Errorf("unknown indicator %q", indicator)
	}
	if err := validation.ValidateIndicatorCode(code); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if values, hit := c.cache.Get(code, year); hit {
			c.logger.Debug("indicator cache hit", "indicator", code, "year", year)
			return values, nil
		}
	}

	values := make(map[string]float64)
	for page := 1; ; page++ {
		meta, entries, err := c.fetchPage(ctx, code, year, page)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.Value == nil || entry.Country.Value == "" {
				continue
			}
			values[entry.Country.Value] = *entry.Value
		}
		if page >= meta.Pages {
			break
		}
	}

	c.logger.Debug("indicator fetched from API",
		"indicator", code, "year", year, "countries", len(values))

	if c.cache != nil {
		if err := c.cache.Put(code, year, values); err != nil {
			c.logger.Warn("failed to cache indicator response",
				"indicator", code, "year", year, "error", err)
		}
	}

	return values, nil
}

// fetchPage retrieves and decodes one page of the indicator series.
func (c *Client) fetchPage(ctx context.Context, code string, year, page int) (wbMeta, []wbEntry, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return wbMeta{}, nil, err
	}

	url := fmt.Sprintf("%s/country/all/indicator/%s?format=json&date=%d&per_page=%d&page=%d",
		c.baseURL, code, year, perPage, page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return wbMeta{}, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "katmai-risk/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return wbMeta{}, nil, fmt.Errorf("call World Bank API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return wbMeta{}, nil, fmt.Errorf("World Bank API returned status %s for %s", resp.Status, code)
	}

	// Responses are a two-element array: [metadata, observations].
	// Error responses are a one-element array carrying a message list.
	var envelope []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return wbMeta{}, nil, fmt.Errorf("decode World Bank JSON: %w", err)
	}
	if len(envelope) < 2 {
		return wbMeta{}, nil, fmt.Errorf("World Bank API error for %s (year %d)", code, year)
	}

	var meta wbMeta
	if err := json.Unmarshal(envelope[0], &meta); err != nil {
		return wbMeta{}, nil, fmt.Errorf("decode metadata: %w", err)
	}

	var entries []wbEntry
	if err := json.Unmarshal(envelope[1], &entries); err != nil {
		return wbMeta{}, nil, fmt.Errorf("decode observations: %w", err)
	}

	return meta, entries, nil
}

// Ensure Client satisfies the pipeline's source contract.
var _ risk.IndicatorSource = (*Client)(nil)
