// Copyright (C) 2026 Katmai Labs (dev@katmailabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation for security-critical
// operations.
//
// Country names and indicator codes from API requests end up inside
// Flux queries and World Bank URLs; validating them here prevents
// Flux injection and request smuggling.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// countryPattern matches World Bank country display names.
// Allows letters, digits, spaces, and the punctuation the Bank actually
// uses: dots ("Korea, Rep."), commas, hyphens ("Guinea-Bissau"),
// apostrophes ("Cote d'Ivoire"), ampersands and parentheses
// ("Sint Maarten (Dutch part)"). Max 64 characters.
// Critically excludes quotes, backslashes, and braces, which are the
// dangerous characters inside a Flux string literal.
var countryPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9 .,'&()\-]{0,63}$`)

// indicatorCodePattern matches World Bank indicator codes such as
// NY.GDP.MKTP.KD.ZG: dot-separated uppercase alphanumeric segments.
var indicatorCodePattern = regexp.MustCompile(`^[A-Z][A-Z0-9]*(\.[A-Z0-9]+){1,6}$`)

// ValidateCountry validates a country display name before it is used
// in a Flux query. Returns an error for empty or malformed names.
func ValidateCountry(country string) error {
	if country == "" {
		return fmt.Errorf("country cannot be empty")
	}
	if !countryPattern.MatchString(country) {
		return fmt.Errorf("invalid country name: %q", country)
	}
	return nil
}

// SanitizeCountry trims and validates a country name.
//
// Unlike tickers, country names are case-sensitive keys into the
// indicator source's naming convention, so no case normalization is
// applied.
func SanitizeCountry(country string) (string, error) {
	trimmed := strings.TrimSpace(country)
	if err := ValidateCountry(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}

// ValidateIndicatorCode validates a World Bank indicator code before
// it is interpolated into a request URL.
func ValidateIndicatorCode(code string) error {
	if code == "" {
		return fmt.Errorf("indicator code cannot be empty")
	}
	if !indicatorCodePattern.MatchString(code) {
		return fmt.Errorf("invalid indicator code: %q", code)
	}
	return nil
}
