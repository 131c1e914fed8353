// Copyright (C) 2026 Katmai Labs (dev@katmailabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

// captureStderr runs fn with os.Stderr redirected to a pipe and
// returns everything written to it.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("create pipe: %v", err)
	}
	os.Stderr = w
	defer func() { os.Stderr = orig }()

	fn()

	w.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read captured stderr: %v", err)
	}
	return string(data)
}

// TestNew_QuietIsSilent verifies a Quiet logger with no log file writes
// nothing to stderr at any level.
func TestNew_QuietIsSilent(t *testing.T) {
	output := captureStderr(t, func() {
		logger := New(Config{Level: LevelInfo, Quiet: true})
		logger.Info("should be silent")
		logger.Error("should also be silent")
		logger.Close()
	})

	if output != "" {
		t.Errorf("Quiet logger wrote to stderr: %q", output)
	}
}

// TestNew_QuietWithFileStaysOffStderr verifies Quiet plus file logging
// writes to the file only.
func TestNew_QuietWithFileStaysOffStderr(t *testing.T) {
	dir := t.TempDir()
	output := captureStderr(t, func() {
		logger := New(Config{Level: LevelInfo, LogDir: dir, Service: "testsvc", Quiet: true})
		logger.Info("file only")
		logger.Close()
	})

	if output != "" {
		t.Errorf("Quiet logger wrote to stderr: %q", output)
	}

	filename := "testsvc_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "file only") {
		t.Error("log file is missing the record")
	}
}

func TestNew_FileLogging(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:   LevelInfo,
		LogDir:  dir,
		Service: "testsvc",
		Quiet:   true,
	})

	logger.Info("assessment complete", "year", 2022, "countries", 42)
	logger.Debug("should be filtered out")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	filename := "testsvc_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("log file has %d lines, want 1 (Debug filtered)", len(lines))
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "assessment complete" {
		t.Errorf("msg = %v, want %q", entry["msg"], "assessment complete")
	}
	if entry["service"] != "testsvc" {
		t.Errorf("service = %v, want %q", entry["service"], "testsvc")
	}
	if entry["year"] != float64(2022) {
		t.Errorf("year = %v, want 2022", entry["year"])
	}
}

func TestLogger_With(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:   LevelInfo,
		LogDir:  dir,
		Service: "testsvc",
		Quiet:   true,
	})
	defer logger.Close()

	child := logger.With("run_id", "abc123")
	child.Info("scoring started")

	filename := "testsvc_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["run_id"] != "abc123" {
		t.Errorf("run_id = %v, want abc123 from With()", entry["run_id"])
	}
}

func TestMultiHandler_FansOut(t *testing.T) {
	var first, second bytes.Buffer
	handler := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&first, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&second, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}
	logger := slog.New(handler)

	logger.Info("info message")
	logger.Warn("warn message")

	if got := strings.Count(first.String(), "\n"); got != 2 {
		t.Errorf("info-level handler received %d records, want 2", got)
	}
	// The warn-level handler filters the info record.
	if got := strings.Count(second.String(), "\n"); got != 1 {
		t.Errorf("warn-level handler received %d records, want 1", got)
	}
}

func TestMultiHandler_Enabled(t *testing.T) {
	handler := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo}),
	}}

	// Enabled if any destination wants the record.
	if !handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Enabled(Info) = false, want true")
	}
	if handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Enabled(Debug) = true, want false")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir() error = %v", err)
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/logs", filepath.Join(home, "logs")},
		{"~/.katmai/cache", filepath.Join(home, ".katmai", "cache")},
		{"/var/log/katmai", "/var/log/katmai"},
		{"relative/path", "relative/path"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.input); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestClose_NoFile(t *testing.T) {
	logger := New(Config{Level: LevelInfo, Quiet: true})
	if err := logger.Close(); err != nil {
		t.Errorf("Close() without a file = %v, want nil", err)
	}
}
