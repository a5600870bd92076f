// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/AleutianAI/PIICodex/cmd/piicodex/config"
	"github.com/AleutianAI/PIICodex/pkg/logging"
	"github.com/AleutianAI/PIICodex/pkg/telemetry"
	"github.com/AleutianAI/PIICodex/services/classification"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	jsonLogs   bool

	// appLogger is set up in PersistentPreRunE from config and flags.
	appLogger = logging.Nop()

	// telemetryShutdown flushes the otel providers; set by setupRuntime.
	telemetryShutdown = func(context.Context) error { return nil }

	rootCmd = &cobra.Command{
		Use:   "piicodex",
		Short: "Assess the privacy risk of detected PII",
		Long: `PII Codex classifies the PII types an upstream detector found in a
collection of texts, and reports per-text and collection-wide risk
statistics: detection counts, PII type frequencies, and the mean,
variance and standard deviation of the risk scores.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupRuntime,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			shutdownRuntime()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default ~/.piicodex/piicodex.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false,
		"Write logs to stderr as JSON")
}

// setupRuntime loads the config and builds the logger.
func setupRuntime(cmd *cobra.Command, args []string) error {
	if err := config.Load(configPath); err != nil {
		return err
	}

	levelName := config.Global.Logging.Level
	if logLevel != "" {
		levelName = logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}

	appLogger = logging.New(logging.Config{
		Level:   level,
		LogDir:  config.Global.Logging.Dir,
		Service: "piicodex",
		JSON:    jsonLogs || config.Global.Logging.JSON,
	})

	tcfg := telemetryConfig(config.Global.Telemetry)
	tcfg.Registerer = metricsRegistry
	shutdown, err := telemetry.Init(cmd.Context(), tcfg)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	telemetryShutdown = shutdown
	return nil
}

// telemetryConfig layers the config file under the OTEL_* environment: a
// file value applies only when its variable is unset.
func telemetryConfig(file config.TelemetryConfig) telemetry.Config {
	tcfg := telemetry.DefaultConfig()
	if os.Getenv(telemetry.EnvTracesExporter) == "" && file.TraceExporter != "" {
		tcfg.TraceExporter = file.TraceExporter
	}
	if os.Getenv(telemetry.EnvMetricsExporter) == "" && file.MetricExporter != "" {
		tcfg.MetricExporter = file.MetricExporter
	}
	if os.Getenv(telemetry.EnvOTLPEndpoint) == "" && file.OTLPEndpoint != "" {
		tcfg.OTLPEndpoint = file.OTLPEndpoint
	}
	tcfg.OTLPInsecure = file.OTLPInsecure
	return tcfg
}

// shutdownRuntime flushes telemetry and closes the log file.
func shutdownRuntime() {
	if err := telemetryShutdown(context.Background()); err != nil {
		appLogger.Warn("telemetry shutdown failed", "error", err)
	}
	appLogger.Close()
}

// loadClassifier returns the table at mappingPath, or the embedded table
// when mappingPath is empty.
func loadClassifier(mappingPath string) (*classification.Table, error) {
	if mappingPath == "" {
		return classification.DefaultTable()
	}
	table, err := classification.LoadTableFile(mappingPath)
	if err != nil {
		return nil, fmt.Errorf("load mapping: %w", err)
	}
	return table, nil
}
