// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"fmt"

	"github.com/AleutianAI/PIICodex/pkg/models"
	"github.com/go-playground/validator/v10"
)

// CurrentConfigVersion is written into newly created config files.
const CurrentConfigVersion = "1"

type PIICodexConfig struct {
	// Meta: file format bookkeeping
	Meta MetaConfig `yaml:"meta"`

	// MappingPath: external classification table, empty uses the embedded one
	MappingPath string `yaml:"mapping_path,omitempty"`

	// Concurrency: shards analyzed at once, 0 means GOMAXPROCS
	Concurrency int `yaml:"concurrency" validate:"gte=0"`

	// ShardSize: documents per shard, 0 means the analyzer default
	ShardSize int `yaml:"shard_size" validate:"gte=0"`

	// Threshold: risk level ordinal; analyze exits 1 when the collection
	// mean risk score is above it
	Threshold int `yaml:"threshold" validate:"min=1,max=5"`

	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type MetaConfig struct {
	Version string `yaml:"version"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Dir   string `yaml:"dir,omitempty"` // e.g. ~/.piicodex/logs
	JSON  bool   `yaml:"json"`
}

type MetricsConfig struct {
	// Textfile: node-exporter textfile written after each analyze run
	Textfile string `yaml:"textfile,omitempty"`
}

type TelemetryConfig struct {
	TraceExporter  string `yaml:"trace_exporter" validate:"omitempty,oneof=otlp stdout none"`
	MetricExporter string `yaml:"metric_exporter" validate:"omitempty,oneof=prometheus stdout none"`
	OTLPEndpoint   string `yaml:"otlp_endpoint,omitempty"` // e.g. localhost:4317
	OTLPInsecure   bool   `yaml:"otlp_insecure"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() PIICodexConfig {
	return PIICodexConfig{
		Meta:        MetaConfig{Version: CurrentConfigVersion},
		Concurrency: 0,
		ShardSize:   0,
		Threshold:   int(models.RiskLevelFour),
		Logging: LoggingConfig{
			Level: "info",
			JSON:  false,
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			OTLPEndpoint:   "localhost:4317",
			OTLPInsecure:   true,
		},
	}
}

var configValidate = validator.New()

// Validate checks field ranges.
func (c *PIICodexConfig) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ThresholdLevel returns Threshold as a RiskLevel.
func (c *PIICodexConfig) ThresholdLevel() (models.RiskLevel, error) {
	return models.ParseRiskLevel(c.Threshold)
}
