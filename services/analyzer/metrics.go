// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for analysis operations.
var (
	tracer = otel.Tracer("piicodex.analyzer")
	meter  = otel.Meter("piicodex.analyzer")
)

// Metrics for analysis operations.
var (
	analyzeLatency     metric.Float64Histogram
	analyzeTotal       metric.Int64Counter
	documentsAnalyzed  metric.Int64Counter
	detectionsByType   metric.Int64Counter
	unmappedEntities   metric.Int64Counter
	collectionMeanRisk metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		analyzeLatency, err = meter.Float64Histogram(
			"analyzer_collection_duration_seconds",
			metric.WithDescription("Duration of collection analysis"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		analyzeTotal, err = meter.Int64Counter(
			"analyzer_collections_total",
			metric.WithDescription("Total number of collection analyses"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		documentsAnalyzed, err = meter.Int64Counter(
			"analyzer_documents_total",
			metric.WithDescription("Total number of documents analyzed"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		detectionsByType, err = meter.Int64Counter(
			"analyzer_detections_by_type_total",
			metric.WithDescription("Total detections by PII type"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		unmappedEntities, err = meter.Int64Counter(
			"analyzer_unmapped_entities_total",
			metric.WithDescription("Detections whose entity type has no classification"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		collectionMeanRisk, err = meter.Float64Histogram(
			"analyzer_collection_mean_risk_score",
			metric.WithDescription("Mean risk score per analyzed collection"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startAnalyzeSpan creates a span for a collection analysis.
func startAnalyzeSpan(ctx context.Context, runID, name string, documents int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Analyzer.AnalyzeCollection",
		trace.WithAttributes(
			attribute.String("analyzer.run_id", runID),
			attribute.String("analyzer.collection", name),
			attribute.Int("analyzer.documents", documents),
		),
	)
}

// startDocumentSpan creates a span for a single document.
func startDocumentSpan(ctx context.Context, index, detections int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Analyzer.AnalyzeDocument",
		trace.WithAttributes(
			attribute.Int("analyzer.document_index", index),
			attribute.Int("analyzer.detections", detections),
		),
	)
}

// setAnalyzeSpanResult sets the result attributes on an analysis span.
func setAnalyzeSpanResult(span trace.Span, detectionCount int, meanRisk float64, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetAttributes(
		attribute.Int("analyzer.detection_count", detectionCount),
		attribute.Float64("analyzer.mean_risk_score", meanRisk),
	)
}

// recordAnalyzeMetrics records metrics for a collection analysis.
func recordAnalyzeMetrics(ctx context.Context, duration time.Duration, documents int, meanRisk float64, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.Bool("success", success),
	)

	analyzeLatency.Record(ctx, duration.Seconds(), attrs)
	analyzeTotal.Add(ctx, 1, attrs)
	if success {
		documentsAnalyzed.Add(ctx, int64(documents))
		collectionMeanRisk.Record(ctx, meanRisk)
	}
}

// recordDetectionsByType records the frequency of one PII type.
func recordDetectionsByType(ctx context.Context, piiType string, count int) {
	if err := initMetrics(); err != nil {
		return
	}
	detectionsByType.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("pii_type", piiType),
	))
}

// recordUnmapped records a detection that could not be classified.
func recordUnmapped(ctx context.Context, entityType string) {
	if err := initMetrics(); err != nil {
		return
	}
	unmappedEntities.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity_type", entityType),
	))
}
