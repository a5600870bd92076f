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
	"fmt"
	"time"

	"github.com/AleutianAI/PIICodex/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metricsRegistry holds only the run metrics so the textfile carries no
// Go runtime collectors.
var metricsRegistry = prometheus.NewRegistry()

// Prometheus metrics for the last analyze run, exported through the
// node-exporter textfile collector.
var (
	runDocuments = promauto.With(metricsRegistry).NewGauge(prometheus.GaugeOpts{
		Namespace: "piicodex",
		Name:      "documents",
		Help:      "Documents in the last analyzed collection",
	})

	runDetections = promauto.With(metricsRegistry).NewGauge(prometheus.GaugeOpts{
		Namespace: "piicodex",
		Name:      "detections",
		Help:      "Detections in the last analyzed collection",
	})

	runDetectionsByType = promauto.With(metricsRegistry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "piicodex",
		Name:      "detections_by_type",
		Help:      "Detections per PII type in the last analyzed collection",
	}, []string{"pii_type"})

	runRiskScore = promauto.With(metricsRegistry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "piicodex",
		Name:      "risk_score",
		Help:      "Risk score statistics of the last analyzed collection",
	}, []string{"stat"})

	runDocumentRisk = promauto.With(metricsRegistry).NewHistogram(prometheus.HistogramOpts{
		Namespace: "piicodex",
		Name:      "document_risk_score",
		Help:      "Mean risk score per document",
		Buckets:   []float64{1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5},
	})

	runThresholdExceeded = promauto.With(metricsRegistry).NewGauge(prometheus.GaugeOpts{
		Namespace: "piicodex",
		Name:      "threshold_exceeded",
		Help:      "1 if the collection mean risk score was above the threshold",
	})

	runDuration = promauto.With(metricsRegistry).NewGauge(prometheus.GaugeOpts{
		Namespace: "piicodex",
		Name:      "run_duration_seconds",
		Help:      "Wall time of the last analyze run",
	})

	runTimestamp = promauto.With(metricsRegistry).NewGauge(prometheus.GaugeOpts{
		Namespace: "piicodex",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last analyze run finished",
	})
)

// recordRunMetrics sets the gauges from a finished analysis.
func recordRunMetrics(set models.AnalysisResultSet, documents int, duration time.Duration, exceeded bool) {
	runDocuments.Set(float64(documents))
	runDetections.Set(float64(set.DetectionCount()))

	runDetectionsByType.Reset()
	for _, f := range set.RankedPIITypeFrequencies() {
		runDetectionsByType.WithLabelValues(f.Key).Set(float64(f.Count))
	}

	runRiskScore.WithLabelValues("mean").Set(set.MeanRiskScore())
	runRiskScore.WithLabelValues("variance").Set(set.RiskScoreVariance())
	runRiskScore.WithLabelValues("stddev").Set(set.RiskScoreStandardDeviation())

	for _, score := range set.RiskScores() {
		runDocumentRisk.Observe(score)
	}

	if exceeded {
		runThresholdExceeded.Set(1)
	} else {
		runThresholdExceeded.Set(0)
	}
	runDuration.Set(duration.Seconds())
	runTimestamp.SetToCurrentTime()
}

// writeMetricsTextfile writes the registry atomically to path.
func writeMetricsTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, metricsRegistry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
