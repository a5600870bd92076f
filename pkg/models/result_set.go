// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package models

import (
	"encoding/json"

	"github.com/AleutianAI/PIICodex/pkg/stats"
)

// DefaultCollectionRiskScore is the mean risk score of an empty collection.
const DefaultCollectionRiskScore = 1.0

// AnalysisResultSet folds the results of a collection of text units into
// collection-wide statistics.
//
// Description:
//
//	All statistics are computed at construction:
//	  - detection count: items across every AnalysisResult
//	  - PII type frequencies: raw detection counts per entity type
//	  - risk scores: each unit's mean risk score, in unit order
//	  - mean, population variance and standard deviation of the risk scores
//
//	Variance divides by N, not N-1: the collection is the whole population
//	being reported on, not a sample of a larger one. An empty collection
//	reports a mean of DefaultCollectionRiskScore and zero variance.
//
// Thread Safety: Immutable after construction; safe for concurrent reads.
type AnalysisResultSet struct {
	collectionName string
	analyses       []AnalysisResult
	detectionCount int
	frequencies    *stats.Counter
	riskScores     []float64
	summary        stats.Summary
}

// SetOption configures an AnalysisResultSet.
type SetOption func(*AnalysisResultSet)

// WithCollectionName labels the collection. The label has no effect on
// any statistic.
func WithCollectionName(name string) SetOption {
	return func(s *AnalysisResultSet) { s.collectionName = name }
}

// NewAnalysisResultSet aggregates analyses in a single pass. analyses is
// copied.
func NewAnalysisResultSet(analyses []AnalysisResult, opts ...SetOption) AnalysisResultSet {
	set := AnalysisResultSet{
		analyses:    make([]AnalysisResult, len(analyses)),
		frequencies: stats.NewCounter(),
		riskScores:  make([]float64, 0, len(analyses)),
	}
	copy(set.analyses, analyses)

	for _, analysis := range set.analyses {
		set.detectionCount += len(analysis.analysis)
		for _, item := range analysis.analysis {
			set.frequencies.Add(item.detection.entityType)
		}
		set.riskScores = append(set.riskScores, analysis.MeanRiskScore())
		set.summary.Add(analysis.MeanRiskScore())
	}

	for _, opt := range opts {
		opt(&set)
	}
	return set
}

// CombineAnalysisResultSets merges partial sets built over consecutive
// slices of one collection.
//
// Description:
//
//	Analyses and risk scores are concatenated in argument order, counts
//	are summed, and the running risk score summaries are combined pairwise
//	instead of being recomputed from the scores. The result matches
//	NewAnalysisResultSet over the concatenated analyses, with mean and
//	variance equal within floating point tolerance.
//
// Inputs:
//   - sets: Partial sets in collection order. Their names are ignored.
//   - opts: Options for the combined set.
//
// Outputs:
//   - AnalysisResultSet: The combined set.
func CombineAnalysisResultSets(sets []AnalysisResultSet, opts ...SetOption) AnalysisResultSet {
	total := 0
	for _, s := range sets {
		total += len(s.analyses)
	}

	combined := AnalysisResultSet{
		analyses:    make([]AnalysisResult, 0, total),
		frequencies: stats.NewCounter(),
		riskScores:  make([]float64, 0, total),
	}
	for _, s := range sets {
		combined.analyses = append(combined.analyses, s.analyses...)
		combined.riskScores = append(combined.riskScores, s.riskScores...)
		combined.detectionCount += s.detectionCount
		combined.frequencies.Merge(s.frequencies)
		combined.summary = combined.summary.Merge(s.summary)
	}

	for _, opt := range opts {
		opt(&combined)
	}
	return combined
}

// CollectionName returns the label; ok is false for an unnamed collection.
func (s AnalysisResultSet) CollectionName() (string, bool) {
	return s.collectionName, s.collectionName != ""
}

// Analyses returns a copy of the per-unit results.
func (s AnalysisResultSet) Analyses() []AnalysisResult {
	out := make([]AnalysisResult, len(s.analyses))
	copy(out, s.analyses)
	return out
}

// DetectionCount returns the number of detections across all units.
func (s AnalysisResultSet) DetectionCount() int { return s.detectionCount }

// DetectedPIITypes returns the distinct entity types in first-seen order.
func (s AnalysisResultSet) DetectedPIITypes() []string {
	return s.counter().Keys()
}

// DetectedPIITypeFrequencies returns detection counts per entity type.
func (s AnalysisResultSet) DetectedPIITypeFrequencies() map[string]int {
	return s.counter().Map()
}

// RankedPIITypeFrequencies returns entity types by descending count, ties
// broken by first-seen order.
func (s AnalysisResultSet) RankedPIITypeFrequencies() []stats.Frequency {
	return s.counter().Ranked()
}

// MostDetectedPIIType returns the most frequent entity type. ok is false
// when nothing was detected.
func (s AnalysisResultSet) MostDetectedPIIType() (stats.Frequency, bool) {
	return s.counter().Most()
}

// LeastDetectedPIIType returns the least frequent entity type. ok is false
// when nothing was detected.
func (s AnalysisResultSet) LeastDetectedPIIType() (stats.Frequency, bool) {
	return s.counter().Least()
}

// RiskScores returns each unit's mean risk score in unit order.
func (s AnalysisResultSet) RiskScores() []float64 {
	out := make([]float64, len(s.riskScores))
	copy(out, s.riskScores)
	return out
}

// MeanRiskScore returns the mean of RiskScores, or
// DefaultCollectionRiskScore for an empty collection.
func (s AnalysisResultSet) MeanRiskScore() float64 {
	if s.summary.Count() == 0 {
		return DefaultCollectionRiskScore
	}
	return s.summary.Mean()
}

// RiskScoreVariance returns the population variance of RiskScores.
func (s AnalysisResultSet) RiskScoreVariance() float64 {
	return s.summary.Variance()
}

// RiskScoreStandardDeviation returns the square root of RiskScoreVariance.
func (s AnalysisResultSet) RiskScoreStandardDeviation() float64 {
	return s.summary.StdDev()
}

// ToDict returns the collection keyed by its wire field names.
func (s AnalysisResultSet) ToDict() map[string]any {
	analyses := make([]map[string]any, 0, len(s.analyses))
	for _, a := range s.analyses {
		analyses = append(analyses, a.ToDict())
	}
	return map[string]any{
		"collection_name":               optional(s.collectionName),
		"analyses":                      analyses,
		"detection_count":               s.detectionCount,
		"mean_risk_score":               s.MeanRiskScore(),
		"risk_scores":                   s.RiskScores(),
		"risk_score_standard_deviation": s.RiskScoreStandardDeviation(),
		"risk_score_variance":           s.RiskScoreVariance(),
		"detected_pii_types":            s.DetectedPIITypes(),
		"detected_pii_type_frequencies": s.DetectedPIITypeFrequencies(),
	}
}

// MarshalJSON encodes the ToDict shape.
func (s AnalysisResultSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToDict())
}

// counter guards the zero value, which has no Counter allocated.
func (s AnalysisResultSet) counter() *stats.Counter {
	if s.frequencies == nil {
		return stats.NewCounter()
	}
	return s.frequencies
}
