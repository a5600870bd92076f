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

// AnalysisResult holds every detection found in one text unit (a message,
// post, or document) and their mean risk level.
//
// Description:
//
//	The mean is computed once at construction. A text unit with no
//	detections scores DefaultRiskLevel (1.0, non-identifiable) rather than
//	dividing by zero.
//
// Thread Safety: Immutable after construction; safe for concurrent reads.
type AnalysisResult struct {
	index         int
	analysis      []AnalysisResultItem
	meanRiskScore float64
}

// NewAnalysisResult aggregates items for the text unit at position index
// within its collection. items is copied.
func NewAnalysisResult(index int, items []AnalysisResultItem) AnalysisResult {
	owned := make([]AnalysisResultItem, len(items))
	copy(owned, items)

	var summary stats.Summary
	for _, item := range owned {
		summary.Add(item.riskAssessment.riskLevel.Score())
	}

	mean := DefaultRiskLevel.Score()
	if summary.Count() > 0 {
		mean = summary.Mean()
	}

	return AnalysisResult{
		index:         index,
		analysis:      owned,
		meanRiskScore: mean,
	}
}

// Index returns the position of the text unit within its collection.
func (r AnalysisResult) Index() int { return r.index }

// Len returns the number of detections.
func (r AnalysisResult) Len() int { return len(r.analysis) }

// MeanRiskScore returns the mean risk level of the detections, or the
// lowest tier when there are none.
func (r AnalysisResult) MeanRiskScore() float64 {
	if len(r.analysis) == 0 {
		return DefaultRiskLevel.Score()
	}
	return r.meanRiskScore
}

// Analysis returns a copy of the items in detection order.
func (r AnalysisResult) Analysis() []AnalysisResultItem {
	out := make([]AnalysisResultItem, len(r.analysis))
	copy(out, r.analysis)
	return out
}

// DetectedTypes returns the entity type of every item in detection order.
// Duplicates are kept.
func (r AnalysisResult) DetectedTypes() []string {
	types := make([]string, 0, len(r.analysis))
	for _, item := range r.analysis {
		types = append(types, item.detection.entityType)
	}
	return types
}

// ToDict returns {"analysis": [...flattened items], "index", "mean_risk_score"}.
func (r AnalysisResult) ToDict() map[string]any {
	items := make([]map[string]any, 0, len(r.analysis))
	for _, item := range r.analysis {
		items = append(items, item.ToFlattenedDict())
	}
	return map[string]any{
		"analysis":        items,
		"index":           r.index,
		"mean_risk_score": r.MeanRiskScore(),
	}
}

// MarshalJSON encodes the ToDict shape.
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToDict())
}
