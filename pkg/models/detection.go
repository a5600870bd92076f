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
	"math"
)

// UnknownTextLength disables the end-of-text bound in NewDetectionResult.
const UnknownTextLength = -1

// DetectionResult is one located occurrence of a PII entity type in a text,
// as reported by the upstream detector.
type DetectionResult struct {
	entityType string
	score      float64
	start      int
	end        int
}

// NewDetectionResult validates and builds a detection.
//
// Inputs:
//   - entityType: PII category name.
//   - score: Detector confidence in [0, 1].
//   - start, end: Character offsets, 0 <= start <= end <= textLength.
//   - textLength: Length of the source text in characters, or
//     UnknownTextLength when the text is not available.
//
// Outputs:
//   - DetectionResult: The detection.
//   - error: ErrEmptyEntityType, *InvalidScoreError or *InvalidOffsetError.
func NewDetectionResult(entityType string, score float64, start, end, textLength int) (DetectionResult, error) {
	if entityType == "" {
		return DetectionResult{}, ErrEmptyEntityType
	}
	if math.IsNaN(score) || score < 0 || score > 1 {
		return DetectionResult{}, &InvalidScoreError{EntityType: entityType, Score: score}
	}
	if start < 0 || start > end || (textLength >= 0 && end > textLength) {
		return DetectionResult{}, &InvalidOffsetError{
			EntityType: entityType,
			Start:      start,
			End:        end,
			TextLength: textLength,
		}
	}
	return DetectionResult{entityType: entityType, score: score, start: start, end: end}, nil
}

func (d DetectionResult) EntityType() string { return d.entityType }
func (d DetectionResult) Score() float64     { return d.score }
func (d DetectionResult) Start() int         { return d.start }
func (d DetectionResult) End() int           { return d.end }

// ToDict returns the detection keyed by its wire field names.
func (d DetectionResult) ToDict() map[string]any {
	return map[string]any{
		"entity_type": d.entityType,
		"score":       d.score,
		"start":       d.start,
		"end":         d.end,
	}
}

// MarshalJSON encodes the ToDict shape.
func (d DetectionResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.ToDict())
}
