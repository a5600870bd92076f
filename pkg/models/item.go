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

import "encoding/json"

// AnalysisResultItem pairs one detection with the assessment of its PII
// type. It is the atomic unit of analysis.
type AnalysisResultItem struct {
	detection      DetectionResult
	riskAssessment RiskAssessment
}

// NewAnalysisResultItem pairs detection with assessment.
//
// Returns *MismatchedPairingError when the detection's entity type is not
// the assessment's PII type, ErrEmptyEntityType when both are empty, and
// *InvalidRiskLevelError when the assessment was not built by
// NewRiskAssessment.
func NewAnalysisResultItem(detection DetectionResult, assessment RiskAssessment) (AnalysisResultItem, error) {
	if !assessment.riskLevel.Valid() {
		return AnalysisResultItem{}, &InvalidRiskLevelError{Ordinal: int(assessment.riskLevel)}
	}
	if detection.entityType != assessment.piiTypeDetected {
		return AnalysisResultItem{}, &MismatchedPairingError{
			DetectionType:  detection.entityType,
			AssessmentType: assessment.piiTypeDetected,
		}
	}
	if detection.entityType == "" {
		return AnalysisResultItem{}, ErrEmptyEntityType
	}
	return AnalysisResultItem{detection: detection, riskAssessment: assessment}, nil
}

func (i AnalysisResultItem) Detection() DetectionResult     { return i.detection }
func (i AnalysisResultItem) RiskAssessment() RiskAssessment { return i.riskAssessment }

// ToDict returns the nested shape with "riskAssessment" and "detection"
// sub-maps.
func (i AnalysisResultItem) ToDict() map[string]any {
	return map[string]any{
		"riskAssessment": i.riskAssessment.ToDict(),
		"detection":      i.detection.ToDict(),
	}
}

// ToFlattenedDict merges detection and assessment fields into one map for
// tabular export. Assessment fields win on a key collision.
func (i AnalysisResultItem) ToFlattenedDict() map[string]any {
	flat := i.detection.ToDict()
	for k, v := range i.riskAssessment.ToDict() {
		flat[k] = v
	}
	return flat
}

// MarshalJSON encodes the flattened shape, which is what result
// serialization embeds.
func (i AnalysisResultItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.ToFlattenedDict())
}
