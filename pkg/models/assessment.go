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

// RiskAssessment is the risk classification of one PII type.
//
// The definition text is never stored separately; it is always derived
// from the level, so the two cannot disagree.
type RiskAssessment struct {
	piiTypeDetected       string
	riskLevel             RiskLevel
	clusterMembershipType string
	hipaaCategory         string
	dhsCategory           string
	nistCategory          string
}

// AssessmentOption sets an optional field of a RiskAssessment.
type AssessmentOption func(*RiskAssessment)

// WithClusterMembership sets the quasi-identifier cluster label.
func WithClusterMembership(label string) AssessmentOption {
	return func(a *RiskAssessment) { a.clusterMembershipType = label }
}

// WithHIPAACategory sets the HIPAA category. Empty means not applicable.
func WithHIPAACategory(category string) AssessmentOption {
	return func(a *RiskAssessment) { a.hipaaCategory = category }
}

// WithDHSCategory sets the DHS category. Empty means not applicable.
func WithDHSCategory(category string) AssessmentOption {
	return func(a *RiskAssessment) { a.dhsCategory = category }
}

// WithNISTCategory sets the NIST category. Empty means not applicable.
func WithNISTCategory(category string) AssessmentOption {
	return func(a *RiskAssessment) { a.nistCategory = category }
}

// NewRiskAssessment builds the assessment for piiType.
//
// Inputs:
//   - piiType: PII category name, matched against DetectionResult entity types.
//   - level: Risk tier. Must be a defined RiskLevel.
//   - opts: Cluster membership and regulatory categories.
//
// Outputs:
//   - RiskAssessment: The assessment.
//   - error: *InvalidRiskLevelError for an undefined level.
func NewRiskAssessment(piiType string, level RiskLevel, opts ...AssessmentOption) (RiskAssessment, error) {
	if piiType == "" {
		return RiskAssessment{}, ErrEmptyEntityType
	}
	if !level.Valid() {
		return RiskAssessment{}, &InvalidRiskLevelError{Ordinal: int(level)}
	}
	a := RiskAssessment{piiTypeDetected: piiType, riskLevel: level}
	for _, opt := range opts {
		opt(&a)
	}
	return a, nil
}

func (a RiskAssessment) PIITypeDetected() string       { return a.piiTypeDetected }
func (a RiskAssessment) RiskLevel() RiskLevel          { return a.riskLevel }
func (a RiskAssessment) ClusterMembershipType() string { return a.clusterMembershipType }

// RiskLevelDefinition returns the definition matching RiskLevel.
func (a RiskAssessment) RiskLevelDefinition() RiskLevelDefinition {
	return a.riskLevel.Definition()
}

// HIPAACategory returns the HIPAA label; ok is false when not applicable.
func (a RiskAssessment) HIPAACategory() (string, bool) {
	return a.hipaaCategory, a.hipaaCategory != ""
}

// DHSCategory returns the DHS label; ok is false when not applicable.
func (a RiskAssessment) DHSCategory() (string, bool) {
	return a.dhsCategory, a.dhsCategory != ""
}

// NISTCategory returns the NIST label; ok is false when not applicable.
func (a RiskAssessment) NISTCategory() (string, bool) {
	return a.nistCategory, a.nistCategory != ""
}

// ToDict returns the assessment keyed by its wire field names. Absent
// categories map to nil.
func (a RiskAssessment) ToDict() map[string]any {
	return map[string]any{
		"pii_type_detected":       a.piiTypeDetected,
		"risk_level":              int(a.riskLevel),
		"risk_level_definition":   string(a.RiskLevelDefinition()),
		"cluster_membership_type": optional(a.clusterMembershipType),
		"hipaa_category":          optional(a.hipaaCategory),
		"dhs_category":            optional(a.dhsCategory),
		"nist_category":           optional(a.nistCategory),
	}
}

// MarshalJSON encodes the ToDict shape.
func (a RiskAssessment) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.ToDict())
}

// RiskAssessmentList is a batch of assessments with their average level.
type RiskAssessmentList struct {
	assessments      []RiskAssessment
	averageRiskScore float64
}

// NewRiskAssessmentList averages the risk levels of assessments. An empty
// list averages to the default (lowest) tier.
func NewRiskAssessmentList(assessments []RiskAssessment) RiskAssessmentList {
	owned := make([]RiskAssessment, len(assessments))
	copy(owned, assessments)

	var summary stats.Summary
	for _, a := range owned {
		summary.Add(a.riskLevel.Score())
	}
	average := DefaultRiskLevel.Score()
	if summary.Count() > 0 {
		average = summary.Mean()
	}
	return RiskAssessmentList{assessments: owned, averageRiskScore: average}
}

// RiskAssessments returns a copy of the assessments.
func (l RiskAssessmentList) RiskAssessments() []RiskAssessment {
	out := make([]RiskAssessment, len(l.assessments))
	copy(out, l.assessments)
	return out
}

func (l RiskAssessmentList) AverageRiskScore() float64 { return l.averageRiskScore }

func (l RiskAssessmentList) ToDict() map[string]any {
	dicts := make([]map[string]any, 0, len(l.assessments))
	for _, a := range l.assessments {
		dicts = append(dicts, a.ToDict())
	}
	return map[string]any{
		"risk_assessments":   dicts,
		"average_risk_score": l.averageRiskScore,
	}
}

func (l RiskAssessmentList) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.ToDict())
}

// optional maps "" to nil so absent labels encode as JSON null.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}
