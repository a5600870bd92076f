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

import "fmt"

// RiskLevel is the ordinal identifiability tier of a PII type.
//
// Ordinals start at 1 and strictly increase with identifiability.
type RiskLevel int

const (
	RiskLevelOne   RiskLevel = 1 // Non-Identifiable
	RiskLevelTwo   RiskLevel = 2 // Minimally Identifiable
	RiskLevelThree RiskLevel = 3 // Semi-Identifiable
	RiskLevelFour  RiskLevel = 4 // Highly Identifiable
	RiskLevelFive  RiskLevel = 5 // Fully Identifiable
)

// RiskLevelDefinition is the human-readable meaning of a RiskLevel.
type RiskLevelDefinition string

const (
	DefinitionNonIdentifiable       RiskLevelDefinition = "Non-Identifiable"
	DefinitionMinimallyIdentifiable RiskLevelDefinition = "Minimally Identifiable"
	DefinitionSemiIdentifiable      RiskLevelDefinition = "Semi-Identifiable"
	DefinitionHighlyIdentifiable    RiskLevelDefinition = "Highly Identifiable"
	DefinitionFullyIdentifiable     RiskLevelDefinition = "Fully Identifiable"
)

// DefaultRiskLevel applies when nothing identifiable was found.
const DefaultRiskLevel = RiskLevelOne

var riskLevelDefinitions = map[RiskLevel]RiskLevelDefinition{
	RiskLevelOne:   DefinitionNonIdentifiable,
	RiskLevelTwo:   DefinitionMinimallyIdentifiable,
	RiskLevelThree: DefinitionSemiIdentifiable,
	RiskLevelFour:  DefinitionHighlyIdentifiable,
	RiskLevelFive:  DefinitionFullyIdentifiable,
}

// RiskLevels returns every level in ascending order.
func RiskLevels() []RiskLevel {
	return []RiskLevel{RiskLevelOne, RiskLevelTwo, RiskLevelThree, RiskLevelFour, RiskLevelFive}
}

// ParseRiskLevel validates an integer ordinal.
func ParseRiskLevel(ordinal int) (RiskLevel, error) {
	level := RiskLevel(ordinal)
	if !level.Valid() {
		return 0, &InvalidRiskLevelError{Ordinal: ordinal}
	}
	return level, nil
}

// Valid reports whether r is one of the defined levels.
func (r RiskLevel) Valid() bool {
	_, ok := riskLevelDefinitions[r]
	return ok
}

// Definition returns the text for r, or "" for an undefined level.
func (r RiskLevel) Definition() RiskLevelDefinition {
	return riskLevelDefinitions[r]
}

// ExceededBy reports whether a mean risk score is strictly above r.
func (r RiskLevel) ExceededBy(score float64) bool {
	return score > r.Score()
}

// Score returns the level as a float64 for averaging.
func (r RiskLevel) Score() float64 {
	return float64(r)
}

func (r RiskLevel) String() string {
	if d := r.Definition(); d != "" {
		return fmt.Sprintf("%d (%s)", int(r), d)
	}
	return fmt.Sprintf("%d (undefined)", int(r))
}

// Common cluster membership labels. The classification table may use any
// label; these are the ones the bundled mapping uses.
const (
	ClusterDirectIdentifier   = "Direct Identifier"
	ClusterLinkableIdentifier = "Linkable Identifier"
	ClusterContactInformation = "Contact Information"
	ClusterFinancial          = "Financial Information"
	ClusterSecureIdentifiers  = "Secure Identifiers"
	ClusterLocation           = "Location"
	ClusterDemographics       = "Basic Demographics"
	ClusterMedical            = "Medical and Health"
	ClusterOnlineActivity     = "Online Activity"
)
