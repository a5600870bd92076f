// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.
package classification

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/AleutianAI/PIICodex/pkg/models"
	"github.com/go-playground/validator/v10"
)

// CurrentMappingVersion is the only mapping file version this package reads.
const CurrentMappingVersion = "1"

// Classifier resolves a detected entity type to its risk classification.
type Classifier interface {
	Classify(entityType string) (models.RiskAssessment, error)
}

type MappingFile struct {
	Version string  `yaml:"version" validate:"required,eq=1"`
	Entries []Entry `yaml:"entries" validate:"required,min=1,dive"`
}

type Entry struct {
	PIIType               string `yaml:"pii_type" validate:"required,pii_type"`
	RiskLevel             int    `yaml:"risk_level" validate:"min=1,max=5"`
	ClusterMembershipType string `yaml:"cluster_membership_type" validate:"required"`
	HIPAACategory         string `yaml:"hipaa_category,omitempty"`
	DHSCategory           string `yaml:"dhs_category,omitempty"`
	NISTCategory          string `yaml:"nist_category,omitempty"`
}

// Assessment converts the entry into the model record.
func (e Entry) Assessment() (models.RiskAssessment, error) {
	level, err := models.ParseRiskLevel(e.RiskLevel)
	if err != nil {
		return models.RiskAssessment{}, fmt.Errorf("entry %s: %w", e.PIIType, err)
	}
	return models.NewRiskAssessment(e.PIIType, level,
		models.WithClusterMembership(e.ClusterMembershipType),
		models.WithHIPAACategory(e.HIPAACategory),
		models.WithDHSCategory(e.DHSCategory),
		models.WithNISTCategory(e.NISTCategory),
	)
}

// mappingValidate checks mapping files. Initialized in init() with the
// pii_type format rule.
var mappingValidate *validator.Validate

var piiTypePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

func init() {
	mappingValidate = validator.New()
	if err := mappingValidate.RegisterValidation("pii_type", validatePIIType); err != nil {
		panic(fmt.Sprintf("failed to register pii_type validator: %v", err))
	}
}

// validatePIIType accepts upper-case snake identifiers such as EMAIL_ADDRESS,
// the convention upstream detectors report entity types in.
func validatePIIType(fl validator.FieldLevel) bool {
	return piiTypePattern.MatchString(fl.Field().String())
}

// Validate checks field rules and rejects duplicate PII types.
func (m *MappingFile) Validate() error {
	if err := mappingValidate.Struct(m); err != nil {
		return fmt.Errorf("invalid mapping: %w", err)
	}
	seen := make(map[string]struct{}, len(m.Entries))
	for _, e := range m.Entries {
		if _, dup := seen[e.PIIType]; dup {
			return fmt.Errorf("invalid mapping: duplicate pii_type %s", e.PIIType)
		}
		seen[e.PIIType] = struct{}{}
	}
	return nil
}

// SortByRisk orders entries from most to least identifying, then by name.
func (m *MappingFile) SortByRisk() {
	sort.SliceStable(m.Entries, func(i, j int) bool {
		if m.Entries[i].RiskLevel != m.Entries[j].RiskLevel {
			return m.Entries[i].RiskLevel > m.Entries[j].RiskLevel
		}
		return m.Entries[i].PIIType < m.Entries[j].PIIType
	})
}
